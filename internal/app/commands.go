package app

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gajzzs/umsflash/internal/config"
	"github.com/gajzzs/umsflash/internal/console"
	"github.com/gajzzs/umsflash/internal/flasher"
	"github.com/gajzzs/umsflash/internal/platform"
)

type rootOptions struct {
	configPath   string
	verbose      bool
	baud         int
	markerSuffix string
	attempts     int
	pollInterval time.Duration
	noProgress   bool
	force        bool
}

// NewRootCommand builds the flash command; subcommands are added by main.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "umsflash <serial-port> <firmware>",
		Short: "Flash firmware onto a board through its bootloader's USB Mass Storage mode",
		Long: "umsflash watches the board's serial console for the bootloader, switches it into " +
			"USB Mass Storage mode, copies the firmware onto the volume that appears on this host " +
			"and boots the board.",
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.InitConfig(opts.configPath); err != nil {
				return err
			}
			cfg := config.GetConfig()
			applyFlags(cmd.Flags(), opts, cfg)
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cfg := config.GetConfig()
			logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

			var fopts []flasher.Option
			if cfg.Transfer.Progress {
				fopts = append(fopts, flasher.WithProgress(cmd.ErrOrStderr()))
			}
			return flasher.New(cfg, logger, fopts...).Flash(args[0], args[1])
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", fmt.Sprintf("config file (default %s)", config.ConfigFile))
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "echo serial traffic and debug output")

	f := cmd.Flags()
	f.IntVar(&opts.baud, "baud", console.DefaultBaudRate, "serial baud rate")
	f.StringVar(&opts.markerSuffix, "marker-suffix", "", "file name suffix identifying the board's volume")
	f.IntVar(&opts.attempts, "attempts", 0, "mount polling attempts")
	f.DurationVar(&opts.pollInterval, "poll-interval", 0, "wait between mount polling attempts")
	f.BoolVar(&opts.noProgress, "no-progress", false, "do not draw a copy progress bar")
	f.BoolVarP(&opts.force, "force", "f", false, "leave UMS and boot even if the volume cannot be unmounted")

	return cmd
}

// applyFlags overrides config values with the flags the user actually set.
func applyFlags(flags *pflag.FlagSet, opts *rootOptions, cfg *config.Config) {
	if flags.Changed("verbose") {
		cfg.Verbose = opts.verbose
	}
	if flags.Changed("baud") {
		cfg.Serial.BaudRate = opts.baud
	}
	if flags.Changed("marker-suffix") {
		cfg.Resolver.MarkerSuffix = opts.markerSuffix
	}
	if flags.Changed("attempts") {
		cfg.Resolver.Attempts = opts.attempts
	}
	if flags.Changed("poll-interval") {
		cfg.Resolver.PollInterval = opts.pollInterval
	}
	if flags.Changed("no-progress") {
		cfg.Transfer.Progress = !opts.noProgress
	}
	if flags.Changed("force") {
		cfg.Transfer.Force = opts.force
	}
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return &log.Logger{Handler: cli.New(w), Level: level}
}

// NewPortsCommand lists the serial devices a board could be attached to.
func NewPortsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := console.ListPorts()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(ports) == 0 {
				fmt.Fprintln(out, "No serial ports found")
				return nil
			}
			for _, p := range ports {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	}
}

// NewPartitionsCommand prints the mounted partitions the resolver would see.
func NewPartitionsCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "partitions",
		Short: "List mounted partitions, as seen before and during UMS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mounts := &platform.DiskMounts{All: all}
			partitions, err := mounts.Partitions()
			if err != nil {
				return err
			}
			printPartitions(cmd.OutOrStdout(), partitions)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include virtual filesystems")
	return cmd
}

func printPartitions(w io.Writer, partitions []platform.Partition) {
	for i, p := range partitions {
		fmt.Fprintf(w, "%d. %s\n", i+1, p.Mountpoint)
		fmt.Fprintf(w, "   Device: %s\n", p.Device)
		if p.Model != "" {
			fmt.Fprintf(w, "   Model: %s\n", p.Model)
		}
		fmt.Fprintf(w, "   Removable: %t\n", p.Removable)
		if len(p.Opts) > 0 {
			fmt.Fprintf(w, "   Options: %s\n", strings.Join(p.Opts, ","))
		}
		fmt.Fprintf(w, "   Type: %s\n\n", p.Fstype)
	}
}
