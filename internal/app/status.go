package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gajzzs/umsflash/internal/config"
	"github.com/gajzzs/umsflash/internal/console"
	"github.com/gajzzs/umsflash/internal/platform"
)

// NewStatusCommand shows the effective settings alongside the ports and mounts on this host.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:                   "status",
		Short:                 "Show effective settings, serial ports and mounts",
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg := config.GetConfig()

			fmt.Fprintln(out, "umsflash Status")
			fmt.Fprintln(out, "===============")

			fmt.Fprintln(out, "\nSettings:")
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(out, indent(string(data)))

			fmt.Fprintln(out, "\nSerial Ports:")
			if ports, err := console.ListPorts(); err != nil {
				fmt.Fprintf(out, "  unavailable: %v\n", err)
			} else if len(ports) == 0 {
				fmt.Fprintln(out, "  none")
			} else {
				for _, p := range ports {
					fmt.Fprintf(out, "  - %s\n", p)
				}
			}

			fmt.Fprintln(out, "\nMount Points:")
			if snap, err := platform.NewMountLister().Snapshot(); err != nil {
				fmt.Fprintf(out, "  unavailable: %v\n", err)
			} else {
				for _, p := range snap.Paths() {
					fmt.Fprintf(out, "  - %s\n", p)
				}
			}
			return nil
		},
	}
}

func indent(s string) string {
	var b strings.Builder
	for _, line := range strings.SplitAfter(s, "\n") {
		if line == "" {
			continue
		}
		b.WriteString("  ")
		b.WriteString(line)
	}
	return b.String()
}
