package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Serial    SerialConfig    `yaml:"serial"`
	Handshake HandshakeConfig `yaml:"handshake"`
	Resolver  ResolverConfig  `yaml:"resolver"`
	Transfer  TransferConfig  `yaml:"transfer"`
	Verbose   bool            `yaml:"verbose"`
}

type SerialConfig struct {
	BaudRate    int           `yaml:"baud_rate"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// HandshakeConfig describes how the bootloader console is recognised and driven.
type HandshakeConfig struct {
	BannerMatch    string        `yaml:"banner_match"`
	PromptMatch    string        `yaml:"prompt_match"`
	InterruptCount int           `yaml:"interrupt_count"`
	InterruptDelay time.Duration `yaml:"interrupt_delay"`
	UMSCommand     string        `yaml:"ums_command"`
	BootCommand    string        `yaml:"boot_command"`
	ExitDelay      time.Duration `yaml:"exit_delay"`
}

// ResolverConfig controls how the UMS mount point is found on the host.
type ResolverConfig struct {
	MarkerSuffix string        `yaml:"marker_suffix"`
	Attempts     int           `yaml:"attempts"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// TransferConfig covers the copy and the release of the volume afterwards.
type TransferConfig struct {
	Progress        bool          `yaml:"progress"`
	UnmountAttempts int           `yaml:"unmount_attempts"`
	UnmountBackoff  time.Duration `yaml:"unmount_backoff"`
	// Force leaves UMS even when the volume could not be unmounted.
	Force bool `yaml:"force"`
}

var (
	ConfigDir  = "/etc/umsflash"
	ConfigFile = filepath.Join(ConfigDir, "config.yaml")
	config     *Config
)

// Defaults returns the settings for i.MX boards running U-Boot with an M4 core.
func Defaults() *Config {
	return &Config{
		Serial: SerialConfig{
			BaudRate:    115200,
			ReadTimeout: time.Second,
		},
		Handshake: HandshakeConfig{
			BannerMatch:    "FEC [PRIME], usb_ether",
			PromptMatch:    "=>",
			InterruptCount: 5,
			InterruptDelay: 50 * time.Millisecond,
			UMSCommand:     "ums 0 mmc 0",
			BootCommand:    "boot",
			ExitDelay:      100 * time.Millisecond,
		},
		Resolver: ResolverConfig{
			MarkerSuffix: "-m4.dtb",
			Attempts:     3,
			PollInterval: 5 * time.Second,
		},
		Transfer: TransferConfig{
			Progress:        true,
			UnmountAttempts: 10,
			UnmountBackoff:  time.Second,
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error; the defaults are returned as is.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Serial.BaudRate <= 0 {
		errs = append(errs, fmt.Errorf("serial.baud_rate must be positive, got %d", c.Serial.BaudRate))
	}
	if c.Serial.ReadTimeout <= 0 {
		errs = append(errs, errors.New("serial.read_timeout must be positive"))
	}
	if c.Handshake.BannerMatch == "" {
		errs = append(errs, errors.New("handshake.banner_match is required"))
	}
	if c.Handshake.PromptMatch == "" {
		errs = append(errs, errors.New("handshake.prompt_match is required"))
	}
	if c.Handshake.UMSCommand == "" {
		errs = append(errs, errors.New("handshake.ums_command is required"))
	}
	if c.Handshake.BootCommand == "" {
		errs = append(errs, errors.New("handshake.boot_command is required"))
	}
	if c.Handshake.InterruptCount < 0 {
		errs = append(errs, errors.New("handshake.interrupt_count cannot be negative"))
	}
	if c.Handshake.InterruptDelay < 0 || c.Handshake.ExitDelay < 0 {
		errs = append(errs, errors.New("handshake delays cannot be negative"))
	}
	if c.Resolver.MarkerSuffix == "" {
		errs = append(errs, errors.New("resolver.marker_suffix is required"))
	}
	if c.Resolver.Attempts <= 0 {
		errs = append(errs, fmt.Errorf("resolver.attempts must be positive, got %d", c.Resolver.Attempts))
	}
	if c.Transfer.UnmountAttempts <= 0 {
		errs = append(errs, fmt.Errorf("transfer.unmount_attempts must be positive, got %d", c.Transfer.UnmountAttempts))
	}
	if c.Transfer.UnmountBackoff < 0 {
		errs = append(errs, errors.New("transfer.unmount_backoff cannot be negative"))
	}
	if c.Resolver.PollInterval < 0 {
		errs = append(errs, errors.New("resolver.poll_interval cannot be negative"))
	}
	return errors.Join(errs...)
}

// InitConfig loads the config at path, falling back to ConfigFile when path is empty.
func InitConfig(path string) error {
	if path == "" {
		path = ConfigFile
	}
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	config = cfg
	return nil
}

func GetConfig() *Config {
	if config == nil {
		config = Defaults()
	}
	return config
}
