package bootloader

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/gajzzs/umsflash/internal/config"
)

// ErrInvalidTransition is returned when a step is requested out of order.
var ErrInvalidTransition = errors.New("invalid handshake transition")

var (
	crlf  = []byte("\r\n")
	ctrlC = []byte{0x03}
)

// Console is the line-oriented view of the serial link the handshake drives.
type Console interface {
	ReadLine() (string, error)
	io.Writer
}

// Handshake walks a U-Boot style console from power-on noise into UMS mode and
// back out to boot.
type Handshake struct {
	console Console
	cfg     config.HandshakeConfig
	log     log.Interface
	state   State
	sleep   func(time.Duration)
}

func New(c Console, cfg config.HandshakeConfig, logger log.Interface) *Handshake {
	return &Handshake{
		console: c,
		cfg:     cfg,
		log:     logger,
		state:   AwaitingBanner,
		sleep:   time.Sleep,
	}
}

func (h *Handshake) State() State {
	return h.state
}

// Observe feeds one console line to the handshake. It reports whether the line
// moved the handshake out of AwaitingBanner. The banner line also interrupts
// the autoboot countdown. Lines seen in any later state are ignored.
func (h *Handshake) Observe(line string) (bool, error) {
	if h.state != AwaitingBanner {
		return false, nil
	}

	switch {
	case strings.Contains(line, h.cfg.BannerMatch):
		h.log.Info("Bootloader banner seen, interrupting autoboot")
		for i := 0; i < h.cfg.InterruptCount; i++ {
			if i > 0 {
				h.sleep(h.cfg.InterruptDelay)
			}
			if err := h.write(crlf); err != nil {
				return false, fmt.Errorf("interrupt autoboot: %w", err)
			}
		}
	case strings.Contains(line, h.cfg.PromptMatch):
		h.log.Info("Bootloader prompt seen")
	default:
		return false, nil
	}

	h.state = PromptDetected
	return true, nil
}

// AwaitPrompt drains console lines until the banner or the prompt shows up.
// The stream ending first is fatal.
func (h *Handshake) AwaitPrompt() error {
	if h.state != AwaitingBanner {
		return h.invalid("await prompt")
	}
	for {
		line, err := h.console.ReadLine()
		if err != nil {
			return fmt.Errorf("waiting for bootloader: %w", err)
		}
		ok, err := h.Observe(line)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
}

// RefreshPrompt asks for a fresh prompt and swallows its echo.
func (h *Handshake) RefreshPrompt() error {
	if h.state != PromptDetected {
		return h.invalid("refresh prompt")
	}
	if err := h.write(crlf); err != nil {
		return fmt.Errorf("refresh prompt: %w", err)
	}
	if _, err := h.console.ReadLine(); err != nil {
		return fmt.Errorf("refresh prompt: %w", err)
	}
	h.state = UmsRequested
	return nil
}

// EnableUMS sends the UMS command and swallows its echo.
func (h *Handshake) EnableUMS() error {
	if h.state != UmsRequested {
		return h.invalid("enable ums")
	}
	h.log.Info("Entering USB Mass Storage mode")
	if err := h.command(h.cfg.UMSCommand); err != nil {
		return fmt.Errorf("enable ums: %w", err)
	}
	if _, err := h.console.ReadLine(); err != nil {
		return fmt.Errorf("enable ums: %w", err)
	}
	h.state = UmsActive
	return nil
}

// MarkTransferred records that the artifact is on the UMS volume.
func (h *Handshake) MarkTransferred() error {
	if h.state != UmsActive {
		return h.invalid("mark transferred")
	}
	h.state = TransferComplete
	return nil
}

// ExitAndBoot leaves UMS mode with ^C and tells the bootloader to boot.
func (h *Handshake) ExitAndBoot() error {
	if h.state != TransferComplete {
		return h.invalid("exit and boot")
	}
	h.log.Info("Exiting UMS")
	if err := h.write(ctrlC); err != nil {
		return fmt.Errorf("exit ums: %w", err)
	}
	h.sleep(h.cfg.ExitDelay)

	h.log.Info("Requesting system boot")
	if err := h.command(h.cfg.BootCommand); err != nil {
		return fmt.Errorf("boot: %w", err)
	}
	h.state = Exited
	return nil
}

func (h *Handshake) command(cmd string) error {
	return h.write([]byte(cmd + "\r\n"))
}

func (h *Handshake) write(p []byte) error {
	_, err := h.console.Write(p)
	return err
}

func (h *Handshake) invalid(op string) error {
	return fmt.Errorf("%s in state %s: %w", op, h.state, ErrInvalidTransition)
}
