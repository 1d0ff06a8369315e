package console

import (
	"errors"
	"time"

	"go.bug.st/serial"
)

const (
	DefaultBaudRate    = 115200
	DefaultReadTimeout = time.Second
)

// SerialTransport implements Transport using a hardware serial port.
type SerialTransport struct {
	port serial.Port
}

// SerialConfig holds configuration for opening a serial port.
type SerialConfig struct {
	Port        string
	BaudRate    int
	ReadTimeout time.Duration
}

// OpenSerial opens a serial port at 8N1 with the given configuration.
func OpenSerial(cfg SerialConfig) (*SerialTransport, error) {
	if cfg.Port == "" {
		return nil, &TransportError{Op: "open", Err: errors.New("serial port path is required")}
	}
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, &TransportError{Op: "open", Port: cfg.Port, Err: err}
	}

	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, &TransportError{Op: "open", Port: cfg.Port, Err: err}
	}

	return &SerialTransport{port: port}, nil
}

func (t *SerialTransport) Read(p []byte) (int, error) {
	return t.port.Read(p)
}

func (t *SerialTransport) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

func (t *SerialTransport) Close() error {
	return t.port.Close()
}

// ListPorts returns the serial devices present on the host.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
