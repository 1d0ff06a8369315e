package console

import "fmt"

// TransportError reports a failure on the serial link: the device could not be
// opened, or the stream ended or failed while the board was being driven.
type TransportError struct {
	Op   string // "open", "read" or "write"
	Port string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("serial %s %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("serial %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
