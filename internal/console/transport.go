package console

import "io"

// Transport is the byte stream to the board's debug UART. The read timeout is
// fixed when the transport is opened; a Read that times out returns 0 bytes
// and a nil error.
type Transport interface {
	io.ReadWriteCloser
}
