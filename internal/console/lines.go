package console

import (
	"bytes"
	"io"
	"strings"

	"github.com/apex/log"
)

// LineReader splits a serial stream into trimmed lines.
//
// A Read that returns no data and no error means the line went quiet for the
// transport's read timeout. ReadLine then hands back whatever partial text is
// buffered, possibly the empty string, so callers see unterminated prompts
// and never block forever on a silent board.
type LineReader struct {
	r     io.Reader
	buf   []byte
	chunk []byte
	err   error
}

func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: r, chunk: make([]byte, 512)}
}

// ReadLine returns the next line. Once the underlying reader fails, buffered
// text is returned first and every later call returns the error.
func (lr *LineReader) ReadLine() (string, error) {
	for {
		if i := bytes.IndexByte(lr.buf, '\n'); i >= 0 {
			line := strings.TrimSpace(string(lr.buf[:i]))
			lr.buf = lr.buf[i+1:]
			return line, nil
		}
		if lr.err != nil {
			if len(lr.buf) > 0 {
				return lr.drain(), nil
			}
			return "", lr.err
		}

		n, err := lr.r.Read(lr.chunk)
		lr.buf = append(lr.buf, lr.chunk[:n]...)
		if err != nil {
			lr.err = err
			continue
		}
		if n == 0 {
			return lr.drain(), nil
		}
	}
}

func (lr *LineReader) drain() string {
	line := strings.TrimSpace(string(lr.buf))
	lr.buf = lr.buf[:0]
	return line
}

// Console pairs a LineReader with the transport's write side. Errors from
// either direction come back as *TransportError.
type Console struct {
	lines *LineReader
	w     io.Writer
	log   log.Interface
	echo  bool
}

// New wraps rw. With echo set, every non-empty line read is logged at debug
// level.
func New(rw io.ReadWriter, logger log.Interface, echo bool) *Console {
	return &Console{
		lines: NewLineReader(rw),
		w:     rw,
		log:   logger,
		echo:  echo,
	}
}

func (c *Console) ReadLine() (string, error) {
	line, err := c.lines.ReadLine()
	if err != nil {
		return "", &TransportError{Op: "read", Err: err}
	}
	if c.echo && line != "" {
		c.log.Debugf(">>> %s", line)
	}
	return line, nil
}

func (c *Console) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	if err != nil {
		return n, &TransportError{Op: "write", Err: err}
	}
	if c.echo {
		c.log.Debugf("<<< %q", p)
	}
	return n, nil
}
