package console

import (
	"errors"
	"io"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader_SplitsAndTrims(t *testing.T) {
	mock := &MockTransport{ReadData: []byte("U-Boot 2020.04  \r\nDRAM:  2 GiB\r\n\r\n  Net:   FEC\n")}
	lr := NewLineReader(mock)

	for _, want := range []string{"U-Boot 2020.04", "DRAM:  2 GiB", "", "Net:   FEC"} {
		line, err := lr.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, want, line)
	}

	_, err := lr.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReader_QuietPeriodReturnsPartial(t *testing.T) {
	mock := &MockTransport{ReadData: []byte("Hit any key\r\n=> "), Quiet: true}
	lr := NewLineReader(mock)

	line, err := lr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "Hit any key", line)

	// the prompt has no newline; the idle line surfaces it
	line, err = lr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "=>", line)

	line, err = lr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "", line)
}

func TestLineReader_LineAcrossReads(t *testing.T) {
	chunks := [][]byte{[]byte("FEC [PRI"), []byte("ME], usb_"), []byte("ether\r\nnext")}
	mock := &MockTransport{}
	mock.ReadFunc = func(p []byte) (int, error) {
		if len(chunks) == 0 {
			return 0, io.EOF
		}
		n := copy(p, chunks[0])
		chunks = chunks[1:]
		return n, nil
	}
	lr := NewLineReader(mock)

	line, err := lr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "FEC [PRIME], usb_ether", line)

	line, err = lr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "next", line)

	_, err = lr.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReader_ErrorIsSticky(t *testing.T) {
	boom := errors.New("device removed")
	mock := &MockTransport{ReadErr: boom}
	lr := NewLineReader(mock)

	for i := 0; i < 2; i++ {
		_, err := lr.ReadLine()
		assert.ErrorIs(t, err, boom)
	}
}

func TestConsole_WrapsErrors(t *testing.T) {
	mock := &MockTransport{ReadErr: io.EOF, WriteErr: errors.New("write failed")}
	c := New(mock, &log.Logger{Handler: memory.New(), Level: log.DebugLevel}, false)

	_, err := c.ReadLine()
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "read", terr.Op)
	assert.ErrorIs(t, err, io.EOF)

	_, err = c.Write([]byte("boot\r\n"))
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "write", terr.Op)
}

func TestConsole_EchoLogsLines(t *testing.T) {
	handler := memory.New()
	mock := &MockTransport{ReadData: []byte("Booting...\n\n")}
	c := New(mock, &log.Logger{Handler: handler, Level: log.DebugLevel}, true)

	line, err := c.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "Booting...", line)

	_, err = c.ReadLine()
	require.NoError(t, err)

	_, err = c.Write([]byte("\r\n"))
	require.NoError(t, err)

	require.Len(t, handler.Entries, 2)
	assert.Equal(t, ">>> Booting...", handler.Entries[0].Message)
	assert.Equal(t, `<<< "\r\n"`, handler.Entries[1].Message)
	assert.Equal(t, []byte("\r\n"), mock.WriteData)
}

func TestOpenSerial_RequiresPort(t *testing.T) {
	_, err := OpenSerial(SerialConfig{})
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "open", terr.Op)
}

var (
	_ Transport = (*SerialTransport)(nil)
	_ Transport = (*MockTransport)(nil)
)

func TestMockTransport_QuietLineReadsAsTimeout(t *testing.T) {
	var tr Transport = &MockTransport{ReadData: []byte("=>"), Quiet: true}
	buf := make([]byte, 8)

	n, err := tr.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "=>", string(buf[:n]))

	n, err = tr.Read(buf)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, tr.Close())
	assert.True(t, tr.(*MockTransport).Closed)
}
