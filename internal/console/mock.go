package console

import "io"

// MockTransport implements Transport for testing.
type MockTransport struct {
	ReadData []byte
	ReadErr  error
	WriteErr error
	Closed   bool

	// Quiet makes a drained mock behave like an idle line (0, nil) instead of
	// returning io.EOF.
	Quiet bool

	// WriteData holds every byte written; Writes keeps each Write call apart.
	WriteData []byte
	Writes    [][]byte

	// ReadFunc allows custom read behavior for complex tests
	ReadFunc func(p []byte) (int, error)
}

func (m *MockTransport) Read(p []byte) (int, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(p)
	}
	if m.ReadErr != nil {
		return 0, m.ReadErr
	}
	n := copy(p, m.ReadData)
	m.ReadData = m.ReadData[n:]
	if n == 0 {
		if m.Quiet {
			return 0, nil
		}
		return 0, io.EOF
	}
	return n, nil
}

func (m *MockTransport) Write(p []byte) (int, error) {
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}
	m.WriteData = append(m.WriteData, p...)
	m.Writes = append(m.Writes, append([]byte(nil), p...))
	return len(p), nil
}

func (m *MockTransport) Close() error {
	m.Closed = true
	return nil
}
