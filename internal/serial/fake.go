package serial

import "time"

// FakePort is a test double that returns scripted read chunks and records
// writes. Each call to Read consumes the next chunk; a nil chunk simulates
// a timed-out read (zero bytes, no error). Once the script is exhausted,
// Read keeps timing out, or returns ReadErr when set.
type FakePort struct {
	// Script contains chunks to return from successive Read calls.
	Script [][]byte
	// ReadErr, if set, is returned by Read after the script is exhausted.
	ReadErr error
	// WriteErr, if set, is returned by Write once WriteErrAfter successful
	// writes have happened.
	WriteErr error
	// WriteErrAfter is the number of writes allowed to succeed before
	// WriteErr applies.
	WriteErrAfter int
	// ResetErr, if set, is returned by buffer resets.
	ResetErr error

	// Writes records every successful Write payload.
	Writes []string
	// InputResets counts ResetInputBuffer calls.
	InputResets int
	// OutputResets counts ResetOutputBuffer calls.
	OutputResets int
	// Closed tracks whether Close was called.
	Closed bool
	// Timeout records the last SetReadTimeout value.
	Timeout time.Duration

	index int
}

// Read returns the next scripted chunk.
func (f *FakePort) Read(b []byte) (int, error) {
	if f.index >= len(f.Script) {
		if f.ReadErr != nil {
			return 0, f.ReadErr
		}

		return 0, nil // simulated read timeout
	}

	chunk := f.Script[f.index]
	f.index++

	if chunk == nil {
		return 0, nil
	}

	return copy(b, chunk), nil
}

// Write records the payload.
func (f *FakePort) Write(b []byte) (int, error) {
	if f.WriteErr != nil && len(f.Writes) >= f.WriteErrAfter {
		return 0, f.WriteErr
	}

	f.Writes = append(f.Writes, string(b))

	return len(b), nil
}

// Close marks the port as closed.
func (f *FakePort) Close() error {
	f.Closed = true

	return nil
}

// ResetInputBuffer counts the reset.
func (f *FakePort) ResetInputBuffer() error {
	if f.ResetErr != nil {
		return f.ResetErr
	}

	f.InputResets++

	return nil
}

// ResetOutputBuffer counts the reset.
func (f *FakePort) ResetOutputBuffer() error {
	if f.ResetErr != nil {
		return f.ResetErr
	}

	f.OutputResets++

	return nil
}

// SetReadTimeout records the timeout.
func (f *FakePort) SetReadTimeout(timeout time.Duration) error {
	f.Timeout = timeout

	return nil
}
