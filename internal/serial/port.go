package serial

import (
	"fmt"
	"io"
	"time"

	bugst "go.bug.st/serial"
)

// Port is the subset of a serial connection the actuator channel relies on.
// Reads are bounded by the configured read timeout: a timed-out read
// returns zero bytes and no error.
type Port interface {
	io.ReadWriteCloser

	// ResetInputBuffer discards unread incoming data.
	ResetInputBuffer() error
	// ResetOutputBuffer discards unsent outgoing data.
	ResetOutputBuffer() error
	// SetReadTimeout bounds a single Read call.
	SetReadTimeout(timeout time.Duration) error
}

// Config holds the parameters for opening a port.
type Config struct {
	// Name is the port identifier, e.g. "/dev/ttyACM0" or "COM3".
	Name string
	// BaudRate of the link.
	BaudRate int
	// ReadTimeout bounds a single read. Zero keeps reads blocking.
	ReadTimeout time.Duration
}

// Open opens a real serial port with the provided configuration.
func Open(cfg Config) (Port, error) {
	mode := &bugst.Mode{
		BaudRate: cfg.BaudRate,
	}

	port, err := bugst.Open(cfg.Name, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.Name, err)
	}

	if cfg.ReadTimeout > 0 {
		if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
			_ = port.Close()

			return nil, fmt.Errorf("set read timeout on %s: %w", cfg.Name, err)
		}
	}

	return port, nil
}
