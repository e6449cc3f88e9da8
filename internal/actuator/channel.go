package actuator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/simtools/handmon/internal/logger"
	"github.com/simtools/handmon/internal/serial"
)

// Dialer opens the underlying serial port. The channel owns the returned
// port exclusively until it disconnects.
type Dialer func() (serial.Port, error)

// Config holds the channel's timing windows and retry budget.
// All windows are upper bounds on waiting, never indefinite blocks.
type Config struct {
	// PortName is the port identifier, used for logging only.
	PortName string
	// SettleDelay is the pause after opening the port while the board
	// finishes its hardware reset.
	SettleDelay time.Duration
	// StartupDrain bounds the window for consuming startup chatter.
	StartupDrain time.Duration
	// ProbeWindow bounds the wait for a verification or liveness response.
	// It is shorter than AckWindow so periodic checks stay cheap.
	ProbeWindow time.Duration
	// AckWindow bounds the wait for a command acknowledgment.
	AckWindow time.Duration
	// GraceWindow is the trailing drain after the first acknowledgment,
	// tolerating firmware that prints more than one line per command.
	GraceWindow time.Duration
	// MaxRetries is the total number of connect+send attempts per command.
	MaxRetries int
	// RetryBackoff is the fixed pause between attempts.
	RetryBackoff time.Duration
}

var (
	// ErrRetriesExhausted is returned by Send when every attempt failed.
	// The channel is left disconnected so the next call retries fresh.
	ErrRetriesExhausted = errors.New("all send attempts failed")
	// ErrNoAck indicates a command was written but no recognized
	// acknowledgment arrived within the window.
	ErrNoAck = errors.New("no acknowledgment within window")

	// errNoDialer is returned at construction without a port dialer.
	errNoDialer = errors.New("dialer must be provided")
	// errBadRetries is returned at construction for a retry budget below 1.
	errBadRetries = errors.New("max retries must be at least 1")
	// errLinkLost is returned when the port dies in the middle of connecting.
	errLinkLost = errors.New("link lost during startup")
)

// Channel is the reliable command channel to the actuator board.
// It is not safe for concurrent use; one Send completes, including its
// retries, before the next begins.
type Channel struct {
	cfg  Config
	dial Dialer

	// port is the live connection; nil while disconnected.
	port serial.Port
	// rbuf accumulates partial lines across reads.
	rbuf []byte
	// consecutiveFailures counts failed send attempts since the last success.
	consecutiveFailures int

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a disconnected channel. The port is opened lazily on the
// first Send or by an explicit Connect.
func New(cfg Config, dial Dialer) (*Channel, error) {
	if dial == nil {
		return nil, errNoDialer
	}

	if cfg.MaxRetries < 1 {
		return nil, errBadRetries
	}

	return &Channel{
		cfg:   cfg,
		dial:  dial,
		now:   time.Now,
		sleep: sleepContext,
	}, nil
}

// Connected reports whether the channel currently holds an open port.
func (c *Channel) Connected() bool {
	return c.port != nil
}

// Failures returns the number of failed send attempts since the last success.
func (c *Channel) Failures() int {
	return c.consecutiveFailures
}

// Connect opens the port, waits for the board's hardware reset to settle,
// drains stale startup bytes and issues a verification probe. A board that
// does not answer the probe is assumed present if the port opened; only
// I/O failures leave the channel disconnected.
func (c *Channel) Connect(ctx context.Context) error {
	if c.port != nil {
		// Release the stale handle and give the OS a moment before reopening.
		_ = c.port.Close()
		c.port = nil
		c.rbuf = nil

		if err := c.sleep(ctx, time.Second); err != nil {
			return err
		}
	}

	port, err := c.dial()
	if err != nil {
		return fmt.Errorf("connect actuator: %w", err)
	}

	c.port = port
	c.rbuf = nil

	// Opening the port resets the board; wait for it to come back up.
	if err := c.sleep(ctx, c.cfg.SettleDelay); err != nil {
		c.disconnect()

		return err
	}

	logger.Infof(ctx, "Connected to actuator on %s", c.cfg.PortName)

	if err := c.clearBuffers(); err != nil {
		c.fail(ctx, err)

		return err
	}

	// Echo whatever the firmware prints after reset.
	c.drainChatter(ctx, c.cfg.StartupDrain)
	if c.port == nil {
		return fmt.Errorf("connect actuator: %w", errLinkLost)
	}

	verified, err := c.probe(ctx, c.cfg.ProbeWindow)
	if err != nil {
		c.fail(ctx, err)

		return err
	}

	if verified {
		logger.Info(ctx, "Actuator connection verified")
	} else {
		logger.Warn(ctx, "Actuator connected but did not answer the status probe")
	}

	return nil
}

// Send delivers a command and waits for an acknowledgment, reconnecting
// and retrying up to the configured budget. It never blocks indefinitely
// and never panics on I/O trouble; exhausting the budget returns
// ErrRetriesExhausted with the channel left disconnected.
func (c *Channel) Send(ctx context.Context, command string) error {
	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, c.cfg.RetryBackoff); err != nil {
				return err
			}
		}

		if c.port == nil {
			logger.Warnf(ctx, "Actuator disconnected, reconnecting (attempt %d/%d)", attempt, c.cfg.MaxRetries)

			if err := c.Connect(ctx); err != nil {
				if ctx.Err() != nil {
					return err
				}

				lastErr = err

				continue
			}
		}

		err := c.sendOnce(ctx, command)
		if err == nil {
			c.consecutiveFailures = 0

			return nil
		}

		if ctx.Err() != nil {
			return err
		}

		lastErr = err
		c.consecutiveFailures++

		logger.WarnKV(ctx, "Send attempt failed",
			"command", command,
			"attempt", attempt,
			"max_retries", c.cfg.MaxRetries,
			"error", err,
		)
	}

	// Leave the channel disconnected so the next command starts fresh.
	c.disconnect()

	logger.Errorf(ctx, "All %d attempts failed, will reconnect on next command", c.cfg.MaxRetries)

	return fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)
}

// CheckConnection probes liveness outside the send path, reconnecting when
// the link turns out to be dead. A quiet but writable board passes.
func (c *Channel) CheckConnection(ctx context.Context) error {
	if c.port == nil {
		logger.Info(ctx, "Actuator connection lost, attempting to reconnect")

		return c.Connect(ctx)
	}

	if _, err := c.probe(ctx, c.cfg.ProbeWindow); err != nil {
		if ctx.Err() != nil {
			return err
		}

		logger.WarnKV(ctx, "Actuator connection check failed", "error", err)
		logger.Info(ctx, "Attempting to reconnect")

		return c.Connect(ctx)
	}

	return nil
}

// Close releases the port. The channel may be reused afterwards; the next
// Send reconnects.
func (c *Channel) Close() error {
	if c.port == nil {
		return nil
	}

	err := c.port.Close()
	c.port = nil
	c.rbuf = nil

	if err != nil {
		return fmt.Errorf("close actuator port: %w", err)
	}

	return nil
}

// sendOnce performs a single command exchange while connected.
// Any I/O failure transitions the channel to disconnected before returning.
func (c *Channel) sendOnce(ctx context.Context, command string) error {
	// Stale bytes from a previous exchange must not be mistaken for acks.
	if err := c.clearBuffers(); err != nil {
		c.fail(ctx, err)

		return err
	}

	if _, err := c.port.Write([]byte(command + "\n")); err != nil {
		err = fmt.Errorf("write command: %w", err)
		c.fail(ctx, err)

		return err
	}

	logger.Infof(ctx, "Command sent: %s", command)

	deadline := c.now().Add(c.cfg.AckWindow)

	for {
		line, ok, err := c.readLine(ctx, deadline)
		if err != nil {
			c.fail(ctx, err)

			return err
		}

		if !ok {
			break // window expired
		}

		logger.Infof(ctx, "actuator: %s", line)

		if isAcknowledgment(line) {
			// Let the firmware finish talking before the next exchange.
			c.drainChatter(ctx, c.cfg.GraceWindow)

			return nil
		}
	}

	// No ack within the window. A no-op write tells a slow board apart
	// from a dead link.
	if _, err := c.port.Write([]byte("\n")); err != nil {
		c.fail(ctx, fmt.Errorf("liveness write: %w", err))
	}

	return ErrNoAck
}

// probe writes the status command and waits up to window for any
// recognized response. It returns false without error when the board
// stays quiet.
func (c *Channel) probe(ctx context.Context, window time.Duration) (bool, error) {
	if _, err := c.port.Write([]byte(probeCommand + "\n")); err != nil {
		return false, fmt.Errorf("write probe: %w", err)
	}

	deadline := c.now().Add(window)

	for {
		line, ok, err := c.readLine(ctx, deadline)
		if err != nil {
			return false, err
		}

		if !ok {
			return false, nil
		}

		logger.Infof(ctx, "actuator: %s", line)

		if isAcknowledgment(line) {
			return true, nil
		}
	}
}

// drainChatter logs response lines until the window expires. I/O failures
// here still disconnect the channel but are not reported to the caller;
// the exchange that triggered the drain already succeeded.
func (c *Channel) drainChatter(ctx context.Context, window time.Duration) {
	deadline := c.now().Add(window)

	for {
		line, ok, err := c.readLine(ctx, deadline)
		if err != nil {
			c.fail(ctx, err)

			return
		}

		if !ok {
			return
		}

		logger.Infof(ctx, "actuator: %s", line)
	}
}

// readLine returns the next non-empty line from the port, waiting at most
// until deadline. ok is false when the deadline passed without a complete
// line. Blocking granularity is the port's own read timeout, so the wait
// is bounded without busy-spinning.
func (c *Channel) readLine(ctx context.Context, deadline time.Time) (string, bool, error) {
	var buf [256]byte

	for {
		if i := bytes.IndexByte(c.rbuf, '\n'); i >= 0 {
			line := strings.TrimSpace(string(c.rbuf[:i]))
			c.rbuf = c.rbuf[i+1:]

			if line == "" {
				continue
			}

			return line, true, nil
		}

		if err := ctx.Err(); err != nil {
			return "", false, err
		}

		if !c.now().Before(deadline) {
			return "", false, nil
		}

		n, err := c.port.Read(buf[:])
		if err != nil {
			return "", false, fmt.Errorf("read actuator: %w", err)
		}

		if n > 0 {
			c.rbuf = append(c.rbuf, buf[:n]...)
		}
	}
}

// clearBuffers resets both port buffers.
func (c *Channel) clearBuffers() error {
	if err := c.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("clear input buffer: %w", err)
	}

	if err := c.port.ResetOutputBuffer(); err != nil {
		return fmt.Errorf("clear output buffer: %w", err)
	}

	c.rbuf = nil

	return nil
}

// fail transitions to disconnected on I/O trouble. Context cancellation is
// not a link failure and keeps the port open for the next caller.
func (c *Channel) fail(ctx context.Context, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}

	logger.WarnKV(ctx, "Actuator link failed", "error", err)
	c.disconnect()
}

// disconnect drops the port handle. The next Send attempts a fresh connect.
func (c *Channel) disconnect() {
	if c.port != nil {
		_ = c.port.Close()
	}

	c.port = nil
	c.rbuf = nil
}

// sleepContext pauses for d unless the context ends first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
