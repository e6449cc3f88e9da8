package source

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/simtools/handmon/internal/domain/handedness"
)

// errNoCommand is returned when constructing an ExecSource without a command.
var errNoCommand = errors.New("recognizer command must be provided")

// ExecSource invokes an external recognizer command each tick and parses
// its first stdout line as the classification. The command is expected to
// print LH or RH; anything else counts as an unknown reading.
type ExecSource struct {
	command string
	args    []string
	timeout time.Duration
}

// NewExecSource creates a source running the given command with the given
// arguments. A positive timeout bounds each invocation.
func NewExecSource(command string, args []string, timeout time.Duration) (*ExecSource, error) {
	if command == "" {
		return nil, errNoCommand
	}

	return &ExecSource{
		command: command,
		args:    args,
		timeout: timeout,
	}, nil
}

// Read runs the recognizer once and maps its output to a Signal.
func (s *ExecSource) Read(ctx context.Context) (handedness.Signal, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)

		defer cancel()
	}

	out, err := exec.CommandContext(ctx, s.command, s.args...).Output()
	if err != nil {
		return handedness.Unknown, fmt.Errorf("run recognizer: %w", err)
	}

	line, _, _ := strings.Cut(string(out), "\n")

	return handedness.Parse(line), nil
}

// Close implements Source; the exec source holds no resources between reads.
func (s *ExecSource) Close() error {
	return nil
}
