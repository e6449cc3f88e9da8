package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/simtools/handmon/internal/actuator"
	"github.com/simtools/handmon/internal/config"
	"github.com/simtools/handmon/internal/debounce"
	"github.com/simtools/handmon/internal/logger"
	"github.com/simtools/handmon/internal/repository/state"
	"github.com/simtools/handmon/internal/serial"
	"github.com/simtools/handmon/internal/source"
)

// Options controls the monitor entry point.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Port provides an optional serial port override.
	Port string
	// OutputFile provides an optional state file override.
	OutputFile string
	// DryRun disables the actuator; the monitor only maintains the file.
	DryRun bool
}

// errNoRecognizer is returned when no recognizer command is configured.
var errNoRecognizer = errors.New("recognizer command must be configured")

// Run loads configuration, wires the components, and polls until the
// context is canceled. Configuration problems are the only fatal errors;
// everything at runtime is logged and retried.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "handmon")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if opts.Port != "" {
		cfg.Serial.Port = opts.Port
	}

	if opts.OutputFile != "" {
		cfg.OutputFile = opts.OutputFile
	}

	if cfg.Recognizer.Command == "" {
		return errNoRecognizer
	}

	src, err := source.NewExecSource(
		cfg.Recognizer.Command,
		recognizerArgs(cfg.Recognizer.Args, cfg.Region),
		cfg.Recognizer.Timeout,
	)
	if err != nil {
		return fmt.Errorf("build recognizer source: %w", err)
	}

	machine, err := debounce.NewMachine(cfg.Confirmations)
	if err != nil {
		return fmt.Errorf("build debounce machine: %w", err)
	}

	repo := state.NewFileRepository(cfg.OutputFile)

	var act Actuator
	if !opts.DryRun {
		act = buildActuator(ctx, cfg)
	}

	logger.InfoKV(ctx, "Monitoring started",
		"region", fmt.Sprintf("%d,%d %dx%d", cfg.Region.Left, cfg.Region.Top, cfg.Region.Width, cfg.Region.Height),
		"output_file", cfg.OutputFile,
		"interval", cfg.PollInterval.String(),
		"confirmations", cfg.Confirmations,
	)

	// Seed the loop with any previously persisted state for the summary log.
	if previous, err := repo.Load(ctx); err == nil {
		logger.Infof(ctx, "Previous confirmed handedness: %s (at %s)",
			previous.Value.Code(), previous.Timestamp.Format(time.DateTime))
	} else if !errors.Is(err, state.ErrNotFound) {
		logger.WarnKV(ctx, "Could not read existing state file", "error", err)
	}

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	loop := &Loop{
		Source:        src,
		Machine:       machine,
		Repo:          repo,
		Actuator:      act,
		LivenessEvery: cfg.LivenessEvery,
		Now:           time.Now,
	}

	return loop.Run(ctx, ticker.C)
}

// buildActuator resolves the port (configured or discovered) and opens the
// channel. A missing board is not an error; the monitor runs file-only.
// A failed initial connect is tolerated too; the first Send retries it.
func buildActuator(ctx context.Context, cfg *config.Config) Actuator {
	portName := cfg.Serial.Port
	if portName == "" {
		candidates, err := serial.Discover()
		if err != nil {
			logger.WarnKV(ctx, "Serial port discovery failed", "error", err)

			return nil
		}

		if len(candidates) == 0 {
			logger.Info(ctx, "No actuator detected, monitoring without actuator")

			return nil
		}

		portName = candidates[0]
		logger.Infof(ctx, "Found %d candidate port(s), using %s", len(candidates), portName)
	}

	channel, err := actuator.New(channelConfig(cfg.Serial, portName), func() (serial.Port, error) {
		return serial.Open(serial.Config{
			Name:        portName,
			BaudRate:    cfg.Serial.BaudRate,
			ReadTimeout: cfg.Serial.ReadTimeout,
		})
	})
	if err != nil {
		logger.ErrorKV(ctx, "Actuator channel setup failed", "error", err)

		return nil
	}

	if err := channel.Connect(ctx); err != nil {
		logger.WarnKV(ctx, "Initial actuator connect failed, will retry on first command", "error", err)
	}

	return channel
}

// channelConfig maps serial settings onto the channel's timing windows.
func channelConfig(s config.Serial, portName string) actuator.Config {
	return actuator.Config{
		PortName:     portName,
		SettleDelay:  s.SettleDelay,
		StartupDrain: s.StartupDrain,
		ProbeWindow:  s.ProbeWindow,
		AckWindow:    s.AckWindow,
		GraceWindow:  s.GraceWindow,
		MaxRetries:   s.MaxRetries,
		RetryBackoff: s.RetryBackoff,
	}
}

// recognizerArgs appends the screen region to the recognizer's own args.
func recognizerArgs(args []string, region config.Region) []string {
	out := make([]string, 0, len(args)+2)
	out = append(out, args...)
	out = append(out, "--region", fmt.Sprintf("%d,%d,%d,%d",
		region.Left, region.Top, region.Width, region.Height))

	return out
}
