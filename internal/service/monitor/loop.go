package monitor

import (
	"context"
	"time"

	"github.com/simtools/handmon/internal/debounce"
	"github.com/simtools/handmon/internal/domain/handedness"
	"github.com/simtools/handmon/internal/logger"
	"github.com/simtools/handmon/internal/repository/state"
	"github.com/simtools/handmon/internal/source"
)

// activityEvery is the number of scans between activity log lines.
const activityEvery = 30

// Actuator is what the loop needs from the actuator channel.
type Actuator interface {
	Send(ctx context.Context, command string) error
	CheckConnection(ctx context.Context) error
	Close() error
}

// Loop sequences one poll tick after another. It owns no goroutines;
// everything happens on the caller's goroutine, so observations are in
// strict tick order and a state change is fully acted upon before the
// next capture begins.
type Loop struct {
	// Source produces one reading per tick.
	Source source.Source
	// Machine debounces readings into confirmed changes.
	Machine *debounce.Machine
	// Repo persists the confirmed state.
	Repo state.Repository
	// Actuator relays confirmed changes to the board; nil when the monitor
	// runs without one.
	Actuator Actuator
	// LivenessEvery is the number of ticks between actuator liveness
	// checks. Zero disables the check.
	LivenessEvery int
	// Now supplies timestamps for persisted states.
	Now func() time.Time

	scans int
}

// Run processes ticks until the context is canceled. Any in-flight tick
// completes before the loop winds down, and shutdown leaves the actuator
// and source closed.
func (l *Loop) Run(ctx context.Context, tick <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			l.shutdown(ctx)

			return nil
		case <-tick:
			l.tick(ctx)
		}
	}
}

// tick performs a single capture-observe-act cycle.
func (l *Loop) tick(ctx context.Context) {
	l.scans++

	sig, err := l.Source.Read(ctx)
	if err != nil {
		// A failed capture is a missed read, not a state change.
		logger.DebugKV(ctx, "Recognizer read failed", "error", err)

		sig = handedness.Unknown
	}

	if change := l.Machine.Observe(sig); change != nil {
		l.apply(ctx, change.NewValue)
	}

	if l.scans%activityEvery == 0 {
		logger.Debugf(ctx, "Still scanning (%d scans, confirmed=%q)", l.scans, l.Machine.Confirmed().Code())
	}

	// Surface a silently dropped link before the next real command is due.
	if l.Actuator != nil && l.LivenessEvery > 0 && l.scans%l.LivenessEvery == 0 {
		if err := l.Actuator.CheckConnection(ctx); err != nil {
			logger.WarnKV(ctx, "Actuator liveness check failed", "error", err)
		}
	}
}

// apply persists and relays a confirmed change. Neither failure aborts the
// loop; the next confirmed change retries both.
func (l *Loop) apply(ctx context.Context, value handedness.Signal) {
	logger.Infof(ctx, "Handedness changed to %s", value.Code())

	if err := l.Repo.Save(ctx, &handedness.State{
		Timestamp: l.Now(),
		Value:     value,
	}); err != nil {
		logger.ErrorKV(ctx, "State file write failed", "error", err)
	} else {
		logger.Infof(ctx, "State file updated: %s", value.Code())
	}

	if l.Actuator == nil {
		return
	}

	if err := l.Actuator.Send(ctx, value.Code()); err != nil {
		logger.ErrorKV(ctx, "Actuator send failed", "command", value.Code(), "error", err)
	}
}

// shutdown closes the actuator and source and logs a run summary.
func (l *Loop) shutdown(ctx context.Context) {
	logger.Infof(ctx, "Stopping after %d scans", l.scans)

	if confirmed := l.Machine.Confirmed(); confirmed.Known() {
		logger.Infof(ctx, "Last confirmed handedness: %s", confirmed.Code())
	}

	if l.Actuator != nil {
		if err := l.Actuator.Close(); err != nil {
			logger.WarnKV(ctx, "Actuator close failed", "error", err)
		}
	}

	if err := l.Source.Close(); err != nil {
		logger.WarnKV(ctx, "Source close failed", "error", err)
	}
}
