package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/simtools/handmon/internal/debounce"
	"github.com/simtools/handmon/internal/domain/handedness"
	"github.com/simtools/handmon/internal/source"
)

// memoryRepo records saves in memory and can be told to fail.
type memoryRepo struct {
	saves   []handedness.Signal
	saveErr error
}

func (r *memoryRepo) Load(context.Context) (*handedness.State, error) {
	return nil, errors.New("not implemented")
}

func (r *memoryRepo) Save(_ context.Context, s *handedness.State) error {
	if r.saveErr != nil {
		return r.saveErr
	}

	r.saves = append(r.saves, s.Value)

	return nil
}

// fakeActuator records sent commands and liveness checks.
type fakeActuator struct {
	sent    []string
	checks  int
	sendErr error
	closed  bool
}

func (a *fakeActuator) Send(_ context.Context, command string) error {
	if a.sendErr != nil {
		return a.sendErr
	}

	a.sent = append(a.sent, command)

	return nil
}

func (a *fakeActuator) CheckConnection(context.Context) error {
	a.checks++

	return nil
}

func (a *fakeActuator) Close() error {
	a.closed = true

	return nil
}

func newTestLoop(t *testing.T, threshold int, src source.Source, repo *memoryRepo, act Actuator) *Loop {
	t.Helper()

	machine, err := debounce.NewMachine(threshold)
	require.NoError(t, err)

	return &Loop{
		Source:   src,
		Machine:  machine,
		Repo:     repo,
		Actuator: act,
		Now:      time.Now,
	}
}

// TestLoopConfirmsAndActs verifies sink write and actuator send happen on a
// confirmed change, in that order, and only once.
func TestLoopConfirmsAndActs(t *testing.T) {
	t.Parallel()

	src := source.NewFakeSource(
		sample(handedness.Right),
		sample(handedness.Right),
		sample(handedness.Right),
	)
	repo := &memoryRepo{}
	act := &fakeActuator{}

	l := newTestLoop(t, 2, src, repo, act)

	ctx := context.Background()
	l.tick(ctx)
	require.Empty(t, repo.saves)
	require.Empty(t, act.sent)

	l.tick(ctx)
	require.Equal(t, []handedness.Signal{handedness.Right}, repo.saves)
	require.Equal(t, []string{"RH"}, act.sent)

	// Steady state produces no further writes.
	l.tick(ctx)
	require.Len(t, repo.saves, 1)
	require.Len(t, act.sent, 1)
}

// TestLoopSourceErrorTreatedAsUnknown verifies a capture failure neither
// resets nor advances an in-flight confirmation.
func TestLoopSourceErrorTreatedAsUnknown(t *testing.T) {
	t.Parallel()

	src := source.NewFakeSource(
		sample(handedness.Right),
		source.Sample{Err: errors.New("capture failed")},
		sample(handedness.Right),
	)
	repo := &memoryRepo{}

	l := newTestLoop(t, 2, src, repo, nil)

	ctx := context.Background()
	l.tick(ctx)
	l.tick(ctx) // failed capture, no progress either way
	require.Empty(t, repo.saves)

	l.tick(ctx)
	require.Equal(t, []handedness.Signal{handedness.Right}, repo.saves)
}

// TestLoopSinkFailureDoesNotBlockActuator verifies a failed file write
// still lets the command reach the actuator, and the loop keeps running.
func TestLoopSinkFailureDoesNotBlockActuator(t *testing.T) {
	t.Parallel()

	src := source.NewFakeSource(sample(handedness.Left))
	repo := &memoryRepo{saveErr: errors.New("disk full")}
	act := &fakeActuator{}

	l := newTestLoop(t, 1, src, repo, act)

	l.tick(context.Background())
	require.Equal(t, []string{"LH"}, act.sent)
}

// TestLoopActuatorFailureDoesNotAbort verifies a failed send leaves the
// loop alive and the state file written.
func TestLoopActuatorFailureDoesNotAbort(t *testing.T) {
	t.Parallel()

	src := source.NewFakeSource(
		sample(handedness.Left),
		sample(handedness.Right),
	)
	repo := &memoryRepo{}
	act := &fakeActuator{sendErr: errors.New("retries exhausted")}

	l := newTestLoop(t, 1, src, repo, act)

	ctx := context.Background()
	l.tick(ctx)
	require.Equal(t, []handedness.Signal{handedness.Left}, repo.saves)

	// The next tick still observes and confirms.
	l.tick(ctx)
	require.Equal(t, []handedness.Signal{handedness.Left, handedness.Right}, repo.saves)
}

// TestLoopLivenessCheck verifies the periodic connection check fires on
// schedule, outside the send path.
func TestLoopLivenessCheck(t *testing.T) {
	t.Parallel()

	src := source.NewFakeSource(sample(handedness.Unknown))
	act := &fakeActuator{}

	l := newTestLoop(t, 2, src, &memoryRepo{}, act)
	l.LivenessEvery = 3

	ctx := context.Background()
	for i := 0; i < 7; i++ {
		l.tick(ctx)
	}

	require.Equal(t, 2, act.checks)
	require.Empty(t, act.sent)
}

// TestLoopRunStopsOnCancel verifies cancellation shuts the loop down with
// the actuator and source closed.
func TestLoopRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	src := source.NewFakeSource(sample(handedness.Right))
	act := &fakeActuator{}

	l := newTestLoop(t, 2, src, &memoryRepo{}, act)

	tick := make(chan time.Time)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- l.Run(ctx, tick)
	}()

	// A couple of ticks, then stop.
	tick <- time.Now()
	tick <- time.Now()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop on cancellation")
	}

	require.True(t, act.closed)
	require.True(t, src.Closed)
}

// sample wraps a signal into a scripted fake-source reading.
func sample(sig handedness.Signal) source.Sample {
	return source.Sample{Signal: sig}
}
