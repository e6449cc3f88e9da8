package debounce

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simtools/handmon/internal/domain/handedness"
)

// observe feeds a sequence of readings and collects emitted changes.
func observe(m *Machine, signals ...handedness.Signal) []handedness.Signal {
	var changes []handedness.Signal
	for _, s := range signals {
		if c := m.Observe(s); c != nil {
			changes = append(changes, c.NewValue)
		}
	}

	return changes
}

// TestNewMachineRejectsBadThreshold verifies construction-time validation.
func TestNewMachineRejectsBadThreshold(t *testing.T) {
	t.Parallel()

	for _, threshold := range []int{0, -1} {
		m, err := NewMachine(threshold)
		require.ErrorIs(t, err, ErrInvalidThreshold)
		require.Nil(t, m)
	}

	m, err := NewMachine(1)
	require.NoError(t, err)
	require.NotNil(t, m)
}

// TestConfirmAfterThreshold verifies that exactly T consecutive identical
// differing readings confirm a change, emitting a single StateChange.
func TestConfirmAfterThreshold(t *testing.T) {
	t.Parallel()

	m, err := NewMachine(2)
	require.NoError(t, err)

	require.Nil(t, m.Observe(handedness.Right))
	change := m.Observe(handedness.Right)
	require.NotNil(t, change)
	require.Equal(t, handedness.Right, change.NewValue)
	require.Equal(t, handedness.Right, m.Confirmed())

	// Pending fields are cleared after confirmation.
	pending, count := m.Pending()
	require.Equal(t, handedness.Unknown, pending)
	require.Zero(t, count)
}

// TestInterveningValueRestartsCount verifies that a different reading in the
// middle restarts the candidate count from scratch.
func TestInterveningValueRestartsCount(t *testing.T) {
	t.Parallel()

	m, err := NewMachine(2)
	require.NoError(t, err)

	require.Nil(t, m.Observe(handedness.Right))
	require.Nil(t, m.Observe(handedness.Left)) // replaces the Right candidate
	require.Nil(t, m.Observe(handedness.Right))

	change := m.Observe(handedness.Right)
	require.NotNil(t, change)
	require.Equal(t, handedness.Right, change.NewValue)
}

// TestUnknownNeitherAdvancesNorResets verifies the missed-read contract:
// T-1 matches, an Unknown, then one more match completes the confirmation.
func TestUnknownNeitherAdvancesNorResets(t *testing.T) {
	t.Parallel()

	m, err := NewMachine(3)
	require.NoError(t, err)

	require.Nil(t, m.Observe(handedness.Left))
	require.Nil(t, m.Observe(handedness.Left))
	require.Nil(t, m.Observe(handedness.Unknown)) // does not reset progress

	pending, count := m.Pending()
	require.Equal(t, handedness.Left, pending)
	require.Equal(t, 2, count) // and does not advance it either

	change := m.Observe(handedness.Left)
	require.NotNil(t, change)
	require.Equal(t, handedness.Left, change.NewValue)
}

// TestUnknownNeverConfirms verifies a stream of Unknowns emits nothing.
func TestUnknownNeverConfirms(t *testing.T) {
	t.Parallel()

	m, err := NewMachine(1)
	require.NoError(t, err)

	changes := observe(m, handedness.Unknown, handedness.Unknown, handedness.Unknown)
	require.Empty(t, changes)
	require.Equal(t, handedness.Unknown, m.Confirmed())
}

// TestConfirmedValueClearsPending verifies a return to the confirmed value
// cancels any in-flight challenge regardless of its count.
func TestConfirmedValueClearsPending(t *testing.T) {
	t.Parallel()

	m, err := NewMachine(3)
	require.NoError(t, err)

	changes := observe(m, handedness.Right, handedness.Right, handedness.Right)
	require.Equal(t, []handedness.Signal{handedness.Right}, changes)

	// Two Left readings challenge the confirmed Right.
	require.Nil(t, m.Observe(handedness.Left))
	require.Nil(t, m.Observe(handedness.Left))

	// A Right reading cancels the challenge.
	require.Nil(t, m.Observe(handedness.Right))
	pending, count := m.Pending()
	require.Equal(t, handedness.Unknown, pending)
	require.Zero(t, count)

	// The challenge has to start over.
	require.Nil(t, m.Observe(handedness.Left))
	require.Nil(t, m.Observe(handedness.Left))
	change := m.Observe(handedness.Left)
	require.NotNil(t, change)
	require.Equal(t, handedness.Left, change.NewValue)
}

// TestNeverConfirmsSameValueTwice verifies that no emitted change ever
// repeats the previously confirmed value, for arbitrary input sequences.
func TestNeverConfirmsSameValueTwice(t *testing.T) {
	t.Parallel()

	m, err := NewMachine(2)
	require.NoError(t, err)

	sequence := []handedness.Signal{
		handedness.Right, handedness.Right, // confirm Right
		handedness.Right, handedness.Right, // steady state
		handedness.Unknown,
		handedness.Left, handedness.Right, // aborted challenge
		handedness.Left, handedness.Left, // confirm Left
		handedness.Left,
	}

	last := handedness.Unknown
	for _, s := range sequence {
		if c := m.Observe(s); c != nil {
			require.NotEqual(t, last, c.NewValue)
			last = c.NewValue
		}
	}

	require.Equal(t, handedness.Left, m.Confirmed())
}

// TestScenarioRightRight is the threshold=2 happy path from initial state.
func TestScenarioRightRight(t *testing.T) {
	t.Parallel()

	m, err := NewMachine(2)
	require.NoError(t, err)

	changes := observe(m, handedness.Right, handedness.Right)
	require.Equal(t, []handedness.Signal{handedness.Right}, changes)
}

// TestScenarioInterruptedConfirmation is the threshold=2 sequence
// [Right, Left, Right, Right]: confirmation lands only on the 4th tick.
func TestScenarioInterruptedConfirmation(t *testing.T) {
	t.Parallel()

	m, err := NewMachine(2)
	require.NoError(t, err)

	require.Nil(t, m.Observe(handedness.Right))
	require.Nil(t, m.Observe(handedness.Left))
	require.Nil(t, m.Observe(handedness.Right))

	change := m.Observe(handedness.Right)
	require.NotNil(t, change)
	require.Equal(t, handedness.Right, change.NewValue)
}

// TestScenarioReturnToConfirmed is the confirmed=Right sequence [Left, Right]:
// pending cleared on the 2nd tick, no change emitted.
func TestScenarioReturnToConfirmed(t *testing.T) {
	t.Parallel()

	m, err := NewMachine(2)
	require.NoError(t, err)

	changes := observe(m, handedness.Right, handedness.Right)
	require.Len(t, changes, 1)

	require.Nil(t, m.Observe(handedness.Left))
	require.Nil(t, m.Observe(handedness.Right))

	pending, count := m.Pending()
	require.Equal(t, handedness.Unknown, pending)
	require.Zero(t, count)
}

// TestThresholdOneAcceptsImmediately covers the degenerate threshold.
func TestThresholdOneAcceptsImmediately(t *testing.T) {
	t.Parallel()

	m, err := NewMachine(1)
	require.NoError(t, err)

	change := m.Observe(handedness.Left)
	require.NotNil(t, change)
	require.Equal(t, handedness.Left, change.NewValue)

	// Same value again is a no-op, not a re-confirmation.
	require.Nil(t, m.Observe(handedness.Left))

	change = m.Observe(handedness.Right)
	require.NotNil(t, change)
	require.Equal(t, handedness.Right, change.NewValue)
}
