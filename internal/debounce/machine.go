// Package debounce turns the noisy per-tick handedness readings into
// confidently confirmed transitions. It is pure business logic with no
// I/O; the only state is the confirmed value and the pending candidate.
package debounce

import (
	"errors"

	"github.com/simtools/handmon/internal/domain/handedness"
)

// ErrInvalidThreshold is returned when the confirmation threshold is below 1.
var ErrInvalidThreshold = errors.New("confirmation threshold must be at least 1")

// StateChange is emitted when a new handedness reaches the confirmation
// threshold. At most one change is emitted per observation.
type StateChange struct {
	// NewValue is the freshly confirmed handedness.
	NewValue handedness.Signal
}

// Machine tracks the confirmed handedness and a pending candidate
// accumulating confirmations. Observe must be called once per poll tick,
// in tick order.
type Machine struct {
	// threshold is the number of consecutive matching readings required.
	threshold int
	// confirmed is the last value that reached the threshold.
	// Unknown until the first confirmation.
	confirmed handedness.Signal
	// pending is the candidate currently accumulating confirmations.
	pending handedness.Signal
	// pendingCount counts consecutive observations of pending.
	pendingCount int
}

// NewMachine creates a debounce machine with the given confirmation threshold.
// A threshold of 1 accepts any differing reading immediately.
func NewMachine(threshold int) (*Machine, error) {
	if threshold < 1 {
		return nil, ErrInvalidThreshold
	}

	return &Machine{threshold: threshold}, nil
}

// Observe consumes one reading and returns a StateChange when the reading
// completes a confirmation, nil otherwise.
//
// An Unknown reading neither advances nor resets the pending candidate:
// a missed read is absence of evidence, not evidence of change. A reading
// equal to the confirmed value cancels any in-flight challenge.
func (m *Machine) Observe(signal handedness.Signal) *StateChange {
	if !signal.Known() {
		return nil
	}

	if signal == m.confirmed {
		m.clearPending()
		return nil
	}

	if signal != m.pending {
		// A differing reading starts a fresh candidate, replacing any other.
		m.pending = signal
		m.pendingCount = 1
	} else {
		m.pendingCount++
	}

	if m.pendingCount < m.threshold {
		return nil
	}

	m.confirmed = signal
	m.clearPending()

	return &StateChange{NewValue: signal}
}

// Confirmed returns the last confirmed handedness, Unknown before the first
// confirmation.
func (m *Machine) Confirmed() handedness.Signal {
	return m.confirmed
}

// Pending returns the candidate under confirmation and its current count.
func (m *Machine) Pending() (handedness.Signal, int) {
	return m.pending, m.pendingCount
}

func (m *Machine) clearPending() {
	m.pending = handedness.Unknown
	m.pendingCount = 0
}
