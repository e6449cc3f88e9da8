package handedness

import "time"

// State represents the confirmed handedness at a specific point in time.
type State struct {
	// Timestamp is when the value was last confirmed.
	Timestamp time.Time
	// Value is the confirmed handedness.
	Value Signal
}

// Clone returns a copy of the state to avoid leaking internal references.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	cloned := *s

	return &cloned
}
