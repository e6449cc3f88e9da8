package handedness

import "strings"

// Signal is a single classification sample produced by the recognizer.
// The short codes double as the wire commands sent to the actuator and
// the value persisted in the state file.
type Signal string

const (
	// Left indicates a left-handed player.
	Left Signal = "LH"
	// Right indicates a right-handed player.
	Right Signal = "RH"
	// Unknown means the recognizer could not produce a reading this tick.
	Unknown Signal = ""
)

// Known reports whether the signal carries an actual classification.
func (s Signal) Known() bool {
	return s == Left || s == Right
}

// Code returns the short textual code of the signal.
func (s Signal) Code() string {
	return string(s)
}

// Parse maps a recognizer output token to a Signal.
// Tokens are matched case-insensitively after trimming whitespace;
// anything unrecognized maps to Unknown, never to an error, so a noisy
// recognizer can only delay a reading, not break the caller.
func Parse(token string) Signal {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "LH":
		return Left
	case "RH":
		return Right
	default:
		return Unknown
	}
}
