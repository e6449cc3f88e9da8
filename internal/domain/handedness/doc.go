// Package handedness contains core domain types for the monitor.
//
// It defines Signal (a single classification sample from the recognizer)
// and State (the confirmed handedness at a point in time) with Clone
// helpers to avoid leaking internal references.
package handedness
