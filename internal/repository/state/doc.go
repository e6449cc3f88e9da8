// Package state persists the confirmed handedness to a plain text file
// consumed by other processes. The file holds exactly two lines: the
// short handedness code and an "Updated: " timestamp.
package state
