package actuator

import "strings"

// probeCommand is the no-op status request used to verify liveness.
const probeCommand = "STATUS"

// ackMarkers are the response fragments the firmware includes when it
// understood a command. The response text varies by command and firmware
// build, so detection is keyword membership, not exact framing.
var ackMarkers = []string{
	"Received:",
	"Moving",
	"Already at",
	"STATUS:",
	"Reached",
	"position",
}

// isAcknowledgment reports whether a response line acknowledges a command.
// Matching is a case-sensitive substring check; any one marker suffices.
func isAcknowledgment(line string) bool {
	for _, marker := range ackMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}

	return false
}
