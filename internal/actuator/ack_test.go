package actuator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestIsAcknowledgment verifies keyword-membership detection, including
// case sensitivity and free-form surrounding text.
func TestIsAcknowledgment(t *testing.T) {
	t.Parallel()

	acks := []string{
		"Received: RH",
		"Moving to LH position",
		"Already at RH",
		"STATUS: IDLE",
		"Reached target",
		"holding position",
	}
	for _, line := range acks {
		require.True(t, isAcknowledgment(line), "line %q", line)
	}

	nonAcks := []string{
		"",
		"ERROR: stall detected",
		"received: rh", // markers are case-sensitive
		"MOVING",
		"status: idle",
	}
	for _, line := range nonAcks {
		require.False(t, isAcknowledgment(line), "line %q", line)
	}
}
