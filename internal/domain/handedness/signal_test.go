package handedness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestParse verifies token mapping including noise and casing.
func TestParse(t *testing.T) {
	t.Parallel()

	cases := map[string]Signal{
		"LH":      Left,
		"RH":      Right,
		" rh \n":  Right,
		"lh":      Left,
		"WH":      Unknown,
		"":        Unknown,
		"R H":     Unknown,
		"UNKNOWN": Unknown,
	}

	for token, want := range cases {
		require.Equal(t, want, Parse(token), "token %q", token)
	}
}

// TestSignalKnown verifies that only actual classifications are known.
func TestSignalKnown(t *testing.T) {
	t.Parallel()

	require.True(t, Left.Known())
	require.True(t, Right.Known())
	require.False(t, Unknown.Known())
}

// TestStateClone verifies that Clone copies fields and handles nil safely.
func TestStateClone(t *testing.T) {
	t.Parallel()

	require.Nil(t, (*State)(nil).Clone())

	s := &State{
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Value:     Right,
	}

	c := s.Clone()
	require.Equal(t, s, c)
	require.NotSame(t, s, c)
}
