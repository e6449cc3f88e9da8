package source

import (
	"context"
	"errors"

	"github.com/simtools/handmon/internal/domain/handedness"
)

// Sample is one scripted reading for the fake source.
type Sample struct {
	Signal handedness.Signal
	Err    error
}

// FakeSource is a test double returning scripted readings. Each call to
// Read consumes the next sample; when samples run out, the last one is
// returned repeatedly.
type FakeSource struct {
	// Samples contains the scripted readings.
	Samples []Sample
	// Closed tracks whether Close was called.
	Closed bool

	index int
}

// NewFakeSource creates a FakeSource with the given samples.
func NewFakeSource(samples ...Sample) *FakeSource {
	return &FakeSource{Samples: samples}
}

// Read returns the next scripted sample.
func (f *FakeSource) Read(_ context.Context) (handedness.Signal, error) {
	if len(f.Samples) == 0 {
		return handedness.Unknown, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample.Signal, sample.Err
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true

	return nil
}
