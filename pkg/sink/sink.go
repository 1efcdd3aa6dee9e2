package sink

import (
	"context"
	"time"
)

// Sentence is a completed sentence ready for delivery.
type Sentence struct {
	SessionID string
	Recording string
	Text      string
	At        time.Time
	Offset    float64
}

// Sink receives completed sentences. Implementations must tolerate
// failure without stopping the pipeline; Write errors are logged by the
// caller, never fatal.
type Sink interface {
	Name() string
	Write(ctx context.Context, s Sentence) error
}

// Multi fans a sentence out to every sink, collecting nothing: each
// sink's failure is independent.
type Multi struct {
	sinks []Sink
	onErr func(name string, err error)
}

func NewMulti(onErr func(name string, err error), sinks ...Sink) *Multi {
	if onErr == nil {
		onErr = func(string, error) {}
	}
	return &Multi{sinks: sinks, onErr: onErr}
}

func (m *Multi) Name() string { return "multi" }

func (m *Multi) Write(ctx context.Context, s Sentence) error {
	for _, snk := range m.sinks {
		if err := snk.Write(ctx, s); err != nil {
			m.onErr(snk.Name(), err)
		}
	}
	return nil
}

var _ Sink = (*Multi)(nil)
