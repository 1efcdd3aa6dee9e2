package metrics

import (
	"math/rand"
	"sync"
)

// SamplingObserver forwards a fraction of events to the inner observer.
// Rate is clamped to [0, 1]; error and breaker events always pass through.
type SamplingObserver struct {
	inner Observer
	rate  float64
	mu    sync.Mutex
	rng   *rand.Rand
}

func NewSamplingObserver(inner Observer, rate float64, seed int64) *SamplingObserver {
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	return &SamplingObserver{
		inner: inner,
		rate:  rate,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (s *SamplingObserver) RecordEvent(ev MetricsEvent) {
	if alwaysSampled(ev.Name) {
		s.inner.RecordEvent(ev)
		return
	}
	s.mu.Lock()
	keep := s.rng.Float64() < s.rate
	s.mu.Unlock()
	if keep {
		s.inner.RecordEvent(ev)
	}
}

func alwaysSampled(name string) bool {
	switch name {
	case EventTranscribeError, EventBreakerOpen, EventBreakerClose, EventBreakerDenied, EventSegmentDrop:
		return true
	}
	return false
}
