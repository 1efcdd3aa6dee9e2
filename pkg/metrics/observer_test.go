package metrics

import (
	"testing"
	"time"
)

func TestMemoryObserverNamed(t *testing.T) {
	m := NewMemoryObserver()
	m.RecordEvent(MetricsEvent{Name: EventSentenceEmit, Time: time.Now()})
	m.RecordEvent(MetricsEvent{Name: EventSegmentDrop, Time: time.Now()})
	m.RecordEvent(MetricsEvent{Name: EventSentenceEmit, Time: time.Now()})

	got := m.Named(EventSentenceEmit)
	if len(got) != 2 {
		t.Fatalf("expected 2 sentence events, got %d", len(got))
	}
}

func TestAsyncObserverDelivers(t *testing.T) {
	inner := NewMemoryObserver()
	a := NewAsyncObserver(inner, 16)
	for i := 0; i < 5; i++ {
		a.RecordEvent(MetricsEvent{Name: EventFrameIn})
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(inner.Named(EventFrameIn)) == 5 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := len(inner.Named(EventFrameIn)); got != 5 {
		t.Fatalf("expected 5 events, got %d", got)
	}
	a.Close()
	a.RecordEvent(MetricsEvent{Name: EventFrameIn})
}

func TestSamplingObserverAlwaysKeepsErrors(t *testing.T) {
	inner := NewMemoryObserver()
	s := NewSamplingObserver(inner, 0, 1)
	s.RecordEvent(MetricsEvent{Name: EventFrameIn})
	s.RecordEvent(MetricsEvent{Name: EventTranscribeError})
	if len(inner.Named(EventFrameIn)) != 0 {
		t.Fatalf("rate 0 should drop ordinary events")
	}
	if len(inner.Named(EventTranscribeError)) != 1 {
		t.Fatalf("errors must bypass sampling")
	}
}
