package metrics

import "time"

// Well-known event names recorded by the pipeline.
const (
	EventFrameIn           = "frame_in"
	EventSegmentFlush      = "segment_flush"
	EventSegmentDrop       = "segment_drop"
	EventTranscribeLatency = "transcribe_latency_ms"
	EventTranscribeError   = "transcribe_error"
	EventTranscribeEmpty   = "transcribe_empty"
	EventSentenceEmit      = "sentence_emit"
	EventDuplicateDrop     = "duplicate_drop"
	EventStoreWarn         = "store_warn"
	EventRateLimit         = "rate_limit"
	EventBreakerOpen       = "breaker_open"
	EventBreakerClose      = "breaker_close"
	EventBreakerDenied     = "breaker_denied"
)

type MetricsEvent struct {
	Name   string
	Time   time.Time
	Value  float64
	Tags   map[string]string
	Fields map[string]any
}

type Observer interface {
	RecordEvent(ev MetricsEvent)
}

type Flusher interface {
	Flush() error
}

type NoopObserver struct{}

func (NoopObserver) RecordEvent(MetricsEvent) {}
