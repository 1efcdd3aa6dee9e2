package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusObserver maps pipeline events onto prometheus collectors.
type PrometheusObserver struct {
	framesIn        prometheus.Counter
	segmentFlushes  *prometheus.CounterVec
	segmentDrops    prometheus.Counter
	transcribeMS    prometheus.Histogram
	transcribeErrs  prometheus.Counter
	transcribeEmpty prometheus.Counter
	sentencesOut    prometheus.Counter
	duplicateDrops  prometheus.Counter
	storeWarns      prometheus.Counter
	breakerState    prometheus.Gauge
	events          prometheus.Counter
}

func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &PrometheusObserver{
		framesIn: factory.NewCounter(prometheus.CounterOpts{
			Name: "echoscribe_frames_in_total",
			Help: "Audio frames received from the capture source.",
		}),
		segmentFlushes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "echoscribe_segment_flushes_total",
			Help: "Segments flushed to the transcription queue, by reason.",
		}, []string{"reason"}),
		segmentDrops: factory.NewCounter(prometheus.CounterOpts{
			Name: "echoscribe_segment_drops_total",
			Help: "Segments dropped due to queue overflow.",
		}),
		transcribeMS: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "echoscribe_transcribe_duration_ms",
			Help:    "Transcription round trip latency in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
		transcribeErrs: factory.NewCounter(prometheus.CounterOpts{
			Name: "echoscribe_transcribe_errors_total",
			Help: "Failed transcription attempts.",
		}),
		transcribeEmpty: factory.NewCounter(prometheus.CounterOpts{
			Name: "echoscribe_transcribe_empty_total",
			Help: "Transcriptions discarded as empty or too short.",
		}),
		sentencesOut: factory.NewCounter(prometheus.CounterOpts{
			Name: "echoscribe_sentences_total",
			Help: "Completed sentences emitted to sinks.",
		}),
		duplicateDrops: factory.NewCounter(prometheus.CounterOpts{
			Name: "echoscribe_duplicates_total",
			Help: "Transcriptions dropped as duplicates of prior output.",
		}),
		storeWarns: factory.NewCounter(prometheus.CounterOpts{
			Name: "echoscribe_store_warnings_total",
			Help: "Non fatal storage write failures.",
		}),
		breakerState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "echoscribe_breaker_open",
			Help: "1 when the transcription circuit breaker is open.",
		}),
		events: factory.NewCounter(prometheus.CounterOpts{
			Name: "echoscribe_events_total",
			Help: "All observed pipeline events.",
		}),
	}
}

func (p *PrometheusObserver) RecordEvent(ev MetricsEvent) {
	p.events.Inc()
	switch ev.Name {
	case EventFrameIn:
		p.framesIn.Inc()
	case EventSegmentFlush:
		p.segmentFlushes.WithLabelValues(ev.Tags["reason"]).Inc()
	case EventSegmentDrop:
		p.segmentDrops.Inc()
	case EventTranscribeLatency:
		p.transcribeMS.Observe(ev.Value)
	case EventTranscribeError:
		p.transcribeErrs.Inc()
	case EventTranscribeEmpty:
		p.transcribeEmpty.Inc()
	case EventSentenceEmit:
		p.sentencesOut.Inc()
	case EventDuplicateDrop:
		p.duplicateDrops.Inc()
	case EventStoreWarn:
		p.storeWarns.Inc()
	case EventBreakerOpen:
		p.breakerState.Set(1)
	case EventBreakerClose:
		p.breakerState.Set(0)
	}
}
