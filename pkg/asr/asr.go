package asr

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/harunnryd/echoscribe/pkg/audio"
	"github.com/harunnryd/echoscribe/pkg/frames"
	"github.com/harunnryd/echoscribe/pkg/metrics"
)

// minTranscriptChars filters out hallucinated fragments the model emits
// for noise-only segments.
const minTranscriptChars = 3

// Engine performs speech to text on a complete WAV payload.
type Engine interface {
	Name() string
	Transcribe(ctx context.Context, wav []byte) (string, error)
}

// Adapter bridges speech segments to an Engine. Failures and unusable
// output are absorbed here so one bad segment never stalls the stream.
type Adapter struct {
	engine   Engine
	logger   *slog.Logger
	observer metrics.Observer
}

func NewAdapter(engine Engine, logger *slog.Logger, observer metrics.Observer) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = metrics.NoopObserver{}
	}
	return &Adapter{engine: engine, logger: logger, observer: observer}
}

// Transcribe converts a segment to 16-bit WAV and runs the engine.
// It returns ok=false for failures and transcripts too short to use.
func (a *Adapter) Transcribe(ctx context.Context, seg *frames.SegmentFrame) (string, bool) {
	pcm := audio.FloatToPCM16(seg.RawSamples())
	wav, err := audio.EncodeWAV(pcm, seg.Rate())
	if err != nil {
		a.logger.Warn("segment encode failed", "error", err, "samples", len(pcm))
		a.observer.RecordEvent(metrics.MetricsEvent{
			Name: metrics.EventTranscribeError,
			Time: time.Now(),
			Tags: map[string]string{"engine": a.engine.Name(), "stage": "encode"},
		})
		return "", false
	}

	start := time.Now()
	text, err := a.engine.Transcribe(ctx, wav)
	elapsed := time.Since(start)
	if err != nil {
		a.logger.Warn("transcription failed",
			"engine", a.engine.Name(),
			"error", err,
			"duration", seg.Duration(),
		)
		a.observer.RecordEvent(metrics.MetricsEvent{
			Name: metrics.EventTranscribeError,
			Time: time.Now(),
			Tags: map[string]string{"engine": a.engine.Name(), "stage": "transcribe"},
		})
		return "", false
	}
	a.observer.RecordEvent(metrics.MetricsEvent{
		Name:  metrics.EventTranscribeLatency,
		Time:  time.Now(),
		Value: float64(elapsed.Milliseconds()),
		Tags:  map[string]string{"engine": a.engine.Name()},
	})

	text = strings.TrimSpace(text)
	if len(text) <= minTranscriptChars {
		a.observer.RecordEvent(metrics.MetricsEvent{
			Name: metrics.EventTranscribeEmpty,
			Time: time.Now(),
			Tags: map[string]string{"engine": a.engine.Name()},
		})
		return "", false
	}
	return text, true
}
