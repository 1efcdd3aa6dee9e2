package transcriber

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/harunnryd/echoscribe/pkg/asr"
	"github.com/harunnryd/echoscribe/pkg/metrics"
	"github.com/harunnryd/echoscribe/pkg/providers/mock"
	"github.com/harunnryd/echoscribe/pkg/segmenter"
	"github.com/harunnryd/echoscribe/pkg/sink"
	"github.com/harunnryd/echoscribe/pkg/vad"
)

type alwaysSpeech struct{}

func (alwaysSpeech) Classify(pcm []int16, sampleRate int) (bool, error) { return true, nil }

type neverSpeech struct{}

func (neverSpeech) Classify(pcm []int16, sampleRate int) (bool, error) { return false, nil }

type captureSink struct {
	sentences []sink.Sentence
}

func (c *captureSink) Name() string { return "capture" }

func (c *captureSink) Write(ctx context.Context, s sink.Sentence) error {
	c.sentences = append(c.sentences, s)
	return nil
}

func newTestOrchestrator(det vad.Detector, eng *mock.Engine, out sink.Sink, obs metrics.Observer) *Orchestrator {
	return NewOrchestrator(OrchestratorConfig{
		Session:  NewSession("unit test"),
		Detector: det,
		Segments: segmenter.Config{SampleRate: 16000},
		Adapter:  asr.NewAdapter(eng, nil, obs),
		Sink:     out,
		Observer: obs,
	})
}

func TestContinuousSpeechCutsAtMaxDuration(t *testing.T) {
	obs := metrics.NewMemoryObserver()
	eng := mock.New(mock.Config{Transcripts: []string{"This sentence came back from the engine."}})
	out := &captureSink{}
	o := newTestOrchestrator(alwaysSpeech{}, eng, out, obs)

	// 21 seconds of uninterrupted speech in 30ms chunks.
	chunk := make([]float32, 480)
	for fed := 0; fed < 21*16000; fed += len(chunk) {
		o.OnSamples(chunk)
	}

	flushes := obs.Named(metrics.EventSegmentFlush)
	if len(flushes) != 1 {
		t.Fatalf("expected exactly one flush, got %d", len(flushes))
	}
	if flushes[0].Tags["reason"] != "max duration" {
		t.Fatalf("expected max duration flush, got %q", flushes[0].Tags["reason"])
	}
	if flushes[0].Value != 20.01 {
		// The cut happens on the chunk that crosses 20s, so one extra
		// 30ms chunk is included.
		t.Fatalf("expected 20.01s segment, got %v", flushes[0].Value)
	}

	// Speech state survives a max duration cut.
	if _, ok := o.gate.SpeechStart(); !ok {
		t.Fatalf("max duration flush must not reset speech state")
	}
}

func TestDrainTranscribesQueuedSegments(t *testing.T) {
	eng := mock.New(mock.Config{Transcripts: []string{"The pipeline delivered this sentence."}})
	out := &captureSink{}
	o := newTestOrchestrator(alwaysSpeech{}, eng, out, metrics.NewMemoryObserver())

	chunk := make([]float32, 480)
	for fed := 0; fed < 21*16000; fed += len(chunk) {
		o.OnSamples(chunk)
	}

	o.Run(context.Background())
	if err := o.Drain(); err != nil {
		t.Fatalf("drain: %v", err)
	}

	if len(eng.Wavs) == 0 {
		t.Fatalf("drain must transcribe queued segments")
	}
	if len(out.sentences) == 0 {
		t.Fatalf("expected sentences delivered to the sink")
	}
	got := out.sentences[0]
	if got.Text != "The pipeline delivered this sentence." {
		t.Fatalf("unexpected sentence %q", got.Text)
	}
	if got.Recording != "unit test" {
		t.Fatalf("recording name not carried through: %q", got.Recording)
	}
	if got.SessionID == "" {
		t.Fatalf("session id missing on delivered sentence")
	}
}

func TestSilenceNeverFlushesBeforeThreshold(t *testing.T) {
	obs := metrics.NewMemoryObserver()
	eng := mock.New(mock.Config{})
	o := newTestOrchestrator(neverSpeech{}, eng, &captureSink{}, obs)

	// Half a second of silence: under both the silence threshold and
	// the drain floor.
	chunk := make([]float32, 480)
	for fed := 0; fed < 8000; fed += len(chunk) {
		o.OnSamples(chunk)
	}
	if len(obs.Named(metrics.EventSegmentFlush)) != 0 {
		t.Fatalf("silence below threshold must not flush")
	}
}

func TestFragmentsAcrossSegmentsAssemble(t *testing.T) {
	eng := mock.New(mock.Config{Transcripts: []string{
		"Hello there everyone, this is",
		"a longer test sentence.",
	}})
	out := &captureSink{}
	o := newTestOrchestrator(alwaysSpeech{}, eng, out, metrics.NewMemoryObserver())

	chunk := make([]float32, 480)
	for fed := 0; fed < 42*16000; fed += len(chunk) {
		o.OnSamples(chunk)
	}

	o.Run(context.Background())
	if err := o.Drain(); err != nil {
		t.Fatalf("drain: %v", err)
	}

	if len(out.sentences) != 1 {
		t.Fatalf("expected one recombined sentence, got %d", len(out.sentences))
	}
	want := "Hello there everyone, this is a longer test sentence."
	if out.sentences[0].Text != want {
		t.Fatalf("expected %q, got %q", want, out.sentences[0].Text)
	}
}

func TestSessionOffsetsIncrease(t *testing.T) {
	s := NewSession("offsets")
	a := s.Offset(s.StartedAt.Add(2 * time.Second))
	b := s.Offset(s.StartedAt.Add(3 * time.Second))
	if a != 2 || b != 3 {
		t.Fatalf("offsets should track elapsed seconds, got %f and %f", a, b)
	}
}

func TestBuildEngineMock(t *testing.T) {
	eng, err := BuildEngine(EngineConfig{
		Provider: "mock",
		Settings: map[string]any{"transcripts": []any{"scripted line"}},
	}, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	text, err := eng.Transcribe(context.Background(), []byte("wav"))
	if err != nil || text != "scripted line" {
		t.Fatalf("engine did not honor settings: %q %v", text, err)
	}
}

func TestBuildEngineUnknownProvider(t *testing.T) {
	if _, err := BuildEngine(EngineConfig{Provider: "nope"}, nil); err == nil {
		t.Fatalf("unknown provider must fail")
	}
}

func TestBuildEngineDeepgramRequiresKey(t *testing.T) {
	if _, err := BuildEngine(EngineConfig{Provider: "deepgram"}, nil); err == nil {
		t.Fatalf("deepgram without an api key must fail")
	}
}

func TestBuildEngineWhisperdDefaults(t *testing.T) {
	eng, err := BuildEngine(EngineConfig{Provider: "whisperd"}, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(eng.Name(), "whisperd") {
		t.Fatalf("unexpected engine %q", eng.Name())
	}
}
