package asr

import (
	"context"
	"errors"
	"testing"

	"github.com/harunnryd/echoscribe/pkg/frames"
	"github.com/harunnryd/echoscribe/pkg/metrics"
)

type stubEngine struct {
	text string
	err  error
	wavs [][]byte
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) Transcribe(ctx context.Context, wav []byte) (string, error) {
	s.wavs = append(s.wavs, wav)
	return s.text, s.err
}

func seg(seconds float64) *frames.SegmentFrame {
	s := frames.NewSegmentFrame("sess", 1, make([]float32, int(seconds*16000)), 16000, frames.FlushNaturalPause, nil)
	return &s
}

func TestAdapterReturnsTranscript(t *testing.T) {
	eng := &stubEngine{text: "  hello world  "}
	a := NewAdapter(eng, nil, metrics.NoopObserver{})

	text, ok := a.Transcribe(context.Background(), seg(1))
	if !ok || text != "hello world" {
		t.Fatalf("expected trimmed transcript, got %q ok=%v", text, ok)
	}
	if len(eng.wavs) != 1 || len(eng.wavs[0]) != 44+16000*2 {
		t.Fatalf("engine did not receive a full WAV payload")
	}
}

func TestAdapterSwallowsEngineErrors(t *testing.T) {
	obs := metrics.NewMemoryObserver()
	a := NewAdapter(&stubEngine{err: errors.New("boom")}, nil, obs)

	if _, ok := a.Transcribe(context.Background(), seg(1)); ok {
		t.Fatalf("engine errors must not propagate a transcript")
	}
	if len(obs.Named(metrics.EventTranscribeError)) != 1 {
		t.Fatalf("expected a transcribe error event")
	}
}

func TestAdapterFiltersShortOutput(t *testing.T) {
	obs := metrics.NewMemoryObserver()
	a := NewAdapter(&stubEngine{text: " uh "}, nil, obs)

	if _, ok := a.Transcribe(context.Background(), seg(1)); ok {
		t.Fatalf("three characters or fewer must be discarded")
	}
	if len(obs.Named(metrics.EventTranscribeEmpty)) != 1 {
		t.Fatalf("expected an empty transcript event")
	}
}

func TestAdapterRejectsEmptySegment(t *testing.T) {
	a := NewAdapter(&stubEngine{text: "hello"}, nil, nil)
	if _, ok := a.Transcribe(context.Background(), seg(0)); ok {
		t.Fatalf("empty segments cannot produce transcripts")
	}
}
