package mock

import (
	"context"
	"sync"
)

type Config struct {
	Transcripts []string
	Err         error
}

// Engine replays scripted transcripts, cycling when it runs out.
type Engine struct {
	cfg  Config
	mu   sync.Mutex
	next int
	Wavs [][]byte
}

func New(cfg Config) *Engine {
	if len(cfg.Transcripts) == 0 && cfg.Err == nil {
		cfg.Transcripts = []string{"mock transcript"}
	}
	return &Engine{cfg: cfg}
}

func (e *Engine) Name() string { return "mock" }

func (e *Engine) Transcribe(ctx context.Context, wav []byte) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Wavs = append(e.Wavs, wav)
	if e.cfg.Err != nil {
		return "", e.cfg.Err
	}
	text := e.cfg.Transcripts[e.next%len(e.cfg.Transcripts)]
	e.next++
	return text, nil
}
