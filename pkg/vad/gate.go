package vad

import (
	"sync"
	"time"
)

// subFrameMS is the window length the WebRTC model accepts.
const subFrameMS = 30

// Gate tracks speech activity across an audio stream. Each incoming
// chunk is walked in 30ms sub-frames; the chunk counts as speech when
// any sub-frame does. A trailing remainder shorter than a sub-frame is
// not classified.
type Gate struct {
	detector Detector

	mu          sync.Mutex
	speechOn    bool
	speechStart time.Time
	lastSpeech  time.Time
	checked     int64
	speechHits  int64
}

func NewGate(detector Detector) *Gate {
	return &Gate{detector: detector}
}

// Observe classifies a chunk and updates speech state. now is the
// arrival time of the chunk.
func (g *Gate) Observe(pcm []int16, sampleRate int, now time.Time) bool {
	sub := sampleRate * subFrameMS / 1000
	speech := false
	for off := 0; off+sub <= len(pcm); off += sub {
		active, err := g.detector.Classify(pcm[off:off+sub], sampleRate)
		if err != nil {
			continue
		}
		if active {
			speech = true
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.checked++
	if speech {
		g.speechHits++
		if !g.speechOn {
			g.speechOn = true
			g.speechStart = now
		}
		g.lastSpeech = now
	}
	return speech
}

// SpeechActive reports whether speech has started and not been reset.
func (g *Gate) SpeechActive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.speechOn
}

// SinceLastSpeech returns the time elapsed since the last speech chunk.
// ok is false when no speech has ever been observed.
func (g *Gate) SinceLastSpeech(now time.Time) (time.Duration, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastSpeech.IsZero() {
		return 0, false
	}
	return now.Sub(g.lastSpeech), true
}

// SpeechStart returns when the current speech run began.
func (g *Gate) SpeechStart() (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.speechOn {
		return time.Time{}, false
	}
	return g.speechStart, true
}

// Reset ends the current speech run after a flush. The last speech
// time is kept so silence after the flush is still measured from the
// moment speech actually stopped.
func (g *Gate) Reset() {
	g.mu.Lock()
	g.speechOn = false
	g.speechStart = time.Time{}
	g.mu.Unlock()
}

// Stats reports how many chunks were classified and how many held speech.
func (g *Gate) Stats() (checked, speech int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.checked, g.speechHits
}
