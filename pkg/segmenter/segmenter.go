package segmenter

import (
	"sync"
	"time"

	"github.com/harunnryd/echoscribe/pkg/frames"
)

type Config struct {
	SampleRate       int
	MaxSegment       time.Duration
	MinSegment       time.Duration
	PauseThreshold   time.Duration
	SilenceThreshold time.Duration
	SilenceFloor     time.Duration
}

func (c *Config) applyDefaults() {
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.MaxSegment <= 0 {
		c.MaxSegment = 20 * time.Second
	}
	if c.MinSegment <= 0 {
		c.MinSegment = 5 * time.Second
	}
	if c.PauseThreshold <= 0 {
		c.PauseThreshold = 800 * time.Millisecond
	}
	if c.SilenceThreshold <= 0 {
		c.SilenceThreshold = 1500 * time.Millisecond
	}
	if c.SilenceFloor <= 0 {
		c.SilenceFloor = time.Second
	}
}

// Accumulator collects raw capture audio into the running segment and
// decides when the segment should be cut for transcription.
//
// While speech is active a segment is cut on a natural pause once it is
// long enough, or unconditionally at the maximum length. Outside active
// speech, extended silence drains whatever audio has built up, provided
// it clears a small floor so transcription is not fed slivers.
type Accumulator struct {
	cfg Config

	mu      sync.Mutex
	samples []float32
	started time.Time
}

func New(cfg Config) *Accumulator {
	cfg.applyDefaults()
	return &Accumulator{cfg: cfg}
}

// Append adds captured samples to the running segment. now marks the
// arrival of the first chunk so silence can be measured before any
// speech has been heard.
func (a *Accumulator) Append(samples []float32, now time.Time) {
	a.mu.Lock()
	if len(a.samples) == 0 {
		a.started = now
	}
	a.samples = append(a.samples, samples...)
	a.mu.Unlock()
}

// Duration reports the buffered segment length.
func (a *Accumulator) Duration() time.Duration {
	a.mu.Lock()
	n := len(a.samples)
	a.mu.Unlock()
	return time.Duration(n) * time.Second / time.Duration(a.cfg.SampleRate)
}

// Len reports the buffered sample count.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.samples)
}

// Decide determines whether the buffered segment should be flushed.
// speechActive reports whether a speech run is in progress and
// sinceSpeech how long ago speech was last heard. When no speech has
// ever been heard, callers pass the time since capture began.
func (a *Accumulator) Decide(speechActive bool, sinceSpeech time.Duration) (frames.FlushReason, bool) {
	dur := a.Duration()
	if dur == 0 {
		return "", false
	}
	if speechActive {
		if sinceSpeech > a.cfg.PauseThreshold && dur >= a.cfg.MinSegment {
			return frames.FlushNaturalPause, true
		}
		if dur >= a.cfg.MaxSegment {
			return frames.FlushMaxDuration, true
		}
		return "", false
	}
	if sinceSpeech > a.cfg.SilenceThreshold && dur >= a.cfg.SilenceFloor {
		return frames.FlushSilenceTimeout, true
	}
	return "", false
}

// Take returns a copy of the buffered segment and clears it. It returns
// nil when nothing is buffered.
func (a *Accumulator) Take() []float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.samples) == 0 {
		return nil
	}
	out := make([]float32, len(a.samples))
	copy(out, a.samples)
	a.samples = a.samples[:0]
	return out
}

// Started returns when the current segment began accumulating.
func (a *Accumulator) Started() (time.Time, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.samples) == 0 {
		return time.Time{}, false
	}
	return a.started, true
}

func (a *Accumulator) Config() Config { return a.cfg }
