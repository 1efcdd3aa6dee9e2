package frames

import (
	"sync"
	"time"
)

type Kind string

const (
	KindAudio   Kind = "audio"
	KindSegment Kind = "segment"
)

// FlushReason explains why a segment was cut from the running audio stream.
type FlushReason string

const (
	FlushNaturalPause   FlushReason = "natural pause"
	FlushMaxDuration    FlushReason = "max duration"
	FlushSilenceTimeout FlushReason = "silence timeout"
)

// ResetsSpeechState reports whether a flush with this reason should clear the
// open speech run. Max-duration cuts happen mid-speech and must not.
func (r FlushReason) ResetsSpeechState() bool {
	return r == FlushNaturalPause || r == FlushSilenceTimeout
}

type Frame interface {
	Kind() Kind
	PTS() int64
	Meta() map[string]string
}

type AudioFrame struct {
	pts     int64
	samples []float32
	rate    int
	meta    map[string]string
	pooled  bool
}

func NewAudioFrame(sessionID string, pts int64, samples []float32, rate int, meta map[string]string) AudioFrame {
	return AudioFrame{
		pts:     pts,
		samples: samples,
		rate:    rate,
		meta:    mergeMeta(sessionID, meta),
	}
}

func NewAudioFrameFromPool(sessionID string, pts int64, samples []float32, rate int, meta map[string]string) AudioFrame {
	buf := AcquireSampleBuf(len(samples))
	copy(buf, samples)
	return AudioFrame{
		pts:     pts,
		samples: buf,
		rate:    rate,
		meta:    mergeMeta(sessionID, meta),
		pooled:  true,
	}
}

func (a AudioFrame) Kind() Kind              { return KindAudio }
func (a AudioFrame) PTS() int64              { return a.pts }
func (a AudioFrame) Meta() map[string]string { return cloneMeta(a.meta) }
func (a AudioFrame) Samples() []float32      { return append([]float32(nil), a.samples...) }
func (a AudioFrame) RawSamples() []float32   { return a.samples }
func (a AudioFrame) Rate() int               { return a.rate }

func ReleaseAudioFrame(f Frame) bool {
	af, ok := f.(AudioFrame)
	if !ok {
		if ap, ok := f.(*AudioFrame); ok {
			af = *ap
		} else {
			return false
		}
	}
	if af.pooled {
		ReleaseSampleBuf(af.samples)
		return true
	}
	return false
}

// SegmentFrame carries one flushed audio segment to the transcription worker.
type SegmentFrame struct {
	pts     int64
	samples []float32
	rate    int
	reason  FlushReason
	meta    map[string]string
}

func NewSegmentFrame(sessionID string, pts int64, samples []float32, rate int, reason FlushReason, meta map[string]string) SegmentFrame {
	m := mergeMeta(sessionID, meta)
	m[MetaReason] = string(reason)
	return SegmentFrame{
		pts:     pts,
		samples: samples,
		rate:    rate,
		reason:  reason,
		meta:    m,
	}
}

func (s SegmentFrame) Kind() Kind              { return KindSegment }
func (s SegmentFrame) PTS() int64              { return s.pts }
func (s SegmentFrame) Meta() map[string]string { return cloneMeta(s.meta) }
func (s SegmentFrame) RawSamples() []float32   { return s.samples }
func (s SegmentFrame) Rate() int               { return s.rate }
func (s SegmentFrame) Reason() FlushReason     { return s.reason }

// Duration reports the segment length in seconds.
func (s SegmentFrame) Duration() float64 {
	if s.rate <= 0 {
		return 0
	}
	return float64(len(s.samples)) / float64(s.rate)
}

type PTSGen struct {
	mu    sync.Mutex
	value map[string]int64
}

func NewPTSGen() *PTSGen {
	return &PTSGen{value: make(map[string]int64)}
}

func (g *PTSGen) Next(sessionID string) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	v := g.value[sessionID] + time.Millisecond.Nanoseconds()
	g.value[sessionID] = v
	return v
}

var sampleBufPool = sync.Pool{
	New: func() any {
		return make([]float32, 0, 4096)
	},
}

func AcquireSampleBuf(size int) []float32 {
	b := sampleBufPool.Get().([]float32)
	if cap(b) < size {
		return make([]float32, size)
	}
	return b[:size]
}

func ReleaseSampleBuf(b []float32) {
	sampleBufPool.Put(b[:0])
}

func mergeMeta(sessionID string, meta map[string]string) map[string]string {
	out := make(map[string]string, 2+len(meta))
	if sessionID != "" {
		out[MetaSessionID] = sessionID
	}
	for k, v := range meta {
		out[k] = v
	}
	return out
}

func cloneMeta(meta map[string]string) map[string]string {
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
