package transcriber

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/harunnryd/echoscribe/pkg/asr"
	"github.com/harunnryd/echoscribe/pkg/audio"
	"github.com/harunnryd/echoscribe/pkg/frames"
	"github.com/harunnryd/echoscribe/pkg/logging"
	"github.com/harunnryd/echoscribe/pkg/metrics"
	"github.com/harunnryd/echoscribe/pkg/queue"
	"github.com/harunnryd/echoscribe/pkg/segmenter"
	"github.com/harunnryd/echoscribe/pkg/sentence"
	"github.com/harunnryd/echoscribe/pkg/sink"
	"github.com/harunnryd/echoscribe/pkg/vad"
)

// popTick bounds how long the worker waits for a segment before
// rechecking for shutdown.
const popTick = time.Second

// Orchestrator wires capture, voice detection, segmentation and
// transcription together for one session.
type Orchestrator struct {
	session   *Session
	gate      *vad.Gate
	acc       *segmenter.Accumulator
	queue     *queue.SegmentQueue
	adapter   *asr.Adapter
	assembler *sentence.Assembler
	out       sink.Sink
	rate      int

	pts      *frames.PTSGen
	logger   *slog.Logger
	observer metrics.Observer

	mu           sync.Mutex
	captureStart time.Time

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

type OrchestratorConfig struct {
	Session    *Session
	Detector   vad.Detector
	Segments   segmenter.Config
	QueueDepth int
	Adapter    *asr.Adapter
	Sink       sink.Sink
	Logger     *slog.Logger
	Observer   metrics.Observer
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := cfg.Observer
	if observer == nil {
		observer = metrics.NoopObserver{}
	}
	acc := segmenter.New(cfg.Segments)
	return &Orchestrator{
		session:   cfg.Session,
		gate:      vad.NewGate(cfg.Detector),
		acc:       acc,
		queue:     queue.New(cfg.QueueDepth),
		adapter:   cfg.Adapter,
		assembler: sentence.NewAssembler(logger, observer),
		out:       cfg.Sink,
		rate:      acc.Config().SampleRate,
		pts:       frames.NewPTSGen(),
		logger:    logging.NewComponentLogger(logger, "orchestrator"),
		observer:  observer,
	}
}

// OnSamples ingests one chunk of captured audio. It classifies speech,
// grows the running segment and cuts it when a flush rule fires. Safe
// to call from the audio callback goroutine.
func (o *Orchestrator) OnSamples(samples []float32) {
	if len(samples) == 0 {
		return
	}
	now := time.Now()

	o.mu.Lock()
	if o.captureStart.IsZero() {
		o.captureStart = now
	}
	captureStart := o.captureStart
	o.mu.Unlock()

	// Pool the chunk: the capture callback reuses its buffer, so the
	// frame owns a copy for the duration of classification and append.
	frame := frames.NewAudioFrameFromPool(o.session.ID, o.pts.Next(o.session.ID), samples, o.rate, nil)
	defer frames.ReleaseAudioFrame(frame)

	o.gate.Observe(audio.FloatToPCM16(frame.RawSamples()), o.rate, now)
	o.acc.Append(frame.RawSamples(), now)
	o.observer.RecordEvent(metrics.MetricsEvent{
		Name:  metrics.EventFrameIn,
		Time:  now,
		Value: float64(len(samples)),
	})

	sinceSpeech, heard := o.gate.SinceLastSpeech(now)
	if !heard {
		sinceSpeech = now.Sub(captureStart)
	}

	reason, flush := o.acc.Decide(o.gate.SpeechActive(), sinceSpeech)
	if !flush {
		return
	}
	o.flushSegment(reason, now)
}

func (o *Orchestrator) flushSegment(reason frames.FlushReason, now time.Time) {
	samples := o.acc.Take()
	if samples == nil {
		return
	}
	seg := frames.NewSegmentFrame(
		o.session.ID,
		o.pts.Next(o.session.ID),
		samples,
		o.rate,
		reason,
		map[string]string{frames.MetaRecording: o.session.Recording},
	)
	if evicted := o.queue.Push(&seg); evicted != nil {
		o.logger.Warn("segment dropped on overflow",
			"evicted_duration", evicted.Duration(),
			"reason", string(evicted.Reason()),
		)
		o.observer.RecordEvent(metrics.MetricsEvent{
			Name: metrics.EventSegmentDrop,
			Time: now,
		})
	}
	o.logger.Debug("segment flushed",
		"reason", string(reason),
		"duration", seg.Duration(),
		"queued", o.queue.Len(),
	)
	o.observer.RecordEvent(metrics.MetricsEvent{
		Name:  metrics.EventSegmentFlush,
		Time:  now,
		Value: seg.Duration(),
		Tags:  map[string]string{"reason": string(reason)},
	})

	if reason.ResetsSpeechState() {
		o.gate.Reset()
	}
}

// Run starts the transcription worker. It returns immediately; the
// worker stops when ctx is cancelled or Drain is called.
func (o *Orchestrator) Run(ctx context.Context) {
	ctx, o.cancel = context.WithCancel(ctx)
	o.wg.Add(1)
	go o.worker(ctx)
}

func (o *Orchestrator) worker(ctx context.Context) {
	defer o.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		seg, ok := o.queue.Pop(popTick)
		if !ok {
			continue
		}
		o.transcribe(ctx, seg)
	}
}

func (o *Orchestrator) transcribe(ctx context.Context, seg *frames.SegmentFrame) {
	text, ok := o.adapter.Transcribe(ctx, seg)
	if !ok {
		return
	}
	now := time.Now()
	for _, s := range o.assembler.Process(text) {
		o.emit(ctx, s, now)
	}
}

func (o *Orchestrator) emit(ctx context.Context, text string, now time.Time) {
	err := o.out.Write(ctx, sink.Sentence{
		SessionID: o.session.ID,
		Recording: o.session.Recording,
		Text:      text,
		At:        now,
		Offset:    o.session.Offset(now),
	})
	if err != nil {
		o.logger.Warn("sentence delivery failed", "error", err)
	}
}

// Drain stops the worker, transcribes whatever is still queued and
// flushes the pending sentence fragment.
func (o *Orchestrator) Drain() error {
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()

	// Cut any audio still accumulating.
	if o.acc.Len() > 0 {
		o.flushSegment(frames.FlushSilenceTimeout, time.Now())
	}

	ctx := context.Background()
	for {
		seg, ok := o.queue.Pop(0)
		if !ok {
			break
		}
		o.transcribe(ctx, seg)
	}

	if text, ok := o.assembler.Flush(); ok {
		o.emit(ctx, text, time.Now())
	}

	stats := o.queue.Stats()
	checked, speech := o.gate.Stats()
	o.logger.Info("session drained",
		"segments", stats.Pushed,
		"dropped", stats.Dropped,
		"chunks_checked", checked,
		"chunks_with_speech", speech,
	)
	return nil
}

// Queue exposes queue statistics for status reporting.
func (o *Orchestrator) Queue() *queue.SegmentQueue { return o.queue }
