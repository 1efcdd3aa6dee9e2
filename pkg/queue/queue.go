package queue

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/harunnryd/echoscribe/pkg/frames"
)

type Stats struct {
	Pushed  int64
	Popped  int64
	Dropped int64
}

// SegmentQueue is a bounded FIFO of speech segments awaiting
// transcription. When full, Push evicts the oldest segment so the
// freshest audio is never the one lost.
type SegmentQueue struct {
	mu      sync.Mutex
	items   []*frames.SegmentFrame
	cap     int
	notify  chan struct{}
	pushed  int64
	popped  int64
	dropped int64
}

func New(capacity int) *SegmentQueue {
	if capacity <= 0 {
		capacity = 32
	}
	return &SegmentQueue{
		cap:    capacity,
		notify: make(chan struct{}, 1),
	}
}

// Push enqueues a segment, evicting the oldest entry when the queue is
// full. It returns the evicted segment, or nil when nothing was dropped.
func (q *SegmentQueue) Push(seg *frames.SegmentFrame) *frames.SegmentFrame {
	var evicted *frames.SegmentFrame
	q.mu.Lock()
	if len(q.items) >= q.cap {
		evicted = q.items[0]
		q.items = q.items[1:]
		atomic.AddInt64(&q.dropped, 1)
	}
	q.items = append(q.items, seg)
	atomic.AddInt64(&q.pushed, 1)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return evicted
}

// Pop blocks until a segment is available or the timeout elapses.
// A zero or negative timeout makes Pop non-blocking.
func (q *SegmentQueue) Pop(timeout time.Duration) (*frames.SegmentFrame, bool) {
	deadline := time.Now().Add(timeout)
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			seg := q.items[0]
			q.items = q.items[1:]
			atomic.AddInt64(&q.popped, 1)
			q.mu.Unlock()
			return seg, true
		}
		q.mu.Unlock()

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, false
		}
		timer := time.NewTimer(remaining)
		select {
		case <-q.notify:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (q *SegmentQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *SegmentQueue) Stats() Stats {
	return Stats{
		Pushed:  atomic.LoadInt64(&q.pushed),
		Popped:  atomic.LoadInt64(&q.popped),
		Dropped: atomic.LoadInt64(&q.dropped),
	}
}
