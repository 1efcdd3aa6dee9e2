package queue

import (
	"testing"
	"time"

	"github.com/harunnryd/echoscribe/pkg/frames"
)

func seg(n int) *frames.SegmentFrame {
	samples := make([]float32, n)
	s := frames.NewSegmentFrame("sess", int64(n), samples, 16000, frames.FlushNaturalPause, nil)
	return &s
}

func TestPushPopFIFO(t *testing.T) {
	q := New(4)
	a, b := seg(10), seg(20)
	q.Push(a)
	q.Push(b)

	got, ok := q.Pop(time.Second)
	if !ok || got != a {
		t.Fatalf("expected first segment back, got %v ok=%v", got, ok)
	}
	got, ok = q.Pop(time.Second)
	if !ok || got != b {
		t.Fatalf("expected second segment back, got %v ok=%v", got, ok)
	}
}

func TestPopTimeout(t *testing.T) {
	q := New(4)
	start := time.Now()
	_, ok := q.Pop(50 * time.Millisecond)
	if ok {
		t.Fatalf("expected timeout on empty queue")
	}
	if time.Since(start) < 40*time.Millisecond {
		t.Fatalf("Pop returned before timeout elapsed")
	}
}

func TestOverflowEvictsOldest(t *testing.T) {
	q := New(2)
	a, b, c := seg(1), seg(2), seg(3)
	if evicted := q.Push(a); evicted != nil {
		t.Fatalf("unexpected eviction")
	}
	q.Push(b)
	if evicted := q.Push(c); evicted != a {
		t.Fatalf("expected oldest segment evicted, got %v", evicted)
	}

	got, _ := q.Pop(time.Second)
	if got != b {
		t.Fatalf("expected b first after eviction")
	}
	if st := q.Stats(); st.Dropped != 1 {
		t.Fatalf("expected 1 drop, got %d", st.Dropped)
	}
}

func TestPopWakesOnPush(t *testing.T) {
	q := New(4)
	done := make(chan *frames.SegmentFrame, 1)
	go func() {
		s, _ := q.Pop(2 * time.Second)
		done <- s
	}()
	time.Sleep(20 * time.Millisecond)
	want := seg(5)
	q.Push(want)
	select {
	case got := <-done:
		if got != want {
			t.Fatalf("wrong segment delivered")
		}
	case <-time.After(time.Second):
		t.Fatalf("Pop did not wake on push")
	}
}
