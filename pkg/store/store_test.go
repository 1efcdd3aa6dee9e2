package store

import (
	"context"
	"testing"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndFetchSegments(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	if _, err := s.AppendSegment(ctx, "meeting", 1.2, "first part", ""); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := s.AppendSegment(ctx, "meeting", 7.9, "second part", ""); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := s.AppendSegment(ctx, "other", 0.5, "unrelated", ""); err != nil {
		t.Fatalf("append: %v", err)
	}

	segs, err := s.SegmentsByRecording(ctx, "meeting")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].Text != "first part" || segs[0].Seconds != 1 {
		t.Fatalf("unexpected first segment %+v", segs[0])
	}
	if segs[1].Offset != 7.9 {
		t.Fatalf("expected offset preserved, got %f", segs[1].Offset)
	}
}

func TestSmartAppendMergesSameSecond(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	id1, err := s.AppendSegmentSmart(ctx, "meeting", 3.1, "hello", "")
	if err != nil {
		t.Fatalf("smart append: %v", err)
	}
	id2, err := s.AppendSegmentSmart(ctx, "meeting", 3.9, "again", "")
	if err != nil {
		t.Fatalf("smart append: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("same-second segments must merge into one row")
	}

	segs, _ := s.SegmentsByRecording(ctx, "meeting")
	if len(segs) != 1 || segs[0].Text != "hello again" {
		t.Fatalf("expected merged row, got %+v", segs)
	}

	// A different second starts a fresh row.
	id3, err := s.AppendSegmentSmart(ctx, "meeting", 4.0, "later", "")
	if err != nil {
		t.Fatalf("smart append: %v", err)
	}
	if id3 == id1 {
		t.Fatalf("different second must not merge")
	}
}

func TestSmartAppendScopedToRecording(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	id1, _ := s.AppendSegmentSmart(ctx, "alpha", 3.0, "one", "")
	id2, _ := s.AppendSegmentSmart(ctx, "beta", 3.0, "two", "")
	if id1 == id2 {
		t.Fatalf("smart append must not merge across recordings")
	}
}

func TestCombineAndDelete(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	s.AppendSegment(ctx, "talk", 0, "The beginning.", "")
	s.AppendSegment(ctx, "talk", 10, "The middle.", "")
	s.AppendSegment(ctx, "talk", 25.5, "The end.", "")

	id, err := s.CombineRecording(ctx, "talk", "")
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected a combined row id")
	}

	c, err := s.CombinedByRecording(ctx, "talk")
	if err != nil {
		t.Fatalf("fetch combined: %v", err)
	}
	if c == nil {
		t.Fatalf("combined row missing")
	}
	if c.Text != "The beginning. The middle. The end." {
		t.Fatalf("unexpected combined text %q", c.Text)
	}
	if c.SegmentCount != 3 {
		t.Fatalf("expected 3 segments counted, got %d", c.SegmentCount)
	}
	if c.Duration != 25.5 {
		t.Fatalf("expected duration 25.5, got %f", c.Duration)
	}
	if c.Title != "talk - Complete Transcript" {
		t.Fatalf("unexpected default title %q", c.Title)
	}

	deleted, err := s.DeleteSegments(ctx, "talk")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("expected 3 deleted, got %d", deleted)
	}
	if n, _ := s.CountSegments(ctx); n != 0 {
		t.Fatalf("expected empty recordings table, got %d rows", n)
	}
}

func TestCombineEmptyRecordingFails(t *testing.T) {
	s := openTest(t)
	if _, err := s.CombineRecording(context.Background(), "nothing", ""); err == nil {
		t.Fatalf("combining a recording without segments must fail")
	}
}

func TestRecentRecordings(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	s.AppendSegment(ctx, "a", 0, "text one", "")
	s.AppendSegment(ctx, "a", 5, "text two", "")
	s.AppendSegment(ctx, "b", 0, "text three", "")

	recent, err := s.RecentRecordings(ctx, 7)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 recordings, got %d", len(recent))
	}
	for _, r := range recent {
		if r.Recording == "a" && r.SegmentCount != 2 {
			t.Fatalf("recording a should have 2 segments, got %d", r.SegmentCount)
		}
	}
}

func TestCombinedRecordingsList(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	s.AppendSegment(ctx, "x", 0, "some words here", "")
	s.AppendSegment(ctx, "y", 0, "other words here", "")
	s.CombineRecording(ctx, "x", "")
	s.CombineRecording(ctx, "y", "")

	all, err := s.CombinedRecordings(ctx)
	if err != nil {
		t.Fatalf("list combined: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 combined rows, got %d", len(all))
	}
}
