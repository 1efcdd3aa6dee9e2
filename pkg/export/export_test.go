package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harunnryd/echoscribe/pkg/store"
)

func TestFilenameSlugging(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"The Evolution of Thoughtful Online Search", "the-evolution-of-thoughtful-online-search.md"},
		{"  Spaces   everywhere  ", "spaces-everywhere.md"},
		{"Punctuation?! & Symbols #1", "punctuation-symbols-1.md"},
		{"---", "untitled-recording.md"},
		{"", "untitled-recording.md"},
	}
	for _, c := range cases {
		if got := Filename(c.in); got != c.want {
			t.Fatalf("Filename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMarkdownLayout(t *testing.T) {
	c := &store.CombinedRecording{
		Recording:    "Morning Briefing",
		Text:         "Everything went fine today.",
		SegmentCount: 4,
		Duration:     95,
		CreatedAt:    time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC),
	}
	md := Markdown(c)

	if !strings.HasPrefix(md, "---\n") {
		t.Fatalf("markdown must open with front matter")
	}
	for _, want := range []string{
		`title: "Morning Briefing"`,
		`date: "2025-04-02 08:00:00"`,
		"segments: 4",
		`duration: "01:35"`,
		"# Morning Briefing",
		"Everything went fine today.",
		"*Transcribed from 4 audio segments*",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestFormatDurationHours(t *testing.T) {
	c := &store.CombinedRecording{Recording: "long", Duration: 3725}
	if !strings.Contains(Markdown(c), `duration: "01:02:05"`) {
		t.Fatalf("hour-long durations must use HH:MM:SS")
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	c := &store.CombinedRecording{
		Recording: "Demo Session",
		Text:      "Written to disk.",
	}
	path, err := WriteFile(dir, c)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Base(path) != "demo-session.md" {
		t.Fatalf("unexpected filename %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "Written to disk.") {
		t.Fatalf("exported file missing transcript body")
	}
}
