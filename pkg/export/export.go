package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/harunnryd/echoscribe/pkg/errorsx"
	"github.com/harunnryd/echoscribe/pkg/store"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	invalidRe    = regexp.MustCompile(`[^a-z0-9\-]`)
	dashRunRe    = regexp.MustCompile(`-+`)
)

// Filename converts a recording name into a safe markdown filename.
func Filename(name string) string {
	slug := strings.ToLower(name)
	slug = whitespaceRe.ReplaceAllString(slug, "-")
	slug = invalidRe.ReplaceAllString(slug, "")
	slug = dashRunRe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "untitled-recording"
	}
	return slug + ".md"
}

// Markdown renders a combined transcript as a markdown document with
// YAML front matter.
func Markdown(c *store.CombinedRecording) string {
	title := c.Recording
	if title == "" {
		title = "Untitled Recording"
	}
	duration := formatDuration(c.Duration)

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", title)
	fmt.Fprintf(&b, "date: %q\n", c.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "segments: %d\n", c.SegmentCount)
	fmt.Fprintf(&b, "duration: %q\n", duration)
	b.WriteString("source: \"Audio Transcription\"\n")
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s\n\n", title)
	b.WriteString(c.Text)
	b.WriteString("\n\n---\n\n")
	fmt.Fprintf(&b, "*Transcribed from %d audio segments*  \n", c.SegmentCount)
	fmt.Fprintf(&b, "*Total Duration: %s*\n", duration)
	return b.String()
}

// WriteFile renders the transcript and writes it under dir, creating
// the directory when needed. It returns the written path.
func WriteFile(dir string, c *store.CombinedRecording) (string, error) {
	if dir == "" {
		dir = "export"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonExportWrite)
	}
	path := filepath.Join(dir, Filename(c.Recording))
	if err := os.WriteFile(path, []byte(Markdown(c)), 0o644); err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonExportWrite)
	}
	return path, nil
}

func formatDuration(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
