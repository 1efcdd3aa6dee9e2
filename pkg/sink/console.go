package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/harunnryd/echoscribe/pkg/redact"
)

// Console prints sentences as they complete, one line each with the
// wall clock time and recording name.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

func (c *Console) Name() string { return "console" }

func (c *Console) Write(ctx context.Context, s Sentence) error {
	text := s.Text
	if redact.Enabled() {
		text = redact.Text(text)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if s.Recording != "" {
		_, err = fmt.Fprintf(c.w, "[%s] [%s] %s\n", s.At.Format("15:04:05"), s.Recording, text)
	} else {
		_, err = fmt.Fprintf(c.w, "[%s] %s\n", s.At.Format("15:04:05"), text)
	}
	return err
}

var _ Sink = (*Console)(nil)
