package sentence

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/harunnryd/echoscribe/pkg/metrics"
)

const (
	// minSentenceChars keeps tiny fragments in the buffer instead of
	// treating them as sentences.
	minSentenceChars = 10
	// minEmitChars is the floor for a sentence to reach the sinks.
	minEmitChars = 15
	// duplicateOverlap is the word overlap ratio above which a new
	// transcript is considered a repeat of the last emitted sentence.
	duplicateOverlap = 0.8
)

var terminatorRe = regexp.MustCompile(`([.!?])`)

// Assembler stitches raw transcripts into complete sentences. Fragments
// accumulate in a buffer until a terminator arrives; repeats of the last
// emitted sentence are dropped.
type Assembler struct {
	mu          sync.Mutex
	buffer      []string
	lastEmitted string

	logger   *slog.Logger
	observer metrics.Observer
}

func NewAssembler(logger *slog.Logger, observer metrics.Observer) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = metrics.NoopObserver{}
	}
	return &Assembler{logger: logger, observer: observer}
}

// Process folds a transcript into the buffer and returns the sentences
// that became ready to emit, in order.
func (a *Assembler) Process(text string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.isDuplicate(text) {
		a.observer.RecordEvent(metrics.MetricsEvent{
			Name: metrics.EventDuplicateDrop,
			Time: time.Now(),
		})
		a.logger.Debug("duplicate transcript dropped", "text", text)
		return nil
	}

	a.buffer = append(a.buffer, text)
	completed := a.extract()

	var emitted []string
	for _, s := range completed {
		s = strings.TrimSpace(s)
		if len(s) > minEmitChars {
			emitted = append(emitted, s)
			a.lastEmitted = s
			a.observer.RecordEvent(metrics.MetricsEvent{
				Name: metrics.EventSentenceEmit,
				Time: time.Now(),
			})
		}
	}
	return emitted
}

// Pending returns the buffered fragment awaiting a terminator.
func (a *Assembler) Pending() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return strings.Join(a.buffer, " ")
}

// Flush drains the buffer, returning the pending fragment if it clears
// the emission floor. Used at session end so trailing speech is not lost.
func (a *Assembler) Flush() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	pending := strings.TrimSpace(strings.Join(a.buffer, " "))
	a.buffer = nil
	if len(pending) > minEmitChars {
		a.lastEmitted = pending
		return pending, true
	}
	return "", false
}

// isDuplicate reports whether text repeats the last emitted sentence,
// either as a near-total word overlap or as a literal substring.
func (a *Assembler) isDuplicate(text string) bool {
	if a.lastEmitted == "" {
		return false
	}
	textWords := wordSet(text)
	if len(textWords) == 0 {
		return true
	}
	if strings.Contains(strings.ToLower(a.lastEmitted), strings.ToLower(strings.TrimSpace(text))) {
		return true
	}
	lastWords := wordSet(a.lastEmitted)
	shared := 0
	for w := range textWords {
		if _, ok := lastWords[w]; ok {
			shared++
		}
	}
	return float64(shared)/float64(len(textWords)) > duplicateOverlap
}

// extract splits the joined buffer on sentence terminators. Completed
// sentences below the minimum length are discarded; a substantial tail
// is retained as the new buffer.
func (a *Assembler) extract() []string {
	if len(a.buffer) == 0 {
		return nil
	}
	full := strings.TrimSpace(strings.Join(a.buffer, " "))
	parts := terminatorRe.Split(full, -1)
	terms := terminatorRe.FindAllString(full, -1)

	var sentences []string
	var current string
	for i, part := range parts {
		current += part
		if i < len(terms) {
			current += terms[i]
			trimmed := strings.TrimSpace(current)
			if len(trimmed) >= minSentenceChars {
				sentences = append(sentences, trimmed)
			}
			current = ""
		}
	}

	tail := strings.TrimSpace(current)
	if len(tail) >= minSentenceChars {
		a.buffer = []string{tail}
	} else {
		a.buffer = nil
	}
	return sentences
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
