package sink

import (
	"context"
	"log/slog"
	"time"

	"github.com/harunnryd/echoscribe/pkg/metrics"
	"github.com/harunnryd/echoscribe/pkg/store"
)

// StoreSink persists sentences keyed by their offset from the session
// start. Same-second sentences merge into one row.
type StoreSink struct {
	store    *store.Store
	category string
	logger   *slog.Logger
	observer metrics.Observer
}

func NewStoreSink(st *store.Store, category string, logger *slog.Logger, observer metrics.Observer) *StoreSink {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = metrics.NoopObserver{}
	}
	return &StoreSink{store: st, category: category, logger: logger, observer: observer}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Write(ctx context.Context, sent Sentence) error {
	_, err := s.store.AppendSegmentSmart(ctx, sent.Recording, sent.Offset, sent.Text, s.category)
	if err != nil {
		s.logger.Warn("segment not persisted",
			"recording", sent.Recording,
			"offset", sent.Offset,
			"error", err,
		)
		s.observer.RecordEvent(metrics.MetricsEvent{
			Name: metrics.EventStoreWarn,
			Time: time.Now(),
		})
	}
	return err
}

var _ Sink = (*StoreSink)(nil)
