package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/harunnryd/echoscribe/pkg/errorsx"
)

// Segment is one stored transcription row.
type Segment struct {
	ID        int64
	Recording string
	Offset    float64
	Seconds   int
	Text      string
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecordingSummary aggregates segment rows per recording name.
type RecordingSummary struct {
	Recording    string
	SegmentCount int
	FirstOffset  float64
	LastOffset   float64
	StartedAt    time.Time
	LastUpdated  time.Time
}

// CombinedRecording is a full transcript assembled from segments.
type CombinedRecording struct {
	ID           int64
	Recording    string
	Title        string
	Text         string
	SegmentCount int
	Duration     float64
	CreatedAt    time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS recordings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	recording_name TEXT NOT NULL,
	segment_offset REAL NOT NULL,
	segment_seconds INTEGER NOT NULL,
	segment_text TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_recordings_name_second
	ON recordings (recording_name, segment_seconds);

CREATE TABLE IF NOT EXISTS combined_recordings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	recording_name TEXT NOT NULL,
	title TEXT NOT NULL,
	full_transcription TEXT NOT NULL,
	segment_count INTEGER NOT NULL,
	total_duration REAL NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store persists transcription segments in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonStoreConnect)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errorsx.Wrap(err, errorsx.ReasonStoreConnect)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errorsx.Wrap(err, errorsx.ReasonStoreConnect)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// AppendSegment inserts a new segment row and returns its id.
func (s *Store) AppendSegment(ctx context.Context, recording string, offset float64, text, category string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO recordings (recording_name, segment_offset, segment_seconds, segment_text, category)
		VALUES (?, ?, ?, ?, ?)
	`, recording, offset, int(offset), text, category)
	if err != nil {
		return 0, errorsx.Wrap(err, errorsx.ReasonStoreInsert)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errorsx.Wrap(err, errorsx.ReasonStoreInsert)
	}
	return id, nil
}

// AppendSegmentSmart appends text to an existing row when one already
// covers the same whole second of the recording, otherwise inserts a
// new row. This keeps rapid-fire sentences from the same moment in one
// row instead of scattering them.
func (s *Store) AppendSegmentSmart(ctx context.Context, recording string, offset float64, text, category string) (int64, error) {
	second := int(offset)
	row := s.db.QueryRowContext(ctx, `
		SELECT id, segment_text
		FROM recordings
		WHERE recording_name = ? AND segment_seconds = ?
		ORDER BY id ASC
		LIMIT 1
	`, recording, second)

	var id int64
	var existing string
	switch err := row.Scan(&id, &existing); {
	case err == nil:
		combined := strings.TrimSpace(existing + " " + text)
		if _, err := s.db.ExecContext(ctx, `
			UPDATE recordings
			SET segment_text = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, combined, id); err != nil {
			return 0, errorsx.Wrap(err, errorsx.ReasonStoreInsert)
		}
		return id, nil
	case errors.Is(err, sql.ErrNoRows):
		return s.AppendSegment(ctx, recording, offset, text, category)
	default:
		return 0, errorsx.Wrap(err, errorsx.ReasonStoreQuery)
	}
}

// SegmentsByRecording returns all segments for a recording ordered by
// their offset from the session start.
func (s *Store) SegmentsByRecording(ctx context.Context, recording string) ([]Segment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recording_name, segment_offset, segment_seconds, segment_text, category, created_at, updated_at
		FROM recordings
		WHERE recording_name = ?
		ORDER BY segment_offset
	`, recording)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonStoreQuery)
	}
	defer rows.Close()

	var out []Segment
	for rows.Next() {
		var seg Segment
		if err := rows.Scan(&seg.ID, &seg.Recording, &seg.Offset, &seg.Seconds,
			&seg.Text, &seg.Category, &seg.CreatedAt, &seg.UpdatedAt); err != nil {
			return nil, errorsx.Wrap(err, errorsx.ReasonStoreQuery)
		}
		out = append(out, seg)
	}
	return out, errorsx.Wrap(rows.Err(), errorsx.ReasonStoreQuery)
}

// RecentRecordings summarizes recordings updated within the last N days.
func (s *Store) RecentRecordings(ctx context.Context, days int) ([]RecordingSummary, error) {
	if days <= 0 {
		days = 7
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT recording_name,
		       COUNT(*),
		       MIN(segment_offset),
		       MAX(segment_offset),
		       MIN(created_at),
		       MAX(updated_at)
		FROM recordings
		WHERE created_at >= datetime('now', ?)
		GROUP BY recording_name
		ORDER BY MAX(updated_at) DESC
	`, fmt.Sprintf("-%d days", days))
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonStoreQuery)
	}
	defer rows.Close()

	var out []RecordingSummary
	for rows.Next() {
		var r RecordingSummary
		var started, updated string
		if err := rows.Scan(&r.Recording, &r.SegmentCount, &r.FirstOffset,
			&r.LastOffset, &started, &updated); err != nil {
			return nil, errorsx.Wrap(err, errorsx.ReasonStoreQuery)
		}
		// Aggregates come back as bare text, not typed timestamps.
		r.StartedAt, _ = time.Parse("2006-01-02 15:04:05", started)
		r.LastUpdated, _ = time.Parse("2006-01-02 15:04:05", updated)
		out = append(out, r)
	}
	return out, errorsx.Wrap(rows.Err(), errorsx.ReasonStoreQuery)
}

// CombineRecording joins every segment of a recording in offset order
// into one combined_recordings row and returns its id.
func (s *Store) CombineRecording(ctx context.Context, recording, title string) (int64, error) {
	segments, err := s.SegmentsByRecording(ctx, recording)
	if err != nil {
		return 0, err
	}
	if len(segments) == 0 {
		return 0, errorsx.Wrap(fmt.Errorf("no segments for recording %q", recording), errorsx.ReasonStoreQuery)
	}
	if title == "" {
		title = recording + " - Complete Transcript"
	}

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.Text)
	}
	duration := segments[len(segments)-1].Offset - segments[0].Offset

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO combined_recordings (recording_name, title, full_transcription, segment_count, total_duration)
		VALUES (?, ?, ?, ?, ?)
	`, recording, title, strings.Join(parts, " "), len(segments), duration)
	if err != nil {
		return 0, errorsx.Wrap(err, errorsx.ReasonStoreInsert)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errorsx.Wrap(err, errorsx.ReasonStoreInsert)
	}
	return id, nil
}

// DeleteSegments removes all segment rows for a recording, returning
// how many were deleted.
func (s *Store) DeleteSegments(ctx context.Context, recording string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recordings WHERE recording_name = ?`, recording)
	if err != nil {
		return 0, errorsx.Wrap(err, errorsx.ReasonStoreInsert)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errorsx.Wrap(err, errorsx.ReasonStoreInsert)
	}
	return n, nil
}

// CombinedByRecording returns the most recent combined transcript for a
// recording, or nil when none exists.
func (s *Store) CombinedByRecording(ctx context.Context, recording string) (*CombinedRecording, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, recording_name, title, full_transcription, segment_count, total_duration, created_at
		FROM combined_recordings
		WHERE recording_name = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, recording)

	var c CombinedRecording
	if err := row.Scan(&c.ID, &c.Recording, &c.Title, &c.Text,
		&c.SegmentCount, &c.Duration, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errorsx.Wrap(err, errorsx.ReasonStoreQuery)
	}
	return &c, nil
}

// CombinedRecordings lists every combined transcript, newest first.
func (s *Store) CombinedRecordings(ctx context.Context) ([]CombinedRecording, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recording_name, title, full_transcription, segment_count, total_duration, created_at
		FROM combined_recordings
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonStoreQuery)
	}
	defer rows.Close()

	var out []CombinedRecording
	for rows.Next() {
		var c CombinedRecording
		if err := rows.Scan(&c.ID, &c.Recording, &c.Title, &c.Text,
			&c.SegmentCount, &c.Duration, &c.CreatedAt); err != nil {
			return nil, errorsx.Wrap(err, errorsx.ReasonStoreQuery)
		}
		out = append(out, c)
	}
	return out, errorsx.Wrap(rows.Err(), errorsx.ReasonStoreQuery)
}

// CountSegments reports the total number of stored segment rows.
func (s *Store) CountSegments(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recordings`).Scan(&n); err != nil {
		return 0, errorsx.Wrap(err, errorsx.ReasonStoreQuery)
	}
	return n, nil
}
