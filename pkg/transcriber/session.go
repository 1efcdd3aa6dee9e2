package transcriber

import (
	"time"

	"github.com/google/uuid"
)

// Session identifies one capture run. Offsets stored with each segment
// are measured from StartedAt.
type Session struct {
	ID        string
	Recording string
	StartedAt time.Time
}

func NewSession(recording string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Recording: recording,
		StartedAt: time.Now(),
	}
}

// Offset returns the seconds elapsed since the session began.
func (s *Session) Offset(now time.Time) float64 {
	return now.Sub(s.StartedAt).Seconds()
}
