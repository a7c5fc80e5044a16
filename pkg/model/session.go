package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionID string

// NewSessionID generates a new unique SessionID
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

// SessionMetadata tracks one underlying model context. InputUsage is the
// cumulative token count reported by the model after each call, so writers
// overwrite it rather than accumulate.
type SessionMetadata struct {
	ID           SessionID
	CreatedAt    time.Time
	LastUsedAt   time.Time
	SystemPrompt string
	InputUsage   int64
	InputQuota   int64
}

// UsagePercent returns the consumed share of the token quota in percent
func (s *SessionMetadata) UsagePercent() float64 {
	if s.InputQuota <= 0 {
		return 0
	}
	return float64(s.InputUsage) / float64(s.InputQuota) * 100
}
