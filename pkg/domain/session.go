package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server-side record behind an access token's jti.
type Session struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	CreatedAt  time.Time
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	LastSeenAt *time.Time
}

// IsValid checks if the session is valid (not expired and not revoked).
func (s *Session) IsValid() bool {
	if s.RevokedAt != nil {
		return false
	}
	return time.Now().Before(s.ExpiresAt)
}
