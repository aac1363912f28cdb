package domain

import (
	"time"

	"github.com/google/uuid"
)

// Principal is an identity authenticated by the external identity provider.
// It is read-only to this service and travels inside the access token.
type Principal struct {
	ID        uuid.UUID
	Email     string
	Name      string
	SessionID uuid.UUID
}

// SuperAdmin grants a principal platform-wide privileges.
type SuperAdmin struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Email       string
	LastLoginAt *time.Time
	CreatedAt   time.Time
}
