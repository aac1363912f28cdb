package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/tendant/voicehub/pkg/domain"
)

// SessionsRepository reads the server-side session records that back access tokens.
type SessionsRepository struct {
	db *sql.DB
}

// NewSessionsRepository creates a new sessions repository.
func NewSessionsRepository(db *sql.DB) *SessionsRepository {
	return &SessionsRepository{db: db}
}

// Create creates a new session.
func (r *SessionsRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.CreatedAt, session.ExpiresAt,
	)
	return err
}

// GetByID retrieves a session by ID.
func (r *SessionsRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT id, user_id, created_at, expires_at, revoked_at, last_seen_at
		FROM sessions
		WHERE id = $1
	`
	session := &domain.Session{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID, &session.UserID, &session.CreatedAt, &session.ExpiresAt,
		&session.RevokedAt, &session.LastSeenAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Revoke revokes a session.
func (r *SessionsRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE sessions
		SET revoked_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// UpdateLastSeen updates the last_seen_at timestamp.
func (r *SessionsRepository) UpdateLastSeen(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE sessions
		SET last_seen_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
