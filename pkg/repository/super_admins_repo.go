package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/voicehub/pkg/domain"
)

// SuperAdminsRepository handles platform administrator records.
type SuperAdminsRepository struct {
	db *sql.DB
}

// NewSuperAdminsRepository creates a new super admins repository.
func NewSuperAdminsRepository(db *sql.DB) *SuperAdminsRepository {
	return &SuperAdminsRepository{db: db}
}

// Create provisions a super admin.
func (r *SuperAdminsRepository) Create(ctx context.Context, admin *domain.SuperAdmin) error {
	query := `
		INSERT INTO super_admins (id, user_id, email, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, admin.ID, admin.UserID, admin.Email, admin.CreatedAt)
	return err
}

// GetByPrincipalID retrieves the super admin row for a principal.
func (r *SuperAdminsRepository) GetByPrincipalID(ctx context.Context, userID uuid.UUID) (*domain.SuperAdmin, error) {
	query := `
		SELECT id, user_id, email, last_login_at, created_at
		FROM super_admins
		WHERE user_id = $1
	`
	admin := &domain.SuperAdmin{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&admin.ID, &admin.UserID, &admin.Email, &admin.LastLoginAt, &admin.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSuperAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	return admin, nil
}

// UpdateLastLogin sets last_login_at. Concurrent writers race; the last write wins.
func (r *SuperAdminsRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE super_admins
		SET last_login_at = $2
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, at)
	return err
}
