package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/tendant/voicehub/pkg/domain"
)

// MembersRepository handles workspace and partner membership persistence.
type MembersRepository struct {
	db *sql.DB
}

// NewMembersRepository creates a new members repository.
func NewMembersRepository(db *sql.DB) *MembersRepository {
	return &MembersRepository{db: db}
}

// GetActiveWorkspaceMember retrieves a non-removed membership of a principal in a workspace.
func (r *MembersRepository) GetActiveWorkspaceMember(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.WorkspaceMember, error) {
	query := `
		SELECT id, workspace_id, user_id, email, role, joined_at, removed_at
		FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2 AND removed_at IS NULL
	`

	var member domain.WorkspaceMember
	err := r.db.QueryRowContext(ctx, query, workspaceID, userID).Scan(
		&member.ID,
		&member.WorkspaceID,
		&member.UserID,
		&member.Email,
		&member.Role,
		&member.JoinedAt,
		&member.RemovedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}

	return &member, nil
}

// ListWorkspaceMembers retrieves all non-removed members of a workspace.
func (r *MembersRepository) ListWorkspaceMembers(ctx context.Context, workspaceID uuid.UUID) ([]*domain.WorkspaceMember, error) {
	query := `
		SELECT id, workspace_id, user_id, email, role, joined_at, removed_at
		FROM workspace_members
		WHERE workspace_id = $1 AND removed_at IS NULL
		ORDER BY joined_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*domain.WorkspaceMember
	for rows.Next() {
		var member domain.WorkspaceMember
		err := rows.Scan(
			&member.ID,
			&member.WorkspaceID,
			&member.UserID,
			&member.Email,
			&member.Role,
			&member.JoinedAt,
			&member.RemovedAt,
		)
		if err != nil {
			return nil, err
		}
		members = append(members, &member)
	}

	return members, rows.Err()
}

// GetActivePartnerStaff retrieves a non-removed staff row of a principal in a partner.
func (r *MembersRepository) GetActivePartnerStaff(ctx context.Context, partnerID, userID uuid.UUID) (*domain.PartnerStaff, error) {
	query := `
		SELECT id, partner_id, user_id, role, created_at, removed_at
		FROM partner_members
		WHERE partner_id = $1 AND user_id = $2 AND removed_at IS NULL
	`

	var staff domain.PartnerStaff
	err := r.db.QueryRowContext(ctx, query, partnerID, userID).Scan(
		&staff.ID,
		&staff.PartnerID,
		&staff.UserID,
		&staff.Role,
		&staff.CreatedAt,
		&staff.RemovedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPartnerStaffNotFound
		}
		return nil, err
	}

	return &staff, nil
}
