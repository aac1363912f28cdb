package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/tendant/voicehub/pkg/domain"
)

// WorkspacesRepository handles workspace data persistence.
type WorkspacesRepository struct {
	db *sql.DB
}

// NewWorkspacesRepository creates a new workspaces repository.
func NewWorkspacesRepository(db *sql.DB) *WorkspacesRepository {
	return &WorkspacesRepository{db: db}
}

// GetBySlug retrieves a live workspace by slug. Soft-deleted rows are not found.
func (r *WorkspacesRepository) GetBySlug(ctx context.Context, slug string) (*domain.Workspace, error) {
	query := `
		SELECT id, partner_id, name, slug, timezone, created_at, updated_at, deleted_at
		FROM workspaces
		WHERE slug = $1 AND deleted_at IS NULL
	`

	var workspace domain.Workspace
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&workspace.ID,
		&workspace.PartnerID,
		&workspace.Name,
		&workspace.Slug,
		&workspace.Timezone,
		&workspace.CreatedAt,
		&workspace.UpdatedAt,
		&workspace.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWorkspaceNotFound
		}
		return nil, err
	}

	return &workspace, nil
}

// ListByPartner returns a page of a partner's workspaces with member counts
// and the current subscription plan.
func (r *WorkspacesRepository) ListByPartner(ctx context.Context, partnerID uuid.UUID, page domain.PageRequest) (domain.Page[*domain.WorkspaceSummary], error) {
	list := func(ctx context.Context) ([]*domain.WorkspaceSummary, error) {
		query := `
			SELECT
				w.id, w.partner_id, w.name, w.slug, w.timezone, w.created_at, w.updated_at, w.deleted_at,
				(SELECT COUNT(*) FROM workspace_members m
					WHERE m.workspace_id = w.id AND m.removed_at IS NULL),
				p.name, s.status
			FROM workspaces w
			LEFT JOIN workspace_subscriptions s ON s.workspace_id = w.id
			LEFT JOIN plans p ON p.id = s.plan_id
			WHERE w.partner_id = $1 AND w.deleted_at IS NULL
			ORDER BY w.created_at DESC, w.id
			LIMIT $2 OFFSET $3
		`
		rows, err := r.db.QueryContext(ctx, query, partnerID, page.Limit(), page.Offset())
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var results []*domain.WorkspaceSummary
		for rows.Next() {
			var result domain.WorkspaceSummary
			err := rows.Scan(
				&result.ID,
				&result.PartnerID,
				&result.Name,
				&result.Slug,
				&result.Timezone,
				&result.CreatedAt,
				&result.UpdatedAt,
				&result.DeletedAt,
				&result.MemberCount,
				&result.PlanName,
				&result.SubscriptionStatus,
			)
			if err != nil {
				return nil, err
			}
			results = append(results, &result)
		}
		return results, rows.Err()
	}

	count := func(ctx context.Context) (int, error) {
		query := `
			SELECT COUNT(*)
			FROM workspaces
			WHERE partner_id = $1 AND deleted_at IS NULL
		`
		var total int
		err := r.db.QueryRowContext(ctx, query, partnerID).Scan(&total)
		return total, err
	}

	return fetchPage(ctx, list, count)
}
