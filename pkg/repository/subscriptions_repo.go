package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/tendant/voicehub/pkg/domain"
)

// SubscriptionsRepository handles workspace subscription rows.
type SubscriptionsRepository struct {
	db *sql.DB
}

// NewSubscriptionsRepository creates a new subscriptions repository.
func NewSubscriptionsRepository(db *sql.DB) *SubscriptionsRepository {
	return &SubscriptionsRepository{db: db}
}

// GetByWorkspaceID retrieves the subscription of a workspace.
func (r *SubscriptionsRepository) GetByWorkspaceID(ctx context.Context, workspaceID uuid.UUID) (*domain.WorkspaceSubscription, error) {
	query := `
		SELECT id, workspace_id, plan_id, status, current_period_start, current_period_end,
		       stripe_subscription_id, created_at, updated_at
		FROM workspace_subscriptions
		WHERE workspace_id = $1
	`

	var sub domain.WorkspaceSubscription
	err := r.db.QueryRowContext(ctx, query, workspaceID).Scan(
		&sub.ID,
		&sub.WorkspaceID,
		&sub.PlanID,
		&sub.Status,
		&sub.CurrentPeriodStart,
		&sub.CurrentPeriodEnd,
		&sub.StripeSubscriptionID,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, err
	}

	return &sub, nil
}
