package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/tendant/voicehub/pkg/domain"
)

const planColumns = `
	id, slug, name, description, monthly_price_cents, max_agents, included_minutes,
	overage_rate_cents, features, stripe_price_id, partner_id, is_active, sort_order
`

// PlansRepository reads the workspace and white-label plan catalogs.
type PlansRepository struct {
	db *sql.DB
}

// NewPlansRepository creates a new plans repository.
func NewPlansRepository(db *sql.DB) *PlansRepository {
	return &PlansRepository{db: db}
}

func scanPlan(row interface{ Scan(...any) error }, p *domain.Plan) error {
	var features []byte
	err := row.Scan(
		&p.ID, &p.Slug, &p.Name, &p.Description, &p.MonthlyPriceCents, &p.MaxAgents, &p.IncludedMinutes,
		&p.OverageRateCents, &features, &p.StripePriceID, &p.PartnerID, &p.IsActive, &p.SortOrder,
	)
	if err != nil {
		return err
	}
	p.Features = features
	return nil
}

// GetByID retrieves a plan by ID regardless of its active flag.
func (r *PlansRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`

	var plan domain.Plan
	if err := scanPlan(r.db.QueryRowContext(ctx, query, id), &plan); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// ListCatalog returns the active plans offered to a partner's workspaces.
// A partner with any active variant sees only its variants; otherwise the
// platform defaults apply.
func (r *PlansRepository) ListCatalog(ctx context.Context, partnerID uuid.UUID) ([]*domain.Plan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM plans
		WHERE is_active
		  AND (
			partner_id = $1
			OR (partner_id IS NULL AND NOT EXISTS (
				SELECT 1 FROM plans v WHERE v.partner_id = $1 AND v.is_active
			))
		  )
		ORDER BY sort_order ASC, monthly_price_cents ASC
	`

	rows, err := r.db.QueryContext(ctx, query, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []*domain.Plan{}
	for rows.Next() {
		var plan domain.Plan
		if err := scanPlan(rows, &plan); err != nil {
			return nil, err
		}
		plans = append(plans, &plan)
	}
	return plans, rows.Err()
}

// ListWhiteLabel returns the active white-label plans in display order.
func (r *PlansRepository) ListWhiteLabel(ctx context.Context) ([]*domain.WhiteLabelPlan, error) {
	query := `
		SELECT id, slug, name, description, monthly_price_cents, max_workspaces,
		       stripe_price_id, is_active, sort_order
		FROM white_label_plans
		WHERE is_active
		ORDER BY sort_order ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []*domain.WhiteLabelPlan{}
	for rows.Next() {
		var plan domain.WhiteLabelPlan
		err := rows.Scan(
			&plan.ID,
			&plan.Slug,
			&plan.Name,
			&plan.Description,
			&plan.MonthlyPriceCents,
			&plan.MaxWorkspaces,
			&plan.StripePriceID,
			&plan.IsActive,
			&plan.SortOrder,
		)
		if err != nil {
			return nil, err
		}
		plans = append(plans, &plan)
	}
	return plans, rows.Err()
}
