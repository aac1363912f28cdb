package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/tendant/voicehub/pkg/domain"
)

const partnerColumns = `
	id, name, slug, brand_name, logo_url, primary_color, custom_domain,
	is_platform_partner, stripe_customer_id, white_label_plan_id,
	created_at, updated_at, deleted_at
`

// PartnersRepository handles partner data persistence.
type PartnersRepository struct {
	db *sql.DB
}

// NewPartnersRepository creates a new partners repository.
func NewPartnersRepository(db *sql.DB) *PartnersRepository {
	return &PartnersRepository{db: db}
}

func scanPartner(row interface{ Scan(...any) error }, p *domain.Partner) error {
	return row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.BrandName, &p.LogoURL, &p.PrimaryColor, &p.CustomDomain,
		&p.IsPlatformPartner, &p.StripeCustomerID, &p.WhiteLabelPlanID,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
}

// GetByID retrieves a partner by ID.
func (r *PartnersRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Partner, error) {
	query := `SELECT ` + partnerColumns + `
		FROM partners
		WHERE id = $1 AND deleted_at IS NULL
	`
	var partner domain.Partner
	err := scanPartner(r.db.QueryRowContext(ctx, query, id), &partner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPartnerNotFound
		}
		return nil, err
	}
	return &partner, nil
}

// List returns a page of partners, optionally filtered by a name/slug search.
func (r *PartnersRepository) List(ctx context.Context, search string, page domain.PageRequest) (domain.Page[*domain.Partner], error) {
	var where whereBuilder
	where.addRaw("deleted_at IS NULL")
	if search != "" {
		where.add(`(name ILIKE $%[1]d ESCAPE '\' OR slug ILIKE $%[1]d ESCAPE '\')`, containsPattern(search))
	}

	list := func(ctx context.Context) ([]*domain.Partner, error) {
		limit, args := where.limitOffset(page)
		query := `SELECT ` + partnerColumns + ` FROM partners ` + where.String() +
			` ORDER BY created_at DESC, id ` + limit

		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var partners []*domain.Partner
		for rows.Next() {
			var partner domain.Partner
			if err := scanPartner(rows, &partner); err != nil {
				return nil, err
			}
			partners = append(partners, &partner)
		}
		return partners, rows.Err()
	}

	count := func(ctx context.Context) (int, error) {
		var total int
		err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM partners `+where.String(), where.args...).Scan(&total)
		return total, err
	}

	return fetchPage(ctx, list, count)
}

// CountWorkspaces counts the live workspaces owned by a partner.
func (r *PartnersRepository) CountWorkspaces(ctx context.Context, partnerID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM workspaces
		WHERE partner_id = $1 AND deleted_at IS NULL
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, partnerID).Scan(&count)
	return count, err
}
