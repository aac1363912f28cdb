package superadmin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/voicehub/internal/http/features/common"
	"github.com/tendant/voicehub/internal/httputil"
	"github.com/tendant/voicehub/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// countConcurrency bounds the per-row workspace count queries.
const countConcurrency = 8

// PartnerStore reads partners for platform admins.
type PartnerStore interface {
	List(ctx context.Context, search string, page domain.PageRequest) (domain.Page[*domain.Partner], error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Partner, error)
	CountWorkspaces(ctx context.Context, partnerID uuid.UUID) (int, error)
}

// WorkspaceLister lists a partner's workspaces.
type WorkspaceLister interface {
	ListByPartner(ctx context.Context, partnerID uuid.UUID, page domain.PageRequest) (domain.Page[*domain.WorkspaceSummary], error)
}

// Handler handles platform admin endpoints.
type Handler struct {
	logger     *slog.Logger
	partners   PartnerStore
	workspaces WorkspaceLister
}

// NewHandler creates a new super admin handler.
func NewHandler(logger *slog.Logger, partners PartnerStore, workspaces WorkspaceLister) *Handler {
	return &Handler{
		logger:     logger,
		partners:   partners,
		workspaces: workspaces,
	}
}

// PartnerResponse is the admin view of a partner. The payment provider
// customer id is omitted.
type PartnerResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Slug              string    `json:"slug"`
	BrandName         *string   `json:"brandName"`
	LogoURL           *string   `json:"logoUrl"`
	PrimaryColor      *string   `json:"primaryColor"`
	CustomDomain      *string   `json:"customDomain"`
	IsPlatformPartner bool      `json:"isPlatformPartner"`
	WhiteLabelPlanID  *string   `json:"whiteLabelPlanId"`
	CreatedAt         time.Time `json:"createdAt"`
	WorkspaceCount    *int      `json:"workspaceCount,omitempty"`
}

// WorkspaceResponse is a row of a partner's workspace listing.
type WorkspaceResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Slug               string    `json:"slug"`
	CreatedAt          time.Time `json:"createdAt"`
	MemberCount        int       `json:"memberCount"`
	PlanName           *string   `json:"planName"`
	SubscriptionStatus *string   `json:"subscriptionStatus"`
}

func toPartnerResponse(p *domain.Partner) PartnerResponse {
	resp := PartnerResponse{
		ID:                p.ID.String(),
		Name:              p.Name,
		Slug:              p.Slug,
		BrandName:         p.BrandName,
		LogoURL:           p.LogoURL,
		PrimaryColor:      p.PrimaryColor,
		CustomDomain:      p.CustomDomain,
		IsPlatformPartner: p.IsPlatformPartner,
		CreatedAt:         p.CreatedAt,
	}
	if p.WhiteLabelPlanID != nil {
		id := p.WhiteLabelPlanID.String()
		resp.WhiteLabelPlanID = &id
	}
	return resp
}

// ListPartners returns a page of partners with their workspace counts.
// GET /api/super-admin/partners
func (h *Handler) ListPartners(w http.ResponseWriter, r *http.Request) {
	if _, ok := common.SuperAdmin(w, r); !ok {
		return
	}

	page, err := httputil.ParsePageRequest(r)
	if common.BadRequest(w, err) {
		return
	}
	search, err := httputil.SearchParam(r, "search")
	if common.BadRequest(w, err) {
		return
	}

	result, err := h.partners.List(r.Context(), search, page)
	if err != nil {
		common.QueryFailed(w, r, h.logger, "failed to list partners", err)
		return
	}

	items := make([]PartnerResponse, len(result.Items))
	g, gctx := errgroup.WithContext(r.Context())
	g.SetLimit(countConcurrency)
	for i, p := range result.Items {
		items[i] = toPartnerResponse(p)
		g.Go(func() error {
			count, err := h.partners.CountWorkspaces(gctx, p.ID)
			if err != nil {
				return err
			}
			items[i].WorkspaceCount = &count
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		common.QueryFailed(w, r, h.logger, "failed to count partner workspaces", err)
		return
	}

	httputil.JSON(w, http.StatusOK, httputil.NewListResponse(items, result.Total, page))
}

// GetPartner returns a single partner.
// GET /api/super-admin/partners/{id}
func (h *Handler) GetPartner(w http.ResponseWriter, r *http.Request) {
	if _, ok := common.SuperAdmin(w, r); !ok {
		return
	}

	partnerID, err := common.UUIDParam(r, "id")
	if common.BadRequest(w, err) {
		return
	}

	partner, err := h.partners.GetByID(r.Context(), partnerID)
	if err != nil {
		if errors.Is(err, domain.ErrPartnerNotFound) {
			httputil.Error(w, http.StatusNotFound, "partner not found")
			return
		}
		common.QueryFailed(w, r, h.logger, "failed to load partner", err, "partner_id", partnerID)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]PartnerResponse{"partner": toPartnerResponse(partner)})
}

// ListPartnerWorkspaces returns a page of a partner's workspaces.
// GET /api/super-admin/partners/{id}/workspaces
func (h *Handler) ListPartnerWorkspaces(w http.ResponseWriter, r *http.Request) {
	if _, ok := common.SuperAdmin(w, r); !ok {
		return
	}

	partnerID, err := common.UUIDParam(r, "id")
	if common.BadRequest(w, err) {
		return
	}
	page, err := httputil.ParsePageRequest(r)
	if common.BadRequest(w, err) {
		return
	}

	if _, err := h.partners.GetByID(r.Context(), partnerID); err != nil {
		if errors.Is(err, domain.ErrPartnerNotFound) {
			httputil.Error(w, http.StatusNotFound, "partner not found")
			return
		}
		common.QueryFailed(w, r, h.logger, "failed to load partner", err, "partner_id", partnerID)
		return
	}

	result, err := h.workspaces.ListByPartner(r.Context(), partnerID, page)
	if err != nil {
		common.QueryFailed(w, r, h.logger, "failed to list partner workspaces", err, "partner_id", partnerID)
		return
	}

	items := make([]WorkspaceResponse, 0, len(result.Items))
	for _, ws := range result.Items {
		item := WorkspaceResponse{
			ID:          ws.ID.String(),
			Name:        ws.Name,
			Slug:        ws.Slug,
			CreatedAt:   ws.CreatedAt,
			MemberCount: ws.MemberCount,
			PlanName:    ws.PlanName,
		}
		if ws.SubscriptionStatus != nil {
			status := string(*ws.SubscriptionStatus)
			item.SubscriptionStatus = &status
		}
		items = append(items, item)
	}

	httputil.JSON(w, http.StatusOK, httputil.NewListResponse(items, result.Total, page))
}
