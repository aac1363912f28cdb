package publicplans

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tendant/voicehub/internal/http/features/common"
	"github.com/tendant/voicehub/internal/httputil"
	"github.com/tendant/voicehub/pkg/domain"
)

// PlanLister lists the white-label plan catalog.
type PlanLister interface {
	ListWhiteLabel(ctx context.Context) ([]*domain.WhiteLabelPlan, error)
}

// Handler serves the public white-label plan catalog.
type Handler struct {
	logger *slog.Logger
	plans  PlanLister
}

// NewHandler creates a new public plans handler.
func NewHandler(logger *slog.Logger, plans PlanLister) *Handler {
	return &Handler{
		logger: logger,
		plans:  plans,
	}
}

// PlanResponse is the public shape of a white-label plan. Payment provider
// identifiers are never included.
type PlanResponse struct {
	ID                string      `json:"id"`
	Slug              string      `json:"slug"`
	Name              string      `json:"name"`
	Description       *string     `json:"description"`
	MonthlyPriceCents int64       `json:"monthlyPriceCents"`
	MonthlyPrice      json.Number `json:"monthlyPrice"`
	MaxWorkspaces     int         `json:"maxWorkspaces"`
}

// ListResponse wraps the plan list.
type ListResponse struct {
	Plans []PlanResponse `json:"plans"`
}

// List returns active white-label plans in display order.
// GET /api/public/white-label-plans
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.ListWhiteLabel(r.Context())
	if err != nil {
		common.QueryFailed(w, r, h.logger, "failed to list white-label plans", err)
		return
	}

	resp := ListResponse{Plans: make([]PlanResponse, 0, len(plans))}
	for _, p := range plans {
		resp.Plans = append(resp.Plans, PlanResponse{
			ID:                p.ID.String(),
			Slug:              p.Slug,
			Name:              p.Name,
			Description:       p.Description,
			MonthlyPriceCents: p.MonthlyPriceCents,
			MonthlyPrice:      common.Price(p.MonthlyPrice()),
			MaxWorkspaces:     p.MaxWorkspaces,
		})
	}

	httputil.JSON(w, http.StatusOK, resp)
}
