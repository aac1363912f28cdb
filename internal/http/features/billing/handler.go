package billing

import (
	"context"
	"encoding/json"
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

// PlanStore reads the plan catalog.
type PlanStore interface {
	ListCatalog(ctx context.Context, partnerID uuid.UUID) ([]*domain.Plan, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error)
}

// SubscriptionStore reads workspace subscriptions.
type SubscriptionStore interface {
	GetByWorkspaceID(ctx context.Context, workspaceID uuid.UUID) (*domain.WorkspaceSubscription, error)
}

// AgentCounter counts a workspace's live agents.
type AgentCounter interface {
	CountByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int, error)
}

// MinutesCounter sums billable conversation minutes.
type MinutesCounter interface {
	MinutesUsedSince(ctx context.Context, workspaceID uuid.UUID, since time.Time) (int, error)
}

// Handler handles subscription and plan limit endpoints.
type Handler struct {
	logger        *slog.Logger
	plans         PlanStore
	subscriptions SubscriptionStore
	agents        AgentCounter
	minutes       MinutesCounter
	now           func() time.Time
}

// NewHandler creates a new billing handler.
func NewHandler(
	logger *slog.Logger,
	plans PlanStore,
	subscriptions SubscriptionStore,
	agents AgentCounter,
	minutes MinutesCounter,
) *Handler {
	return &Handler{
		logger:        logger,
		plans:         plans,
		subscriptions: subscriptions,
		agents:        agents,
		minutes:       minutes,
		now:           time.Now,
	}
}

// PlanResponse is the public shape of a workspace plan. The payment provider
// price id is omitted.
type PlanResponse struct {
	ID                string          `json:"id"`
	Slug              string          `json:"slug"`
	Name              string          `json:"name"`
	Description       *string         `json:"description"`
	MonthlyPriceCents int64           `json:"monthlyPriceCents"`
	MonthlyPrice      json.Number     `json:"monthlyPrice"`
	MaxAgents         int             `json:"maxAgents"`
	IncludedMinutes   int             `json:"includedMinutes"`
	OverageRateCents  int64           `json:"overageRateCents"`
	Features          json.RawMessage `json:"features"`
	IsCurrent         bool            `json:"isCurrent"`
}

// PlansResponse lists the plans a workspace can subscribe to.
type PlansResponse struct {
	Plans         []PlanResponse `json:"plans"`
	CurrentPlanID *string        `json:"currentPlanId"`
	Status        *string        `json:"status"`
}

// LimitsResponse reports plan limits against current usage.
type LimitsResponse struct {
	PlanID          *string   `json:"planId"`
	PlanName        *string   `json:"planName"`
	MaxAgents       int       `json:"maxAgents"`
	AgentCount      int       `json:"agentCount"`
	IncludedMinutes int       `json:"includedMinutes"`
	MinutesUsed     int       `json:"minutesUsed"`
	PeriodStart     time.Time `json:"periodStart"`
	PeriodEnd       time.Time `json:"periodEnd"`
	CanCreateAgent  bool      `json:"canCreateAgent"`
}

func toPlanResponse(p *domain.Plan, currentPlanID *uuid.UUID) PlanResponse {
	features := p.Features
	if len(features) == 0 {
		features = json.RawMessage(`{}`)
	}
	return PlanResponse{
		ID:                p.ID.String(),
		Slug:              p.Slug,
		Name:              p.Name,
		Description:       p.Description,
		MonthlyPriceCents: p.MonthlyPriceCents,
		MonthlyPrice:      common.Price(p.MonthlyPrice()),
		MaxAgents:         p.MaxAgents,
		IncludedMinutes:   p.IncludedMinutes,
		OverageRateCents:  p.OverageRateCents,
		Features:          features,
		IsCurrent:         currentPlanID != nil && *currentPlanID == p.ID,
	}
}

// subscription returns the workspace subscription, or nil when there is none.
func (h *Handler) subscription(ctx context.Context, workspaceID uuid.UUID) (*domain.WorkspaceSubscription, error) {
	sub, err := h.subscriptions.GetByWorkspaceID(ctx, workspaceID)
	if errors.Is(err, domain.ErrSubscriptionNotFound) {
		return nil, nil
	}
	return sub, err
}

// Plans returns the workspace's plan catalog and marks the current plan.
// GET /api/w/{workspaceSlug}/subscription/plans
func (h *Handler) Plans(w http.ResponseWriter, r *http.Request) {
	wc, ok := common.Workspace(w, r)
	if !ok {
		return
	}

	var (
		catalog []*domain.Plan
		sub     *domain.WorkspaceSubscription
	)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		catalog, err = h.plans.ListCatalog(gctx, wc.PartnerID)
		return err
	})
	g.Go(func() error {
		var err error
		sub, err = h.subscription(gctx, wc.Workspace.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		common.QueryFailed(w, r, h.logger, "failed to load subscription plans", err, "workspace_id", wc.Workspace.ID)
		return
	}

	resp := PlansResponse{Plans: make([]PlanResponse, 0, len(catalog)+1)}
	if sub != nil {
		status := string(sub.Status)
		resp.Status = &status
	}

	var currentPlanID *uuid.UUID
	if granting := grantingSubscription(sub); granting != nil {
		currentPlanID = &granting.PlanID
		id := granting.PlanID.String()
		resp.CurrentPlanID = &id
	}

	listed := false
	for _, p := range catalog {
		if currentPlanID != nil && p.ID == *currentPlanID {
			listed = true
		}
		resp.Plans = append(resp.Plans, toPlanResponse(p, currentPlanID))
	}

	// A workspace can stay on a plan that is no longer in its catalog, such as
	// a platform plan after the partner added variants.
	if currentPlanID != nil && !listed {
		plan, err := h.plans.GetByID(r.Context(), *currentPlanID)
		switch {
		case err == nil:
			resp.Plans = append(resp.Plans, toPlanResponse(plan, currentPlanID))
		case !errors.Is(err, domain.ErrPlanNotFound):
			common.QueryFailed(w, r, h.logger, "failed to load current plan", err, "workspace_id", wc.Workspace.ID)
			return
		}
	}

	httputil.JSON(w, http.StatusOK, resp)
}

// Limits reports the workspace's plan limits and current usage.
// GET /api/w/{workspaceSlug}/limits
func (h *Handler) Limits(w http.ResponseWriter, r *http.Request) {
	wc, ok := common.Workspace(w, r)
	if !ok {
		return
	}
	workspaceID := wc.Workspace.ID

	sub, err := h.subscription(r.Context(), workspaceID)
	if err != nil {
		common.QueryFailed(w, r, h.logger, "failed to load subscription", err, "workspace_id", workspaceID)
		return
	}
	sub = grantingSubscription(sub)

	plan, err := h.effectivePlan(r.Context(), wc.PartnerID, sub)
	if err != nil {
		common.QueryFailed(w, r, h.logger, "failed to load plan", err, "workspace_id", workspaceID)
		return
	}

	periodStart, periodEnd := billingPeriod(sub, h.now())

	var agentCount, minutesUsed int
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		agentCount, err = h.agents.CountByWorkspace(gctx, workspaceID)
		return err
	})
	g.Go(func() error {
		var err error
		minutesUsed, err = h.minutes.MinutesUsedSince(gctx, workspaceID, periodStart)
		return err
	})
	if err := g.Wait(); err != nil {
		common.QueryFailed(w, r, h.logger, "failed to load usage", err, "workspace_id", workspaceID)
		return
	}

	resp := LimitsResponse{
		AgentCount:  agentCount,
		MinutesUsed: minutesUsed,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}
	if plan != nil {
		id := plan.ID.String()
		name := plan.Name
		resp.PlanID = &id
		resp.PlanName = &name
		resp.MaxAgents = plan.MaxAgents
		resp.IncludedMinutes = plan.IncludedMinutes
	}
	resp.CanCreateAgent = resp.MaxAgents == 0 || agentCount < resp.MaxAgents

	httputil.JSON(w, http.StatusOK, resp)
}

// grantingSubscription returns sub if it still entitles the workspace to its
// plan, and nil otherwise.
func grantingSubscription(sub *domain.WorkspaceSubscription) *domain.WorkspaceSubscription {
	if sub == nil || !sub.GrantsPlan() {
		return nil
	}
	return sub
}

// effectivePlan returns the subscribed plan, or the cheapest catalog plan
// when the workspace has no granting subscription. It returns nil if the catalog is empty.
func (h *Handler) effectivePlan(ctx context.Context, partnerID uuid.UUID, sub *domain.WorkspaceSubscription) (*domain.Plan, error) {
	if sub != nil {
		plan, err := h.plans.GetByID(ctx, sub.PlanID)
		if err == nil || !errors.Is(err, domain.ErrPlanNotFound) {
			return plan, err
		}
	}

	catalog, err := h.plans.ListCatalog(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	var cheapest *domain.Plan
	for _, p := range catalog {
		if cheapest == nil || p.MonthlyPriceCents < cheapest.MonthlyPriceCents {
			cheapest = p
		}
	}
	return cheapest, nil
}

// billingPeriod returns the subscription period, or the calendar month (UTC)
// containing now when the subscription does not carry one.
func billingPeriod(sub *domain.WorkspaceSubscription, now time.Time) (time.Time, time.Time) {
	if sub != nil && sub.CurrentPeriodStart != nil && sub.CurrentPeriodEnd != nil {
		return *sub.CurrentPeriodStart, *sub.CurrentPeriodEnd
	}
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
