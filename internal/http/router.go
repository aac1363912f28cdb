package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/voicehub/internal/config"
	"github.com/tendant/voicehub/internal/http/features/agents"
	"github.com/tendant/voicehub/internal/http/features/billing"
	"github.com/tendant/voicehub/internal/http/features/conversations"
	"github.com/tendant/voicehub/internal/http/features/publicplans"
	"github.com/tendant/voicehub/internal/http/features/superadmin"
	"github.com/tendant/voicehub/internal/http/features/workspace"
	"github.com/tendant/voicehub/internal/http/middleware"
	"github.com/tendant/voicehub/internal/httputil"
)

// Resolver resolves both workspace and platform admin scopes.
type Resolver interface {
	middleware.WorkspaceResolver
	middleware.SuperAdminResolver
}

// PlanStore serves both the workspace and white-label catalogs.
type PlanStore interface {
	billing.PlanStore
	publicplans.PlanLister
}

// ConversationStore backs conversation listing, agent counts and usage.
type ConversationStore interface {
	conversations.Store
	agents.ConversationCounter
	billing.MinutesCounter
}

// AgentStore lists and counts agents.
type AgentStore interface {
	agents.AgentLister
	billing.AgentCounter
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger   *slog.Logger
	Resolver Resolver

	Partners      superadmin.PartnerStore
	Workspaces    superadmin.WorkspaceLister
	Members       workspace.MemberLister
	Plans         PlanStore
	Subscriptions billing.SubscriptionStore
	Agents        AgentStore
	Conversations ConversationStore

	RateLimitConfig config.RateLimitConfig
	SecurityHeaders config.SecurityHeadersConfig
	RequestLimits   config.RequestLimitsConfig
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	r.Use(middleware.RequestLimits(cfg.RequestLimits.MaxBodyBytes, cfg.RequestLimits.RequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)

	publicPlansHandler := publicplans.NewHandler(cfg.Logger, cfg.Plans)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters[middleware.RateLimitPublic])
		r.Get("/api/public/white-label-plans", publicPlansHandler.List)
	})

	superAdminHandler := superadmin.NewHandler(cfg.Logger, cfg.Partners, cfg.Workspaces)
	r.Route("/api/super-admin", func(r chi.Router) {
		r.Use(rateLimiters[middleware.RateLimitAdmin])
		r.Use(middleware.RequireSuperAdmin(cfg.Resolver, cfg.Logger))
		r.Get("/partners", superAdminHandler.ListPartners)
		r.Get("/partners/{id}", superAdminHandler.GetPartner)
		r.Get("/partners/{id}/workspaces", superAdminHandler.ListPartnerWorkspaces)
	})

	workspaceHandler := workspace.NewHandler(cfg.Logger, cfg.Members)
	conversationsHandler := conversations.NewHandler(cfg.Logger, cfg.Conversations)
	agentsHandler := agents.NewHandler(cfg.Logger, cfg.Agents, cfg.Conversations)
	billingHandler := billing.NewHandler(cfg.Logger, cfg.Plans, cfg.Subscriptions, cfg.Agents, cfg.Conversations)
	r.Route("/api/w/{"+middleware.WorkspaceSlugParam+"}", func(r chi.Router) {
		r.Use(rateLimiters[middleware.RateLimitAPI])
		r.Use(middleware.RequireWorkspace(cfg.Resolver, cfg.Logger))
		r.Get("/", workspaceHandler.Get)
		r.Get("/members", workspaceHandler.Members)
		r.Get("/conversations", conversationsHandler.List)
		r.Get("/conversations/{id}", conversationsHandler.Get)
		r.Delete("/conversations/{id}", conversationsHandler.Delete)
		r.Get("/agents", agentsHandler.List)
		r.Get("/subscription/plans", billingHandler.Plans)
		r.Get("/limits", billingHandler.Limits)
	})

	return r
}
