package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/voicehub/internal/httputil"
	"github.com/tendant/voicehub/pkg/tenancy"
)

// WorkspaceResolver resolves workspace scope for a token and slug.
type WorkspaceResolver interface {
	ResolveWorkspace(ctx context.Context, token, slug string) (*tenancy.WorkspaceContext, error)
}

// SuperAdminResolver resolves platform admin scope for a token.
type SuperAdminResolver interface {
	ResolveSuperAdmin(ctx context.Context, token string) (*tenancy.SuperAdminContext, error)
}

// WorkspaceSlugParam is the route parameter carrying the workspace slug.
const WorkspaceSlugParam = "workspaceSlug"

// RequireWorkspace resolves the workspace named in the route and stores the
// context for handlers. Every denial is reported as the same 401.
func RequireWorkspace(resolver WorkspaceResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug := chi.URLParam(r, WorkspaceSlugParam)

			wc, err := resolver.ResolveWorkspace(r.Context(), httputil.BearerToken(r), slug)
			if err != nil {
				deny(w, r, logger, err, "workspace_slug", slug)
				return
			}

			next.ServeHTTP(w, r.WithContext(tenancy.WithWorkspace(r.Context(), wc)))
		})
	}
}

// RequireSuperAdmin resolves platform admin scope and stores it for handlers.
func RequireSuperAdmin(resolver SuperAdminResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc, err := resolver.ResolveSuperAdmin(r.Context(), httputil.BearerToken(r))
			if err != nil {
				deny(w, r, logger, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(tenancy.WithSuperAdmin(r.Context(), sc)))
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, attrs ...any) {
	attrs = append(attrs, "path", r.URL.Path, "error", err)
	if tenancy.IsDenied(err) {
		logger.Debug("tenant context denied", attrs...)
		httputil.Unauthorized(w)
		return
	}
	logger.Error("tenant context resolution failed", attrs...)
	httputil.InternalError(w)
}
