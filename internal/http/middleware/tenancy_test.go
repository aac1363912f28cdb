package middleware

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/voicehub/pkg/domain"
	"github.com/tendant/voicehub/pkg/tenancy"
)

type fakeResolver struct {
	workspaceFn  func(token, slug string) (*tenancy.WorkspaceContext, error)
	superAdminFn func(token string) (*tenancy.SuperAdminContext, error)
}

func (f *fakeResolver) ResolveWorkspace(ctx context.Context, token, slug string) (*tenancy.WorkspaceContext, error) {
	return f.workspaceFn(token, slug)
}

func (f *fakeResolver) ResolveSuperAdmin(ctx context.Context, token string) (*tenancy.SuperAdminContext, error) {
	return f.superAdminFn(token)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireWorkspace(t *testing.T) {
	ws := &domain.Workspace{ID: uuid.New(), Slug: "acme"}

	resolver := &fakeResolver{workspaceFn: func(token, slug string) (*tenancy.WorkspaceContext, error) {
		switch {
		case token == "":
			return nil, fmt.Errorf("%w: missing token", tenancy.ErrUnauthenticated)
		case token == "broken":
			return nil, fmt.Errorf("%w: connection refused", tenancy.ErrUpstream)
		case slug == "deleted":
			return nil, fmt.Errorf("%w: workspace", tenancy.ErrNotFound)
		case slug != "acme":
			return nil, fmt.Errorf("%w: not a member", tenancy.ErrForbidden)
		}
		return &tenancy.WorkspaceContext{Workspace: ws, Access: tenancy.AccessMember}, nil
	}}

	r := chi.NewRouter()
	r.With(RequireWorkspace(resolver, discardLogger())).Get("/api/w/{workspaceSlug}", func(w http.ResponseWriter, r *http.Request) {
		wc, ok := tenancy.WorkspaceFromContext(r.Context())
		require.True(t, ok)
		w.Write([]byte(wc.Workspace.Slug))
	})

	tests := []struct {
		name     string
		path     string
		token    string
		wantCode int
		wantBody string
	}{
		{"member", "/api/w/acme", "good", http.StatusOK, "acme"},
		{"missing token", "/api/w/acme", "", http.StatusUnauthorized, `{"error":"unauthorized"}`},
		{"other workspace", "/api/w/globex", "good", http.StatusUnauthorized, `{"error":"unauthorized"}`},
		{"deleted workspace", "/api/w/deleted", "good", http.StatusUnauthorized, `{"error":"unauthorized"}`},
		{"upstream failure", "/api/w/acme", "broken", http.StatusInternalServerError, `{"error":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, tt.wantBody, w.Body.String())
			} else {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestRequireWorkspace_CookieToken(t *testing.T) {
	var gotToken string
	resolver := &fakeResolver{workspaceFn: func(token, slug string) (*tenancy.WorkspaceContext, error) {
		gotToken = token
		return &tenancy.WorkspaceContext{Workspace: &domain.Workspace{Slug: slug}}, nil
	}}

	r := chi.NewRouter()
	r.With(RequireWorkspace(resolver, discardLogger())).Get("/api/w/{workspaceSlug}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/w/acme", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "cookie-token", gotToken)
}

func TestRequireSuperAdmin(t *testing.T) {
	resolver := &fakeResolver{superAdminFn: func(token string) (*tenancy.SuperAdminContext, error) {
		switch token {
		case "admin":
			return &tenancy.SuperAdminContext{SuperAdmin: &domain.SuperAdmin{ID: uuid.New()}}, nil
		case "broken":
			return nil, tenancy.ErrUpstream
		}
		return nil, tenancy.ErrForbidden
	}}

	handler := RequireSuperAdmin(resolver, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := tenancy.SuperAdminFromContext(r.Context())
		require.True(t, ok)
		w.WriteHeader(http.StatusOK)
	}))

	for token, want := range map[string]int{
		"admin":  http.StatusOK,
		"member": http.StatusUnauthorized,
		"broken": http.StatusInternalServerError,
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/super-admin/partners", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, "token %s", token)
	}
}
