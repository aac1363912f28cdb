// Package common holds helpers shared by feature handlers.
package common

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tendant/voicehub/internal/httputil"
	"github.com/tendant/voicehub/pkg/domain"
	"github.com/tendant/voicehub/pkg/tenancy"
)

// Workspace returns the resolved workspace scope. It writes a 401 and
// returns false if the route is not behind RequireWorkspace.
func Workspace(w http.ResponseWriter, r *http.Request) (*tenancy.WorkspaceContext, bool) {
	wc, ok := tenancy.WorkspaceFromContext(r.Context())
	if !ok {
		httputil.Unauthorized(w)
	}
	return wc, ok
}

// SuperAdmin returns the resolved platform admin scope.
func SuperAdmin(w http.ResponseWriter, r *http.Request) (*tenancy.SuperAdminContext, bool) {
	sc, ok := tenancy.SuperAdminFromContext(r.Context())
	if !ok {
		httputil.Unauthorized(w)
	}
	return sc, ok
}

// BadRequest writes a 400 if err is a validation error and reports whether it did.
func BadRequest(w http.ResponseWriter, err error) bool {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		httputil.Error(w, http.StatusBadRequest, verr.Error())
		return true
	}
	return false
}

// QueryFailed logs a failed query with its detail and writes a generic 500.
func QueryFailed(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error, attrs ...any) {
	attrs = append(attrs, "path", r.URL.Path, "error", err)
	logger.ErrorContext(r.Context(), msg, attrs...)
	httputil.InternalError(w)
}

// UUIDParam parses a UUID route parameter.
func UUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.NewValidationError(name, "must be a UUID")
	}
	return id, nil
}

// Price renders an exact decimal amount as a JSON number.
func Price(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
