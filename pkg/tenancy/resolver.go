// Package tenancy resolves the authenticated principal and the tenant scope
// (workspace or platform) a request is allowed to act in.
package tenancy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/voicehub/pkg/auth"
	"github.com/tendant/voicehub/pkg/domain"
	"github.com/tendant/voicehub/pkg/repository"
)

// DefaultLastLoginTimeout bounds each background write.
const DefaultLastLoginTimeout = 5 * time.Second

// SessionValidator turns an access token into a principal.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*domain.Principal, error)
}

// WorkspaceStore looks up live workspaces.
type WorkspaceStore interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Workspace, error)
}

// MemberStore looks up active workspace members and partner staff.
type MemberStore interface {
	GetActiveWorkspaceMember(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.WorkspaceMember, error)
	GetActivePartnerStaff(ctx context.Context, partnerID, userID uuid.UUID) (*domain.PartnerStaff, error)
}

// SuperAdminStore looks up platform administrators.
type SuperAdminStore interface {
	GetByPrincipalID(ctx context.Context, userID uuid.UUID) (*domain.SuperAdmin, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// SessionToucher stamps a session as recently used.
type SessionToucher interface {
	UpdateLastSeen(ctx context.Context, id uuid.UUID) error
}

// Recorder receives resolution telemetry.
type Recorder interface {
	Resolution(scope Scope, outcome string)
	LastLoginFailed()
}

type nopRecorder struct{}

func (nopRecorder) Resolution(Scope, string) {}
func (nopRecorder) LastLoginFailed()         {}

// Config holds resolver configuration.
type Config struct {
	// LastLoginTimeout bounds the background last-login and last-seen writes.
	LastLoginTimeout time.Duration
}

// Resolver establishes tenant context for every API request.
type Resolver struct {
	config       Config
	sessions     SessionValidator
	workspaces   WorkspaceStore
	members      MemberStore
	superAdmins  SuperAdminStore
	sessionTouch SessionToucher
	db           repository.Querier
	recorder     Recorder
	logger       *slog.Logger
	now          func() time.Time

	mu       sync.Mutex
	draining bool
	inflight sync.WaitGroup
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRecorder sets the telemetry recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Resolver) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithSessionTouch records session last-seen times in the background after
// each successful token validation.
func WithSessionTouch(sessions SessionToucher) Option {
	return func(r *Resolver) {
		r.sessionTouch = sessions
	}
}

// WithClock overrides the time source used for last-login stamps.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// NewResolver creates a new resolver. db is the service-role handle handed
// to route handlers once a scope is authorized.
func NewResolver(
	config Config,
	sessions SessionValidator,
	workspaces WorkspaceStore,
	members MemberStore,
	superAdmins SuperAdminStore,
	db repository.Querier,
	logger *slog.Logger,
	opts ...Option,
) *Resolver {
	if config.LastLoginTimeout <= 0 {
		config.LastLoginTimeout = DefaultLastLoginTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		config:      config,
		sessions:    sessions,
		workspaces:  workspaces,
		members:     members,
		superAdmins: superAdmins,
		db:          db,
		recorder:    nopRecorder{},
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveWorkspace authorizes the bearer of token for the workspace with the
// given slug. Membership is checked first, then partner staff, then super
// admin; the first match is recorded as the access path.
func (r *Resolver) ResolveWorkspace(ctx context.Context, token, slug string) (*WorkspaceContext, error) {
	wc, err := r.resolveWorkspace(ctx, token, slug)
	r.recorder.Resolution(ScopeWorkspace, Outcome(err))
	return wc, err
}

func (r *Resolver) resolveWorkspace(ctx context.Context, token, slug string) (*WorkspaceContext, error) {
	principal, err := r.principal(ctx, token)
	if err != nil {
		return nil, err
	}

	if slug == "" {
		return nil, fmt.Errorf("%w: empty workspace slug", ErrNotFound)
	}
	workspace, err := r.workspaces.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrWorkspaceNotFound) {
			return nil, fmt.Errorf("%w: workspace %q", ErrNotFound, slug)
		}
		return nil, fmt.Errorf("%w: load workspace: %w", ErrUpstream, err)
	}
	if workspace.IsDeleted() {
		return nil, fmt.Errorf("%w: workspace %q", ErrNotFound, slug)
	}

	wc := &WorkspaceContext{
		Workspace: workspace,
		PartnerID: workspace.PartnerID,
		Principal: principal,
		DB:        r.db,
	}

	member, err := r.members.GetActiveWorkspaceMember(ctx, workspace.ID, principal.ID)
	switch {
	case err == nil && member.IsActive():
		role := member.Role
		wc.Access = AccessMember
		wc.Role = &role
		return wc, nil
	case err != nil && !errors.Is(err, domain.ErrMemberNotFound):
		return nil, fmt.Errorf("%w: load membership: %w", ErrUpstream, err)
	}

	staff, err := r.members.GetActivePartnerStaff(ctx, workspace.PartnerID, principal.ID)
	switch {
	case err == nil && staff.IsActive():
		wc.Access = AccessPartnerStaff
		return wc, nil
	case err != nil && !errors.Is(err, domain.ErrPartnerStaffNotFound):
		return nil, fmt.Errorf("%w: load partner staff: %w", ErrUpstream, err)
	}

	_, err = r.superAdmins.GetByPrincipalID(ctx, principal.ID)
	switch {
	case err == nil:
		wc.Access = AccessSuperAdmin
		return wc, nil
	case errors.Is(err, domain.ErrSuperAdminNotFound):
		return nil, fmt.Errorf("%w: principal %s has no access to workspace %q", ErrForbidden, principal.ID, slug)
	default:
		return nil, fmt.Errorf("%w: load super admin: %w", ErrUpstream, err)
	}
}

// ResolveSuperAdmin authorizes the bearer of token for platform routes. On
// success it records the login time in the background; that write never
// affects the result.
func (r *Resolver) ResolveSuperAdmin(ctx context.Context, token string) (*SuperAdminContext, error) {
	sc, err := r.resolveSuperAdmin(ctx, token)
	r.recorder.Resolution(ScopeSuperAdmin, Outcome(err))
	return sc, err
}

func (r *Resolver) resolveSuperAdmin(ctx context.Context, token string) (*SuperAdminContext, error) {
	principal, err := r.principal(ctx, token)
	if err != nil {
		return nil, err
	}

	admin, err := r.superAdmins.GetByPrincipalID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, domain.ErrSuperAdminNotFound) {
			return nil, fmt.Errorf("%w: principal %s is not a super admin", ErrForbidden, principal.ID)
		}
		return nil, fmt.Errorf("%w: load super admin: %w", ErrUpstream, err)
	}

	r.touchLastLogin(ctx, admin.ID)

	return &SuperAdminContext{
		Principal:  principal,
		SuperAdmin: admin,
		DB:         r.db,
	}, nil
}

func (r *Resolver) principal(ctx context.Context, token string) (*domain.Principal, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", ErrUnauthenticated)
	}
	principal, err := r.sessions.Validate(ctx, token)
	if err != nil {
		if auth.IsAuthError(err) {
			return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
		}
		return nil, fmt.Errorf("%w: validate session: %w", ErrUpstream, err)
	}
	if r.sessionTouch != nil && principal.SessionID != uuid.Nil {
		r.touchSession(ctx, principal.SessionID)
	}
	return principal, nil
}

func (r *Resolver) touchLastLogin(ctx context.Context, adminID uuid.UUID) {
	at := r.now()
	r.goBackground(ctx, func(bg context.Context) {
		if err := r.superAdmins.UpdateLastLogin(bg, adminID, at); err != nil {
			r.recorder.LastLoginFailed()
			r.logger.Warn("failed to update super admin last login",
				"super_admin_id", adminID,
				"error", err,
			)
		}
	})
}

func (r *Resolver) touchSession(ctx context.Context, sessionID uuid.UUID) {
	r.goBackground(ctx, func(bg context.Context) {
		if err := r.sessionTouch.UpdateLastSeen(bg, sessionID); err != nil {
			r.logger.Warn("failed to update session last seen",
				"session_id", sessionID,
				"error", err,
			)
		}
	})
}

// goBackground runs fn detached from the request and bounded by
// LastLoginTimeout. Once Drain has started, fn is skipped.
func (r *Resolver) goBackground(ctx context.Context, fn func(context.Context)) {
	r.mu.Lock()
	if r.draining {
		r.mu.Unlock()
		r.logger.Debug("skipping background write during shutdown")
		return
	}
	r.inflight.Add(1)
	r.mu.Unlock()

	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.config.LastLoginTimeout)
	go func() {
		defer r.inflight.Done()
		defer cancel()
		fn(bg)
	}()
}

// Drain stops new background writes and waits for pending ones to finish or
// ctx to expire.
func (r *Resolver) Drain(ctx context.Context) error {
	r.mu.Lock()
	r.draining = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
