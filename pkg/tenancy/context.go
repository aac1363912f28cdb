package tenancy

import (
	"context"

	"github.com/google/uuid"
	"github.com/tendant/voicehub/pkg/domain"
	"github.com/tendant/voicehub/pkg/repository"
)

// Access records which authorization path admitted a principal to a workspace.
type Access string

const (
	AccessMember       Access = "member"
	AccessPartnerStaff Access = "partner_staff"
	AccessSuperAdmin   Access = "super_admin"
)

// Scope names the kind of context being resolved.
type Scope string

const (
	ScopeWorkspace  Scope = "workspace"
	ScopeSuperAdmin Scope = "super_admin"
)

// WorkspaceContext is the authorized scope for a workspace route.
type WorkspaceContext struct {
	Workspace *domain.Workspace
	PartnerID uuid.UUID
	Principal *domain.Principal
	Access    Access
	// Role is set only when Access is AccessMember.
	Role *domain.Role
	// DB is the service-role handle. Every query issued through it must be
	// scoped by Workspace.ID or PartnerID.
	DB repository.Querier
}

// CanManage reports whether the caller may modify workspace data. Partner
// staff and super admins always can; members need an owner or admin role.
func (c *WorkspaceContext) CanManage() bool {
	switch c.Access {
	case AccessPartnerStaff, AccessSuperAdmin:
		return true
	case AccessMember:
		return c.Role != nil && c.Role.CanManage()
	}
	return false
}

// SuperAdminContext is the authorized scope for a platform admin route.
type SuperAdminContext struct {
	Principal  *domain.Principal
	SuperAdmin *domain.SuperAdmin
	DB         repository.Querier
}

type workspaceKey struct{}

type superAdminKey struct{}

// WithWorkspace stores a workspace context on ctx.
func WithWorkspace(ctx context.Context, wc *WorkspaceContext) context.Context {
	return context.WithValue(ctx, workspaceKey{}, wc)
}

// WorkspaceFromContext returns the workspace context stored by the middleware.
func WorkspaceFromContext(ctx context.Context) (*WorkspaceContext, bool) {
	wc, ok := ctx.Value(workspaceKey{}).(*WorkspaceContext)
	return wc, ok && wc != nil
}

// WithSuperAdmin stores a super admin context on ctx.
func WithSuperAdmin(ctx context.Context, sc *SuperAdminContext) context.Context {
	return context.WithValue(ctx, superAdminKey{}, sc)
}

// SuperAdminFromContext returns the super admin context stored by the middleware.
func SuperAdminFromContext(ctx context.Context) (*SuperAdminContext, bool) {
	sc, ok := ctx.Value(superAdminKey{}).(*SuperAdminContext)
	return sc, ok && sc != nil
}
