package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is a principal's role inside a workspace or partner.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// CanManage reports whether the role may modify or delete workspace data.
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin
}

// WorkspaceMember joins a principal to a workspace.
type WorkspaceMember struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	UserID      uuid.UUID
	Email       string
	Role        Role
	JoinedAt    time.Time
	RemovedAt   *time.Time
}

// IsActive returns true if the member has not been removed.
func (m *WorkspaceMember) IsActive() bool {
	return m.RemovedAt == nil
}

// PartnerStaff joins a principal to a partner organization.
type PartnerStaff struct {
	ID        uuid.UUID
	PartnerID uuid.UUID
	UserID    uuid.UUID
	Role      Role
	CreatedAt time.Time
	RemovedAt *time.Time
}

// IsActive returns true if the staff member has not been removed.
func (s *PartnerStaff) IsActive() bool {
	return s.RemovedAt == nil
}
