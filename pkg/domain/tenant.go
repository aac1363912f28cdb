package domain

import (
	"time"

	"github.com/google/uuid"
)

// Partner is a reseller that owns workspaces and can white-label pricing.
type Partner struct {
	ID                uuid.UUID
	Name              string
	Slug              string
	BrandName         *string
	LogoURL           *string
	PrimaryColor      *string
	CustomDomain      *string
	IsPlatformPartner bool
	StripeCustomerID  *string
	WhiteLabelPlanID  *uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time
}

// Workspace is the primary tenant boundary. Slug is unique and never changes.
type Workspace struct {
	ID        uuid.UUID
	PartnerID uuid.UUID
	Name      string
	Slug      string
	Timezone  string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsDeleted returns true if the workspace has been soft deleted.
func (w *Workspace) IsDeleted() bool {
	return w.DeletedAt != nil
}

// WorkspaceSummary is a workspace row enriched for partner listings.
type WorkspaceSummary struct {
	Workspace
	MemberCount        int
	PlanName           *string
	SubscriptionStatus *SubscriptionStatus
}
