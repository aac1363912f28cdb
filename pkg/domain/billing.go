package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubscriptionStatus is the billing state of a workspace subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// Plan is a workspace plan. PartnerID is nil for platform defaults and set
// for a partner's white-label variant.
type Plan struct {
	ID                uuid.UUID
	Slug              string
	Name              string
	Description       *string
	MonthlyPriceCents int64
	MaxAgents         int
	IncludedMinutes   int
	OverageRateCents  int64
	Features          json.RawMessage
	StripePriceID     *string
	PartnerID         *uuid.UUID
	IsActive          bool
	SortOrder         int
}

// MonthlyPrice returns the monthly price in currency units.
func (p *Plan) MonthlyPrice() decimal.Decimal {
	return CentsToUnits(p.MonthlyPriceCents)
}

// WhiteLabelPlan is a reseller plan sold to partners.
type WhiteLabelPlan struct {
	ID                uuid.UUID
	Slug              string
	Name              string
	Description       *string
	MonthlyPriceCents int64
	MaxWorkspaces     int
	StripePriceID     *string
	IsActive          bool
	SortOrder         int
}

// MonthlyPrice returns the monthly price in currency units.
func (p *WhiteLabelPlan) MonthlyPrice() decimal.Decimal {
	return CentsToUnits(p.MonthlyPriceCents)
}

// WorkspaceSubscription is the current plan assignment of a workspace.
type WorkspaceSubscription struct {
	ID                   uuid.UUID
	WorkspaceID          uuid.UUID
	PlanID               uuid.UUID
	Status               SubscriptionStatus
	CurrentPeriodStart   *time.Time
	CurrentPeriodEnd     *time.Time
	StripeSubscriptionID *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// GrantsPlan reports whether the subscription still entitles the workspace
// to its plan. A past_due subscription keeps the plan while payment is retried.
func (s *WorkspaceSubscription) GrantsPlan() bool {
	switch s.Status {
	case SubscriptionStatusActive, SubscriptionStatusTrialing, SubscriptionStatusPastDue:
		return true
	default:
		return false
	}
}

// CentsToUnits converts an integer amount of cents to currency units.
func CentsToUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
