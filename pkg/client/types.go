package client

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Page is a paginated list envelope.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// Conversation is a logged agent interaction.
type Conversation struct {
	ID              string     `json:"id"`
	AgentID         *string    `json:"agentId"`
	AgentName       *string    `json:"agentName"`
	Direction       string     `json:"direction"`
	Status          string     `json:"status"`
	CallerNumber    *string    `json:"callerNumber"`
	DurationSeconds int        `json:"durationSeconds"`
	Summary         *string    `json:"summary"`
	StartedAt       time.Time  `json:"startedAt"`
	EndedAt         *time.Time `json:"endedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Plan is a workspace plan with its current-plan marker.
type Plan struct {
	ID                string          `json:"id"`
	Slug              string          `json:"slug"`
	Name              string          `json:"name"`
	Description       *string         `json:"description"`
	MonthlyPriceCents int64           `json:"monthlyPriceCents"`
	MonthlyPrice      decimal.Decimal `json:"monthlyPrice"`
	MaxAgents         int             `json:"maxAgents"`
	IncludedMinutes   int             `json:"includedMinutes"`
	OverageRateCents  int64           `json:"overageRateCents"`
	Features          json.RawMessage `json:"features"`
	IsCurrent         bool            `json:"isCurrent"`
}

// SubscriptionPlans is the plan catalog of a workspace.
type SubscriptionPlans struct {
	Plans         []Plan  `json:"plans"`
	CurrentPlanID *string `json:"currentPlanId"`
	Status        *string `json:"status"`
}

// Current returns the subscribed plan, if any.
func (s SubscriptionPlans) Current() (Plan, bool) {
	for _, p := range s.Plans {
		if p.IsCurrent {
			return p, true
		}
	}
	return Plan{}, false
}

// Limits reports plan limits against usage for the current period.
type Limits struct {
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

// WhiteLabelPlan is a reseller plan.
type WhiteLabelPlan struct {
	ID                string          `json:"id"`
	Slug              string          `json:"slug"`
	Name              string          `json:"name"`
	Description       *string         `json:"description"`
	MonthlyPriceCents int64           `json:"monthlyPriceCents"`
	MonthlyPrice      decimal.Decimal `json:"monthlyPrice"`
	MaxWorkspaces     int             `json:"maxWorkspaces"`
}

// WorkspaceSummary is a row of a partner's workspace listing.
type WorkspaceSummary struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Slug               string    `json:"slug"`
	CreatedAt          time.Time `json:"createdAt"`
	MemberCount        int       `json:"memberCount"`
	PlanName           *string   `json:"planName"`
	SubscriptionStatus *string   `json:"subscriptionStatus"`
}
