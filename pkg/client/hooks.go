package client

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
)

// ErrMissingParam is returned without a request when a required parameter is empty.
var ErrMissingParam = errors.New("required parameter is empty")

// Cache policies per endpoint.
var (
	ConversationsOptions     = QueryOptions{StaleTime: 30 * time.Second, GCTime: 5 * time.Minute, RefetchInterval: 30 * time.Second}
	SubscriptionPlansOptions = QueryOptions{StaleTime: 5 * time.Minute, GCTime: 10 * time.Minute}
	LimitsOptions            = QueryOptions{StaleTime: 60 * time.Second, GCTime: 5 * time.Minute}
	WhiteLabelPlansOptions   = QueryOptions{StaleTime: 5 * time.Minute, GCTime: 10 * time.Minute}
	PartnerWorkspacesOptions = QueryOptions{StaleTime: 60 * time.Second, GCTime: 5 * time.Minute}
)

// NoParams is the parameter type of endpoints that take none.
type NoParams struct{}

// WorkspaceParams selects a workspace.
type WorkspaceParams struct {
	WorkspaceSlug string `json:"workspaceSlug"`
}

// ConversationParams selects a page of a workspace's conversations.
type ConversationParams struct {
	WorkspaceSlug string `json:"workspaceSlug"`
	Page          int    `json:"page"`
	PageSize      int    `json:"pageSize"`
	Status        string `json:"status,omitempty"`
	Direction     string `json:"direction,omitempty"`
	AgentID       string `json:"agentId,omitempty"`
}

// PartnerWorkspacesParams selects a page of a partner's workspaces.
type PartnerWorkspacesParams struct {
	PartnerID string `json:"partnerId"`
	Page      int    `json:"page"`
	PageSize  int    `json:"pageSize"`
}

func pageDefaults(page, pageSize int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

func pageQuery(page, pageSize int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	return q
}

func workspacePath(slug, suffix string) string {
	return "/api/w/" + url.PathEscape(slug) + suffix
}

// policy bounds shared fetches by the client's request timeout.
func (c *Client) policy(opts QueryOptions) QueryOptions {
	opts.FetchTimeout = c.timeout
	return opts
}

func (c *Client) registerHooks() {
	c.Conversations = NewQuery("conversations", c.policy(ConversationsOptions),
		func(ctx context.Context, p ConversationParams) (Page[Conversation], error) {
			var out Page[Conversation]
			if p.WorkspaceSlug == "" {
				return out, ErrMissingParam
			}
			q := pageQuery(p.Page, p.PageSize)
			if p.Status != "" {
				q.Set("status", p.Status)
			}
			if p.Direction != "" {
				q.Set("direction", p.Direction)
			}
			if p.AgentID != "" {
				q.Set("agent_id", p.AgentID)
			}
			err := c.get(ctx, workspacePath(p.WorkspaceSlug, "/conversations"), q, &out)
			return out, err
		},
		func(p ConversationParams) ConversationParams {
			p.Page, p.PageSize = pageDefaults(p.Page, p.PageSize)
			return p
		},
	)

	c.SubscriptionPlans = NewQuery("subscription-plans", c.policy(SubscriptionPlansOptions),
		func(ctx context.Context, p WorkspaceParams) (SubscriptionPlans, error) {
			var out SubscriptionPlans
			if p.WorkspaceSlug == "" {
				return out, ErrMissingParam
			}
			err := c.get(ctx, workspacePath(p.WorkspaceSlug, "/subscription/plans"), nil, &out)
			return out, err
		}, nil)

	c.Limits = NewQuery("limits", c.policy(LimitsOptions),
		func(ctx context.Context, p WorkspaceParams) (Limits, error) {
			var out Limits
			if p.WorkspaceSlug == "" {
				return out, ErrMissingParam
			}
			err := c.get(ctx, workspacePath(p.WorkspaceSlug, "/limits"), nil, &out)
			return out, err
		}, nil)

	c.WhiteLabelPlans = NewQuery("white-label-plans", c.policy(WhiteLabelPlansOptions),
		func(ctx context.Context, _ NoParams) ([]WhiteLabelPlan, error) {
			var out struct {
				Plans []WhiteLabelPlan `json:"plans"`
			}
			err := c.get(ctx, "/api/public/white-label-plans", nil, &out)
			return out.Plans, err
		}, nil)

	c.PartnerWorkspaces = NewQuery("partner-workspaces", c.policy(PartnerWorkspacesOptions),
		func(ctx context.Context, p PartnerWorkspacesParams) (Page[WorkspaceSummary], error) {
			var out Page[WorkspaceSummary]
			if p.PartnerID == "" {
				return out, ErrMissingParam
			}
			path := "/api/super-admin/partners/" + url.PathEscape(p.PartnerID) + "/workspaces"
			err := c.get(ctx, path, pageQuery(p.Page, p.PageSize), &out)
			return out, err
		},
		func(p PartnerWorkspacesParams) PartnerWorkspacesParams {
			p.Page, p.PageSize = pageDefaults(p.Page, p.PageSize)
			return p
		},
	)
}
