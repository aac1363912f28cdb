// Package client is a Go SDK for the voicehub API. Each endpoint is exposed
// as a cached Query with its own freshness and eviction policy.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 20 * time.Second

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("voicehub api error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("voicehub api error (%d): %s", e.StatusCode, e.Message)
}

// Client talks to the voicehub HTTP API.
type Client struct {
	http    *resty.Client
	timeout time.Duration

	Conversations     *Query[ConversationParams, Page[Conversation]]
	SubscriptionPlans *Query[WorkspaceParams, SubscriptionPlans]
	Limits            *Query[WorkspaceParams, Limits]
	WhiteLabelPlans   *Query[NoParams, []WhiteLabelPlan]
	PartnerWorkspaces *Query[PartnerWorkspacesParams, Page[WorkspaceSummary]]
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.http.SetAuthToken(token)
	}
}

// WithTransport replaces the HTTP round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.SetTransport(rt)
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
		c.http.SetTimeout(d)
	}
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("Accept", "application/json").
			SetTimeout(defaultTimeout),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.registerHooks()
	return c
}

// get issues a GET and decodes a successful body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	var apiErr struct {
		Error string `json:"error"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		SetResult(out).
		SetError(&apiErr).
		Get(path)
	if err != nil {
		return fmt.Errorf("voicehub request failed: %w", err)
	}
	if resp.IsError() {
		return &APIError{StatusCode: resp.StatusCode(), Message: apiErr.Error}
	}
	return nil
}
