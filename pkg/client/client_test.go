package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestConversations(t *testing.T) {
	srv, hits := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/w/acme/conversations", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "3", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "failed", r.URL.Query().Get("status"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":"c1","direction":"inbound","status":"failed","durationSeconds":61}],"total":41,"page":3,"pageSize":20,"totalPages":3}`))
	})

	c := New(srv.URL, WithToken("tok"))
	ctx := context.Background()

	r := c.Conversations.Get(ctx, ConversationParams{WorkspaceSlug: "acme", Page: 3, Status: "failed"})
	require.NoError(t, r.Err)
	require.Len(t, r.Data.Data, 1)
	assert.Equal(t, "c1", r.Data.Data[0].ID)
	assert.Equal(t, 41, r.Data.Total)
	assert.Equal(t, 3, r.Data.TotalPages)

	// Explicit defaults share the cache entry with omitted ones.
	again := c.Conversations.Get(ctx, ConversationParams{WorkspaceSlug: "acme", Page: 3, PageSize: 20, Status: "failed"})
	assert.True(t, again.FromCache)
	assert.Equal(t, int32(1), hits.Load())
}

func TestSubscriptionPlans(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/w/acme/subscription/plans", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"plans":[{"id":"p1","monthlyPriceCents":2900,"monthlyPrice":29,"isCurrent":false},{"id":"p2","monthlyPriceCents":9950,"monthlyPrice":99.5,"isCurrent":true}],"currentPlanId":"p2","status":"active"}`))
	})

	r := New(srv.URL).SubscriptionPlans.Get(context.Background(), WorkspaceParams{WorkspaceSlug: "acme"})
	require.NoError(t, r.Err)
	require.Len(t, r.Data.Plans, 2)
	assert.True(t, r.Data.Plans[1].MonthlyPrice.Equal(decimal.RequireFromString("99.5")))

	current, ok := r.Data.Current()
	require.True(t, ok)
	assert.Equal(t, "p2", current.ID)
}

func TestSubscriptionPlans_NoSubscription(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"plans":[{"id":"p1","isCurrent":false}],"currentPlanId":null,"status":null}`))
	})

	r := New(srv.URL).SubscriptionPlans.Get(context.Background(), WorkspaceParams{WorkspaceSlug: "acme"})
	require.NoError(t, r.Err)
	assert.Nil(t, r.Data.CurrentPlanID)
	assert.Nil(t, r.Data.Status)
	_, ok := r.Data.Current()
	assert.False(t, ok)
}

func TestLimits(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/w/acme/limits", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"planId":"p1","planName":"Starter","maxAgents":2,"agentCount":2,"includedMinutes":300,"minutesUsed":12,"periodStart":"2026-10-01T00:00:00Z","periodEnd":"2026-11-01T00:00:00Z","canCreateAgent":false}`))
	})

	r := New(srv.URL).Limits.Get(context.Background(), WorkspaceParams{WorkspaceSlug: "acme"})
	require.NoError(t, r.Err)
	assert.False(t, r.Data.CanCreateAgent)
	assert.Equal(t, 12, r.Data.MinutesUsed)
}

func TestWhiteLabelPlans(t *testing.T) {
	srv, hits := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/public/white-label-plans", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"plans":[{"id":"w1","slug":"agency","monthlyPriceCents":19900,"monthlyPrice":199,"maxWorkspaces":25}]}`))
	})

	c := New(srv.URL)
	r := c.WhiteLabelPlans.Get(context.Background(), NoParams{})
	require.NoError(t, r.Err)
	require.Len(t, r.Data, 1)
	assert.True(t, r.Data[0].MonthlyPrice.Equal(decimal.NewFromInt(199)))

	c.WhiteLabelPlans.Get(context.Background(), NoParams{})
	assert.Equal(t, int32(1), hits.Load())
}

func TestPartnerWorkspaces(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/super-admin/partners/p-1/workspaces", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":"w1","slug":"one","memberCount":3,"planName":null}],"total":1,"page":1,"pageSize":20,"totalPages":1}`))
	})

	r := New(srv.URL, WithToken("admin")).PartnerWorkspaces.Get(context.Background(), PartnerWorkspacesParams{PartnerID: "p-1"})
	require.NoError(t, r.Err)
	require.Len(t, r.Data.Data, 1)
	assert.Equal(t, 3, r.Data.Data[0].MemberCount)
	assert.Nil(t, r.Data.Data[0].PlanName)
}

func TestAPIError(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"unauthorized"}`))
	})

	r := New(srv.URL).Limits.Get(context.Background(), WorkspaceParams{WorkspaceSlug: "acme"})

	var apiErr *APIError
	require.True(t, errors.As(r.Err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "unauthorized", apiErr.Message)
}

func TestMissingParamSkipsRequest(t *testing.T) {
	srv, hits := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	r := New(srv.URL).Conversations.Get(context.Background(), ConversationParams{})
	assert.ErrorIs(t, r.Err, ErrMissingParam)
	assert.Equal(t, int32(0), hits.Load())
}

func TestHookPolicies(t *testing.T) {
	c := New("http://localhost")

	assert.Equal(t, ConversationsOptions.StaleTime, c.Conversations.Options().StaleTime)
	assert.Equal(t, defaultMaxEntries, c.Conversations.Options().MaxEntries)
	assert.NotZero(t, c.Conversations.Options().RefetchInterval)
	assert.Zero(t, c.Limits.Options().RefetchInterval)
	assert.Greater(t, c.SubscriptionPlans.Options().StaleTime, c.Limits.Options().StaleTime)
}

func TestHookPolicies_FetchTimeoutFollowsClient(t *testing.T) {
	assert.Equal(t, defaultTimeout, New("http://localhost").Limits.Options().FetchTimeout)

	c := New("http://localhost", WithTimeout(3*time.Second))
	assert.Equal(t, 3*time.Second, c.Conversations.Options().FetchTimeout)
	assert.Equal(t, 3*time.Second, c.PartnerWorkspaces.Options().FetchTimeout)
}
