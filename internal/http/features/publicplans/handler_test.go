package publicplans

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/voicehub/pkg/domain"
)

type fakePlanLister struct {
	plans []*domain.WhiteLabelPlan
	err   error
}

func (f *fakePlanLister) ListWhiteLabel(ctx context.Context) ([]*domain.WhiteLabelPlan, error) {
	return f.plans, f.err
}

func newTestHandler(lister PlanLister) *Handler {
	return NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), lister)
}

func TestList(t *testing.T) {
	priceID := "price_wl_hidden"
	desc := "For agencies"
	lister := &fakePlanLister{plans: []*domain.WhiteLabelPlan{
		{ID: uuid.New(), Slug: "agency", Name: "Agency", Description: &desc, MonthlyPriceCents: 19900, MaxWorkspaces: 25, StripePriceID: &priceID, IsActive: true},
		{ID: uuid.New(), Slug: "enterprise", Name: "Enterprise", MonthlyPriceCents: 49999, MaxWorkspaces: 0, IsActive: true},
	}}

	w := httptest.NewRecorder()
	newTestHandler(lister).List(w, httptest.NewRequest(http.MethodGet, "/api/public/white-label-plans", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "price_wl_hidden")
	assert.NotContains(t, w.Body.String(), "isActive")

	var resp struct {
		Plans []map[string]any `json:"plans"`
	}
	dec := json.NewDecoder(w.Body)
	dec.UseNumber()
	require.NoError(t, dec.Decode(&resp))
	require.Len(t, resp.Plans, 2)

	assert.Equal(t, "agency", resp.Plans[0]["slug"])
	assert.Equal(t, "For agencies", resp.Plans[0]["description"])
	assert.Equal(t, json.Number("19900"), resp.Plans[0]["monthlyPriceCents"])
	assert.Equal(t, json.Number("199"), resp.Plans[0]["monthlyPrice"])
	assert.Equal(t, json.Number("25"), resp.Plans[0]["maxWorkspaces"])

	assert.Nil(t, resp.Plans[1]["description"])
	assert.Equal(t, json.Number("499.99"), resp.Plans[1]["monthlyPrice"])
}

func TestList_Empty(t *testing.T) {
	w := httptest.NewRecorder()
	newTestHandler(&fakePlanLister{}).List(w, httptest.NewRequest(http.MethodGet, "/api/public/white-label-plans", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"plans":[]}`, w.Body.String())
}

func TestList_QueryFailure(t *testing.T) {
	w := httptest.NewRecorder()
	newTestHandler(&fakePlanLister{err: errors.New("dial tcp: connection refused")}).
		List(w, httptest.NewRequest(http.MethodGet, "/api/public/white-label-plans", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}
