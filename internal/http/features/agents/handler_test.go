package agents

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/voicehub/pkg/domain"
	"github.com/tendant/voicehub/pkg/tenancy"
)

type fakeAgents struct {
	agents []*domain.Agent
	err    error
}

func (f *fakeAgents) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Agent, error) {
	return f.agents, f.err
}

type fakeCounter struct {
	mu     sync.Mutex
	counts map[uuid.UUID]int
	failOn uuid.UUID
	seen   []uuid.UUID
}

func (f *fakeCounter) CountByAgent(ctx context.Context, workspaceID, agentID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, workspaceID)
	if agentID == f.failOn {
		return 0, errors.New("statement timeout")
	}
	return f.counts[agentID], nil
}

func request(workspaceID uuid.UUID) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/w/acme/agents", nil)
	wc := &tenancy.WorkspaceContext{
		Workspace: &domain.Workspace{ID: workspaceID, Slug: "acme"},
		Access:    tenancy.AccessPartnerStaff,
	}
	return r.WithContext(tenancy.WithWorkspace(r.Context(), wc))
}

func newTestHandler(agents AgentLister, counter ConversationCounter) *Handler {
	return NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), agents, counter)
}

func TestList(t *testing.T) {
	workspaceID := uuid.New()
	external := "agent_provider_hidden"
	agents := make([]*domain.Agent, 0, 12)
	counts := map[uuid.UUID]int{}
	for i := 0; i < 12; i++ {
		a := &domain.Agent{ID: uuid.New(), WorkspaceID: workspaceID, Name: "Agent", Status: domain.AgentStatusActive, ExternalAgentID: &external}
		agents = append(agents, a)
		counts[a.ID] = i * 3
	}
	counter := &fakeCounter{counts: counts}

	w := httptest.NewRecorder()
	newTestHandler(&fakeAgents{agents: agents}, counter).List(w, request(workspaceID))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "agent_provider_hidden")

	var resp struct {
		Agents []AgentResponse `json:"agents"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Agents, 12)
	for i, a := range resp.Agents {
		assert.Equal(t, agents[i].ID.String(), a.ID)
		assert.Equal(t, i*3, a.ConversationCount)
	}

	require.Len(t, counter.seen, 12)
	for _, id := range counter.seen {
		assert.Equal(t, workspaceID, id)
	}
}

func TestList_Empty(t *testing.T) {
	w := httptest.NewRecorder()
	newTestHandler(&fakeAgents{}, &fakeCounter{}).List(w, request(uuid.New()))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"agents":[]}`, w.Body.String())
}

func TestList_CountFailure(t *testing.T) {
	agents := []*domain.Agent{{ID: uuid.New()}, {ID: uuid.New()}}
	counter := &fakeCounter{counts: map[uuid.UUID]int{}, failOn: agents[1].ID}

	w := httptest.NewRecorder()
	newTestHandler(&fakeAgents{agents: agents}, counter).List(w, request(uuid.New()))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestList_ListFailure(t *testing.T) {
	w := httptest.NewRecorder()
	newTestHandler(&fakeAgents{err: errors.New("boom")}, &fakeCounter{}).List(w, request(uuid.New()))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
