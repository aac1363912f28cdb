package agents

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/voicehub/internal/http/features/common"
	"github.com/tendant/voicehub/internal/httputil"
	"github.com/tendant/voicehub/pkg/domain"
	"golang.org/x/sync/errgroup"
)

const countConcurrency = 8

// AgentLister lists a workspace's agents.
type AgentLister interface {
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Agent, error)
}

// ConversationCounter counts conversations per agent.
type ConversationCounter interface {
	CountByAgent(ctx context.Context, workspaceID, agentID uuid.UUID) (int, error)
}

// Handler handles agent endpoints.
type Handler struct {
	logger        *slog.Logger
	agents        AgentLister
	conversations ConversationCounter
}

// NewHandler creates a new agents handler.
func NewHandler(logger *slog.Logger, agents AgentLister, conversations ConversationCounter) *Handler {
	return &Handler{
		logger:        logger,
		agents:        agents,
		conversations: conversations,
	}
}

// AgentResponse is the public shape of an agent. The provider agent id is omitted.
type AgentResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Status            string    `json:"status"`
	VoiceID           *string   `json:"voiceId"`
	CreatedAt         time.Time `json:"createdAt"`
	ConversationCount int       `json:"conversationCount"`
}

// List returns the workspace's agents with per-agent conversation counts.
// GET /api/w/{workspaceSlug}/agents
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	wc, ok := common.Workspace(w, r)
	if !ok {
		return
	}
	workspaceID := wc.Workspace.ID

	agents, err := h.agents.ListByWorkspace(r.Context(), workspaceID)
	if err != nil {
		common.QueryFailed(w, r, h.logger, "failed to list agents", err, "workspace_id", workspaceID)
		return
	}

	items := make([]AgentResponse, len(agents))
	g, gctx := errgroup.WithContext(r.Context())
	g.SetLimit(countConcurrency)
	for i, a := range agents {
		items[i] = AgentResponse{
			ID:        a.ID.String(),
			Name:      a.Name,
			Status:    string(a.Status),
			VoiceID:   a.VoiceID,
			CreatedAt: a.CreatedAt,
		}
		g.Go(func() error {
			count, err := h.conversations.CountByAgent(gctx, workspaceID, a.ID)
			if err != nil {
				return err
			}
			items[i].ConversationCount = count
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		common.QueryFailed(w, r, h.logger, "failed to count agent conversations", err, "workspace_id", workspaceID)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string][]AgentResponse{"agents": items})
}
