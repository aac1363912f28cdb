package conversations

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/voicehub/internal/http/features/common"
	"github.com/tendant/voicehub/internal/httputil"
	"github.com/tendant/voicehub/pkg/domain"
)

// Store reads and soft-deletes workspace conversations.
type Store interface {
	List(ctx context.Context, workspaceID uuid.UUID, filter domain.ConversationFilter, page domain.PageRequest) (domain.Page[*domain.Conversation], error)
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Conversation, error)
	SoftDelete(ctx context.Context, workspaceID, id uuid.UUID) error
}

// Handler handles conversation endpoints.
type Handler struct {
	logger        *slog.Logger
	conversations Store
}

// NewHandler creates a new conversations handler.
func NewHandler(logger *slog.Logger, conversations Store) *Handler {
	return &Handler{
		logger:        logger,
		conversations: conversations,
	}
}

// ConversationResponse is the public shape of a conversation. The provider
// call id is omitted.
type ConversationResponse struct {
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

func toResponse(c *domain.Conversation) ConversationResponse {
	resp := ConversationResponse{
		ID:              c.ID.String(),
		AgentName:       c.AgentName,
		Direction:       string(c.Direction),
		Status:          string(c.Status),
		CallerNumber:    c.CallerNumber,
		DurationSeconds: c.DurationSeconds,
		Summary:         c.Summary,
		StartedAt:       c.StartedAt,
		EndedAt:         c.EndedAt,
		CreatedAt:       c.CreatedAt,
	}
	if c.AgentID != nil {
		id := c.AgentID.String()
		resp.AgentID = &id
	}
	return resp
}

// parseFilter reads the optional status, direction and agent_id filters.
func parseFilter(r *http.Request) (domain.ConversationFilter, error) {
	var filter domain.ConversationFilter
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status := domain.ConversationStatus(raw)
		if !status.Valid() {
			return filter, domain.NewValidationError("status", "must be one of in_progress, completed, failed, no_answer")
		}
		filter.Status = &status
	}

	if raw := strings.TrimSpace(q.Get("direction")); raw != "" {
		direction := domain.ConversationDirection(raw)
		if !direction.Valid() {
			return filter, domain.NewValidationError("direction", "must be one of inbound, outbound, web")
		}
		filter.Direction = &direction
	}

	agentID, err := httputil.OptionalUUID(r, "agent_id")
	if err != nil {
		return filter, err
	}
	filter.AgentID = agentID

	return filter, nil
}

// List returns a filtered page of the workspace's conversations.
// GET /api/w/{workspaceSlug}/conversations
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	wc, ok := common.Workspace(w, r)
	if !ok {
		return
	}

	page, err := httputil.ParsePageRequest(r)
	if common.BadRequest(w, err) {
		return
	}
	filter, err := parseFilter(r)
	if common.BadRequest(w, err) {
		return
	}

	result, err := h.conversations.List(r.Context(), wc.Workspace.ID, filter, page)
	if err != nil {
		common.QueryFailed(w, r, h.logger, "failed to list conversations", err, "workspace_id", wc.Workspace.ID)
		return
	}

	items := make([]ConversationResponse, 0, len(result.Items))
	for _, c := range result.Items {
		items = append(items, toResponse(c))
	}

	httputil.JSON(w, http.StatusOK, httputil.NewListResponse(items, result.Total, page))
}

// Get returns one conversation.
// GET /api/w/{workspaceSlug}/conversations/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	wc, ok := common.Workspace(w, r)
	if !ok {
		return
	}

	id, err := common.UUIDParam(r, "id")
	if common.BadRequest(w, err) {
		return
	}

	conversation, err := h.conversations.GetByID(r.Context(), wc.Workspace.ID, id)
	if err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			httputil.Error(w, http.StatusNotFound, "conversation not found")
			return
		}
		common.QueryFailed(w, r, h.logger, "failed to load conversation", err, "workspace_id", wc.Workspace.ID, "conversation_id", id)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]ConversationResponse{"conversation": toResponse(conversation)})
}

// Delete soft-deletes a conversation. Requires a managing role.
// DELETE /api/w/{workspaceSlug}/conversations/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	wc, ok := common.Workspace(w, r)
	if !ok {
		return
	}
	if !wc.CanManage() {
		httputil.Unauthorized(w)
		return
	}

	id, err := common.UUIDParam(r, "id")
	if common.BadRequest(w, err) {
		return
	}

	if err := h.conversations.SoftDelete(r.Context(), wc.Workspace.ID, id); err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			httputil.Error(w, http.StatusNotFound, "conversation not found")
			return
		}
		common.QueryFailed(w, r, h.logger, "failed to delete conversation", err, "workspace_id", wc.Workspace.ID, "conversation_id", id)
		return
	}

	h.logger.InfoContext(r.Context(), "conversation deleted",
		"workspace_id", wc.Workspace.ID,
		"conversation_id", id,
		"principal_id", wc.Principal.ID,
	)
	w.WriteHeader(http.StatusNoContent)
}
