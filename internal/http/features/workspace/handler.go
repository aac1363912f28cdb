package workspace

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/voicehub/internal/http/features/common"
	"github.com/tendant/voicehub/internal/httputil"
	"github.com/tendant/voicehub/pkg/domain"
)

// MemberLister lists workspace members.
type MemberLister interface {
	ListWorkspaceMembers(ctx context.Context, workspaceID uuid.UUID) ([]*domain.WorkspaceMember, error)
}

// Handler handles workspace endpoints.
type Handler struct {
	logger  *slog.Logger
	members MemberLister
}

// NewHandler creates a new workspace handler.
func NewHandler(logger *slog.Logger, members MemberLister) *Handler {
	return &Handler{
		logger:  logger,
		members: members,
	}
}

// WorkspaceResponse is the public shape of a workspace.
type WorkspaceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	PartnerID string    `json:"partnerId"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"createdAt"`
}

// GetResponse describes the workspace and how the caller reached it.
type GetResponse struct {
	Workspace WorkspaceResponse `json:"workspace"`
	Access    string            `json:"access"`
	Role      *string           `json:"role"`
}

// MemberResponse is a workspace member row.
type MemberResponse struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Get returns the resolved workspace.
// GET /api/w/{workspaceSlug}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	wc, ok := common.Workspace(w, r)
	if !ok {
		return
	}

	resp := GetResponse{
		Workspace: WorkspaceResponse{
			ID:        wc.Workspace.ID.String(),
			Name:      wc.Workspace.Name,
			Slug:      wc.Workspace.Slug,
			PartnerID: wc.PartnerID.String(),
			Timezone:  wc.Workspace.Timezone,
			CreatedAt: wc.Workspace.CreatedAt,
		},
		Access: string(wc.Access),
	}
	if wc.Role != nil {
		role := string(*wc.Role)
		resp.Role = &role
	}

	httputil.JSON(w, http.StatusOK, resp)
}

// Members lists the active members of the workspace.
// GET /api/w/{workspaceSlug}/members
func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	wc, ok := common.Workspace(w, r)
	if !ok {
		return
	}

	members, err := h.members.ListWorkspaceMembers(r.Context(), wc.Workspace.ID)
	if err != nil {
		common.QueryFailed(w, r, h.logger, "failed to list members", err, "workspace_id", wc.Workspace.ID)
		return
	}

	items := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		items = append(items, MemberResponse{
			ID:       m.ID.String(),
			UserID:   m.UserID.String(),
			Email:    m.Email,
			Role:     string(m.Role),
			JoinedAt: m.JoinedAt,
		})
	}

	httputil.JSON(w, http.StatusOK, map[string][]MemberResponse{"members": items})
}
