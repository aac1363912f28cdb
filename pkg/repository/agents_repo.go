package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/tendant/voicehub/pkg/domain"
)

// AgentsRepository handles voice agent persistence.
type AgentsRepository struct {
	db *sql.DB
}

// NewAgentsRepository creates a new agents repository.
func NewAgentsRepository(db *sql.DB) *AgentsRepository {
	return &AgentsRepository{db: db}
}

// ListByWorkspace returns the live agents of a workspace, newest first.
func (r *AgentsRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Agent, error) {
	query := `
		SELECT id, workspace_id, name, status, voice_id, external_agent_id, created_at, deleted_at
		FROM agents
		WHERE workspace_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	agents := []*domain.Agent{}
	for rows.Next() {
		var agent domain.Agent
		err := rows.Scan(
			&agent.ID,
			&agent.WorkspaceID,
			&agent.Name,
			&agent.Status,
			&agent.VoiceID,
			&agent.ExternalAgentID,
			&agent.CreatedAt,
			&agent.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		agents = append(agents, &agent)
	}
	return agents, rows.Err()
}

// CountByWorkspace counts the live agents of a workspace.
func (r *AgentsRepository) CountByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM agents
		WHERE workspace_id = $1 AND deleted_at IS NULL
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, workspaceID).Scan(&count)
	return count, err
}
