package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/voicehub/pkg/domain"
)

const conversationColumns = `
	c.id, c.workspace_id, c.agent_id, a.name, c.direction, c.status, c.caller_number,
	c.duration_seconds, c.summary, c.external_call_id, c.started_at, c.ended_at,
	c.created_at, c.deleted_at
`

// ConversationsRepository handles conversation log persistence. Every query
// is scoped by workspace.
type ConversationsRepository struct {
	db *sql.DB
}

// NewConversationsRepository creates a new conversations repository.
func NewConversationsRepository(db *sql.DB) *ConversationsRepository {
	return &ConversationsRepository{db: db}
}

func scanConversation(row interface{ Scan(...any) error }, c *domain.Conversation) error {
	return row.Scan(
		&c.ID, &c.WorkspaceID, &c.AgentID, &c.AgentName, &c.Direction, &c.Status, &c.CallerNumber,
		&c.DurationSeconds, &c.Summary, &c.ExternalCallID, &c.StartedAt, &c.EndedAt,
		&c.CreatedAt, &c.DeletedAt,
	)
}

// List returns a page of live conversations, newest first.
func (r *ConversationsRepository) List(ctx context.Context, workspaceID uuid.UUID, filter domain.ConversationFilter, page domain.PageRequest) (domain.Page[*domain.Conversation], error) {
	var where whereBuilder
	where.add("c.workspace_id = $%d", workspaceID)
	where.addRaw("c.deleted_at IS NULL")
	if filter.Status != nil {
		where.add("c.status = $%d", string(*filter.Status))
	}
	if filter.Direction != nil {
		where.add("c.direction = $%d", string(*filter.Direction))
	}
	if filter.AgentID != nil {
		where.add("c.agent_id = $%d", *filter.AgentID)
	}

	list := func(ctx context.Context) ([]*domain.Conversation, error) {
		limit, args := where.limitOffset(page)
		query := `SELECT ` + conversationColumns + `
			FROM conversations c
			LEFT JOIN agents a ON a.id = c.agent_id
			` + where.String() + `
			ORDER BY c.started_at DESC, c.id ` + limit

		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var conversations []*domain.Conversation
		for rows.Next() {
			var conversation domain.Conversation
			if err := scanConversation(rows, &conversation); err != nil {
				return nil, err
			}
			conversations = append(conversations, &conversation)
		}
		return conversations, rows.Err()
	}

	count := func(ctx context.Context) (int, error) {
		var total int
		query := `SELECT COUNT(*) FROM conversations c ` + where.String()
		err := r.db.QueryRowContext(ctx, query, where.args...).Scan(&total)
		return total, err
	}

	return fetchPage(ctx, list, count)
}

// GetByID retrieves a live conversation within a workspace.
func (r *ConversationsRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Conversation, error) {
	query := `SELECT ` + conversationColumns + `
		FROM conversations c
		LEFT JOIN agents a ON a.id = c.agent_id
		WHERE c.workspace_id = $1 AND c.id = $2 AND c.deleted_at IS NULL
	`

	var conversation domain.Conversation
	if err := scanConversation(r.db.QueryRowContext(ctx, query, workspaceID, id), &conversation); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

// SoftDelete marks a conversation deleted.
func (r *ConversationsRepository) SoftDelete(ctx context.Context, workspaceID, id uuid.UUID) error {
	query := `
		UPDATE conversations
		SET deleted_at = NOW()
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, workspaceID, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrConversationNotFound
	}

	return nil
}

// CountByAgent counts the live conversations handled by an agent.
func (r *ConversationsRepository) CountByAgent(ctx context.Context, workspaceID, agentID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM conversations
		WHERE workspace_id = $1 AND agent_id = $2 AND deleted_at IS NULL
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, workspaceID, agentID).Scan(&count)
	return count, err
}

// MinutesUsedSince sums billable minutes started at or after since. Each
// conversation rounds up to a whole minute. Soft-deleted conversations still
// count toward usage.
func (r *ConversationsRepository) MinutesUsedSince(ctx context.Context, workspaceID uuid.UUID, since time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(CEIL(duration_seconds / 60.0)), 0)::BIGINT
		FROM conversations
		WHERE workspace_id = $1 AND started_at >= $2
	`
	var minutes int
	err := r.db.QueryRowContext(ctx, query, workspaceID, since).Scan(&minutes)
	return minutes, err
}
