package domain

import (
	"time"

	"github.com/google/uuid"
)

// AgentStatus is the lifecycle state of a voice agent.
type AgentStatus string

const (
	AgentStatusActive AgentStatus = "active"
	AgentStatusPaused AgentStatus = "paused"
	AgentStatusDraft  AgentStatus = "draft"
)

// Agent is an AI voice agent configured in a workspace.
type Agent struct {
	ID              uuid.UUID
	WorkspaceID     uuid.UUID
	Name            string
	Status          AgentStatus
	VoiceID         *string
	ExternalAgentID *string
	CreatedAt       time.Time
	DeletedAt       *time.Time
}

// ConversationDirection describes who initiated a conversation.
type ConversationDirection string

const (
	DirectionInbound  ConversationDirection = "inbound"
	DirectionOutbound ConversationDirection = "outbound"
	DirectionWeb      ConversationDirection = "web"
)

// Valid reports whether d is a known direction.
func (d ConversationDirection) Valid() bool {
	switch d {
	case DirectionInbound, DirectionOutbound, DirectionWeb:
		return true
	}
	return false
}

// ConversationStatus is the state of a logged conversation.
type ConversationStatus string

const (
	ConversationInProgress ConversationStatus = "in_progress"
	ConversationCompleted  ConversationStatus = "completed"
	ConversationFailed     ConversationStatus = "failed"
	ConversationNoAnswer   ConversationStatus = "no_answer"
)

// Valid reports whether s is a known status.
func (s ConversationStatus) Valid() bool {
	switch s {
	case ConversationInProgress, ConversationCompleted, ConversationFailed, ConversationNoAnswer:
		return true
	}
	return false
}

// Conversation is a logged interaction. Only Status and DeletedAt change after creation.
type Conversation struct {
	ID              uuid.UUID
	WorkspaceID     uuid.UUID
	AgentID         *uuid.UUID
	AgentName       *string
	Direction       ConversationDirection
	Status          ConversationStatus
	CallerNumber    *string
	DurationSeconds int
	Summary         *string
	ExternalCallID  *string
	StartedAt       time.Time
	EndedAt         *time.Time
	CreatedAt       time.Time
	DeletedAt       *time.Time
}

// ConversationFilter narrows a conversation listing.
type ConversationFilter struct {
	Status    *ConversationStatus
	Direction *ConversationDirection
	AgentID   *uuid.UUID
}
