package domain

import (
	"errors"
	"fmt"
)

// Identity errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionRevoked  = errors.New("session revoked")
	ErrInvalidToken    = errors.New("invalid token")
)

// Lookup errors
var (
	ErrSuperAdminNotFound   = errors.New("super admin not found")
	ErrPartnerNotFound      = errors.New("partner not found")
	ErrPartnerStaffNotFound = errors.New("partner staff not found")
	ErrWorkspaceNotFound    = errors.New("workspace not found")
	ErrMemberNotFound       = errors.New("workspace member not found")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrAgentNotFound        = errors.New("agent not found")
	ErrConversationNotFound = errors.New("conversation not found")
)

// ValidationError reports a rejected request parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
