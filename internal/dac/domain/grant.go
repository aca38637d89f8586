package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResourcePermission is the bitset a user holds on one resource.
type ResourcePermission struct {
	ID           uuid.UUID
	ResourceType string
	ResourceID   string
	UserID       uuid.UUID
	Permissions  Permission
	ExpiresAt    *time.Time
	GrantedBy    uuid.UUID
	Reason       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive reports whether the grant still applies at now.
func (g *ResourcePermission) IsActive(now time.Time) bool {
	return g.ExpiresAt == nil || g.ExpiresAt.After(now)
}

// GrantPermissionInput sets the bitset of a user on a resource, replacing any previous grant.
type GrantPermissionInput struct {
	ResourceType string
	ResourceID   string
	UserID       uuid.UUID
	Permissions  Permission
	ExpiresAt    *time.Time
	Reason       string
}

// RevokePermissionInput clears a user's grant on a resource.
type RevokePermissionInput struct {
	ResourceType string
	ResourceID   string
	UserID       uuid.UUID
}
