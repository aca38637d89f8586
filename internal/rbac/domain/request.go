package domain

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the state of a role request. Approved and rejected are terminal.
type RequestStatus string

const (
	RequestRequested RequestStatus = "requested"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
)

// RoleRequest asks for a role on behalf of a user.
type RoleRequest struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	RoleID             uuid.UUID
	RequestedBy        uuid.UUID
	Reason             string
	Justification      string
	IsTemporary        bool
	RequestedExpiresAt *time.Time
	Status             RequestStatus
	DecidedBy          *uuid.UUID
	DecidedAt          *time.Time
	DecisionReason     string
	CreatedAt          time.Time
}

// CreateRoleInput defines a new catalog role.
type CreateRoleInput struct {
	Name        string
	Description string
	Permissions []string
}

// AssignRoleInput grants a role directly, bypassing the request workflow.
type AssignRoleInput struct {
	UserID      uuid.UUID
	RoleID      uuid.UUID
	IsTemporary bool
	ExpiresAt   *time.Time
	Reason      string
}

// RequestRoleInput opens a role request. UserID defaults to the requester.
type RequestRoleInput struct {
	UserID             uuid.UUID
	RoleID             uuid.UUID
	Reason             string
	Justification      string
	IsTemporary        bool
	RequestedExpiresAt *time.Time
}

// ApproveRoleRequestInput approves a pending request. IsTemporary and ExpiresAt override the
// values requested when set.
type ApproveRoleRequestInput struct {
	RequestID   uuid.UUID
	IsTemporary *bool
	ExpiresAt   *time.Time
}

// RejectRoleRequestInput rejects a pending request.
type RejectRoleRequestInput struct {
	RequestID uuid.UUID
	Reason    string
}

// RevokeRoleInput revokes every active assignment of a role.
type RevokeRoleInput struct {
	UserID uuid.UUID
	RoleID uuid.UUID
	Reason string
}
