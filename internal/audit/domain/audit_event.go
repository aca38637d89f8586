// Package domain defines the append-only, hash-chained audit trail.
//
// Every recorded event carries the hash of its predecessor so that deleting, reordering or
// editing any row breaks verification from that point on.
package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/sentinel/internal/errors"
)

// Action names recorded in the audit trail.
const (
	ActionAccessChecked              = "access.checked"
	ActionClearanceAssigned          = "clearance.assigned"
	ActionEscalationRequested        = "clearance.escalation_requested"
	ActionEscalationDecided          = "clearance.escalation_decided"
	ActionClearanceReviewed          = "clearance.reviewed"
	ActionResourceRegistered         = "resource.registered"
	ActionResourceReclassified       = "resource.reclassified"
	ActionRoleCreated                = "role.created"
	ActionRoleAssigned               = "role.assigned"
	ActionRoleRevoked                = "role.revoked"
	ActionRoleRequested              = "role.requested"
	ActionRoleRequestApproved        = "role.request_approved"
	ActionRoleRequestRejected        = "role.request_rejected"
	ActionPermissionGranted          = "permission.granted"
	ActionPermissionRevoked          = "permission.revoked"
	ActionOwnershipTransferRequested = "ownership.transfer_requested"
	ActionOwnershipTransferApproved  = "ownership.transfer_approved"
	ActionOwnershipTransferRejected  = "ownership.transfer_rejected"
	ActionSharingLinkCreated         = "sharing_link.created"
	ActionSharingLinkUsed            = "sharing_link.used"
	ActionSharingLinkRevoked         = "sharing_link.revoked"
	ActionPolicyChanged              = "policy.changed"
	ActionAttributeChanged           = "attribute.changed"
	ActionDeviceTrustUpdated         = "device.trust_updated"
	ActionContextRuleChanged         = "context_rule.changed"
	ActionHolidayChanged             = "holiday.changed"
	ActionDeviceRegistered           = "device.registered"
	ActionSessionRevoked             = "session.revoked"
)

// Outcomes recorded with an event.
const (
	OutcomeSuccess = "success"
	OutcomeAllowed = "allowed"
	OutcomeDenied  = "denied"
)

// ErrChainBroken indicates an event whose hash or predecessor link does not verify.
var ErrChainBroken = apperrors.Wrap(apperrors.ErrIntegrity, "audit chain broken")

// ErrAuditEventNotFound indicates the requested event does not exist.
var ErrAuditEventNotFound = apperrors.Wrap(apperrors.ErrNotFound, "audit event not found")

// AuditEvent is a single entry of the audit trail.
type AuditEvent struct {
	ID           uuid.UUID
	Sequence     int64
	ActorID      uuid.UUID
	Action       string
	ResourceType string
	ResourceID   string
	Outcome      string
	Details      map[string]any
	PrevHash     []byte
	Hash         []byte
	CreatedAt    time.Time
}

// RecordInput describes an event to append.
type RecordInput struct {
	ActorID      uuid.UUID
	Action       string
	ResourceType string
	ResourceID   string
	Outcome      string
	Details      map[string]any
}

// ChainHead is the position of the latest event in the chain.
type ChainHead struct {
	Sequence int64
	Hash     []byte
}

// ListFilter narrows audit event listings. Zero values match everything.
type ListFilter struct {
	ActorID      *uuid.UUID
	Action       string
	ResourceType string
	ResourceID   string
	From         *time.Time
	To           *time.Time
}

// VerificationReport summarizes a full chain verification.
type VerificationReport struct {
	TotalChecked  int64
	ValidCount    int64
	InvalidCount  int64
	InvalidEvents []uuid.UUID
	HeadSequence  int64
	// HeadMismatch is set when the last verified event does not match the recorded chain head,
	// which indicates truncated or deleted tail events.
	HeadMismatch bool
}

// Passed reports whether every event verified and the chain reaches the recorded head.
func (r *VerificationReport) Passed() bool {
	return r.InvalidCount == 0 && !r.HeadMismatch
}
