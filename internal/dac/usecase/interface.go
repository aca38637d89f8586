// Package usecase implements discretionary access control: permission grants, ownership
// transfers and sharing links.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	dacDomain "github.com/allisson/sentinel/internal/dac/domain"
	macDomain "github.com/allisson/sentinel/internal/mac/domain"
	resourceDomain "github.com/allisson/sentinel/internal/resource/domain"
)

// PermissionRepository defines persistence for per-user permission bitsets.
type PermissionRepository interface {
	// Upsert creates or replaces the grant for (resource, user).
	Upsert(ctx context.Context, grant *dacDomain.ResourcePermission) error

	// Get returns the grant for (resource, user). Returns ErrPermissionNotFound if none.
	Get(ctx context.Context, resourceType, resourceID string, userID uuid.UUID) (*dacDomain.ResourcePermission, error)

	// Delete removes the grant. Returns ErrPermissionNotFound if none existed.
	Delete(ctx context.Context, resourceType, resourceID string, userID uuid.UUID) error

	ListByResource(ctx context.Context, resourceType, resourceID string) ([]*dacDomain.ResourcePermission, error)
}

// TransferRepository defines persistence for ownership transfers.
type TransferRepository interface {
	Create(ctx context.Context, transfer *dacDomain.OwnershipTransfer) error

	Get(ctx context.Context, id uuid.UUID) (*dacDomain.OwnershipTransfer, error)

	// Decide stores the decision only while the transfer is requested.
	// Returns ErrTransferAlreadyDecided otherwise.
	Decide(ctx context.Context, transfer *dacDomain.OwnershipTransfer) error

	// ListPending lists requested transfers where userID is either party.
	ListPending(ctx context.Context, userID uuid.UUID) ([]*dacDomain.OwnershipTransfer, error)
}

// LinkRepository defines persistence for sharing links.
type LinkRepository interface {
	Create(ctx context.Context, link *dacDomain.SharingLink) error

	Get(ctx context.Context, id uuid.UUID) (*dacDomain.SharingLink, error)

	// GetByTokenHash returns the link whose token hashes to tokenHash.
	// Returns ErrLinkNotFound if none.
	GetByTokenHash(ctx context.Context, tokenHash []byte) (*dacDomain.SharingLink, error)

	// IncrementUses atomically consumes one use of a live link. Returns ErrLinkExhausted when
	// the link is revoked, expired or out of uses at the moment of the update.
	IncrementUses(ctx context.Context, id uuid.UUID, now time.Time) error

	// Revoke marks the link revoked. Revoking an already revoked link is a no-op.
	Revoke(ctx context.Context, id, revokedBy uuid.UUID, now time.Time) error

	ListByResource(ctx context.Context, resourceType, resourceID string) ([]*dacDomain.SharingLink, error)
}

// ResourceRepository is the part of the resource registry DAC reads and mutates.
type ResourceRepository interface {
	Get(ctx context.Context, resourceType, resourceID string) (*resourceDomain.Resource, error)

	// UpdateOwner changes the owner only if it is still fromOwner.
	UpdateOwner(ctx context.Context, resourceType, resourceID string, fromOwner, toOwner uuid.UUID) error
}

// SubjectReader returns the effective MAC subject of a user.
type SubjectReader interface {
	Subject(ctx context.Context, userID uuid.UUID) (macDomain.Subject, error)
}

// AuditRecorder appends events to the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, input *auditDomain.RecordInput) (*auditDomain.AuditEvent, error)
}

// PermissionUseCase manages discretionary permission grants.
type PermissionUseCase interface {
	// GrantPermission sets a user's bitset. The caller must own the resource, be an
	// administrator, hold TOP_SECRET clearance, or already hold share on the resource.
	GrantPermission(
		ctx context.Context,
		actor *authDomain.Principal,
		input *dacDomain.GrantPermissionInput,
	) (*dacDomain.ResourcePermission, error)

	// RevokePermission clears a user's bitset. Owner or administrator only.
	RevokePermission(ctx context.Context, actor *authDomain.Principal, input *dacDomain.RevokePermissionInput) error

	// ListPermissions lists the grants on a resource. Owner or administrator only.
	ListPermissions(
		ctx context.Context,
		actor *authDomain.Principal,
		resourceType, resourceID string,
	) ([]*dacDomain.ResourcePermission, error)

	// EffectivePermission returns the rights userID holds on the resource: everything for
	// the owner, the active grant otherwise.
	EffectivePermission(ctx context.Context, userID uuid.UUID, resourceType, resourceID string) (dacDomain.Permission, error)

	HasPermission(
		ctx context.Context,
		userID uuid.UUID,
		resourceType, resourceID string,
		required dacDomain.Permission,
	) (bool, error)
}

// TransferUseCase manages the ownership transfer workflow.
type TransferUseCase interface {
	RequestOwnershipTransfer(
		ctx context.Context,
		actor *authDomain.Principal,
		input *dacDomain.RequestTransferInput,
	) (*dacDomain.OwnershipTransfer, error)

	// ApproveOwnershipTransfer is callable only by the receiving user. The owner change and
	// the decision commit together.
	ApproveOwnershipTransfer(
		ctx context.Context,
		actor *authDomain.Principal,
		input *dacDomain.DecideTransferInput,
	) (*dacDomain.OwnershipTransfer, error)

	// RejectOwnershipTransfer is callable by either party.
	RejectOwnershipTransfer(
		ctx context.Context,
		actor *authDomain.Principal,
		input *dacDomain.DecideTransferInput,
	) (*dacDomain.OwnershipTransfer, error)

	ListPendingTransfers(ctx context.Context, userID uuid.UUID) ([]*dacDomain.OwnershipTransfer, error)
}

// SharingLinkUseCase manages sharing links.
type SharingLinkUseCase interface {
	// CreateSharingLink mints a link whose rights are a subset of the creator's own.
	CreateSharingLink(
		ctx context.Context,
		actor *authDomain.Principal,
		input *dacDomain.CreateLinkInput,
	) (*dacDomain.CreateLinkOutput, error)

	// VerifySharingLink runs every link check without consuming a use.
	VerifySharingLink(ctx context.Context, input *dacDomain.VerifyLinkInput) (*dacDomain.SharingLink, error)

	// UseSharingLink verifies the link and atomically consumes one use.
	UseSharingLink(ctx context.Context, input *dacDomain.VerifyLinkInput) (*dacDomain.SharingLink, error)

	// RevokeSharingLink revokes a link. Creator, owner or administrator only. Idempotent.
	RevokeSharingLink(ctx context.Context, actor *authDomain.Principal, linkID uuid.UUID) error

	ListSharingLinks(
		ctx context.Context,
		actor *authDomain.Principal,
		resourceType, resourceID string,
	) ([]*dacDomain.SharingLink, error)
}
