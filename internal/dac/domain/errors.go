package domain

import (
	apperrors "github.com/allisson/sentinel/internal/errors"
)

var (
	// ErrInvalidPermission indicates an unknown right name or an empty bitset.
	ErrInvalidPermission = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid permission")

	// ErrInsufficientShareAuthority indicates a grant by a caller who is not the owner, an
	// administrator, TOP_SECRET cleared, or a share holder.
	ErrInsufficientShareAuthority = apperrors.Wrap(apperrors.ErrForbidden, "insufficient share authority")

	// ErrOwnerOrAdminRequired indicates a management operation by someone other than the owner
	// or an administrator.
	ErrOwnerOrAdminRequired = apperrors.Wrap(
		apperrors.ErrForbidden, "only the owner or an administrator may manage permissions on this resource",
	)

	// ErrPermissionNotFound indicates the user holds no grant on the resource.
	ErrPermissionNotFound = apperrors.Wrap(apperrors.ErrNotFound, "permission not found")

	// ErrNotOwner indicates a transfer requested by someone who does not own the resource.
	ErrNotOwner = apperrors.Wrap(apperrors.ErrForbidden, "only the current owner may transfer ownership")

	// ErrTransferToSelf indicates a transfer whose target already owns the resource.
	ErrTransferToSelf = apperrors.Wrap(apperrors.ErrInvalidInput, "transfer target already owns the resource")

	// ErrTransferNotFound indicates the transfer does not exist.
	ErrTransferNotFound = apperrors.Wrap(apperrors.ErrNotFound, "ownership transfer not found")

	// ErrTransferAlreadyDecided indicates the transfer left the requested state.
	ErrTransferAlreadyDecided = apperrors.Wrap(apperrors.ErrConflict, "ownership transfer already decided")

	// ErrTransferApproverMismatch indicates an approval by someone other than the target.
	ErrTransferApproverMismatch = apperrors.Wrap(
		apperrors.ErrForbidden, "only the transfer target may approve an ownership transfer",
	)

	// ErrTransferRejectForbidden indicates a rejection by someone who is not a party to the transfer.
	ErrTransferRejectForbidden = apperrors.Wrap(
		apperrors.ErrForbidden, "only a party to the transfer may reject it",
	)

	// ErrPrivilegeAmplification indicates a link asking for rights its creator does not hold.
	ErrPrivilegeAmplification = apperrors.Wrap(
		apperrors.ErrForbidden, "sharing link permissions exceed the creator's permissions",
	)

	// ErrLinkNotFound indicates no link matches the token.
	ErrLinkNotFound = apperrors.Wrap(apperrors.ErrNotFound, "sharing link not found")

	// ErrLinkRevoked indicates the link was revoked.
	ErrLinkRevoked = apperrors.Wrap(apperrors.ErrForbidden, "sharing link revoked")

	// ErrLinkExpired indicates the link expired.
	ErrLinkExpired = apperrors.Wrap(apperrors.ErrForbidden, "sharing link expired")

	// ErrLinkExhausted indicates the link has no uses remaining.
	ErrLinkExhausted = apperrors.Wrap(apperrors.ErrConflict, "sharing link has no uses remaining")

	// ErrLinkPasswordMismatch indicates a missing or wrong link password.
	ErrLinkPasswordMismatch = apperrors.Wrap(apperrors.ErrForbidden, "sharing link password mismatch")

	// ErrLinkAuthRequired indicates an anonymous caller on a link that requires authentication.
	ErrLinkAuthRequired = apperrors.Wrap(apperrors.ErrUnauthorized, "sharing link requires authentication")

	// ErrLinkEmailNotAllowed indicates a caller outside the link's email and domain allow-lists.
	ErrLinkEmailNotAllowed = apperrors.Wrap(apperrors.ErrForbidden, "caller is not allowed by this sharing link")

	// ErrLinkRevokeForbidden indicates a revoke by someone other than the creator, owner or an administrator.
	ErrLinkRevokeForbidden = apperrors.Wrap(
		apperrors.ErrForbidden, "only the creator, the owner or an administrator may revoke a sharing link",
	)

	// ErrInvalidMaxUses indicates a non-positive use limit.
	ErrInvalidMaxUses = apperrors.Wrap(apperrors.ErrInvalidInput, "max uses must be positive")

	// ErrExpiryInPast indicates an expiry that is not in the future.
	ErrExpiryInPast = apperrors.Wrap(apperrors.ErrInvalidInput, "expires_at must be in the future")
)
