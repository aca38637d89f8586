package domain

import (
	apperrors "github.com/allisson/sentinel/internal/errors"
)

var (
	// ErrRoleNotFound indicates the role does not exist.
	ErrRoleNotFound = apperrors.Wrap(apperrors.ErrNotFound, "role not found")

	// ErrRoleAlreadyExists indicates a role with the same name exists.
	ErrRoleAlreadyExists = apperrors.Wrap(apperrors.ErrConflict, "role already exists")

	// ErrInvalidPermission indicates a grant not shaped like "resourceType:action".
	ErrInvalidPermission = apperrors.Wrap(apperrors.ErrInvalidInput, "permission must be resourceType:action")

	// ErrRequestNotFound indicates the role request does not exist.
	ErrRequestNotFound = apperrors.Wrap(apperrors.ErrNotFound, "role request not found")

	// ErrDuplicatePendingRequest indicates an identical request is still pending.
	ErrDuplicatePendingRequest = apperrors.Wrap(apperrors.ErrConflict, "an identical role request is pending")

	// ErrRequestAlreadyDecided indicates the request left the requested state.
	ErrRequestAlreadyDecided = apperrors.Wrap(apperrors.ErrConflict, "role request already decided")

	// ErrSelfApproval indicates an administrator granting or approving a role for themselves.
	ErrSelfApproval = apperrors.Wrap(apperrors.ErrForbidden, "roles cannot be self-granted")

	// ErrRoleAdminRequired indicates a non-admin attempted a role administration operation.
	ErrRoleAdminRequired = apperrors.Wrap(apperrors.ErrForbidden, "role administration requires an administrator")

	// ErrRoleAlreadyAssigned indicates the user already holds an active assignment of the role.
	ErrRoleAlreadyAssigned = apperrors.Wrap(apperrors.ErrConflict, "role already assigned")

	// ErrAssignmentNotFound indicates the user holds no active assignment of the role.
	ErrAssignmentNotFound = apperrors.Wrap(apperrors.ErrNotFound, "active role assignment not found")

	// ErrTemporaryExpiryRequired indicates a temporary grant without a future expiry.
	ErrTemporaryExpiryRequired = apperrors.Wrap(
		apperrors.ErrInvalidInput, "temporary grants require an expiry in the future",
	)
)
