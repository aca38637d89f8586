package domain

import (
	apperrors "github.com/allisson/sentinel/internal/errors"
)

var (
	// ErrPolicyNotFound indicates the policy does not exist.
	ErrPolicyNotFound = apperrors.Wrap(apperrors.ErrNotFound, "access policy not found")

	// ErrAttributeNotFound indicates the user holds no attribute with that name.
	ErrAttributeNotFound = apperrors.Wrap(apperrors.ErrNotFound, "user attribute not found")

	// ErrInvalidOperator indicates a rule operator outside the supported set.
	ErrInvalidOperator = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid rule operator")

	// ErrInvalidEffect indicates an effect other than ALLOW or DENY.
	ErrInvalidEffect = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid policy effect")

	// ErrInvalidValue indicates an attribute value that is not a string, number, boolean or string list.
	ErrInvalidValue = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid attribute value")

	// ErrInvalidRule indicates a rule without an attribute name or value.
	ErrInvalidRule = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid policy rule")

	// ErrPolicyAdminRequired indicates policy or attribute administration by a non-administrator.
	ErrPolicyAdminRequired = apperrors.Wrap(
		apperrors.ErrForbidden, "only administrators may manage access policies and attributes",
	)
)
