package domain

import (
	apperrors "github.com/allisson/sentinel/internal/errors"
)

var (
	// ErrInvalidDeviceTrust indicates an unknown device trust name.
	ErrInvalidDeviceTrust = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid device trust level")

	// ErrDeviceNotFound indicates the user has no device with that id.
	ErrDeviceNotFound = apperrors.Wrap(apperrors.ErrNotFound, "device not found")

	// ErrRuleNotFound indicates the context rule does not exist.
	ErrRuleNotFound = apperrors.Wrap(apperrors.ErrNotFound, "context rule not found")

	// ErrInvalidRule indicates a malformed context rule configuration.
	ErrInvalidRule = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid context rule")

	// ErrHolidayNotFound indicates the day is not in the holiday calendar.
	ErrHolidayNotFound = apperrors.Wrap(apperrors.ErrNotFound, "holiday not found")

	// ErrHolidayExists indicates the day is already in the holiday calendar.
	ErrHolidayExists = apperrors.Wrap(apperrors.ErrConflict, "holiday already exists")

	// ErrContextAdminRequired indicates rule, holiday or trust administration by a non-administrator.
	ErrContextAdminRequired = apperrors.Wrap(
		apperrors.ErrForbidden, "only administrators may manage context rules, holidays and device trust",
	)
)
