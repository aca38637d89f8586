// Package usecase implements context rule administration, device registration and
// contextual request evaluation.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	rubacDomain "github.com/allisson/sentinel/internal/rubac/domain"
)

// RuleRepository defines persistence for context rules.
type RuleRepository interface {
	Create(ctx context.Context, rule *rubacDomain.ContextRule) error

	Get(ctx context.Context, id uuid.UUID) (*rubacDomain.ContextRule, error)

	// Update replaces a rule. Returns ErrRuleNotFound if it does not exist.
	Update(ctx context.Context, rule *rubacDomain.ContextRule) error

	// Delete removes a rule. Returns ErrRuleNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, offset, limit int) ([]*rubacDomain.ContextRule, error)

	// ListEnabledFor returns the enabled rules targeting resourceType or every resource type.
	ListEnabledFor(ctx context.Context, resourceType string) ([]*rubacDomain.ContextRule, error)
}

// HolidayRepository defines persistence for the holiday calendar.
type HolidayRepository interface {
	// Create adds a day. Returns ErrHolidayExists if the day is already present.
	Create(ctx context.Context, holiday *rubacDomain.Holiday) error

	// Delete removes a day. Returns ErrHolidayNotFound if it is absent.
	Delete(ctx context.Context, day time.Time) error

	List(ctx context.Context) ([]*rubacDomain.Holiday, error)

	// ListBetween returns the days in [from, to].
	ListBetween(ctx context.Context, from, to time.Time) ([]*rubacDomain.Holiday, error)
}

// DeviceRepository defines persistence for device profiles.
type DeviceRepository interface {
	// Upsert registers the device or refreshes its name, compliance and last seen time.
	// An existing trust level is never changed.
	Upsert(ctx context.Context, device *rubacDomain.DeviceProfile) error

	Get(ctx context.Context, userID uuid.UUID, deviceID string) (*rubacDomain.DeviceProfile, error)

	// UpdateTrust sets the trust level. Returns ErrDeviceNotFound if the device is unknown.
	UpdateTrust(
		ctx context.Context,
		userID uuid.UUID,
		deviceID string,
		trust rubacDomain.DeviceTrust,
		updatedAt time.Time,
	) error

	ListByUser(ctx context.Context, userID uuid.UUID) ([]*rubacDomain.DeviceProfile, error)
}

// AuditRecorder appends events to the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, input *auditDomain.RecordInput) (*auditDomain.AuditEvent, error)
}

// RuBACUseCase administers context rules, holidays and devices and evaluates request context.
type RuBACUseCase interface {
	CreateRule(
		ctx context.Context,
		actor *authDomain.Principal,
		input *rubacDomain.RuleInput,
	) (*rubacDomain.ContextRule, error)

	UpdateRule(
		ctx context.Context,
		actor *authDomain.Principal,
		id uuid.UUID,
		input *rubacDomain.RuleInput,
	) (*rubacDomain.ContextRule, error)

	DeleteRule(ctx context.Context, actor *authDomain.Principal, id uuid.UUID) error

	ListRules(ctx context.Context, offset, limit int) ([]*rubacDomain.ContextRule, error)

	AddHoliday(ctx context.Context, actor *authDomain.Principal, day time.Time, name string) (*rubacDomain.Holiday, error)

	DeleteHoliday(ctx context.Context, actor *authDomain.Principal, day time.Time) error

	ListHolidays(ctx context.Context) ([]*rubacDomain.Holiday, error)

	// RegisterDevice upserts the caller's device. New devices start at UNKNOWN trust.
	RegisterDevice(
		ctx context.Context,
		actor *authDomain.Principal,
		input *rubacDomain.RegisterDeviceInput,
	) (*rubacDomain.DeviceProfile, error)

	// UpdateDeviceTrust changes a device's trust level. Administrators only.
	UpdateDeviceTrust(
		ctx context.Context,
		actor *authDomain.Principal,
		input *rubacDomain.UpdateTrustInput,
	) (*rubacDomain.DeviceProfile, error)

	ListDevices(ctx context.Context, userID uuid.UUID) ([]*rubacDomain.DeviceProfile, error)

	// Evaluate checks the enabled rules targeting the request. No rule means allowed.
	Evaluate(ctx context.Context, input *rubacDomain.EvaluateInput) (*rubacDomain.Result, error)
}
