package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	"github.com/allisson/sentinel/internal/clock"
	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
	rubacDomain "github.com/allisson/sentinel/internal/rubac/domain"
)

const (
	auditResourceRule    = "context_rule"
	auditResourceHoliday = "holiday"
	auditResourceDevice  = "device"
)

// holidayLookaround covers every timezone offset when deciding which local day "now" is.
const holidayLookaround = 48 * time.Hour

type rubacUseCase struct {
	txManager   database.TxManager
	ruleRepo    RuleRepository
	holidayRepo HolidayRepository
	deviceRepo  DeviceRepository
	audit       AuditRecorder
	clock       clock.Clock
}

func (r *rubacUseCase) CreateRule(
	ctx context.Context,
	actor *authDomain.Principal,
	input *rubacDomain.RuleInput,
) (*rubacDomain.ContextRule, error) {
	if !actor.CanAdminister() {
		return nil, rubacDomain.ErrContextAdminRequired
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := r.clock.Now()
	rule := &rubacDomain.ContextRule{ID: uuid.Must(uuid.NewV7()), CreatedAt: now}
	applyRuleInput(rule, input, now)

	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := r.ruleRepo.Create(ctx, rule); err != nil {
			return err
		}
		return r.recordRule(ctx, actor, rule, "created")
	})
	if err != nil {
		return nil, err
	}
	return rule, nil
}

func (r *rubacUseCase) UpdateRule(
	ctx context.Context,
	actor *authDomain.Principal,
	id uuid.UUID,
	input *rubacDomain.RuleInput,
) (*rubacDomain.ContextRule, error) {
	if !actor.CanAdminister() {
		return nil, rubacDomain.ErrContextAdminRequired
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var rule *rubacDomain.ContextRule
	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		rule, err = r.ruleRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		applyRuleInput(rule, input, r.clock.Now())
		if err := r.ruleRepo.Update(ctx, rule); err != nil {
			return err
		}
		return r.recordRule(ctx, actor, rule, "updated")
	})
	if err != nil {
		return nil, err
	}
	return rule, nil
}

func (r *rubacUseCase) DeleteRule(ctx context.Context, actor *authDomain.Principal, id uuid.UUID) error {
	if !actor.CanAdminister() {
		return rubacDomain.ErrContextAdminRequired
	}
	return r.txManager.WithTx(ctx, func(ctx context.Context) error {
		rule, err := r.ruleRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := r.ruleRepo.Delete(ctx, id); err != nil {
			return err
		}
		return r.recordRule(ctx, actor, rule, "deleted")
	})
}

func (r *rubacUseCase) ListRules(ctx context.Context, offset, limit int) ([]*rubacDomain.ContextRule, error) {
	rules, err := r.ruleRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list context rules")
	}
	return rules, nil
}

func (r *rubacUseCase) AddHoliday(
	ctx context.Context,
	actor *authDomain.Principal,
	day time.Time,
	name string,
) (*rubacDomain.Holiday, error) {
	if !actor.CanAdminister() {
		return nil, rubacDomain.ErrContextAdminRequired
	}
	name = strings.TrimSpace(name)
	if name == "" || day.IsZero() {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "holiday day and name are required")
	}

	holiday := &rubacDomain.Holiday{Day: truncateDay(day), Name: name}
	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := r.holidayRepo.Create(ctx, holiday); err != nil {
			return err
		}
		return r.recordHoliday(ctx, actor, holiday.Day, map[string]any{"change": "added", "name": name})
	})
	if err != nil {
		return nil, err
	}
	return holiday, nil
}

func (r *rubacUseCase) DeleteHoliday(ctx context.Context, actor *authDomain.Principal, day time.Time) error {
	if !actor.CanAdminister() {
		return rubacDomain.ErrContextAdminRequired
	}
	day = truncateDay(day)
	return r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := r.holidayRepo.Delete(ctx, day); err != nil {
			return err
		}
		return r.recordHoliday(ctx, actor, day, map[string]any{"change": "deleted"})
	})
}

func (r *rubacUseCase) ListHolidays(ctx context.Context) ([]*rubacDomain.Holiday, error) {
	holidays, err := r.holidayRepo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list holidays")
	}
	return holidays, nil
}

func (r *rubacUseCase) RegisterDevice(
	ctx context.Context,
	actor *authDomain.Principal,
	input *rubacDomain.RegisterDeviceInput,
) (*rubacDomain.DeviceProfile, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	deviceID := strings.TrimSpace(input.DeviceID)
	if deviceID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "device id is required")
	}

	now := r.clock.Now()
	compliance := input.Compliance
	if compliance == nil {
		compliance = rubacDomain.ComplianceFlags{}
	}
	candidate := &rubacDomain.DeviceProfile{
		ID:         uuid.Must(uuid.NewV7()),
		DeviceID:   deviceID,
		UserID:     actor.UserID,
		Name:       strings.TrimSpace(input.Name),
		TrustLevel: rubacDomain.TrustUnknown,
		Compliance: compliance,
		LastSeenAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var device *rubacDomain.DeviceProfile
	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := r.deviceRepo.Upsert(ctx, candidate); err != nil {
			return err
		}
		var err error
		device, err = r.deviceRepo.Get(ctx, actor.UserID, deviceID)
		if err != nil {
			return err
		}
		_, err = r.audit.Record(ctx, &auditDomain.RecordInput{
			ActorID:      actor.UserID,
			Action:       auditDomain.ActionDeviceRegistered,
			ResourceType: auditResourceDevice,
			ResourceID:   deviceID,
			Outcome:      auditDomain.OutcomeSuccess,
			Details: map[string]any{
				"trust_level": device.TrustLevel.String(),
				"compliance":  map[string]bool(device.Compliance),
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return device, nil
}

func (r *rubacUseCase) UpdateDeviceTrust(
	ctx context.Context,
	actor *authDomain.Principal,
	input *rubacDomain.UpdateTrustInput,
) (*rubacDomain.DeviceProfile, error) {
	if !actor.CanAdminister() {
		return nil, rubacDomain.ErrContextAdminRequired
	}

	var device *rubacDomain.DeviceProfile
	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		previous, err := r.deviceRepo.Get(ctx, input.UserID, input.DeviceID)
		if err != nil {
			return err
		}
		if err := r.deviceRepo.UpdateTrust(
			ctx, input.UserID, input.DeviceID, input.TrustLevel, r.clock.Now(),
		); err != nil {
			return err
		}
		device, err = r.deviceRepo.Get(ctx, input.UserID, input.DeviceID)
		if err != nil {
			return err
		}
		_, err = r.audit.Record(ctx, &auditDomain.RecordInput{
			ActorID:      actor.UserID,
			Action:       auditDomain.ActionDeviceTrustUpdated,
			ResourceType: auditResourceDevice,
			ResourceID:   input.DeviceID,
			Outcome:      auditDomain.OutcomeSuccess,
			Details: map[string]any{
				"user_id":  input.UserID.String(),
				"previous": previous.TrustLevel.String(),
				"current":  device.TrustLevel.String(),
				"reason":   input.Reason,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return device, nil
}

func (r *rubacUseCase) ListDevices(ctx context.Context, userID uuid.UUID) ([]*rubacDomain.DeviceProfile, error) {
	devices, err := r.deviceRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list devices")
	}
	return devices, nil
}

func (r *rubacUseCase) Evaluate(
	ctx context.Context,
	input *rubacDomain.EvaluateInput,
) (*rubacDomain.Result, error) {
	rules, err := r.ruleRepo.ListEnabledFor(ctx, input.ResourceType)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load context rules")
	}
	now := r.clock.Now()
	ec := rubacDomain.EvalContext{
		Now:         now,
		ClientIP:    input.ClientIP,
		TLS:         input.TLS,
		Sensitivity: input.Sensitivity,
	}
	if len(rules) == 0 {
		result := rubacDomain.Evaluate(nil, ec)
		return &result, nil
	}

	if needs(rules, rubacDomain.KindDeviceTrust) && input.DeviceID != "" {
		device, err := r.deviceRepo.Get(ctx, input.UserID, input.DeviceID)
		switch {
		case err == nil:
			ec.Device = device
		case !apperrors.Is(err, rubacDomain.ErrDeviceNotFound):
			return nil, apperrors.Wrap(err, "failed to load device profile")
		}
	}

	if needsHolidays(rules) {
		holidays, err := r.holidayRepo.ListBetween(ctx, now.Add(-holidayLookaround), now.Add(holidayLookaround))
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to load holidays")
		}
		ec.Holidays = make(map[string]string, len(holidays))
		for _, h := range holidays {
			ec.Holidays[rubacDomain.DayKey(h.Day)] = h.Name
		}
	}

	result := rubacDomain.Evaluate(rules, ec)
	return &result, nil
}

func needs(rules []*rubacDomain.ContextRule, kind rubacDomain.RuleKind) bool {
	for _, rule := range rules {
		if rule.Enabled && rule.Kind == kind {
			return true
		}
	}
	return false
}

func needsHolidays(rules []*rubacDomain.ContextRule) bool {
	for _, rule := range rules {
		if rule.Enabled && rule.Kind == rubacDomain.KindTimeWindow &&
			rule.Config.TimeWindow != nil && rule.Config.TimeWindow.ExcludeHolidays {
			return true
		}
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func applyRuleInput(rule *rubacDomain.ContextRule, input *rubacDomain.RuleInput, now time.Time) {
	rule.Name = strings.TrimSpace(input.Name)
	rule.ResourceType = strings.TrimSpace(input.ResourceType)
	rule.Kind = input.Kind
	rule.Config = input.Config
	rule.Enabled = input.Enabled
	rule.UpdatedAt = now
}

func (r *rubacUseCase) recordRule(
	ctx context.Context,
	actor *authDomain.Principal,
	rule *rubacDomain.ContextRule,
	change string,
) error {
	_, err := r.audit.Record(ctx, &auditDomain.RecordInput{
		ActorID:      actor.UserID,
		Action:       auditDomain.ActionContextRuleChanged,
		ResourceType: auditResourceRule,
		ResourceID:   rule.ID.String(),
		Outcome:      auditDomain.OutcomeSuccess,
		Details: map[string]any{
			"change":        change,
			"name":          rule.Name,
			"resource_type": rule.ResourceType,
			"kind":          string(rule.Kind),
			"enabled":       rule.Enabled,
		},
	})
	return err
}

func (r *rubacUseCase) recordHoliday(
	ctx context.Context,
	actor *authDomain.Principal,
	day time.Time,
	details map[string]any,
) error {
	_, err := r.audit.Record(ctx, &auditDomain.RecordInput{
		ActorID:      actor.UserID,
		Action:       auditDomain.ActionHolidayChanged,
		ResourceType: auditResourceHoliday,
		ResourceID:   rubacDomain.DayKey(day),
		Outcome:      auditDomain.OutcomeSuccess,
		Details:      details,
	})
	return err
}

// NewRuBACUseCase creates a new RuBACUseCase with the provided dependencies.
func NewRuBACUseCase(
	txManager database.TxManager,
	ruleRepo RuleRepository,
	holidayRepo HolidayRepository,
	deviceRepo DeviceRepository,
	audit AuditRecorder,
	clk clock.Clock,
) RuBACUseCase {
	return &rubacUseCase{
		txManager:   txManager,
		ruleRepo:    ruleRepo,
		holidayRepo: holidayRepo,
		deviceRepo:  deviceRepo,
		audit:       audit,
		clock:       clk,
	}
}
