// Package dto provides data transfer objects for the context rule, holiday and device endpoints.
package dto

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	rubacDomain "github.com/allisson/sentinel/internal/rubac/domain"
	customValidation "github.com/allisson/sentinel/internal/validation"
)

// ParseDay parses a calendar day in YYYY-MM-DD form.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}

var dayRule = customValidation.ParsedBy(ParseDay)

// RuleRequest creates or replaces a context rule. Enabled defaults to true.
type RuleRequest struct {
	Name         string                 `json:"name"`
	ResourceType string                 `json:"resource_type"`
	Kind         string                 `json:"kind"`
	Config       rubacDomain.RuleConfig `json:"config"`
	Enabled      *bool                  `json:"enabled"`
}

// Validate checks the request surface. Configuration details are checked by the domain.
func (r *RuleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.ResourceType, validation.Required, customValidation.NotBlank, validation.Length(1, 100)),
		validation.Field(&r.Kind, validation.Required, validation.In(
			string(rubacDomain.KindTimeWindow),
			string(rubacDomain.KindDeviceTrust),
			string(rubacDomain.KindNetwork),
		)),
	)
}

// ToDomain converts the request.
func (r *RuleRequest) ToDomain() *rubacDomain.RuleInput {
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	return &rubacDomain.RuleInput{
		Name:         r.Name,
		ResourceType: r.ResourceType,
		Kind:         rubacDomain.RuleKind(r.Kind),
		Config:       r.Config,
		Enabled:      enabled,
	}
}

// HolidayRequest adds a day to the holiday calendar.
type HolidayRequest struct {
	Day  string `json:"day"`
	Name string `json:"name"`
}

// Validate checks if the holiday request is valid.
func (r *HolidayRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Day, validation.Required, dayRule),
		validation.Field(&r.Name, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
	)
}

// RegisterDeviceRequest registers one of the caller's devices.
type RegisterDeviceRequest struct {
	DeviceID   string                      `json:"device_id"`
	Name       string                      `json:"name"`
	Compliance rubacDomain.ComplianceFlags `json:"compliance"`
}

// Validate checks if the device registration is valid.
func (r *RegisterDeviceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.DeviceID, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.Name, validation.Length(0, 255)),
	)
}

// ToDomain converts the request.
func (r *RegisterDeviceRequest) ToDomain() *rubacDomain.RegisterDeviceInput {
	return &rubacDomain.RegisterDeviceInput{
		DeviceID:   r.DeviceID,
		Name:       r.Name,
		Compliance: r.Compliance,
	}
}

// UpdateTrustRequest sets a device's trust level.
type UpdateTrustRequest struct {
	TrustLevel string `json:"trust_level"`
	Reason     string `json:"reason"`
}

// Validate checks if the trust update is valid.
func (r *UpdateTrustRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TrustLevel, validation.Required, customValidation.ParsedBy(rubacDomain.ParseDeviceTrust)),
		validation.Field(&r.Reason, validation.Length(0, 1000)),
	)
}

// ToDomain converts the request for the addressed device.
func (r *UpdateTrustRequest) ToDomain(userID uuid.UUID, deviceID string) *rubacDomain.UpdateTrustInput {
	trust, _ := rubacDomain.ParseDeviceTrust(r.TrustLevel)
	return &rubacDomain.UpdateTrustInput{
		UserID:     userID,
		DeviceID:   deviceID,
		TrustLevel: trust,
		Reason:     r.Reason,
	}
}

// RuleResponse represents a context rule in API responses.
type RuleResponse struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	ResourceType string                 `json:"resource_type"`
	Kind         string                 `json:"kind"`
	Config       rubacDomain.RuleConfig `json:"config"`
	Enabled      bool                   `json:"enabled"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// MapRuleToResponse converts a context rule to an API response.
func MapRuleToResponse(r *rubacDomain.ContextRule) RuleResponse {
	return RuleResponse{
		ID:           r.ID.String(),
		Name:         r.Name,
		ResourceType: r.ResourceType,
		Kind:         string(r.Kind),
		Config:       r.Config,
		Enabled:      r.Enabled,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ListRulesResponse wraps a list of context rules.
type ListRulesResponse struct {
	Data []RuleResponse `json:"data"`
}

// MapRulesToResponse converts a list of context rules.
func MapRulesToResponse(items []*rubacDomain.ContextRule) ListRulesResponse {
	data := make([]RuleResponse, 0, len(items))
	for _, item := range items {
		data = append(data, MapRuleToResponse(item))
	}
	return ListRulesResponse{Data: data}
}

// HolidayResponse represents a holiday.
type HolidayResponse struct {
	Day  string `json:"day"`
	Name string `json:"name"`
}

// ListHolidaysResponse wraps the holiday calendar.
type ListHolidaysResponse struct {
	Data []HolidayResponse `json:"data"`
}

// MapHolidayToResponse converts a holiday to an API response.
func MapHolidayToResponse(h *rubacDomain.Holiday) HolidayResponse {
	return HolidayResponse{Day: rubacDomain.DayKey(h.Day), Name: h.Name}
}

// MapHolidaysToResponse converts the holiday calendar.
func MapHolidaysToResponse(items []*rubacDomain.Holiday) ListHolidaysResponse {
	data := make([]HolidayResponse, 0, len(items))
	for _, item := range items {
		data = append(data, MapHolidayToResponse(item))
	}
	return ListHolidaysResponse{Data: data}
}

// DeviceResponse represents a device profile.
type DeviceResponse struct {
	ID         string                      `json:"id"`
	DeviceID   string                      `json:"device_id"`
	UserID     string                      `json:"user_id"`
	Name       string                      `json:"name"`
	TrustLevel string                      `json:"trust_level"`
	Compliance rubacDomain.ComplianceFlags `json:"compliance"`
	LastSeenAt time.Time                   `json:"last_seen_at"`
	CreatedAt  time.Time                   `json:"created_at"`
}

// MapDeviceToResponse converts a device profile to an API response.
func MapDeviceToResponse(d *rubacDomain.DeviceProfile) DeviceResponse {
	compliance := d.Compliance
	if compliance == nil {
		compliance = rubacDomain.ComplianceFlags{}
	}
	return DeviceResponse{
		ID:         d.ID.String(),
		DeviceID:   d.DeviceID,
		UserID:     d.UserID.String(),
		Name:       d.Name,
		TrustLevel: d.TrustLevel.String(),
		Compliance: compliance,
		LastSeenAt: d.LastSeenAt,
		CreatedAt:  d.CreatedAt,
	}
}

// ListDevicesResponse wraps a user's devices.
type ListDevicesResponse struct {
	Data []DeviceResponse `json:"data"`
}

// MapDevicesToResponse converts a list of devices.
func MapDevicesToResponse(items []*rubacDomain.DeviceProfile) ListDevicesResponse {
	data := make([]DeviceResponse, 0, len(items))
	for _, item := range items {
		data = append(data, MapDeviceToResponse(item))
	}
	return ListDevicesResponse{Data: data}
}
