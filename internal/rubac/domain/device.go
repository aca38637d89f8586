// Package domain defines the contextual rules evaluated per request (time windows, device
// trust and network origin) and the device profiles and holiday calendar they read.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/sentinel/internal/errors"
)

// DeviceTrust orders how far a device is trusted. BLOCKED is below everything and always denied.
type DeviceTrust int

const (
	TrustBlocked DeviceTrust = iota
	TrustUnknown
	TrustRecognized
	TrustTrusted
)

var trustNames = map[DeviceTrust]string{
	TrustBlocked:    "BLOCKED",
	TrustUnknown:    "UNKNOWN",
	TrustRecognized: "RECOGNIZED",
	TrustTrusted:    "TRUSTED",
}

// ParseDeviceTrust converts a trust name (case-insensitive).
func ParseDeviceTrust(s string) (DeviceTrust, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for trust, n := range trustNames {
		if n == name {
			return trust, nil
		}
	}
	return TrustUnknown, apperrors.Wrapf(ErrInvalidDeviceTrust, "%q", s)
}

func (t DeviceTrust) String() string {
	if name, ok := trustNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TRUST(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t DeviceTrust) MarshalText() ([]byte, error) {
	if _, ok := trustNames[t]; !ok {
		return nil, ErrInvalidDeviceTrust
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *DeviceTrust) UnmarshalText(text []byte) error {
	parsed, err := ParseDeviceTrust(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value stores the trust name.
func (t DeviceTrust) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan reads a trust name.
func (t *DeviceTrust) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return t.UnmarshalText([]byte(v))
	case []byte:
		return t.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into DeviceTrust", src)
	}
}

// ComplianceFlags are device posture facts reported at registration, e.g. disk_encrypted.
type ComplianceFlags map[string]bool

// Value implements driver.Valuer.
func (c ComplianceFlags) Value() (driver.Value, error) {
	if c == nil {
		c = ComplianceFlags{}
	}
	data, err := json.Marshal(map[string]bool(c))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (c *ComplianceFlags) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*c = ComplianceFlags{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ComplianceFlags", src)
	}
	return json.Unmarshal(data, (*map[string]bool)(c))
}

// DeviceProfile is a device a user registered. Registration never changes TrustLevel;
// only an administrator does.
type DeviceProfile struct {
	ID         uuid.UUID
	DeviceID   string
	UserID     uuid.UUID
	Name       string
	TrustLevel DeviceTrust
	Compliance ComplianceFlags
	LastSeenAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RegisterDeviceInput upserts the caller's device.
type RegisterDeviceInput struct {
	DeviceID   string
	Name       string
	Compliance ComplianceFlags
}

// UpdateTrustInput sets the trust of a user's device.
type UpdateTrustInput struct {
	UserID     uuid.UUID
	DeviceID   string
	TrustLevel DeviceTrust
	Reason     string
}

// Holiday is a calendar day on which holiday-excluding time windows deny access.
type Holiday struct {
	Day  time.Time
	Name string
}

// DayKey formats a calendar day the way holidays are looked up.
func DayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}
