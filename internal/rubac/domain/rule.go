package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/sentinel/internal/errors"
)

// RuleKind selects which predicate a context rule configures.
type RuleKind string

const (
	KindTimeWindow  RuleKind = "time_window"
	KindDeviceTrust RuleKind = "device_trust"
	KindNetwork     RuleKind = "network"
)

// AllResourceTypes targets a rule at every resource type.
const AllResourceTypes = "*"

var weekdays = map[string]time.Weekday{
	"SUN": time.Sunday,
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
}

// TimeWindowConfig allows access on the listed days between Start and End local time.
// End before Start is an overnight window belonging to the day it starts on.
type TimeWindowConfig struct {
	Timezone        string   `json:"timezone"`
	Days            []string `json:"days,omitempty"`
	Start           string   `json:"start"`
	End             string   `json:"end"`
	ExcludeHolidays bool     `json:"exclude_holidays"`
}

// DeviceTrustConfig sets the minimum device trust, optionally per resource classification.
type DeviceTrustConfig struct {
	MinimumTrust      DeviceTrust            `json:"minimum_trust"`
	BySensitivity     map[string]DeviceTrust `json:"by_sensitivity,omitempty"`
	RequireCompliance []string               `json:"require_compliance,omitempty"`
}

// NetworkConfig restricts the client address and transport.
type NetworkConfig struct {
	Allow      []string `json:"allow,omitempty"`
	Block      []string `json:"block,omitempty"`
	RequireTLS bool     `json:"require_tls"`
}

// RuleConfig holds the configuration of exactly one kind.
type RuleConfig struct {
	TimeWindow  *TimeWindowConfig  `json:"time_window,omitempty"`
	DeviceTrust *DeviceTrustConfig `json:"device_trust,omitempty"`
	Network     *NetworkConfig     `json:"network,omitempty"`
}

// Value implements driver.Valuer.
func (c RuleConfig) Value() (driver.Value, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (c *RuleConfig) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into RuleConfig", src)
	}
	return json.Unmarshal(data, c)
}

// ContextRule is one contextual predicate applied to a resource type.
type ContextRule struct {
	ID           uuid.UUID
	Name         string
	ResourceType string
	Kind         RuleKind
	Config       RuleConfig
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RuleInput creates or replaces a context rule.
type RuleInput struct {
	Name         string
	ResourceType string
	Kind         RuleKind
	Config       RuleConfig
	Enabled      bool
}

// Validate checks that the configuration matches the kind and parses.
func (in *RuleInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.ResourceType) == "" {
		return apperrors.Wrap(ErrInvalidRule, "name and resource type are required")
	}
	c := in.Config
	switch in.Kind {
	case KindTimeWindow:
		if c.TimeWindow == nil || c.DeviceTrust != nil || c.Network != nil {
			return apperrors.Wrap(ErrInvalidRule, "time_window rules take only a time_window configuration")
		}
		return c.TimeWindow.validate()
	case KindDeviceTrust:
		if c.DeviceTrust == nil || c.TimeWindow != nil || c.Network != nil {
			return apperrors.Wrap(ErrInvalidRule, "device_trust rules take only a device_trust configuration")
		}
		return nil
	case KindNetwork:
		if c.Network == nil || c.TimeWindow != nil || c.DeviceTrust != nil {
			return apperrors.Wrap(ErrInvalidRule, "network rules take only a network configuration")
		}
		return c.Network.validate()
	default:
		return apperrors.Wrapf(ErrInvalidRule, "unknown kind %q", in.Kind)
	}
}

func (w *TimeWindowConfig) validate() error {
	if _, err := time.LoadLocation(w.Timezone); err != nil {
		return apperrors.Wrapf(ErrInvalidRule, "unknown timezone %q", w.Timezone)
	}
	for _, day := range w.Days {
		if _, ok := weekdays[strings.ToUpper(day)]; !ok {
			return apperrors.Wrapf(ErrInvalidRule, "unknown day %q", day)
		}
	}
	start, err := parseClock(w.Start)
	if err != nil {
		return err
	}
	end, err := parseClock(w.End)
	if err != nil {
		return err
	}
	if start == end {
		return apperrors.Wrap(ErrInvalidRule, "time window start and end must differ")
	}
	return nil
}

func (n *NetworkConfig) validate() error {
	for _, list := range [][]string{n.Allow, n.Block} {
		for _, cidr := range list {
			if _, err := parsePrefix(cidr); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseClock converts HH:MM into minutes after midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, apperrors.Wrapf(ErrInvalidRule, "invalid time of day %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// parsePrefix accepts a CIDR or a bare address.
func parsePrefix(s string) (netip.Prefix, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		prefix, err := netip.ParsePrefix(s)
		if err != nil {
			return netip.Prefix{}, apperrors.Wrapf(ErrInvalidRule, "invalid network %q", s)
		}
		return prefix.Masked(), nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, apperrors.Wrapf(ErrInvalidRule, "invalid network %q", s)
	}
	return netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()), nil
}
