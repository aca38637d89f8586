package domain

import (
	"fmt"
	"net/netip"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EvalContext is the request context the rules are checked against.
type EvalContext struct {
	Now         time.Time
	ClientIP    string
	TLS         bool
	Device      *DeviceProfile
	Sensitivity string
	Holidays    map[string]string
}

// Result is the outcome of evaluating the context rules of a request.
type Result struct {
	Allowed      bool
	Reason       string
	RuleID       *uuid.UUID
	Kind         RuleKind
	RulesChecked int
}

var kindOrder = map[RuleKind]int{KindTimeWindow: 0, KindDeviceTrust: 1, KindNetwork: 2}

// Evaluate checks every enabled rule and reports the first failure, in time window,
// device trust, network order. No rule means allowed.
func Evaluate(rules []*ContextRule, ec EvalContext) Result {
	enabled := make([]*ContextRule, 0, len(rules))
	for _, r := range rules {
		if r.Enabled {
			enabled = append(enabled, r)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return kindOrder[enabled[i].Kind] < kindOrder[enabled[j].Kind]
	})

	for i, rule := range enabled {
		if reason, ok := checkRule(rule, ec); !ok {
			id := rule.ID
			return Result{Reason: reason, RuleID: &id, Kind: rule.Kind, RulesChecked: i + 1}
		}
	}
	return Result{Allowed: true, Reason: "all context rules satisfied", RulesChecked: len(enabled)}
}

func checkRule(rule *ContextRule, ec EvalContext) (string, bool) {
	switch rule.Kind {
	case KindTimeWindow:
		if rule.Config.TimeWindow == nil {
			return "time window rule is misconfigured", false
		}
		return checkTimeWindow(rule.Config.TimeWindow, ec)
	case KindDeviceTrust:
		if rule.Config.DeviceTrust == nil {
			return "device trust rule is misconfigured", false
		}
		return checkDeviceTrust(rule.Config.DeviceTrust, ec)
	case KindNetwork:
		if rule.Config.Network == nil {
			return "network rule is misconfigured", false
		}
		return checkNetwork(rule.Config.Network, ec)
	default:
		return fmt.Sprintf("unknown context rule kind %q", rule.Kind), false
	}
}

func checkTimeWindow(w *TimeWindowConfig, ec EvalContext) (string, bool) {
	loc, err := time.LoadLocation(w.Timezone)
	if err != nil {
		return "time window rule is misconfigured", false
	}
	start, err := parseClock(w.Start)
	if err != nil {
		return "time window rule is misconfigured", false
	}
	end, err := parseClock(w.End)
	if err != nil {
		return "time window rule is misconfigured", false
	}

	local := ec.Now.In(loc)
	if w.ExcludeHolidays {
		if name, ok := ec.Holidays[DayKey(local)]; ok {
			return fmt.Sprintf("access is not permitted on holiday %s", name), false
		}
	}

	minute := local.Hour()*60 + local.Minute()
	day := local.Weekday()
	inWindow := false
	if start < end {
		inWindow = minute >= start && minute < end
	} else {
		switch {
		case minute >= start:
			inWindow = true
		case minute < end:
			inWindow = true
			day = (day + 6) % 7
		}
	}
	if !inWindow {
		return fmt.Sprintf("outside allowed hours %s-%s %s", w.Start, w.End, w.Timezone), false
	}
	if len(w.Days) > 0 && !containsDay(w.Days, day) {
		return fmt.Sprintf("access is not permitted on %s", strings.ToUpper(day.String()[:3])), false
	}
	return "", true
}

func containsDay(days []string, day time.Weekday) bool {
	for _, d := range days {
		if wd, ok := weekdays[strings.ToUpper(d)]; ok && wd == day {
			return true
		}
	}
	return false
}

func checkDeviceTrust(c *DeviceTrustConfig, ec EvalContext) (string, bool) {
	trust := TrustUnknown
	if ec.Device != nil {
		trust = ec.Device.TrustLevel
	}
	if trust == TrustBlocked {
		return "device is blocked", false
	}

	required := c.MinimumTrust
	if level, ok := c.BySensitivity[ec.Sensitivity]; ok {
		required = level
	}
	if trust < required {
		return fmt.Sprintf("device trust %s below required %s", trust, required), false
	}

	for _, flag := range c.RequireCompliance {
		if ec.Device == nil || !ec.Device.Compliance[flag] {
			return fmt.Sprintf("device is not compliant: %s", flag), false
		}
	}
	return "", true
}

func checkNetwork(n *NetworkConfig, ec EvalContext) (string, bool) {
	if n.RequireTLS && !ec.TLS {
		return "TLS transport is required", false
	}
	if len(n.Allow) == 0 && len(n.Block) == 0 {
		return "", true
	}

	addr, err := netip.ParseAddr(strings.TrimSpace(ec.ClientIP))
	if err != nil {
		return "client address is unavailable", false
	}
	addr = addr.Unmap()

	if blockedBy(n.Block, addr) {
		return "client address is blocked", false
	}
	if len(n.Allow) > 0 && !allowedBy(n.Allow, addr) {
		return "client address is not in an allowed network", false
	}
	return "", true
}

// blockedBy treats an unparsable entry as matching, so a broken block list denies.
func blockedBy(networks []string, addr netip.Addr) bool {
	for _, cidr := range networks {
		prefix, err := parsePrefix(cidr)
		if err != nil || prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// allowedBy skips unparsable entries, so a broken allow list never widens access beyond
// its valid entries.
func allowedBy(networks []string, addr netip.Addr) bool {
	for _, cidr := range networks {
		prefix, err := parsePrefix(cidr)
		if err != nil {
			continue
		}
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// EvaluateInput identifies the request whose context is checked. Sensitivity is the
// classification name of the target resource.
type EvaluateInput struct {
	UserID       uuid.UUID
	ResourceType string
	Sensitivity  string
	ClientIP     string
	TLS          bool
	DeviceID     string
}
