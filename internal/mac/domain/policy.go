package domain

import (
	"fmt"
	"strings"
)

// Rule identifies which Bell-LaPadula property produced a decision.
type Rule string

const (
	RuleSimpleSecurity Rule = "no_read_up"
	RuleStarProperty   Rule = "no_write_down"
	RuleNeedToKnow     Rule = "need_to_know"
	RuleTrustedSubject Rule = "trusted_subject"
)

// AccessMode is the Bell-LaPadula direction of an action.
type AccessMode string

const (
	ModeRead  AccessMode = "read"
	ModeWrite AccessMode = "write"
)

// ModeForAction maps a resource action onto a read or write flow. Actions that only observe
// the object are reads; everything else moves information into it.
func ModeForAction(action string) AccessMode {
	switch strings.ToLower(action) {
	case "read", "view", "list", "execute", "download":
		return ModeRead
	default:
		return ModeWrite
	}
}

// Decision is the outcome of a MAC check.
type Decision struct {
	Allowed bool
	Rule    Rule
	Reason  string
}

// CheckReadAccess applies the simple security property: the subject level must dominate the
// object level and the object's compartments must be a subset of the subject's.
func CheckReadAccess(subject Subject, object Label) Decision {
	if subject.TrustedSubject {
		return Decision{Allowed: true, Rule: RuleTrustedSubject}
	}
	if !subject.Level.Dominates(object.Level) {
		return Decision{
			Rule:   RuleSimpleSecurity,
			Reason: fmt.Sprintf("clearance level %s < required %s", subject.Level, object.Level),
		}
	}
	if missing := object.Compartments.Missing(subject.Compartments); len(missing) > 0 {
		return Decision{
			Rule:   RuleNeedToKnow,
			Reason: fmt.Sprintf("missing compartment %s", missing[0]),
		}
	}
	return Decision{Allowed: true, Rule: RuleSimpleSecurity}
}

// CheckWriteAccess applies the *-property: the target level must dominate the subject level
// and the subject's compartments must be a subset of the target's.
func CheckWriteAccess(subject Subject, target Label) Decision {
	if subject.TrustedSubject {
		return Decision{Allowed: true, Rule: RuleTrustedSubject}
	}
	if !target.Level.Dominates(subject.Level) {
		return Decision{
			Rule:   RuleStarProperty,
			Reason: fmt.Sprintf("target level %s < clearance level %s", target.Level, subject.Level),
		}
	}
	if missing := subject.Compartments.Missing(target.Compartments); len(missing) > 0 {
		return Decision{
			Rule:   RuleStarProperty,
			Reason: fmt.Sprintf("missing compartment %s on target", missing[0]),
		}
	}
	return Decision{Allowed: true, Rule: RuleStarProperty}
}

// Check dispatches to the read or write property for the given mode.
func Check(subject Subject, object Label, mode AccessMode) Decision {
	if mode == ModeRead {
		return CheckReadAccess(subject, object)
	}
	return CheckWriteAccess(subject, object)
}
