// Package domain defines the security lattice and the Bell-LaPadula checks evaluated over it.
//
// Security levels form a total order (UNCLASSIFIED < CONFIDENTIAL < SECRET < TOP_SECRET).
// Compartments are need-to-know tags; a subject dominates an object when its level is
// greater than or equal to the object's level and its compartment set is a superset of
// the object's compartment set.
package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"

	apperrors "github.com/allisson/sentinel/internal/errors"
)

// SecurityLevel is a position in the totally ordered classification lattice.
type SecurityLevel int

const (
	Unclassified SecurityLevel = iota
	Confidential
	Secret
	TopSecret
)

// LowestLevel is the level assumed for subjects with no active clearance.
const LowestLevel = Unclassified

var levelNames = map[SecurityLevel]string{
	Unclassified: "UNCLASSIFIED",
	Confidential: "CONFIDENTIAL",
	Secret:       "SECRET",
	TopSecret:    "TOP_SECRET",
}

// ErrInvalidSecurityLevel indicates an unknown level name.
var ErrInvalidSecurityLevel = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid security level")

// ParseSecurityLevel converts a level name (case-insensitive) into a SecurityLevel.
func ParseSecurityLevel(s string) (SecurityLevel, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for level, n := range levelNames {
		if n == name {
			return level, nil
		}
	}
	return Unclassified, apperrors.Wrapf(ErrInvalidSecurityLevel, "%q", s)
}

// String returns the canonical upper-case level name.
func (l SecurityLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// IsValid reports whether l is one of the defined levels.
func (l SecurityLevel) IsValid() bool {
	_, ok := levelNames[l]
	return ok
}

// Dominates reports whether l is greater than or equal to other.
func (l SecurityLevel) Dominates(other SecurityLevel) bool {
	return l >= other
}

// MarshalText implements encoding.TextMarshaler.
func (l SecurityLevel) MarshalText() ([]byte, error) {
	if !l.IsValid() {
		return nil, ErrInvalidSecurityLevel
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *SecurityLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseSecurityLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Value implements driver.Valuer; levels are stored by name.
func (l SecurityLevel) Value() (driver.Value, error) {
	if !l.IsValid() {
		return nil, ErrInvalidSecurityLevel
	}
	return l.String(), nil
}

// Scan implements sql.Scanner.
func (l *SecurityLevel) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return l.UnmarshalText([]byte(v))
	case []byte:
		return l.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into SecurityLevel", src)
	}
}
