package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/sentinel/internal/errors"
)

// ErrClearanceNotFound indicates the user has never been assigned a clearance.
var ErrClearanceNotFound = apperrors.Wrap(apperrors.ErrNotFound, "clearance not found")

// Clearance is a user's standing MAC authorization. It is created by an administrative
// assignment and mutated only by assignment, approved escalation, or review.
type Clearance struct {
	UserID         uuid.UUID
	Level          SecurityLevel
	Compartments   Compartments
	TrustedSubject bool
	ExpiresAt      *time.Time
	ReviewDueAt    *time.Time
	AssignedBy     uuid.UUID
	Reason         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsExpired reports whether the clearance has lapsed at now.
func (c *Clearance) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// Subject returns the MAC subject this clearance yields at now. A nil or expired
// clearance evaluates as the lowest level with no compartments and no trust.
func (c *Clearance) Subject(now time.Time) Subject {
	if c == nil || c.IsExpired(now) {
		return Subject{Level: LowestLevel, Compartments: Compartments{}}
	}
	return Subject{
		Level:          c.Level,
		Compartments:   c.Compartments,
		TrustedSubject: c.TrustedSubject,
	}
}

// Subject is the effective MAC identity of a caller.
type Subject struct {
	Level          SecurityLevel
	Compartments   Compartments
	TrustedSubject bool
}

// Label is the classification attached to an object.
type Label struct {
	Level        SecurityLevel `json:"level"`
	Compartments Compartments  `json:"compartments"`
}
