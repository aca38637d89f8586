package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StringList is a JSON encoded list of lower-cased strings.
type StringList []string

// NewStringList trims, lower-cases and deduplicates values.
func NewStringList(values ...string) StringList {
	out := make(StringList, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// Value stores the list as a JSON array.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan decodes a JSON array column.
func (l *StringList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*l = StringList{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	return json.Unmarshal(data, (*[]string)(l))
}

// SharingLink is a capability token granting a subset of its creator's rights on one resource.
// Only the SHA-256 hash of the token is stored.
type SharingLink struct {
	ID             uuid.UUID
	TokenHash      []byte
	ResourceType   string
	ResourceID     string
	CreatedBy      uuid.UUID
	Permissions    Permission
	ExpiresAt      *time.Time
	MaxUses        *int
	UsesSoFar      int
	PasswordHash   *string
	RequireAuth    bool
	AllowedEmails  StringList
	AllowedDomains StringList
	RevokedAt      *time.Time
	RevokedBy      *uuid.UUID
	CreatedAt      time.Time
}

// IsExpired reports whether the link lapsed at now.
func (l *SharingLink) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}

// HasUsesRemaining reports whether another redemption fits under MaxUses.
func (l *SharingLink) HasUsesRemaining() bool {
	return l.MaxUses == nil || l.UsesSoFar < *l.MaxUses
}

// AllowsEmail applies the email and domain allow-lists. With neither list set every caller
// is allowed; otherwise the caller must match at least one entry.
func (l *SharingLink) AllowsEmail(email string) bool {
	if len(l.AllowedEmails) == 0 && len(l.AllowedDomains) == 0 {
		return true
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	if slices.Contains(l.AllowedEmails, email) {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	return slices.Contains(l.AllowedDomains, email[at+1:])
}

// CreateLinkInput describes a new sharing link.
type CreateLinkInput struct {
	ResourceType   string
	ResourceID     string
	Permissions    Permission
	ExpiresAt      *time.Time
	MaxUses        *int
	Password       string
	RequireAuth    bool
	AllowedEmails  []string
	AllowedDomains []string
}

// CreateLinkOutput carries the plain token, which is never retrievable again.
type CreateLinkOutput struct {
	Link  *SharingLink
	Token string
}

// VerifyLinkInput is what a link holder presents.
type VerifyLinkInput struct {
	Token         string
	Password      string
	CallerEmail   string
	Authenticated bool
	CallerID      *uuid.UUID
}
