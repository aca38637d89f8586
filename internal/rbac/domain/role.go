// Package domain defines the role catalog, role assignments and the role request workflow.
//
// A role bundles permission grants written as "resourceType:action", where either segment
// may be "*". A user's effective permissions are the union of the grants of every
// assignment that is neither revoked nor expired.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/sentinel/internal/errors"
)

// Wildcard matches any resource type or action.
const Wildcard = "*"

// Permission is a single "resourceType:action" grant.
type Permission string

// ParsePermission validates and normalizes a grant.
func ParsePermission(s string) (Permission, error) {
	resourceType, action, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || resourceType == "" || action == "" || strings.Contains(action, ":") {
		return "", apperrors.Wrapf(ErrInvalidPermission, "%q", s)
	}
	return Permission(strings.ToLower(resourceType) + ":" + strings.ToLower(action)), nil
}

// Matches reports whether the grant covers action on resourceType.
func (p Permission) Matches(resourceType, action string) bool {
	grantType, grantAction, _ := strings.Cut(string(p), ":")
	return segmentMatches(grantType, resourceType) && segmentMatches(grantAction, action)
}

func segmentMatches(grant, value string) bool {
	return grant == Wildcard || strings.EqualFold(grant, value)
}

// Permissions is a set of grants stored as a JSON array.
type Permissions []Permission

// ParsePermissions validates every grant and removes duplicates.
func ParsePermissions(values []string) (Permissions, error) {
	seen := make(map[Permission]struct{}, len(values))
	out := make(Permissions, 0, len(values))
	for _, v := range values {
		p, err := ParsePermission(v)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Allows reports whether any grant covers action on resourceType.
func (ps Permissions) Allows(resourceType, action string) bool {
	for _, p := range ps {
		if p.Matches(resourceType, action) {
			return true
		}
	}
	return false
}

// Strings returns the grants as plain strings.
func (ps Permissions) Strings() []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}

// Value stores the set as a JSON array.
func (ps Permissions) Value() (driver.Value, error) {
	if ps == nil {
		ps = Permissions{}
	}
	data, err := json.Marshal(ps)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan decodes a JSON array column.
func (ps *Permissions) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*ps = Permissions{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Permissions", src)
	}
	return json.Unmarshal(data, ps)
}

// Role is a named bundle of permission grants.
type Role struct {
	ID          uuid.UUID
	Name        string
	Description string
	Permissions Permissions
	CreatedAt   time.Time
}

// RoleAssignment links a user to a role. Revoked assignments never reactivate.
type RoleAssignment struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	RoleID       uuid.UUID
	IsTemporary  bool
	ExpiresAt    *time.Time
	GrantedBy    uuid.UUID
	RequestID    *uuid.UUID
	RevokedAt    *time.Time
	RevokedBy    *uuid.UUID
	RevokeReason *string
	CreatedAt    time.Time
}

// IsActive reports whether the assignment contributes permissions at now.
func (a *RoleAssignment) IsActive(now time.Time) bool {
	if a.RevokedAt != nil {
		return false
	}
	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}

// ActiveAssignment is an assignment joined with its role.
type ActiveAssignment struct {
	Assignment RoleAssignment
	Role       Role
}

// EffectivePermissions is the union of grants across a user's active assignments.
type EffectivePermissions struct {
	UserID      uuid.UUID
	Roles       []string
	Permissions Permissions
}

// Merge computes the effective permissions of userID from its active assignments.
func Merge(userID uuid.UUID, assignments []*ActiveAssignment) *EffectivePermissions {
	roles := make([]string, 0, len(assignments))
	seen := make(map[Permission]struct{})
	perms := make(Permissions, 0)
	for _, a := range assignments {
		roles = append(roles, a.Role.Name)
		for _, p := range a.Role.Permissions {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			perms = append(perms, p)
		}
	}
	sort.Strings(roles)
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return &EffectivePermissions{UserID: userID, Roles: roles, Permissions: perms}
}
