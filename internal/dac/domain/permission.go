// Package domain defines discretionary access control: per-user permission bitsets on
// resources, ownership transfers and sharing links.
package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"

	apperrors "github.com/allisson/sentinel/internal/errors"
)

// Permission is a bitset of discretionary rights on a single resource.
type Permission uint8

const (
	PermRead Permission = 1 << iota
	PermWrite
	PermExecute
	PermDelete
	PermShare
)

// PermAll is every right. Owners implicitly hold it.
const PermAll = PermRead | PermWrite | PermExecute | PermDelete | PermShare

var permissionNames = []struct {
	perm Permission
	name string
}{
	{PermRead, "read"},
	{PermWrite, "write"},
	{PermExecute, "execute"},
	{PermDelete, "delete"},
	{PermShare, "share"},
}

// ParsePermissions builds a bitset from right names.
func ParsePermissions(names []string) (Permission, error) {
	var p Permission
	for _, n := range names {
		bit, ok := permissionByName(n)
		if !ok {
			return 0, apperrors.Wrapf(ErrInvalidPermission, "%q", n)
		}
		p |= bit
	}
	return p, nil
}

func permissionByName(name string) (Permission, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, pn := range permissionNames {
		if pn.name == name {
			return pn.perm, true
		}
	}
	return 0, false
}

// Has reports whether every bit of other is set.
func (p Permission) Has(other Permission) bool {
	return p&other == other
}

// IsSubsetOf reports whether p grants nothing beyond other.
func (p Permission) IsSubsetOf(other Permission) bool {
	return p&^other == 0
}

// IsValid reports whether p is non-empty and uses only known bits.
func (p Permission) IsValid() bool {
	return p != 0 && p.IsSubsetOf(PermAll)
}

// Names lists the rights in canonical order.
func (p Permission) Names() []string {
	names := make([]string, 0, len(permissionNames))
	for _, pn := range permissionNames {
		if p.Has(pn.perm) {
			names = append(names, pn.name)
		}
	}
	return names
}

func (p Permission) String() string {
	return strings.Join(p.Names(), ",")
}

// Value stores the bitset as an integer.
func (p Permission) Value() (driver.Value, error) {
	return int64(p), nil
}

// Scan implements sql.Scanner.
func (p *Permission) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*p = Permission(v)
	case int32:
		*p = Permission(v)
	case []byte:
		var n int64
		if _, err := fmt.Sscan(string(v), &n); err != nil {
			return err
		}
		*p = Permission(n)
	default:
		return fmt.Errorf("cannot scan %T into Permission", src)
	}
	return nil
}

// PermissionForAction maps a resource action onto the right it needs. Unknown actions
// have no mapping and must be denied by callers.
func PermissionForAction(action string) (Permission, bool) {
	switch strings.ToLower(action) {
	case "read", "view", "list", "download":
		return PermRead, true
	case "write", "update", "edit", "create", "upload":
		return PermWrite, true
	case "execute", "run", "open", "enter", "use":
		return PermExecute, true
	case "delete", "remove":
		return PermDelete, true
	case "share", "grant":
		return PermShare, true
	}
	return 0, false
}
