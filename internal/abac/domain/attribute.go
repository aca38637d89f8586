package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/sentinel/internal/errors"
)

// UserAttribute is a named fact about a user. Expired attributes are absent.
type UserAttribute struct {
	UserID    uuid.UUID
	Name      string
	Value     Value
	Source    string
	ExpiresAt *time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the attribute still applies at now.
func (a *UserAttribute) IsActive(now time.Time) bool {
	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}

// SetAttributeInput creates or replaces a user attribute.
type SetAttributeInput struct {
	UserID    uuid.UUID
	Name      string
	Value     Value
	Source    string
	ExpiresAt *time.Time
}

// Validate rejects empty names, reserved prefixes and absent values.
func (in *SetAttributeInput) Validate() error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "attribute name is required")
	}
	for _, prefix := range ReservedPrefixes {
		if strings.HasPrefix(name, prefix) {
			return apperrors.Wrapf(apperrors.ErrInvalidInput, "attribute prefix %q is reserved", prefix)
		}
	}
	if in.Value.IsAbsent() {
		return ErrInvalidValue
	}
	return nil
}

// ReservedPrefixes name the request-derived attributes; stored user attributes may not shadow them.
var ReservedPrefixes = []string{"subject.", "resource.", "env.", "request."}

// EvaluateInput asks whether a user may perform an action, given request-derived attributes.
type EvaluateInput struct {
	UserID       uuid.UUID
	ResourceType string
	Action       string
	Context      Attributes
}
