// Package domain defines the unified access request and the decision produced by running the
// enabled authorization models over it.
package domain

import (
	"strings"
	"time"

	abacDomain "github.com/allisson/sentinel/internal/abac/domain"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	apperrors "github.com/allisson/sentinel/internal/errors"
)

// Model names one authorization model.
type Model string

const (
	ModelRBAC  Model = "RBAC"
	ModelMAC   Model = "MAC"
	ModelDAC   Model = "DAC"
	ModelABAC  Model = "ABAC"
	ModelRuBAC Model = "RUBAC"
)

// EvaluationOrder is the fixed order models run in. It does not depend on how a request
// lists its checks.
var EvaluationOrder = []Model{ModelRBAC, ModelMAC, ModelDAC, ModelABAC, ModelRuBAC}

var (
	// ErrInvalidModel indicates an unknown model name in a request.
	ErrInvalidModel = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid access model")

	// ErrInvalidRequest indicates a request without resource or action.
	ErrInvalidRequest = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid access request")

	// ErrEvaluationFailed indicates a model could not load its facts. The decision is a denial.
	ErrEvaluationFailed = apperrors.Wrap(apperrors.ErrIntegrity, "access evaluation failed")

	// ErrAuditEmission indicates the decision was made but could not be written to the audit trail.
	ErrAuditEmission = apperrors.Wrap(apperrors.ErrIntegrity, "access decision audit emission failed")
)

// ParseModel converts a model name (case-insensitive).
func ParseModel(s string) (Model, error) {
	name := Model(strings.ToUpper(strings.TrimSpace(s)))
	for _, m := range EvaluationOrder {
		if m == name {
			return m, nil
		}
	}
	return "", apperrors.Wrapf(ErrInvalidModel, "%q", s)
}

// RequestContext carries the per-request facts the contextual models read.
type RequestContext struct {
	ClientIP   string
	UserAgent  string
	DeviceID   string
	TLS        bool
	Attributes abacDomain.Attributes
}

// Request asks whether Subject may perform Action on a resource. An empty Checks enables
// every model.
type Request struct {
	Subject      *authDomain.Principal
	ResourceType string
	ResourceID   string
	Action       string
	Checks       []Model
	Context      RequestContext
}

// Validate checks the request is complete.
func (r *Request) Validate() error {
	if r.Subject == nil {
		return apperrors.Wrap(apperrors.ErrUnauthorized, "access request has no subject")
	}
	if strings.TrimSpace(r.ResourceType) == "" || strings.TrimSpace(r.ResourceID) == "" ||
		strings.TrimSpace(r.Action) == "" {
		return apperrors.Wrap(ErrInvalidRequest, "resource type, resource id and action are required")
	}
	for _, m := range r.Checks {
		if _, err := ParseModel(string(m)); err != nil {
			return err
		}
	}
	return nil
}

// EnabledModels returns the requested models in evaluation order.
func (r *Request) EnabledModels() []Model {
	if len(r.Checks) == 0 {
		return append([]Model(nil), EvaluationOrder...)
	}
	enabled := make(map[Model]bool, len(r.Checks))
	for _, m := range r.Checks {
		enabled[Model(strings.ToUpper(string(m)))] = true
	}
	models := make([]Model, 0, len(enabled))
	for _, m := range EvaluationOrder {
		if enabled[m] {
			models = append(models, m)
		}
	}
	return models
}

// Verdict is what a single model concluded.
type Verdict struct {
	Allowed bool
	Reason  string
	Details map[string]any
}

// Allow returns an allowing verdict.
func Allow(reason string) *Verdict {
	return &Verdict{Allowed: true, Reason: reason}
}

// Deny returns a denying verdict.
func Deny(reason string) *Verdict {
	return &Verdict{Reason: reason}
}

// Decision is the combined outcome. DeniedBy is empty when access is allowed.
type Decision struct {
	Allowed   bool
	DeniedBy  Model
	Reason    string
	Bypassed  bool
	Evaluated []Model
	Details   map[string]any
	DecidedAt time.Time
}
