// Package dto provides data transfer objects for the audit trail endpoints.
package dto

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
)

// AuditEventResponse represents an audit event in API responses.
type AuditEventResponse struct {
	ID           string         `json:"id"`
	Sequence     int64          `json:"sequence"`
	ActorID      string         `json:"actor_id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type,omitempty"`
	ResourceID   string         `json:"resource_id,omitempty"`
	Outcome      string         `json:"outcome"`
	Details      map[string]any `json:"details"`
	PrevHash     string         `json:"prev_hash"`
	Hash         string         `json:"hash"`
	CreatedAt    time.Time      `json:"created_at"`
}

// MapAuditEventToResponse converts an event to an API response. Hashes are hex encoded.
func MapAuditEventToResponse(e *auditDomain.AuditEvent) AuditEventResponse {
	details := e.Details
	if details == nil {
		details = map[string]any{}
	}
	return AuditEventResponse{
		ID:           e.ID.String(),
		Sequence:     e.Sequence,
		ActorID:      e.ActorID.String(),
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Outcome:      e.Outcome,
		Details:      details,
		PrevHash:     hex.EncodeToString(e.PrevHash),
		Hash:         hex.EncodeToString(e.Hash),
		CreatedAt:    e.CreatedAt,
	}
}

// ListAuditEventsResponse wraps a page of audit events.
type ListAuditEventsResponse struct {
	Data []AuditEventResponse `json:"data"`
}

// MapAuditEventsToResponse converts a page of audit events.
func MapAuditEventsToResponse(items []*auditDomain.AuditEvent) ListAuditEventsResponse {
	data := make([]AuditEventResponse, 0, len(items))
	for _, item := range items {
		data = append(data, MapAuditEventToResponse(item))
	}
	return ListAuditEventsResponse{Data: data}
}

// VerificationResponse summarizes a chain verification.
type VerificationResponse struct {
	Passed        bool     `json:"passed"`
	TotalChecked  int64    `json:"total_checked"`
	ValidCount    int64    `json:"valid_count"`
	InvalidCount  int64    `json:"invalid_count"`
	InvalidEvents []string `json:"invalid_events"`
	HeadSequence  int64    `json:"head_sequence"`
	HeadMismatch  bool     `json:"head_mismatch"`
}

// MapVerificationToResponse converts a verification report to an API response.
func MapVerificationToResponse(r *auditDomain.VerificationReport) VerificationResponse {
	invalid := make([]string, 0, len(r.InvalidEvents))
	for _, id := range r.InvalidEvents {
		invalid = append(invalid, id.String())
	}
	return VerificationResponse{
		Passed:        r.Passed(),
		TotalChecked:  r.TotalChecked,
		ValidCount:    r.ValidCount,
		InvalidCount:  r.InvalidCount,
		InvalidEvents: invalid,
		HeadSequence:  r.HeadSequence,
		HeadMismatch:  r.HeadMismatch,
	}
}

// ParseActorID parses the optional actor_id filter.
func ParseActorID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
