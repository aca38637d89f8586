package dto

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	dacDomain "github.com/allisson/sentinel/internal/dac/domain"
	customValidation "github.com/allisson/sentinel/internal/validation"
)

// RequestTransferRequest opens an ownership transfer.
type RequestTransferRequest struct {
	ToUserID string `json:"to_user_id"`
	Reason   string `json:"reason"`
}

// Validate checks if the transfer request is valid.
func (r *RequestTransferRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ToUserID, validation.Required, customValidation.UUID),
		validation.Field(&r.Reason, validation.Length(0, 1000)),
	)
}

// ToDomain converts the request. Call Validate first.
func (r *RequestTransferRequest) ToDomain(resourceType, resourceID string) *dacDomain.RequestTransferInput {
	return &dacDomain.RequestTransferInput{
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ToUserID:     uuid.MustParse(r.ToUserID),
		Reason:       r.Reason,
	}
}

// DecideTransferRequest carries an optional reason for an approval or rejection.
type DecideTransferRequest struct {
	Reason string `json:"reason"`
}

// Validate checks if the decision is valid.
func (r *DecideTransferRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Reason, validation.Length(0, 1000)),
	)
}

// TransferResponse represents an ownership transfer in API responses.
type TransferResponse struct {
	ID             string     `json:"id"`
	ResourceType   string     `json:"resource_type"`
	ResourceID     string     `json:"resource_id"`
	FromUserID     string     `json:"from_user_id"`
	ToUserID       string     `json:"to_user_id"`
	Reason         string     `json:"reason,omitempty"`
	Status         string     `json:"status"`
	DecidedBy      *string    `json:"decided_by,omitempty"`
	DecidedAt      *time.Time `json:"decided_at,omitempty"`
	DecisionReason string     `json:"decision_reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// MapTransferToResponse converts a transfer to an API response.
func MapTransferToResponse(t *dacDomain.OwnershipTransfer) TransferResponse {
	resp := TransferResponse{
		ID:             t.ID.String(),
		ResourceType:   t.ResourceType,
		ResourceID:     t.ResourceID,
		FromUserID:     t.FromUserID.String(),
		ToUserID:       t.ToUserID.String(),
		Reason:         t.Reason,
		Status:         string(t.Status),
		DecidedAt:      t.DecidedAt,
		DecisionReason: t.DecisionReason,
		CreatedAt:      t.CreatedAt,
	}
	if t.DecidedBy != nil {
		id := t.DecidedBy.String()
		resp.DecidedBy = &id
	}
	return resp
}

// ListTransfersResponse wraps a list of transfers.
type ListTransfersResponse struct {
	Data []TransferResponse `json:"data"`
}

// MapTransfersToResponse converts a list of transfers.
func MapTransfersToResponse(items []*dacDomain.OwnershipTransfer) ListTransfersResponse {
	data := make([]TransferResponse, 0, len(items))
	for _, item := range items {
		data = append(data, MapTransferToResponse(item))
	}
	return ListTransfersResponse{Data: data}
}
