package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransferStatus is the state of an ownership transfer. Approved and rejected are terminal.
type TransferStatus string

const (
	TransferRequested TransferStatus = "requested"
	TransferApproved  TransferStatus = "approved"
	TransferRejected  TransferStatus = "rejected"
)

// OwnershipTransfer hands a resource from its current owner to another user once the
// receiving user approves.
type OwnershipTransfer struct {
	ID             uuid.UUID
	ResourceType   string
	ResourceID     string
	FromUserID     uuid.UUID
	ToUserID       uuid.UUID
	Reason         string
	Status         TransferStatus
	DecidedBy      *uuid.UUID
	DecidedAt      *time.Time
	DecisionReason string
	CreatedAt      time.Time
}

// IsParty reports whether userID is the giving or receiving side.
func (t *OwnershipTransfer) IsParty(userID uuid.UUID) bool {
	return t.FromUserID == userID || t.ToUserID == userID
}

// RequestTransferInput opens an ownership transfer from the caller.
type RequestTransferInput struct {
	ResourceType string
	ResourceID   string
	ToUserID     uuid.UUID
	Reason       string
}

// DecideTransferInput approves or rejects a transfer.
type DecideTransferInput struct {
	TransferID uuid.UUID
	Reason     string
}
