// Package service provides the cryptographic primitives behind the audit hash chain.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
)

// MinKeySize is the minimum accepted length of the audit master key.
const MinKeySize = 32

// ErrKeyTooShort indicates an audit master key below MinKeySize bytes.
var ErrKeyTooShort = errors.New("audit key must be at least 32 bytes")

// ChainHasher links audit events with HMAC-SHA256.
type ChainHasher interface {
	// Hash computes the chained hash of event given its predecessor's hash.
	Hash(prevHash []byte, event *auditDomain.AuditEvent) ([]byte, error)

	// Verify recomputes the hash of event from event.PrevHash and compares it with event.Hash.
	Verify(event *auditDomain.AuditEvent) error
}

type chainHasher struct {
	key []byte
}

// NewChainHasher derives a chain key from masterKey with HKDF-SHA256.
// The info string is versioned so the canonical format can evolve.
func NewChainHasher(masterKey []byte) (ChainHasher, error) {
	if len(masterKey) < MinKeySize {
		return nil, ErrKeyTooShort
	}

	reader := hkdf.New(sha256.New, masterKey, nil, []byte("audit-chain-v1"))
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive chain key: %w", err)
	}

	return &chainHasher{key: key}, nil
}

// canonicalize builds the byte string that is authenticated for an event.
// Format: sequence || prev_hash || id || actor_id || action || resource_type ||
// resource_id || outcome || details || created_at, variable fields length-prefixed.
func canonicalize(prevHash []byte, event *auditDomain.AuditEvent) ([]byte, error) {
	buf := make([]byte, 0, 512)

	buf = binary.BigEndian.AppendUint64(buf, uint64(event.Sequence))
	buf = appendLengthPrefixed(buf, prevHash)
	buf = append(buf, event.ID[:]...)
	buf = append(buf, event.ActorID[:]...)
	buf = appendLengthPrefixed(buf, []byte(event.Action))
	buf = appendLengthPrefixed(buf, []byte(event.ResourceType))
	buf = appendLengthPrefixed(buf, []byte(event.ResourceID))
	buf = appendLengthPrefixed(buf, []byte(event.Outcome))

	if len(event.Details) > 0 {
		// encoding/json sorts map keys, so the encoding is deterministic.
		details, err := json.Marshal(event.Details)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal details: %w", err)
		}
		buf = appendLengthPrefixed(buf, details)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	buf = binary.BigEndian.AppendUint64(buf, uint64(event.CreatedAt.UnixNano()))
	return buf, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

// Hash computes HMAC-SHA256 over the canonical encoding.
func (h *chainHasher) Hash(prevHash []byte, event *auditDomain.AuditEvent) ([]byte, error) {
	canonical, err := canonicalize(prevHash, event)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, h.key)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify returns ErrChainBroken when the stored hash does not match.
func (h *chainHasher) Verify(event *auditDomain.AuditEvent) error {
	expected, err := h.Hash(event.PrevHash, event)
	if err != nil {
		return err
	}
	if !hmac.Equal(event.Hash, expected) {
		return auditDomain.ErrChainBroken
	}
	return nil
}
