package service

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
)

func newTestKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func newTestEvent(seq int64) *auditDomain.AuditEvent {
	return &auditDomain.AuditEvent{
		ID:           uuid.Must(uuid.NewV7()),
		Sequence:     seq,
		ActorID:      uuid.Must(uuid.NewV7()),
		Action:       auditDomain.ActionAccessChecked,
		ResourceType: "document",
		ResourceID:   "doc-1",
		Outcome:      "denied",
		Details:      map[string]any{"denied_by": "MAC", "reason": "missing compartment FIN"},
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestNewChainHasher(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		hasher, err := NewChainHasher(newTestKey(t))
		require.NoError(t, err)
		assert.NotNil(t, hasher)
	})

	t.Run("Error_KeyTooShort", func(t *testing.T) {
		_, err := NewChainHasher([]byte("short"))
		assert.ErrorIs(t, err, ErrKeyTooShort)
	})
}

func TestChainHasher_HashAndVerify(t *testing.T) {
	hasher, err := NewChainHasher(newTestKey(t))
	require.NoError(t, err)

	first := newTestEvent(1)
	first.Hash, err = hasher.Hash(nil, first)
	require.NoError(t, err)
	assert.Len(t, first.Hash, 32)
	assert.NoError(t, hasher.Verify(first))

	second := newTestEvent(2)
	second.PrevHash = first.Hash
	second.Hash, err = hasher.Hash(second.PrevHash, second)
	require.NoError(t, err)
	assert.NoError(t, hasher.Verify(second))
	assert.NotEqual(t, first.Hash, second.Hash)
}

func TestChainHasher_DetectsTampering(t *testing.T) {
	hasher, err := NewChainHasher(newTestKey(t))
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(e *auditDomain.AuditEvent)
	}{
		{"Action", func(e *auditDomain.AuditEvent) { e.Action = auditDomain.ActionRoleAssigned }},
		{"Outcome", func(e *auditDomain.AuditEvent) { e.Outcome = "allowed" }},
		{"Details", func(e *auditDomain.AuditEvent) { e.Details["reason"] = "none" }},
		{"Sequence", func(e *auditDomain.AuditEvent) { e.Sequence++ }},
		{"PrevHash", func(e *auditDomain.AuditEvent) { e.PrevHash = []byte("forged") }},
		{"CreatedAt", func(e *auditDomain.AuditEvent) { e.CreatedAt = e.CreatedAt.Add(time.Second) }},
	}

	for _, tt := range tests {
		t.Run("Error_"+tt.name, func(t *testing.T) {
			event := newTestEvent(5)
			event.Hash, err = hasher.Hash(nil, event)
			require.NoError(t, err)

			tt.mutate(event)
			assert.ErrorIs(t, hasher.Verify(event), auditDomain.ErrChainBroken)
		})
	}
}

func TestChainHasher_DifferentKeys(t *testing.T) {
	a, err := NewChainHasher(newTestKey(t))
	require.NoError(t, err)
	b, err := NewChainHasher(newTestKey(t))
	require.NoError(t, err)

	event := newTestEvent(1)
	event.Hash, err = a.Hash(nil, event)
	require.NoError(t, err)

	assert.ErrorIs(t, b.Verify(event), auditDomain.ErrChainBroken)
}
