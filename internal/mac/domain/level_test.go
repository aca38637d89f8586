package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/sentinel/internal/errors"
)

func TestParseSecurityLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected SecurityLevel
	}{
		{"UNCLASSIFIED", Unclassified},
		{"confidential", Confidential},
		{" Secret ", Secret},
		{"TOP_SECRET", TopSecret},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseSecurityLevel(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}

	t.Run("Error_Unknown", func(t *testing.T) {
		_, err := ParseSecurityLevel("COSMIC")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestSecurityLevel_TotalOrder(t *testing.T) {
	levels := []SecurityLevel{Unclassified, Confidential, Secret, TopSecret}
	for i, a := range levels {
		for j, b := range levels {
			assert.Equal(t, i >= j, a.Dominates(b), "%s dominates %s", a, b)
		}
	}
}

func TestSecurityLevel_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Level SecurityLevel `json:"level"`
	}{Level: TopSecret})
	require.NoError(t, err)
	assert.JSONEq(t, `{"level":"TOP_SECRET"}`, string(data))

	var decoded struct {
		Level SecurityLevel `json:"level"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"level":"secret"}`), &decoded))
	assert.Equal(t, Secret, decoded.Level)

	assert.Error(t, json.Unmarshal([]byte(`{"level":"bogus"}`), &decoded))
}

func TestSecurityLevel_Scan(t *testing.T) {
	var level SecurityLevel
	require.NoError(t, level.Scan([]byte("CONFIDENTIAL")))
	assert.Equal(t, Confidential, level)

	require.NoError(t, level.Scan("SECRET"))
	assert.Equal(t, Secret, level)

	assert.Error(t, level.Scan(42))

	value, err := TopSecret.Value()
	require.NoError(t, err)
	assert.Equal(t, "TOP_SECRET", value)

	_, err = SecurityLevel(99).Value()
	assert.Error(t, err)
}

func TestCompartments(t *testing.T) {
	t.Run("Success_Normalizes", func(t *testing.T) {
		c := NewCompartments("OPS", " FIN ", "OPS", "")
		assert.Equal(t, Compartments{"FIN", "OPS"}, c)
	})

	t.Run("Success_SubsetAndMissing", func(t *testing.T) {
		subject := NewCompartments("C1")
		object := NewCompartments("C1", "C2")

		assert.True(t, subject.IsSubsetOf(object))
		assert.False(t, object.IsSubsetOf(subject))
		assert.Equal(t, []string{"C2"}, object.Missing(subject))
		assert.True(t, Compartments{}.IsSubsetOf(subject))
	})

	t.Run("Success_Union", func(t *testing.T) {
		assert.Equal(t, Compartments{"A", "B", "C"}, NewCompartments("C", "A").Union(NewCompartments("B", "A")))
	})

	t.Run("Success_DatabaseRoundTrip", func(t *testing.T) {
		value, err := NewCompartments("OPS", "FIN").Value()
		require.NoError(t, err)
		assert.Equal(t, `["FIN","OPS"]`, value)

		var scanned Compartments
		require.NoError(t, scanned.Scan([]byte(`["OPS","FIN","OPS"]`)))
		assert.Equal(t, Compartments{"FIN", "OPS"}, scanned)

		require.NoError(t, scanned.Scan(nil))
		assert.Empty(t, scanned)

		empty, err := Compartments(nil).Value()
		require.NoError(t, err)
		assert.Equal(t, "[]", empty)
	})
}
