package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	apperrors "github.com/allisson/sentinel/internal/errors"
)

func TestParseModel(t *testing.T) {
	m, err := ParseModel(" rubac ")
	require.NoError(t, err)
	assert.Equal(t, ModelRuBAC, m)

	_, err = ParseModel("PBAC")
	assert.ErrorIs(t, err, ErrInvalidModel)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestRequest_Validate(t *testing.T) {
	valid := Request{
		Subject:      &authDomain.Principal{},
		ResourceType: "door",
		ResourceID:   "lobby-1",
		Action:       "enter",
	}
	require.NoError(t, valid.Validate())

	t.Run("Error_NoSubject", func(t *testing.T) {
		req := valid
		req.Subject = nil
		assert.ErrorIs(t, req.Validate(), apperrors.ErrUnauthorized)
	})

	t.Run("Error_MissingAction", func(t *testing.T) {
		req := valid
		req.Action = " "
		assert.ErrorIs(t, req.Validate(), ErrInvalidRequest)
	})

	t.Run("Error_UnknownModel", func(t *testing.T) {
		req := valid
		req.Checks = []Model{ModelMAC, "PBAC"}
		assert.ErrorIs(t, req.Validate(), ErrInvalidModel)
	})
}

func TestRequest_EnabledModels(t *testing.T) {
	t.Run("EmptyEnablesAll", func(t *testing.T) {
		req := Request{}
		assert.Equal(t, EvaluationOrder, req.EnabledModels())
	})

	t.Run("FixedOrderRegardlessOfInput", func(t *testing.T) {
		req := Request{Checks: []Model{ModelRuBAC, "mac", ModelRBAC, ModelMAC}}
		assert.Equal(t, []Model{ModelRBAC, ModelMAC, ModelRuBAC}, req.EnabledModels())
	})

	t.Run("DoesNotAliasOrder", func(t *testing.T) {
		req := Request{}
		models := req.EnabledModels()
		models[0] = ModelABAC
		assert.Equal(t, ModelRBAC, EvaluationOrder[0])
	})
}
