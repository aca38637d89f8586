package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/sentinel/internal/audit/domain"
	auditMocks "github.com/allisson/sentinel/internal/audit/usecase/mocks"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	"github.com/allisson/sentinel/internal/clock"
	databaseMocks "github.com/allisson/sentinel/internal/database/mocks"
	apperrors "github.com/allisson/sentinel/internal/errors"
	macDomain "github.com/allisson/sentinel/internal/mac/domain"
	resourceDomain "github.com/allisson/sentinel/internal/resource/domain"
	"github.com/allisson/sentinel/internal/resource/usecase/mocks"
)

var testNow = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func TestResourceUseCase_Register(t *testing.T) {
	ctx := context.Background()
	actor := &authDomain.Principal{UserID: uuid.Must(uuid.NewV7())}

	t.Run("Success_CallerBecomesOwner", func(t *testing.T) {
		repo := &mocks.MockResourceRepository{}
		audit := &auditMocks.MockAuditUseCase{}

		repo.On("Create", ctx, mock.MatchedBy(func(r *resourceDomain.Resource) bool {
			return r.OwnerID == actor.UserID && r.Classification == macDomain.Confidential
		})).Return(nil)
		audit.On("Record", ctx, mock.MatchedBy(func(in *auditDomain.RecordInput) bool {
			return in.Action == auditDomain.ActionResourceRegistered && in.ResourceID == "door-1"
		})).Return(&auditDomain.AuditEvent{}, nil)

		uc := NewResourceUseCase(databaseMocks.NewMockTxManager(t).PassThrough(), repo, audit, clock.NewFake(testNow))

		resource, err := uc.Register(ctx, actor, &resourceDomain.RegisterInput{
			ResourceType:   "door",
			ResourceID:     "door-1",
			Classification: macDomain.Confidential,
			Compartments:   macDomain.Compartments{"OPS", "OPS"},
		})

		require.NoError(t, err)
		assert.Equal(t, macDomain.Compartments{"OPS"}, resource.Compartments)
		assert.Equal(t, testNow, resource.CreatedAt)
		repo.AssertExpectations(t)
		audit.AssertExpectations(t)
	})

	t.Run("Error_InvalidLevel", func(t *testing.T) {
		uc := NewResourceUseCase(databaseMocks.NewMockTxManager(t), &mocks.MockResourceRepository{},
			&auditMocks.MockAuditUseCase{}, clock.NewFake(testNow))

		_, err := uc.Register(ctx, actor, &resourceDomain.RegisterInput{
			ResourceType:   "door",
			ResourceID:     "door-1",
			Classification: macDomain.SecurityLevel(42),
		})

		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	})

	t.Run("Error_Duplicate", func(t *testing.T) {
		repo := &mocks.MockResourceRepository{}
		repo.On("Create", ctx, mock.Anything).Return(resourceDomain.ErrResourceAlreadyRegistered)

		uc := NewResourceUseCase(databaseMocks.NewMockTxManager(t).PassThrough(), repo,
			&auditMocks.MockAuditUseCase{}, clock.NewFake(testNow))

		_, err := uc.Register(ctx, actor, &resourceDomain.RegisterInput{
			ResourceType:   "door",
			ResourceID:     "door-1",
			Classification: macDomain.Unclassified,
		})

		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	})
}

func TestResourceUseCase_Reclassify(t *testing.T) {
	ctx := context.Background()
	admin := &authDomain.Principal{UserID: uuid.Must(uuid.NewV7()), IsAdmin: true}

	existing := func() *resourceDomain.Resource {
		return &resourceDomain.Resource{
			ID:             uuid.Must(uuid.NewV7()),
			ResourceType:   "vault",
			ResourceID:     "v-1",
			OwnerID:        uuid.Must(uuid.NewV7()),
			Classification: macDomain.Confidential,
			Compartments:   macDomain.NewCompartments("OPS"),
		}
	}

	t.Run("Success_RaisesLabel", func(t *testing.T) {
		repo := &mocks.MockResourceRepository{}
		audit := &auditMocks.MockAuditUseCase{}
		repo.On("Get", ctx, "vault", "v-1").Return(existing(), nil)
		repo.On("UpdateLabel", ctx, mock.MatchedBy(func(r *resourceDomain.Resource) bool {
			return r.Classification == macDomain.Secret && len(r.Compartments) == 2
		})).Return(nil)
		audit.On("Record", ctx, mock.MatchedBy(func(in *auditDomain.RecordInput) bool {
			return in.Details["previous_classification"] == "CONFIDENTIAL"
		})).Return(&auditDomain.AuditEvent{}, nil)

		uc := NewResourceUseCase(databaseMocks.NewMockTxManager(t).PassThrough(), repo, audit, clock.NewFake(testNow))

		resource, err := uc.Reclassify(ctx, admin, &resourceDomain.ReclassifyInput{
			ResourceType:   "vault",
			ResourceID:     "v-1",
			Classification: macDomain.Secret,
			Compartments:   macDomain.NewCompartments("OPS", "FIN"),
		})

		require.NoError(t, err)
		assert.Equal(t, macDomain.Secret, resource.Classification)
		audit.AssertExpectations(t)
	})

	t.Run("Error_NotAdmin", func(t *testing.T) {
		uc := NewResourceUseCase(databaseMocks.NewMockTxManager(t), &mocks.MockResourceRepository{},
			&auditMocks.MockAuditUseCase{}, clock.NewFake(testNow))

		_, err := uc.Reclassify(ctx, &authDomain.Principal{UserID: uuid.Must(uuid.NewV7())},
			&resourceDomain.ReclassifyInput{ResourceType: "vault", ResourceID: "v-1", Classification: macDomain.Secret})

		assert.ErrorIs(t, err, resourceDomain.ErrReclassifyForbidden)
	})

	t.Run("Error_AuditFailureRollsBack", func(t *testing.T) {
		repo := &mocks.MockResourceRepository{}
		audit := &auditMocks.MockAuditUseCase{}
		repo.On("Get", ctx, "vault", "v-1").Return(existing(), nil)
		repo.On("UpdateLabel", ctx, mock.Anything).Return(nil)
		audit.On("Record", ctx, mock.Anything).Return(nil, errors.New("chain locked"))

		uc := NewResourceUseCase(databaseMocks.NewMockTxManager(t).PassThrough(), repo, audit, clock.NewFake(testNow))

		resource, err := uc.Reclassify(ctx, admin, &resourceDomain.ReclassifyInput{
			ResourceType:   "vault",
			ResourceID:     "v-1",
			Classification: macDomain.Secret,
		})

		assert.Nil(t, resource)
		assert.ErrorContains(t, err, "chain locked")
	})
}
