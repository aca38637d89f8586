package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	abacDomain "github.com/allisson/sentinel/internal/abac/domain"
	abacMocks "github.com/allisson/sentinel/internal/abac/usecase/mocks"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	"github.com/allisson/sentinel/internal/clock"
	dacDomain "github.com/allisson/sentinel/internal/dac/domain"
	dacMocks "github.com/allisson/sentinel/internal/dac/usecase/mocks"
	macDomain "github.com/allisson/sentinel/internal/mac/domain"
	macMocks "github.com/allisson/sentinel/internal/mac/usecase/mocks"
	rbacMocks "github.com/allisson/sentinel/internal/rbac/usecase/mocks"
	resourceDomain "github.com/allisson/sentinel/internal/resource/domain"
	resourceMocks "github.com/allisson/sentinel/internal/resource/usecase/mocks"
	rubacDomain "github.com/allisson/sentinel/internal/rubac/domain"
	rubacMocks "github.com/allisson/sentinel/internal/rubac/usecase/mocks"
)

func secretVault(owner uuid.UUID) *resourceDomain.Resource {
	return &resourceDomain.Resource{
		ResourceType:   "door",
		ResourceID:     "vault-2",
		OwnerID:        owner,
		Classification: macDomain.Secret,
		Compartments:   macDomain.NewCompartments("NUCLEAR"),
	}
}

func TestRBACEvaluator(t *testing.T) {
	ctx := context.Background()
	user := standardUser()

	t.Run("Success", func(t *testing.T) {
		roles := &rbacMocks.MockRBACUseCase{}
		roles.On("HasPermission", ctx, user.UserID, "door", "enter").Return(true, nil)

		verdict, err := NewRBACEvaluator(roles).Evaluate(ctx, newRequest(user))

		require.NoError(t, err)
		assert.True(t, verdict.Allowed)
	})

	t.Run("Error_NoRole", func(t *testing.T) {
		roles := &rbacMocks.MockRBACUseCase{}
		roles.On("HasPermission", ctx, user.UserID, "door", "enter").Return(false, nil)

		verdict, err := NewRBACEvaluator(roles).Evaluate(ctx, newRequest(user))

		require.NoError(t, err)
		assert.False(t, verdict.Allowed)
		assert.Equal(t, "no active role grants door:enter", verdict.Reason)
	})
}

func TestMACEvaluator(t *testing.T) {
	ctx := context.Background()
	user := standardUser()

	t.Run("Error_ReadUpDenied", func(t *testing.T) {
		labels := &macMocks.MockMACUseCase{}
		req := newRequest(user)
		req.Action = "view"
		labels.On("Check", ctx, user.UserID, "door", "vault-2", macDomain.ModeRead).Return(&macDomain.Decision{
			Rule: macDomain.RuleSimpleSecurity, Reason: "clearance level CONFIDENTIAL < required SECRET",
		}, nil)

		verdict, err := NewMACEvaluator(labels).Evaluate(ctx, req)

		require.NoError(t, err)
		assert.False(t, verdict.Allowed)
		assert.Equal(t, "clearance level CONFIDENTIAL < required SECRET", verdict.Reason)
		assert.Equal(t, "read", verdict.Details["mode"])
	})

	t.Run("Error_UnregisteredResourceDenies", func(t *testing.T) {
		labels := &macMocks.MockMACUseCase{}
		labels.On("Check", ctx, user.UserID, "door", "vault-2", macDomain.ModeWrite).
			Return(nil, resourceDomain.ErrResourceNotFound)

		verdict, err := NewMACEvaluator(labels).Evaluate(ctx, newRequest(user))

		require.NoError(t, err)
		assert.False(t, verdict.Allowed)
		assert.Equal(t, reasonUnregistered, verdict.Reason)
	})

	t.Run("Error_StorageFault", func(t *testing.T) {
		labels := &macMocks.MockMACUseCase{}
		labels.On("Check", ctx, user.UserID, "door", "vault-2", macDomain.ModeWrite).
			Return(nil, errors.New("connection refused"))

		verdict, err := NewMACEvaluator(labels).Evaluate(ctx, newRequest(user))

		assert.Error(t, err)
		assert.Nil(t, verdict)
	})
}

func TestDACEvaluator(t *testing.T) {
	ctx := context.Background()
	user := standardUser()

	t.Run("Success_ExecuteHeld", func(t *testing.T) {
		perms := &dacMocks.MockPermissionUseCase{}
		perms.On("EffectivePermission", ctx, user.UserID, "door", "vault-2").
			Return(dacDomain.PermRead|dacDomain.PermExecute, nil)

		verdict, err := NewDACEvaluator(perms).Evaluate(ctx, newRequest(user))

		require.NoError(t, err)
		assert.True(t, verdict.Allowed)
	})

	t.Run("Error_MissingRight", func(t *testing.T) {
		perms := &dacMocks.MockPermissionUseCase{}
		perms.On("EffectivePermission", ctx, user.UserID, "door", "vault-2").Return(dacDomain.PermRead, nil)

		verdict, err := NewDACEvaluator(perms).Evaluate(ctx, newRequest(user))

		require.NoError(t, err)
		assert.False(t, verdict.Allowed)
		assert.Equal(t, "missing execute permission", verdict.Reason)
	})

	t.Run("Error_UnknownActionDeniedWithoutLookup", func(t *testing.T) {
		perms := &dacMocks.MockPermissionUseCase{}
		req := newRequest(user)
		req.Action = "teleport"

		verdict, err := NewDACEvaluator(perms).Evaluate(ctx, req)

		require.NoError(t, err)
		assert.False(t, verdict.Allowed)
		perms.AssertNotCalled(t, "EffectivePermission", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestABACEvaluator(t *testing.T) {
	ctx := context.Background()
	user := &authDomain.Principal{
		UserID: uuid.Must(uuid.NewV7()), Email: "ana@example.com", TrustLevel: authDomain.TrustElevated,
		MFAVerified: true,
	}

	t.Run("Success_BuildsSnapshot", func(t *testing.T) {
		policies := &abacMocks.MockABACUseCase{}
		labels := &macMocks.MockMACUseCase{}
		resources := &resourceMocks.MockResourceUseCase{}
		labels.On("Subject", ctx, user.UserID).Return(macDomain.Subject{
			Level: macDomain.Secret, Compartments: macDomain.NewCompartments("NUCLEAR"),
		}, nil)
		resources.On("Get", ctx, "door", "vault-2").Return(secretVault(uuid.Must(uuid.NewV7())), nil)

		var captured *abacDomain.EvaluateInput
		policies.On("Evaluate", ctx, mock.Anything).Run(func(args mock.Arguments) {
			captured = args.Get(1).(*abacDomain.EvaluateInput)
		}).Return(&abacDomain.Evaluation{Allowed: true, Reason: "allowed by policy \"night-shift\""}, nil)

		req := newRequest(user)
		req.Action = "ENTER"
		req.Context.Attributes = abacDomain.Attributes{
			"shift":               abacDomain.StringValue("night"),
			"subject.trust_level": abacDomain.StringValue("super_admin"),
			"request.client_ip":   abacDomain.StringValue("1.1.1.1"),
		}

		verdict, err := NewABACEvaluator(policies, labels, resources, clock.NewFake(testNow)).Evaluate(ctx, req)

		require.NoError(t, err)
		assert.True(t, verdict.Allowed)
		require.NotNil(t, captured)
		assert.Equal(t, "enter", captured.Action)
		attrs := captured.Context
		assert.Equal(t, "elevated", attrs.Get("subject.trust_level").String())
		assert.Equal(t, "SECRET", attrs.Get("subject.clearance_level").String())
		assert.Equal(t, []string{"NUCLEAR"}, attrs.Get("resource.compartments").Items())
		assert.Equal(t, "SECRET", attrs.Get("resource.classification").String())
		assert.Equal(t, "night", attrs.Get("request.shift").String())
		assert.Equal(t, "super_admin", attrs.Get("request.subject.trust_level").String())
		assert.Equal(t, "10.1.2.3", attrs.Get("request.client_ip").String())
		assert.Equal(t, "MON", attrs.Get("env.weekday").String())
		hour, ok := attrs.Get("env.hour").Number()
		assert.True(t, ok)
		assert.Equal(t, float64(10), hour)
	})

	t.Run("Error_DenyReportsFailures", func(t *testing.T) {
		policies := &abacMocks.MockABACUseCase{}
		labels := &macMocks.MockMACUseCase{}
		resources := &resourceMocks.MockResourceUseCase{}
		labels.On("Subject", ctx, user.UserID).Return(macDomain.Subject{}, nil)
		resources.On("Get", ctx, "door", "vault-2").Return(secretVault(uuid.Must(uuid.NewV7())), nil)
		policies.On("Evaluate", ctx, mock.Anything).Return(&abacDomain.Evaluation{
			Reason:            "no access policy matched",
			PoliciesEvaluated: 1,
			Failures: []abacDomain.RuleFailure{{
				Policy: "night-shift", Attribute: "request.shift", Operator: abacDomain.OpEquals,
				Expected: "night", Actual: "<absent>",
			}},
		}, nil)

		verdict, err := NewABACEvaluator(policies, labels, resources, clock.NewFake(testNow)).
			Evaluate(ctx, newRequest(user))

		require.NoError(t, err)
		assert.False(t, verdict.Allowed)
		failures := verdict.Details["failures"].([]map[string]any)
		require.Len(t, failures, 1)
		assert.Equal(t, "<absent>", failures[0]["actual"])
	})

	t.Run("Error_UnregisteredResourceDenies", func(t *testing.T) {
		policies := &abacMocks.MockABACUseCase{}
		labels := &macMocks.MockMACUseCase{}
		resources := &resourceMocks.MockResourceUseCase{}
		labels.On("Subject", ctx, user.UserID).Return(macDomain.Subject{}, nil)
		resources.On("Get", ctx, "door", "vault-2").Return(nil, resourceDomain.ErrResourceNotFound)

		verdict, err := NewABACEvaluator(policies, labels, resources, clock.NewFake(testNow)).
			Evaluate(ctx, newRequest(user))

		require.NoError(t, err)
		assert.False(t, verdict.Allowed)
		assert.Equal(t, reasonUnregistered, verdict.Reason)
		policies.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything)
	})
}

func TestRuBACEvaluator(t *testing.T) {
	ctx := context.Background()
	user := standardUser()

	t.Run("Error_ClassificationDrivesSensitivity", func(t *testing.T) {
		rules := &rubacMocks.MockRuBACUseCase{}
		resources := &resourceMocks.MockResourceUseCase{}
		ruleID := uuid.Must(uuid.NewV7())
		resources.On("Get", ctx, "door", "vault-2").Return(secretVault(user.UserID), nil)
		rules.On("Evaluate", ctx, &rubacDomain.EvaluateInput{
			UserID: user.UserID, ResourceType: "door", Sensitivity: "SECRET", ClientIP: "10.1.2.3",
		}).Return(&rubacDomain.Result{
			Reason: "device trust UNKNOWN below required RECOGNIZED", RuleID: &ruleID,
			Kind: rubacDomain.KindDeviceTrust, RulesChecked: 1,
		}, nil)

		verdict, err := NewRuBACEvaluator(rules, resources).Evaluate(ctx, newRequest(user))

		require.NoError(t, err)
		assert.False(t, verdict.Allowed)
		assert.Equal(t, ruleID.String(), verdict.Details["rule_id"])
		assert.Equal(t, "device_trust", verdict.Details["kind"])
	})

	t.Run("Error_UnregisteredResourceDenies", func(t *testing.T) {
		rules := &rubacMocks.MockRuBACUseCase{}
		resources := &resourceMocks.MockResourceUseCase{}
		resources.On("Get", ctx, "door", "vault-2").Return(nil, resourceDomain.ErrResourceNotFound)

		verdict, err := NewRuBACEvaluator(rules, resources).Evaluate(ctx, newRequest(user))

		require.NoError(t, err)
		assert.False(t, verdict.Allowed)
		assert.Equal(t, reasonUnregistered, verdict.Reason)
		rules.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything)
	})

	t.Run("Error_ResourceLoadFault", func(t *testing.T) {
		rules := &rubacMocks.MockRuBACUseCase{}
		resources := &resourceMocks.MockResourceUseCase{}
		resources.On("Get", ctx, "door", "vault-2").Return(nil, errors.New("connection refused"))

		_, err := NewRuBACEvaluator(rules, resources).Evaluate(ctx, newRequest(user))

		assert.Error(t, err)
		rules.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything)
	})
}
