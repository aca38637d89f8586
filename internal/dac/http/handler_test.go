package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	dacDomain "github.com/allisson/sentinel/internal/dac/domain"
	"github.com/allisson/sentinel/internal/dac/http/dto"
	"github.com/allisson/sentinel/internal/dac/usecase/mocks"
	"github.com/allisson/sentinel/internal/testutil"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func resourceParams(extra ...gin.Param) []gin.Param {
	return append([]gin.Param{
		{Key: "resource_type", Value: "door"},
		{Key: "resource_id", Value: "vault"},
	}, extra...)
}

func TestPermissionHandler_GrantHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		uc := &mocks.MockPermissionUseCase{}
		handler := NewPermissionHandler(uc, testLogger())
		owner := testutil.NewSession(false)
		grantee := uuid.Must(uuid.NewV7())
		c, w := testutil.NewGinContext(http.MethodPut, "/v1/resources/door/vault/permissions/"+grantee.String(),
			map[string]any{"permissions": []string{"read", "execute"}}, owner,
			resourceParams(gin.Param{Key: "user_id", Value: grantee.String()})...)
		uc.On("GrantPermission", mock.Anything, &owner.Principal, &dacDomain.GrantPermissionInput{
			ResourceType: "door",
			ResourceID:   "vault",
			UserID:       grantee,
			Permissions:  dacDomain.PermRead | dacDomain.PermExecute,
		}).Return(&dacDomain.ResourcePermission{
			ResourceType: "door",
			ResourceID:   "vault",
			UserID:       grantee,
			Permissions:  dacDomain.PermRead | dacDomain.PermExecute,
			GrantedBy:    owner.Principal.UserID,
		}, nil).Once()

		handler.GrantHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.PermissionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"read", "execute"}, resp.Permissions)
		uc.AssertExpectations(t)
	})

	t.Run("Error_UnknownRight", func(t *testing.T) {
		uc := &mocks.MockPermissionUseCase{}
		handler := NewPermissionHandler(uc, testLogger())
		grantee := uuid.Must(uuid.NewV7())
		c, w := testutil.NewGinContext(http.MethodPut, "/v1/resources/door/vault/permissions/"+grantee.String(),
			map[string]any{"permissions": []string{"teleport"}}, testutil.NewSession(false),
			resourceParams(gin.Param{Key: "user_id", Value: grantee.String()})...)

		handler.GrantHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_NoShareAuthority", func(t *testing.T) {
		uc := &mocks.MockPermissionUseCase{}
		handler := NewPermissionHandler(uc, testLogger())
		grantee := uuid.Must(uuid.NewV7())
		c, w := testutil.NewGinContext(http.MethodPut, "/v1/resources/door/vault/permissions/"+grantee.String(),
			map[string]any{"permissions": []string{"read"}}, testutil.NewSession(false),
			resourceParams(gin.Param{Key: "user_id", Value: grantee.String()})...)
		uc.On("GrantPermission", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, dacDomain.ErrInsufficientShareAuthority).Once()

		handler.GrantHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestPermissionHandler_RevokeHandler(t *testing.T) {
	uc := &mocks.MockPermissionUseCase{}
	handler := NewPermissionHandler(uc, testLogger())
	grantee := uuid.Must(uuid.NewV7())
	c, _ := testutil.NewGinContext(http.MethodDelete, "/v1/resources/door/vault/permissions/"+grantee.String(),
		nil, testutil.NewSession(true), resourceParams(gin.Param{Key: "user_id", Value: grantee.String()})...)
	uc.On("RevokePermission", mock.Anything, mock.Anything, &dacDomain.RevokePermissionInput{
		ResourceType: "door",
		ResourceID:   "vault",
		UserID:       grantee,
	}).Return(nil).Once()

	handler.RevokeHandler(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	uc.AssertExpectations(t)
}

func TestTransferHandler(t *testing.T) {
	t.Run("Success_Request", func(t *testing.T) {
		uc := &mocks.MockTransferUseCase{}
		handler := NewTransferHandler(uc, testLogger())
		owner := testutil.NewSession(false)
		target := uuid.Must(uuid.NewV7())
		c, w := testutil.NewGinContext(http.MethodPost, "/v1/resources/door/vault/transfers",
			map[string]any{"to_user_id": target.String(), "reason": "handover"}, owner, resourceParams()...)
		uc.On("RequestOwnershipTransfer", mock.Anything, &owner.Principal, &dacDomain.RequestTransferInput{
			ResourceType: "door",
			ResourceID:   "vault",
			ToUserID:     target,
			Reason:       "handover",
		}).Return(&dacDomain.OwnershipTransfer{
			ID:         uuid.Must(uuid.NewV7()),
			FromUserID: owner.Principal.UserID,
			ToUserID:   target,
			Status:     dacDomain.TransferRequested,
		}, nil).Once()

		handler.RequestHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		uc.AssertExpectations(t)
	})

	t.Run("Error_ApproveByWrongUser", func(t *testing.T) {
		uc := &mocks.MockTransferUseCase{}
		handler := NewTransferHandler(uc, testLogger())
		id := uuid.Must(uuid.NewV7())
		c, w := testutil.NewGinContext(http.MethodPost, "/v1/transfers/"+id.String()+"/approve", nil,
			testutil.NewSession(false), gin.Param{Key: "id", Value: id.String()})
		uc.On("ApproveOwnershipTransfer", mock.Anything, mock.Anything, &dacDomain.DecideTransferInput{TransferID: id}).
			Return(nil, dacDomain.ErrTransferApproverMismatch).Once()

		handler.ApproveHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Error_RejectAlreadyDecided", func(t *testing.T) {
		uc := &mocks.MockTransferUseCase{}
		handler := NewTransferHandler(uc, testLogger())
		id := uuid.Must(uuid.NewV7())
		c, w := testutil.NewGinContext(http.MethodPost, "/v1/transfers/"+id.String()+"/reject",
			map[string]any{"reason": "no"}, testutil.NewSession(false), gin.Param{Key: "id", Value: id.String()})
		uc.On("RejectOwnershipTransfer", mock.Anything, mock.Anything, &dacDomain.DecideTransferInput{
			TransferID: id,
			Reason:     "no",
		}).Return(nil, dacDomain.ErrTransferAlreadyDecided).Once()

		handler.RejectHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestSharingLinkHandler_CreateHandler(t *testing.T) {
	t.Run("Success_ReturnsTokenOnce", func(t *testing.T) {
		uc := &mocks.MockSharingLinkUseCase{}
		handler := NewSharingLinkHandler(uc, testLogger())
		owner := testutil.NewSession(false)
		maxUses := 3
		c, w := testutil.NewGinContext(http.MethodPost, "/v1/resources/door/vault/links", map[string]any{
			"permissions":     []string{"read"},
			"max_uses":        maxUses,
			"allowed_domains": []string{"example.com"},
		}, owner, resourceParams()...)
		uc.On("CreateSharingLink", mock.Anything, &owner.Principal, mock.MatchedBy(func(in *dacDomain.CreateLinkInput) bool {
			return in.Permissions == dacDomain.PermRead && in.MaxUses != nil && *in.MaxUses == maxUses
		})).Return(&dacDomain.CreateLinkOutput{
			Token: "plain-token",
			Link: &dacDomain.SharingLink{
				ID:           uuid.Must(uuid.NewV7()),
				TokenHash:    []byte("hash"),
				ResourceType: "door",
				ResourceID:   "vault",
				Permissions:  dacDomain.PermRead,
				MaxUses:      &maxUses,
			},
		}, nil).Once()

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp dto.SharingLinkResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "plain-token", resp.Token)
		assert.NotContains(t, w.Body.String(), "token_hash")
	})

	t.Run("Error_ZeroMaxUses", func(t *testing.T) {
		uc := &mocks.MockSharingLinkUseCase{}
		handler := NewSharingLinkHandler(uc, testLogger())
		c, w := testutil.NewGinContext(http.MethodPost, "/v1/resources/door/vault/links", map[string]any{
			"permissions": []string{"read"},
			"max_uses":    0,
		}, testutil.NewSession(false), resourceParams()...)

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_WeakPassword", func(t *testing.T) {
		uc := &mocks.MockSharingLinkUseCase{}
		handler := NewSharingLinkHandler(uc, testLogger())
		c, w := testutil.NewGinContext(http.MethodPost, "/v1/resources/door/vault/links", map[string]any{
			"permissions": []string{"read"},
			"password":    "vault",
		}, testutil.NewSession(false), resourceParams()...)

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "at least 8 characters")
		uc.AssertNotCalled(t, "CreateSharingLink", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_PrivilegeAmplification", func(t *testing.T) {
		uc := &mocks.MockSharingLinkUseCase{}
		handler := NewSharingLinkHandler(uc, testLogger())
		c, w := testutil.NewGinContext(http.MethodPost, "/v1/resources/door/vault/links", map[string]any{
			"permissions": []string{"read", "delete"},
		}, testutil.NewSession(false), resourceParams()...)
		uc.On("CreateSharingLink", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, dacDomain.ErrPrivilegeAmplification).Once()

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestSharingLinkHandler_Redeem(t *testing.T) {
	t.Run("Success_Anonymous", func(t *testing.T) {
		uc := &mocks.MockSharingLinkUseCase{}
		handler := NewSharingLinkHandler(uc, testLogger())
		c, w := testutil.NewGinContext(http.MethodPost, "/v1/share/tok/redeem",
			map[string]any{"password": "s3cret"}, nil, gin.Param{Key: "token", Value: "tok"})
		uc.On("UseSharingLink", mock.Anything, &dacDomain.VerifyLinkInput{Token: "tok", Password: "s3cret"}).
			Return(&dacDomain.SharingLink{
				ResourceType: "door",
				ResourceID:   "vault",
				Permissions:  dacDomain.PermRead,
				UsesSoFar:    1,
			}, nil).Once()

		handler.RedeemHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t,
			`{"resource_type":"door","resource_id":"vault","permissions":["read"],"uses_so_far":1}`,
			w.Body.String())
		uc.AssertExpectations(t)
	})

	t.Run("Success_AuthenticatedCallerIdentity", func(t *testing.T) {
		uc := &mocks.MockSharingLinkUseCase{}
		handler := NewSharingLinkHandler(uc, testLogger())
		session := testutil.NewSession(false)
		c, w := testutil.NewGinContext(http.MethodPost, "/v1/share/tok/verify", nil, session,
			gin.Param{Key: "token", Value: "tok"})
		uc.On("VerifySharingLink", mock.Anything, mock.MatchedBy(func(in *dacDomain.VerifyLinkInput) bool {
			return in.Authenticated && in.CallerEmail == session.Principal.Email &&
				in.CallerID != nil && *in.CallerID == session.Principal.UserID
		})).Return(&dacDomain.SharingLink{Permissions: dacDomain.PermRead}, nil).Once()

		handler.VerifyHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		uc.AssertExpectations(t)
	})

	t.Run("Error_Exhausted", func(t *testing.T) {
		uc := &mocks.MockSharingLinkUseCase{}
		handler := NewSharingLinkHandler(uc, testLogger())
		c, w := testutil.NewGinContext(http.MethodPost, "/v1/share/tok/redeem", nil, nil,
			gin.Param{Key: "token", Value: "tok"})
		uc.On("UseSharingLink", mock.Anything, mock.Anything).Return(nil, dacDomain.ErrLinkExhausted).Once()

		handler.RedeemHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Error_AuthRequired", func(t *testing.T) {
		uc := &mocks.MockSharingLinkUseCase{}
		handler := NewSharingLinkHandler(uc, testLogger())
		c, w := testutil.NewGinContext(http.MethodPost, "/v1/share/tok/verify", nil, nil,
			gin.Param{Key: "token", Value: "tok"})
		uc.On("VerifySharingLink", mock.Anything, mock.Anything).Return(nil, dacDomain.ErrLinkAuthRequired).Once()

		handler.VerifyHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
