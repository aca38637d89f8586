package usecase

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditMocks "github.com/allisson/sentinel/internal/audit/usecase/mocks"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	"github.com/allisson/sentinel/internal/clock"
	dacDomain "github.com/allisson/sentinel/internal/dac/domain"
	"github.com/allisson/sentinel/internal/dac/usecase/mocks"
	databaseMocks "github.com/allisson/sentinel/internal/database/mocks"
	apperrors "github.com/allisson/sentinel/internal/errors"
	resourceMocks "github.com/allisson/sentinel/internal/resource/usecase/mocks"
)

// memoryLinks is a LinkRepository whose IncrementUses behaves like the conditional UPDATE.
type memoryLinks struct {
	mu    sync.Mutex
	links map[uuid.UUID]*dacDomain.SharingLink
}

func newMemoryLinks(links ...*dacDomain.SharingLink) *memoryLinks {
	m := &memoryLinks{links: map[uuid.UUID]*dacDomain.SharingLink{}}
	for _, l := range links {
		m.links[l.ID] = l
	}
	return m
}

func (m *memoryLinks) Create(_ context.Context, link *dacDomain.SharingLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[link.ID] = link
	return nil
}

func (m *memoryLinks) Get(_ context.Context, id uuid.UUID) (*dacDomain.SharingLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[id]
	if !ok {
		return nil, dacDomain.ErrLinkNotFound
	}
	clone := *link
	return &clone, nil
}

func (m *memoryLinks) GetByTokenHash(_ context.Context, tokenHash []byte) (*dacDomain.SharingLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, link := range m.links {
		if bytes.Equal(link.TokenHash, tokenHash) {
			clone := *link
			return &clone, nil
		}
	}
	return nil, dacDomain.ErrLinkNotFound
}

func (m *memoryLinks) IncrementUses(_ context.Context, id uuid.UUID, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[id]
	if !ok || link.RevokedAt != nil || link.IsExpired(now) || !link.HasUsesRemaining() {
		return dacDomain.ErrLinkExhausted
	}
	link.UsesSoFar++
	return nil
}

func (m *memoryLinks) Revoke(_ context.Context, id, revokedBy uuid.UUID, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if link, ok := m.links[id]; ok && link.RevokedAt == nil {
		link.RevokedAt = &now
		link.RevokedBy = &revokedBy
	}
	return nil
}

func (m *memoryLinks) ListByResource(_ context.Context, resourceType, resourceID string) ([]*dacDomain.SharingLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*dacDomain.SharingLink
	for _, link := range m.links {
		if link.ResourceType == resourceType && link.ResourceID == resourceID {
			clone := *link
			out = append(out, &clone)
		}
	}
	return out, nil
}

type linkFixture struct {
	linkRepo       LinkRepository
	permissionRepo *mocks.MockPermissionRepository
	resourceRepo   *resourceMocks.MockResourceRepository
	secrets        *mocks.MockLinkSecrets
	clock          *clock.Fake
	uc             SharingLinkUseCase
}

func newLinkFixture(t *testing.T, linkRepo LinkRepository) *linkFixture {
	f := &linkFixture{
		linkRepo:       linkRepo,
		permissionRepo: &mocks.MockPermissionRepository{},
		resourceRepo:   &resourceMocks.MockResourceRepository{},
		secrets:        &mocks.MockLinkSecrets{},
		clock:          clock.NewFake(testNow),
	}
	f.uc = NewSharingLinkUseCase(
		databaseMocks.NewMockTxManager(t).PassThrough(),
		f.linkRepo,
		f.permissionRepo,
		f.resourceRepo,
		f.secrets,
		(&auditMocks.MockAuditUseCase{}).AcceptAll(),
		f.clock,
	)
	return f
}

func storedLink(mutate func(*dacDomain.SharingLink)) *dacDomain.SharingLink {
	link := &dacDomain.SharingLink{
		ID:           uuid.Must(uuid.NewV7()),
		TokenHash:    []byte("hash"),
		ResourceType: "door",
		ResourceID:   "lobby-1",
		CreatedBy:    uuid.Must(uuid.NewV7()),
		Permissions:  dacDomain.PermRead,
		CreatedAt:    testNow.Add(-time.Hour),
	}
	if mutate != nil {
		mutate(link)
	}
	return link
}

func TestSharingLinkUseCase_CreateSharingLink(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_OwnerCreatesLink", func(t *testing.T) {
		links := newMemoryLinks()
		f := newLinkFixture(t, links)
		owner := newUser()
		maxUses := 3
		f.resourceRepo.On("Get", mock.Anything, "door", "lobby-1").Return(newResource(owner.UserID), nil)
		f.secrets.On("GenerateToken").Return("plain-token", []byte("hash"), nil)
		f.secrets.On("HashPassword", "hunter2").Return("$argon2id$hashed", nil)

		output, err := f.uc.CreateSharingLink(ctx, owner, &dacDomain.CreateLinkInput{
			ResourceType:  "door",
			ResourceID:    "lobby-1",
			Permissions:   dacDomain.PermRead | dacDomain.PermExecute,
			MaxUses:       &maxUses,
			Password:      "hunter2",
			AllowedEmails: []string{" Alice@Example.com "},
		})

		require.NoError(t, err)
		assert.Equal(t, "plain-token", output.Token)
		assert.Equal(t, []byte("hash"), output.Link.TokenHash)
		require.NotNil(t, output.Link.PasswordHash)
		assert.Equal(t, dacDomain.StringList{"alice@example.com"}, output.Link.AllowedEmails)
		assert.Len(t, links.links, 1)
	})

	t.Run("Error_PermissionsExceedCreator", func(t *testing.T) {
		f := newLinkFixture(t, newMemoryLinks())
		caller := newUser()
		f.resourceRepo.On("Get", mock.Anything, "door", "lobby-1").Return(newResource(uuid.Must(uuid.NewV7())), nil)
		f.permissionRepo.On("Get", mock.Anything, "door", "lobby-1", caller.UserID).Return(&dacDomain.ResourcePermission{
			Permissions: dacDomain.PermRead,
		}, nil)
		f.secrets.On("GenerateToken").Return("plain-token", []byte("hash"), nil)

		_, err := f.uc.CreateSharingLink(ctx, caller, &dacDomain.CreateLinkInput{
			ResourceType: "door",
			ResourceID:   "lobby-1",
			Permissions:  dacDomain.PermWrite,
		})

		assert.ErrorIs(t, err, dacDomain.ErrPrivilegeAmplification)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("Error_InvalidInput", func(t *testing.T) {
		f := newLinkFixture(t, newMemoryLinks())
		zero := 0
		past := testNow.Add(-time.Second)

		_, err := f.uc.CreateSharingLink(ctx, newUser(), &dacDomain.CreateLinkInput{Permissions: dacDomain.PermRead, MaxUses: &zero})
		assert.ErrorIs(t, err, dacDomain.ErrInvalidMaxUses)

		_, err = f.uc.CreateSharingLink(ctx, newUser(), &dacDomain.CreateLinkInput{Permissions: dacDomain.PermRead, ExpiresAt: &past})
		assert.ErrorIs(t, err, dacDomain.ErrExpiryInPast)

		_, err = f.uc.CreateSharingLink(ctx, newUser(), &dacDomain.CreateLinkInput{Permissions: 64})
		assert.ErrorIs(t, err, dacDomain.ErrInvalidPermission)
	})
}

func TestSharingLinkUseCase_VerifySharingLink(t *testing.T) {
	ctx := context.Background()
	revokedAt := testNow.Add(-time.Minute)
	expiredAt := testNow.Add(-time.Second)
	one := 1
	password := "$argon2id$hashed"

	tests := []struct {
		name    string
		link    *dacDomain.SharingLink
		input   dacDomain.VerifyLinkInput
		wantErr error
	}{
		{
			name: "Error_RevokedBeforeExpired",
			link: storedLink(func(l *dacDomain.SharingLink) {
				l.RevokedAt = &revokedAt
				l.ExpiresAt = &expiredAt
			}),
			wantErr: dacDomain.ErrLinkRevoked,
		},
		{
			name: "Error_ExpiredBeforeExhausted",
			link: storedLink(func(l *dacDomain.SharingLink) {
				l.ExpiresAt = &expiredAt
				l.MaxUses = &one
				l.UsesSoFar = 1
			}),
			wantErr: dacDomain.ErrLinkExpired,
		},
		{
			name: "Error_ExhaustedBeforePassword",
			link: storedLink(func(l *dacDomain.SharingLink) {
				l.MaxUses = &one
				l.UsesSoFar = 1
				l.PasswordHash = &password
			}),
			wantErr: dacDomain.ErrLinkExhausted,
		},
		{
			name:    "Error_PasswordMismatch",
			link:    storedLink(func(l *dacDomain.SharingLink) { l.PasswordHash = &password }),
			input:   dacDomain.VerifyLinkInput{Password: "wrong"},
			wantErr: dacDomain.ErrLinkPasswordMismatch,
		},
		{
			name:    "Error_AuthRequired",
			link:    storedLink(func(l *dacDomain.SharingLink) { l.RequireAuth = true }),
			wantErr: dacDomain.ErrLinkAuthRequired,
		},
		{
			name: "Error_EmailNotAllowed",
			link: storedLink(func(l *dacDomain.SharingLink) {
				l.AllowedDomains = dacDomain.StringList{"example.com"}
			}),
			input:   dacDomain.VerifyLinkInput{CallerEmail: "mallory@evil.test"},
			wantErr: dacDomain.ErrLinkEmailNotAllowed,
		},
		{
			name: "Success_AllChecksPass",
			link: storedLink(func(l *dacDomain.SharingLink) {
				l.PasswordHash = &password
				l.RequireAuth = true
				l.AllowedDomains = dacDomain.StringList{"example.com"}
			}),
			input: dacDomain.VerifyLinkInput{
				Password:      "right",
				Authenticated: true,
				CallerEmail:   "bob@Example.com",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLinkFixture(t, newMemoryLinks(tt.link))
			f.secrets.On("HashToken", "tok").Return([]byte("hash"))
			f.secrets.On("ComparePassword", "right", password).Return(true).Maybe()
			f.secrets.On("ComparePassword", "wrong", password).Return(false).Maybe()

			input := tt.input
			input.Token = "tok"
			link, err := f.uc.VerifySharingLink(ctx, &input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.link.ID, link.ID)
		})
	}

	t.Run("Error_UnknownToken", func(t *testing.T) {
		f := newLinkFixture(t, newMemoryLinks())
		f.secrets.On("HashToken", "nope").Return([]byte("other"))

		_, err := f.uc.VerifySharingLink(ctx, &dacDomain.VerifyLinkInput{Token: "nope"})

		assert.ErrorIs(t, err, dacDomain.ErrLinkNotFound)
	})
}

func TestSharingLinkUseCase_UseSharingLink(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ConsumesUse", func(t *testing.T) {
		two := 2
		link := storedLink(func(l *dacDomain.SharingLink) { l.MaxUses = &two })
		links := newMemoryLinks(link)
		f := newLinkFixture(t, links)
		f.secrets.On("HashToken", "tok").Return([]byte("hash"))

		used, err := f.uc.UseSharingLink(ctx, &dacDomain.VerifyLinkInput{Token: "tok"})

		require.NoError(t, err)
		assert.Equal(t, 1, used.UsesSoFar)
		assert.Equal(t, 1, links.links[link.ID].UsesSoFar)
	})

	t.Run("Success_ConcurrentRedemptionsRespectMaxUses", func(t *testing.T) {
		one := 1
		link := storedLink(func(l *dacDomain.SharingLink) { l.MaxUses = &one })
		links := newMemoryLinks(link)
		f := newLinkFixture(t, links)
		f.secrets.On("HashToken", "tok").Return([]byte("hash"))

		const callers = 8
		var (
			wg        sync.WaitGroup
			succeeded atomic.Int32
			exhausted atomic.Int32
			start     = make(chan struct{})
		)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, err := f.uc.UseSharingLink(ctx, &dacDomain.VerifyLinkInput{Token: "tok"})
				switch {
				case err == nil:
					succeeded.Add(1)
				case apperrors.Is(err, dacDomain.ErrLinkExhausted):
					exhausted.Add(1)
				}
			}()
		}
		close(start)
		wg.Wait()

		assert.Equal(t, int32(1), succeeded.Load())
		assert.Equal(t, int32(callers-1), exhausted.Load())
		assert.Equal(t, 1, links.links[link.ID].UsesSoFar)
	})

	t.Run("Error_FailedVerificationDoesNotConsume", func(t *testing.T) {
		link := storedLink(func(l *dacDomain.SharingLink) { l.RequireAuth = true })
		links := newMemoryLinks(link)
		f := newLinkFixture(t, links)
		f.secrets.On("HashToken", "tok").Return([]byte("hash"))

		_, err := f.uc.UseSharingLink(ctx, &dacDomain.VerifyLinkInput{Token: "tok"})

		assert.ErrorIs(t, err, dacDomain.ErrLinkAuthRequired)
		assert.Equal(t, 0, links.links[link.ID].UsesSoFar)
	})
}

func TestSharingLinkUseCase_RevokeSharingLink(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_CreatorRevokesTwice", func(t *testing.T) {
		link := storedLink(nil)
		links := newMemoryLinks(link)
		f := newLinkFixture(t, links)
		creator := &authDomain.Principal{UserID: link.CreatedBy}

		require.NoError(t, f.uc.RevokeSharingLink(ctx, creator, link.ID))
		firstRevokedAt := *links.links[link.ID].RevokedAt

		f.clock.Advance(time.Hour)
		require.NoError(t, f.uc.RevokeSharingLink(ctx, creator, link.ID))
		assert.Equal(t, firstRevokedAt, *links.links[link.ID].RevokedAt)
	})

	t.Run("Success_ResourceOwner", func(t *testing.T) {
		link := storedLink(nil)
		f := newLinkFixture(t, newMemoryLinks(link))
		owner := newUser()
		f.resourceRepo.On("Get", mock.Anything, "door", "lobby-1").Return(newResource(owner.UserID), nil)

		assert.NoError(t, f.uc.RevokeSharingLink(ctx, owner, link.ID))
	})

	t.Run("Error_Stranger", func(t *testing.T) {
		link := storedLink(nil)
		links := newMemoryLinks(link)
		f := newLinkFixture(t, links)
		f.resourceRepo.On("Get", mock.Anything, "door", "lobby-1").Return(newResource(uuid.Must(uuid.NewV7())), nil)

		err := f.uc.RevokeSharingLink(ctx, newUser(), link.ID)

		assert.ErrorIs(t, err, dacDomain.ErrLinkRevokeForbidden)
		assert.Nil(t, links.links[link.ID].RevokedAt)
	})
}
