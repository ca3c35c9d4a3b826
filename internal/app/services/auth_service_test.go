package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
	pkgauth "github.com/skulz/skubackend/internal/pkg/auth"
)

type fakeUserStore struct {
	nextID  int64
	byEmail map[string]*models.User
	byID    map[int64]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, byEmail: map[string]*models.User{}, byID: map[int64]*models.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) (int64, error) {
	if _, ok := f.byEmail[user.Email]; ok {
		return 0, apperrors.ErrEmailAlreadyExists
	}
	id := f.nextID
	f.nextID++
	user.ID = id
	f.byEmail[user.Email] = user
	f.byID[id] = user
	return id, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) EmailExists(_ context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeUserStore) UpdateLastLogin(_ context.Context, userID int64) error {
	now := time.Now()
	if u, ok := f.byID[userID]; ok {
		u.LastLoginAt = &now
	}
	return nil
}

func testJWTService() *pkgauth.JWTService {
	return pkgauth.NewJWTService(pkgauth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "skubackend.test",
	})
}

func newAuthFixture() (AuthService, *fakeUserStore, *fakeSessionStore, *fakeMembershipStore, *fakeSchoolStore) {
	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	memberships := &fakeMembershipStore{byUser: map[int64][]*models.Membership{}}
	schools := &fakeSchoolStore{
		schools:       map[int64]*models.School{1: activeSchool(1, "Default School")},
		subscriptions: map[int64]bool{1: true},
	}
	tenants := NewTenantService(sessions, memberships, schools)
	svc := NewAuthService(users, memberships, schools, sessions, tenants, testJWTService(), time.Hour)
	return svc, users, sessions, memberships, schools
}

func TestAuthRegister_ProvisionsMemberships(t *testing.T) {
	svc, users, _, memberships, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:     "  Jane.Doe@School.CA ",
		Password:  "Sup3rSecret!",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      models.RoleTeacher,
	})
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@school.ca", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "Sup3rSecret!", user.Password)

	// One membership per active school, the first one primary.
	ms := memberships.byUser[user.ID]
	require.Len(t, ms, 1)
	assert.True(t, ms[0].IsPrimary)

	_, ok := users.byEmail["jane.doe@school.ca"]
	assert.True(t, ok)
}

func TestAuthRegister_DuplicateEmail(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture()

	req := &dto.RegisterRequest{
		Email:     "dup@school.ca",
		Password:  "Sup3rSecret!",
		FirstName: "A",
		LastName:  "B",
		Role:      models.RoleOperator,
	}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestAuthRegister_UnknownRole(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:     "x@school.ca",
		Password:  "Sup3rSecret!",
		FirstName: "X",
		LastName:  "Y",
		Role:      "janitor",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestAuthLogin_InvalidCredentials(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture()

	_, err := svc.Login(context.Background(), "nobody@school.ca", "whatever")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, regErr := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:     "real@school.ca",
		Password:  "Sup3rSecret!",
		FirstName: "R",
		LastName:  "U",
		Role:      models.RoleTeacher,
	})
	require.NoError(t, regErr)

	_, err = svc.Login(context.Background(), "real@school.ca", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthLogin_DisabledAccount(t *testing.T) {
	svc, users, _, _, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:     "off@school.ca",
		Password:  "Sup3rSecret!",
		FirstName: "O",
		LastName:  "F",
		Role:      models.RoleTeacher,
	})
	require.NoError(t, err)
	users.byID[user.ID].IsActive = false

	_, err = svc.Login(context.Background(), "off@school.ca", "Sup3rSecret!")
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestAuthLogin_CreatesSessionAndResolvesTenant(t *testing.T) {
	svc, _, sessions, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:     "staff@school.ca",
		Password:  "Sup3rSecret!",
		FirstName: "S",
		LastName:  "T",
		Role:      models.RoleTeacher,
	})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), "STAFF@school.ca", "Sup3rSecret!")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, int(time.Hour.Seconds()), result.ExpiresIn)

	// The session row exists and the token's jti points at it.
	require.NotNil(t, result.Session)
	_, ok := sessions.sessions[result.Session.ID]
	assert.True(t, ok)

	claims, err := testJWTService().ValidateAndExtractClaims(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.Session.ID, claims.ID)
	assert.Equal(t, result.User.ID, claims.UserID)

	// Registration created a primary membership, so login resolves a school.
	require.NotNil(t, result.Resolution)
	require.NotNil(t, result.Resolution.SchoolID)
	assert.Equal(t, int64(1), *result.Resolution.SchoolID)
	assert.False(t, result.Resolution.NeedsSelection)
}

func TestAuthLogout_FlushesSession(t *testing.T) {
	svc, _, sessions, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:     "bye@school.ca",
		Password:  "Sup3rSecret!",
		FirstName: "B",
		LastName:  "Y",
		Role:      models.RoleTeacher,
	})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), "bye@school.ca", "Sup3rSecret!")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), result.Session.ID))
	_, ok := sessions.sessions[result.Session.ID]
	assert.False(t, ok)

	// Flushing twice is a no-op.
	assert.NoError(t, svc.Logout(context.Background(), result.Session.ID))
}
