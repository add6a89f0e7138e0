package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, u *identity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTokenBlacklist is a mock implementation of auth.TokenBlacklist
type MockTokenBlacklist struct {
	mock.Mock
}

func (m *MockTokenBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	args := m.Called(ctx, jti, ttl)
	return args.Error(0)
}

func (m *MockTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenBlacklist) AddUserTokensToBlacklist(ctx context.Context, userID string, ttl time.Duration) error {
	args := m.Called(ctx, userID, ttl)
	return args.Error(0)
}

func (m *MockTokenBlacklist) IsUserTokenInvalidated(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	args := m.Called(ctx, userID, issuedAt)
	return args.Bool(0), args.Error(1)
}

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-auth-service",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "storefront-test",
		MaxRefreshCount:        10,
	})
}

type authFixture struct {
	userRepo  *MockUserRepository
	blacklist *MockTokenBlacklist
	service   *AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		userRepo:  new(MockUserRepository),
		blacklist: new(MockTokenBlacklist),
	}
	f.service = NewAuthService(f.userRepo, testJWTService(), f.blacklist, nil)
	return f
}

func testUser(t *testing.T, email, password string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(email, "Test User", password, identity.RoleCustomer)
	require.NoError(t, err)
	return u
}

func TestRegister_Success(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	f.userRepo.On("ExistsByEmail", ctx, "new@example.com").Return(false, nil)
	f.userRepo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

	result, err := f.service.Register(ctx, RegisterRequest{
		Email:    "New@Example.com",
		Name:     "New User",
		Password: "secret-password",
	})

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "new@example.com", result.User.Email)
	assert.Equal(t, "CUSTOMER", result.User.Role)
	require.NotNil(t, result.Tokens)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	f.userRepo.On("ExistsByEmail", ctx, "taken@example.com").Return(true, nil)

	result, err := f.service.Register(ctx, RegisterRequest{
		Email:    "taken@example.com",
		Name:     "Someone",
		Password: "secret-password",
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	f.userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	user := testUser(t, "nour@example.com", "correct-password")
	f.userRepo.On("FindByEmail", ctx, "nour@example.com").Return(user, nil)
	f.userRepo.On("Save", ctx, user).Return(nil)

	result, err := f.service.Login(ctx, LoginRequest{
		Email:    "  Nour@Example.com ",
		Password: "correct-password",
	})

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotNil(t, user.LastLoginAt)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	user := testUser(t, "nour@example.com", "correct-password")
	f.userRepo.On("FindByEmail", ctx, "nour@example.com").Return(user, nil)

	result, err := f.service.Login(ctx, LoginRequest{
		Email:    "nour@example.com",
		Password: "wrong-password",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, result)
}

func TestLogin_UnknownEmailLooksLikeWrongPassword(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	f.userRepo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, shared.ErrNotFound)

	result, err := f.service.Login(ctx, LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, result)
}

func TestLogin_BlockedAccount(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	user := testUser(t, "blocked@example.com", "correct-password")
	require.NoError(t, user.Block())
	f.userRepo.On("FindByEmail", ctx, "blocked@example.com").Return(user, nil)

	result, err := f.service.Login(ctx, LoginRequest{
		Email:    "blocked@example.com",
		Password: "correct-password",
	})

	assert.ErrorIs(t, err, shared.ErrAccountBlocked)
	assert.Nil(t, result)
}

func TestRefresh_IssuesNewPairWithCurrentRole(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	user := testUser(t, "nour@example.com", "correct-password")
	jwtService := testJWTService()
	tokens, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   identity.RoleCustomer,
	})
	require.NoError(t, err)

	// The user was promoted to vendor after the pair was issued
	require.NoError(t, user.ChangeRole(identity.RoleVendor))

	f.blacklist.On("IsBlacklisted", ctx, mock.AnythingOfType("string")).Return(false, nil)
	f.blacklist.On("IsUserTokenInvalidated", ctx, user.ID.String(), mock.AnythingOfType("time.Time")).Return(false, nil)
	f.userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

	result, err := f.service.Refresh(ctx, RefreshRequest{RefreshToken: tokens.RefreshToken})

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "VENDOR", result.User.Role)

	claims, err := jwtService.ValidateAccessToken(result.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, identity.RoleVendor, claims.GetRole())
}

func TestRefresh_GarbageToken(t *testing.T) {
	f := newAuthFixture()

	result, err := f.service.Refresh(context.Background(), RefreshRequest{RefreshToken: "not-a-jwt"})

	assert.ErrorIs(t, err, shared.ErrUnauthorized)
	assert.Nil(t, result)
}

func TestRefresh_BlacklistedToken(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	user := testUser(t, "nour@example.com", "correct-password")
	tokens, err := testJWTService().GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Role:   identity.RoleCustomer,
	})
	require.NoError(t, err)

	f.blacklist.On("IsBlacklisted", ctx, mock.AnythingOfType("string")).Return(true, nil)

	result, err := f.service.Refresh(ctx, RefreshRequest{RefreshToken: tokens.RefreshToken})

	assert.ErrorIs(t, err, shared.ErrUnauthorized)
	assert.Nil(t, result)
	f.userRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestLogout_BlacklistsJTI(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	tokens, err := testJWTService().GenerateTokenPair(auth.GenerateTokenInput{
		UserID: uuid.New(),
		Role:   identity.RoleCustomer,
	})
	require.NoError(t, err)

	f.blacklist.On("AddToBlacklist", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("time.Duration")).Return(nil)

	err = f.service.Logout(ctx, tokens.AccessToken)

	assert.NoError(t, err)
	f.blacklist.AssertCalled(t, "AddToBlacklist", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("time.Duration"))
}

func TestLogout_InvalidTokenIsNoOp(t *testing.T) {
	f := newAuthFixture()

	err := f.service.Logout(context.Background(), "garbage")

	assert.NoError(t, err)
	f.blacklist.AssertNotCalled(t, "AddToBlacklist", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthenticate_InvalidatedByUserWideLogout(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	userID := uuid.New()
	tokens, err := testJWTService().GenerateTokenPair(auth.GenerateTokenInput{
		UserID: userID,
		Role:   identity.RoleCustomer,
	})
	require.NoError(t, err)

	f.blacklist.On("IsBlacklisted", ctx, mock.AnythingOfType("string")).Return(false, nil)
	f.blacklist.On("IsUserTokenInvalidated", ctx, userID.String(), mock.AnythingOfType("time.Time")).Return(true, nil)

	claims, err := f.service.Authenticate(ctx, tokens.AccessToken)

	assert.ErrorIs(t, err, shared.ErrUnauthorized)
	assert.Nil(t, claims)
}

func TestChangePassword_InvalidatesSessions(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	user := testUser(t, "nour@example.com", "old-password")
	f.userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	f.userRepo.On("Save", ctx, user).Return(nil)
	f.blacklist.On("AddUserTokensToBlacklist", ctx, user.ID.String(), mock.AnythingOfType("time.Duration")).Return(nil)

	err := f.service.ChangePassword(ctx, user.ID, ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "new-password",
	})

	assert.NoError(t, err)
	assert.True(t, user.CheckPassword("new-password"))
	f.blacklist.AssertCalled(t, "AddUserTokensToBlacklist", ctx, user.ID.String(), mock.AnythingOfType("time.Duration"))
}

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	user := testUser(t, "nour@example.com", "old-password")
	f.userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

	err := f.service.ChangePassword(ctx, user.ID, ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "new-password",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.True(t, user.CheckPassword("old-password"))
}
