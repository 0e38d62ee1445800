package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-notes-api/internal/model"
	"go-notes-api/internal/repository/repotest"
	"go-notes-api/pkg/apierror"
)

const (
	testSecret = "test-secret-test-secret-test-secret"
	testIssuer = "go-notes-api-test"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Create(ctx context.Context, username string, email string, passwordHash string) (model.User, error) {
	args := m.Called(ctx, username, email, passwordHash)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) FindByID(ctx context.Context, id string) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func newTestAuthService(t *testing.T, users UserStore) *AuthService {
	t.Helper()

	svc, err := NewAuthService(testSecret, testIssuer, 24*time.Hour, bcrypt.MinCost, users)
	require.NoError(t, err)
	return svc
}

func registerAlice(t *testing.T, svc *AuthService) model.Identity {
	t.Helper()

	identity, err := svc.Register(context.Background(), model.RegisterRequest{
		Username: "alice",
		Email:    "a@x.com",
		Password: "Str0ng!Pass",
	})
	require.NoError(t, err)
	return identity
}

func requireAuthReason(t *testing.T, err error, reason model.AuthFailureReason) {
	t.Helper()

	require.ErrorIs(t, err, model.ErrUnauthenticated)
	var authErr *model.AuthError
	require.True(t, errors.As(err, &authErr))
	require.Equal(t, reason, authErr.Reason)
}

func TestNewAuthServiceValidatesArguments(t *testing.T) {
	store := repotest.NewUserStore()

	_, err := NewAuthService(" ", testIssuer, time.Hour, bcrypt.MinCost, store)
	require.Error(t, err)

	_, err = NewAuthService(testSecret, testIssuer, 0, bcrypt.MinCost, store)
	require.Error(t, err)

	_, err = NewAuthService(testSecret, testIssuer, time.Hour, bcrypt.MaxCost+1, store)
	require.Error(t, err)

	_, err = NewAuthService(testSecret, testIssuer, time.Hour, bcrypt.MinCost, nil)
	require.Error(t, err)
}

func TestRegisterThenLoginRoundTrip(t *testing.T) {
	svc := newTestAuthService(t, repotest.NewUserStore())
	ctx := context.Background()

	identity := registerAlice(t, svc)
	require.NotEmpty(t, identity.ID)
	require.Equal(t, "alice", identity.Username)
	require.Equal(t, "a@x.com", identity.Email)

	result, err := svc.Login(ctx, model.LoginRequest{Email: "a@x.com", Password: "Str0ng!Pass"})
	require.NoError(t, err)
	require.Equal(t, "Bearer", result.TokenType)
	require.Equal(t, int64((24 * time.Hour).Seconds()), result.ExpiresIn)
	require.Equal(t, identity.ID, result.User.ID)

	claims, err := svc.ValidateToken(result.Token)
	require.NoError(t, err)
	require.Equal(t, identity.ID, claims.UserID)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, "a@x.com", claims.Email)
	require.Equal(t, 24*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt))

	authenticated, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	require.Equal(t, identity.ID, authenticated.ID)
}

func TestRegisterStoresHashNotPassword(t *testing.T) {
	store := repotest.NewUserStore()
	svc := newTestAuthService(t, store)

	identity := registerAlice(t, svc)

	user, err := store.FindByID(context.Background(), identity.ID)
	require.NoError(t, err)
	require.NotEqual(t, "Str0ng!Pass", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Str0ng!Pass")))

	encoded, err := json.Marshal(identity)
	require.NoError(t, err)
	require.NotContains(t, string(encoded), "Str0ng!Pass")
	require.NotContains(t, string(encoded), user.PasswordHash)

	encodedUser, err := json.Marshal(user)
	require.NoError(t, err)
	require.NotContains(t, string(encodedUser), user.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := repotest.NewUserStore()
	svc := newTestAuthService(t, store)
	registerAlice(t, svc)
	before := store.Count()

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Username: "alice2",
		Email:    "a@x.com",
		Password: "another",
	})

	require.ErrorIs(t, err, model.ErrUserAlreadyExists)
	require.Equal(t, before, store.Count())
}

func TestRegisterDuplicateUsernameCaughtByStore(t *testing.T) {
	store := repotest.NewUserStore()
	svc := newTestAuthService(t, store)
	registerAlice(t, svc)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Username: "alice",
		Email:    "other@x.com",
		Password: "another",
	})

	require.ErrorIs(t, err, model.ErrUserAlreadyExists)
	var conflict *model.ConflictError
	require.True(t, errors.As(err, &conflict))
	require.Equal(t, "username", conflict.Field)
	require.Equal(t, 1, store.Count())
}

func TestRegisterLosesRaceAtConstraint(t *testing.T) {
	store := &mockUserStore{}
	store.On("ExistsByEmail", mock.Anything, "a@x.com").Return(false, nil)
	store.On("Create", mock.Anything, "alice", "a@x.com", mock.AnythingOfType("string")).
		Return(model.User{}, &model.ConflictError{Field: "email"})
	svc := newTestAuthService(t, store)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Username: "alice",
		Email:    "a@x.com",
		Password: "Str0ng!Pass",
	})

	require.ErrorIs(t, err, model.ErrUserAlreadyExists)
	store.AssertExpectations(t)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     model.RegisterRequest
		details string
	}{
		{name: "all missing", req: model.RegisterRequest{}, details: "username,email,password"},
		{name: "blank username", req: model.RegisterRequest{Username: "  ", Email: "a@x.com", Password: "p"}, details: "username"},
		{name: "missing email", req: model.RegisterRequest{Username: "alice", Password: "p"}, details: "email"},
		{name: "missing password", req: model.RegisterRequest{Username: "alice", Email: "a@x.com"}, details: "password"},
		{name: "invisible username", req: model.RegisterRequest{Username: "\u200B\u200D", Email: "a@x.com", Password: "p"}, details: "username"},
		{name: "username too long", req: model.RegisterRequest{Username: strings.Repeat("u", 51), Email: "a@x.com", Password: "p"}, details: "username"},
		{name: "email too long", req: model.RegisterRequest{Username: "alice", Email: strings.Repeat("e", 95) + "@x.com", Password: "p"}, details: "email"},
		{name: "password too long", req: model.RegisterRequest{Username: "alice", Email: "a@x.com", Password: strings.Repeat("x", 73)}, details: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := repotest.NewUserStore()
			svc := newTestAuthService(t, store)

			_, err := svc.Register(context.Background(), tt.req)

			var apiErr *apierror.APIError
			require.True(t, errors.As(err, &apiErr))
			require.Equal(t, apierror.CodeValidation, apiErr.Code)
			require.Equal(t, tt.details, apiErr.Details)
			require.Zero(t, store.Count())
		})
	}
}

func TestRegisterStorageFailure(t *testing.T) {
	store := &mockUserStore{}
	storageErr := fmt.Errorf("check email exists: %w: %w", model.ErrStorage, errors.New("connection refused"))
	store.On("ExistsByEmail", mock.Anything, "a@x.com").Return(false, storageErr)
	svc := newTestAuthService(t, store)

	_, err := svc.Register(context.Background(), model.RegisterRequest{Username: "alice", Email: "a@x.com", Password: "p"})

	require.ErrorIs(t, err, model.ErrStorage)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginDoesNotRevealWhetherEmailExists(t *testing.T) {
	svc := newTestAuthService(t, repotest.NewUserStore())
	registerAlice(t, svc)
	ctx := context.Background()

	_, unknownErr := svc.Login(ctx, model.LoginRequest{Email: "nobody@x.com", Password: "Str0ng!Pass"})
	_, wrongErr := svc.Login(ctx, model.LoginRequest{Email: "a@x.com", Password: "wrong"})

	require.ErrorIs(t, unknownErr, model.ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, model.ErrInvalidCredentials)
	require.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLoginRejectsPasswordExtendingStoredOne(t *testing.T) {
	svc := newTestAuthService(t, repotest.NewUserStore())
	ctx := context.Background()
	password := strings.Repeat("p", maxPasswordBytes)

	_, err := svc.Register(ctx, model.RegisterRequest{Username: "alice", Email: "a@x.com", Password: password})
	require.NoError(t, err)

	_, err = svc.Login(ctx, model.LoginRequest{Email: "a@x.com", Password: password + "ANYTHING"})
	require.ErrorIs(t, err, model.ErrInvalidCredentials)

	result, err := svc.Login(ctx, model.LoginRequest{Email: "a@x.com", Password: password})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
}

func TestLoginEmailIsCaseSensitive(t *testing.T) {
	svc := newTestAuthService(t, repotest.NewUserStore())
	registerAlice(t, svc)

	_, err := svc.Login(context.Background(), model.LoginRequest{Email: "A@X.COM", Password: "Str0ng!Pass"})
	require.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLoginValidation(t *testing.T) {
	svc := newTestAuthService(t, repotest.NewUserStore())

	_, err := svc.Login(context.Background(), model.LoginRequest{Email: " "})

	var apiErr *apierror.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "email,password", apiErr.Details)
}

func TestLoginStorageFailure(t *testing.T) {
	store := &mockUserStore{}
	store.On("FindByEmail", mock.Anything, "a@x.com").
		Return(model.User{}, fmt.Errorf("find user by email: %w", model.ErrStorage))
	svc := newTestAuthService(t, store)

	_, err := svc.Login(context.Background(), model.LoginRequest{Email: "a@x.com", Password: "p"})

	require.ErrorIs(t, err, model.ErrStorage)
	require.NotErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestTokenExpiresAfterTTL(t *testing.T) {
	svc := newTestAuthService(t, repotest.NewUserStore())
	registerAlice(t, svc)

	issuedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return issuedAt })
	result, err := svc.Login(context.Background(), model.LoginRequest{Email: "a@x.com", Password: "Str0ng!Pass"})
	require.NoError(t, err)
	require.Equal(t, issuedAt.Add(24*time.Hour), result.ExpiresAt)

	svc.SetClock(func() time.Time { return issuedAt.Add(23 * time.Hour) })
	_, err = svc.ValidateToken(result.Token)
	require.NoError(t, err)

	svc.SetClock(func() time.Time { return issuedAt.Add(24*time.Hour + time.Second) })
	_, err = svc.ValidateToken(result.Token)
	requireAuthReason(t, err, model.ReasonExpiredToken)

	var authErr *model.AuthError
	require.True(t, errors.As(err, &authErr))
	require.True(t, authErr.Expired())
}

func TestTamperedTokenIsRejected(t *testing.T) {
	svc := newTestAuthService(t, repotest.NewUserStore())
	registerAlice(t, svc)
	result, err := svc.Login(context.Background(), model.LoginRequest{Email: "a@x.com", Password: "Str0ng!Pass"})
	require.NoError(t, err)

	for i := 0; i < len(result.Token); i++ {
		tampered := []byte(result.Token)
		if tampered[i] == 'A' {
			tampered[i] = 'B'
		} else {
			tampered[i] = 'A'
		}

		_, err := svc.ValidateToken(string(tampered))
		require.Error(t, err, "byte %d", i)
		requireAuthReason(t, err, model.ReasonMalformedToken)
	}
}

func TestTokenFromAnotherSecretIsRejected(t *testing.T) {
	store := repotest.NewUserStore()
	svc := newTestAuthService(t, store)
	registerAlice(t, svc)

	other, err := NewAuthService("another-secret-another-secret-123", testIssuer, time.Hour, bcrypt.MinCost, store)
	require.NoError(t, err)
	result, err := other.Login(context.Background(), model.LoginRequest{Email: "a@x.com", Password: "Str0ng!Pass"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(result.Token)
	requireAuthReason(t, err, model.ReasonMalformedToken)
}

func TestUnsignedTokenIsRejected(t *testing.T) {
	svc := newTestAuthService(t, repotest.NewUserStore())

	claims := jwt.RegisteredClaims{
		Subject:   "someone",
		Issuer:    testIssuer,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(unsigned)
	requireAuthReason(t, err, model.ReasonMalformedToken)
}

func TestTokenWithoutExpiryIsRejected(t *testing.T) {
	svc := newTestAuthService(t, repotest.NewUserStore())

	claims := jwt.RegisteredClaims{Subject: "someone", Issuer: testIssuer}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	requireAuthReason(t, err, model.ReasonMalformedToken)
}

func TestValidateEmptyToken(t *testing.T) {
	svc := newTestAuthService(t, repotest.NewUserStore())

	_, err := svc.ValidateToken("  ")
	requireAuthReason(t, err, model.ReasonMissingToken)
}

func TestAuthenticateRejectsDeletedSubject(t *testing.T) {
	store := repotest.NewUserStore()
	svc := newTestAuthService(t, store)
	identity := registerAlice(t, svc)
	result, err := svc.Login(context.Background(), model.LoginRequest{Email: "a@x.com", Password: "Str0ng!Pass"})
	require.NoError(t, err)

	store.Delete(identity.ID)

	_, err = svc.Authenticate(context.Background(), result.Token)
	requireAuthReason(t, err, model.ReasonSubjectNotFound)
}

func TestAuthenticateSurfacesStorageFailure(t *testing.T) {
	store := repotest.NewUserStore()
	svc := newTestAuthService(t, store)
	registerAlice(t, svc)
	result, err := svc.Login(context.Background(), model.LoginRequest{Email: "a@x.com", Password: "Str0ng!Pass"})
	require.NoError(t, err)

	failing := &mockUserStore{}
	failing.On("FindByID", mock.Anything, result.User.ID).
		Return(model.User{}, fmt.Errorf("find user by id: %w", model.ErrStorage))
	svc.users = failing

	_, err = svc.Authenticate(context.Background(), result.Token)
	require.ErrorIs(t, err, model.ErrStorage)
	require.NotErrorIs(t, err, model.ErrUnauthenticated)
}

func TestProfile(t *testing.T) {
	svc := newTestAuthService(t, repotest.NewUserStore())
	identity := registerAlice(t, svc)

	profile, err := svc.Profile(context.Background(), identity.ID)
	require.NoError(t, err)
	require.Equal(t, identity.ID, profile.ID)
	require.NotNil(t, profile.CreatedAt)

	_, err = svc.Profile(context.Background(), "missing")
	require.ErrorIs(t, err, model.ErrUnauthenticated)
}
