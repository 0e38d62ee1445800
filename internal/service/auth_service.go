package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"go-notes-api/internal/model"
	"go-notes-api/internal/util"
	"go-notes-api/pkg/apierror"
)

// bcrypt ignores input past this length, so longer passwords are refused
// rather than silently truncated.
const maxPasswordBytes = 72

// Column widths of the users table.
const (
	maxUsernameLength = 50
	maxEmailLength    = 100
)

// UserStore is the credential store the auth service depends on.
// FindByEmail and FindByID return model.ErrUserNotFound when nothing matches;
// Create reports unique-constraint violations as model.ErrUserAlreadyExists.
type UserStore interface {
	Create(ctx context.Context, username string, email string, passwordHash string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type AuthService struct {
	users      UserStore
	jwtSecret  []byte
	issuer     string
	accessTTL  time.Duration
	bcryptCost int
	dummyHash  []byte
	now        func() time.Time
}

func NewAuthService(jwtSecret string, issuer string, accessTTL time.Duration, bcryptCost int, users UserStore) (*AuthService, error) {
	if strings.TrimSpace(jwtSecret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	if accessTTL <= 0 {
		return nil, errors.New("access token ttl must be positive")
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", bcryptCost)
	}
	if users == nil {
		return nil, errors.New("user store is required")
	}

	// Compared against when the email is unknown so both login failure paths
	// pay for one bcrypt comparison.
	filler := make([]byte, 32)
	if _, err := rand.Read(filler); err != nil {
		return nil, fmt.Errorf("generate dummy password: %w", err)
	}
	dummyHash, err := bcrypt.GenerateFromPassword(filler, bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}

	return &AuthService{
		users:      users,
		jwtSecret:  []byte(jwtSecret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		bcryptCost: bcryptCost,
		dummyHash:  dummyHash,
		now:        time.Now,
	}, nil
}

// SetClock replaces the time source used for issuing and verifying tokens.
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.Identity, error) {
	username := util.SanitizeLine(req.Username)
	email := strings.TrimSpace(req.Email)

	var missing []string
	if username == "" {
		missing = append(missing, "username")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return model.Identity{}, apierror.Validation("username, email and password are required", missing...)
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return model.Identity{}, apierror.Validation(fmt.Sprintf("username must be at most %d characters", maxUsernameLength), "username")
	}
	if utf8.RuneCountInString(email) > maxEmailLength {
		return model.Identity{}, apierror.Validation(fmt.Sprintf("email must be at most %d characters", maxEmailLength), "email")
	}
	if len(req.Password) > maxPasswordBytes {
		return model.Identity{}, apierror.Validation(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes), "password")
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return model.Identity{}, err
	}
	if exists {
		return model.Identity{}, &model.ConflictError{Field: "email"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return model.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, username, email, string(hash))
	if err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) {
			slog.Info("registration lost uniqueness race", "error", err)
		}
		return model.Identity{}, err
	}

	slog.Info("user registered", "user_id", user.ID)
	return user.Identity(), nil
}

func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.LoginResult, error) {
	email := strings.TrimSpace(req.Email)

	var missing []string
	if email == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return model.LoginResult{}, apierror.Validation("email and password are required", missing...)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, model.ErrUserNotFound) {
		return model.LoginResult{}, err
	}
	// bcrypt only compares the first 72 bytes, so a longer password could
	// match a hash it was never registered with.
	if err != nil || len(req.Password) > maxPasswordBytes {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		return model.LoginResult{}, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return model.LoginResult{}, model.ErrInvalidCredentials
	}

	result, err := s.issueToken(user)
	if err != nil {
		return model.LoginResult{}, err
	}

	slog.Info("user logged in", "user_id", user.ID)
	return result, nil
}

// Authenticate verifies a bearer token and confirms its subject still exists.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (model.Identity, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return model.Identity{}, err
	}

	if _, err := s.users.FindByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.Identity{}, model.NewAuthError(model.ReasonSubjectNotFound, err)
		}
		return model.Identity{}, err
	}

	return claims.Identity(), nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (model.Identity, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.Identity{}, model.NewAuthError(model.ReasonSubjectNotFound, err)
		}
		return model.Identity{}, err
	}

	identity := user.Identity()
	createdAt := user.CreatedAt
	identity.CreatedAt = &createdAt
	return identity, nil
}
