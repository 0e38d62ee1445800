package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"go-notes-api/internal/model"
)

type accessClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

func (s *AuthService) issueToken(user model.User) (model.LoginResult, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.accessTTL)

	claims := accessClaims{
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("sign access token: %w", err)
	}

	return model.LoginResult{
		Token:     signed,
		TokenType: "Bearer",
		ExpiresIn: int64(s.accessTTL.Seconds()),
		ExpiresAt: expiresAt,
		User:      user.Identity(),
	}, nil
}

// ValidateToken checks signature, issuer and expiry only. Callers guarding a
// request should use Authenticate, which also confirms the subject exists.
func (s *AuthService) ValidateToken(tokenString string) (*model.AuthClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, model.NewAuthError(model.ReasonMissingToken, nil)
	}

	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) {
			return s.jwtSecret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.NewAuthError(model.ReasonExpiredToken, err)
		}
		return nil, model.NewAuthError(model.ReasonMalformedToken, err)
	}

	if claims.Subject == "" {
		return nil, model.NewAuthError(model.ReasonMalformedToken, errors.New("token has no subject"))
	}

	out := &model.AuthClaims{
		UserID:   claims.Subject,
		Username: claims.Username,
		Email:    claims.Email,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}

	return out, nil
}
