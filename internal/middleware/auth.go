package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go-notes-api/internal/model"
	"go-notes-api/pkg/apierror"
)

const (
	msgLoginAgain   = "Authentication required. Please log in again."
	msgTokenExpired = "Token expired. Please log in again."
)

type authenticator interface {
	Authenticate(ctx context.Context, tokenString string) (model.Identity, error)
}

type contextKey string

const identityContextKey contextKey = "identity"

type AuthMiddleware struct {
	authenticator authenticator
}

func NewAuthMiddleware(authenticator authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// RequireAuth admits the request only after the bearer token has been
// verified and its subject confirmed; the identity is then available via
// IdentityFromContext.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			rejectRequest(w, r, model.NewAuthError(model.ReasonMissingToken, nil))
			return
		}

		identity, err := m.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			rejectRequest(w, r, err)
			return
		}

		recordUserID(r.Context(), identity.ID)
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	return identity, ok && identity.ID != ""
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}

	return parts[1], true
}

func rejectRequest(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *model.AuthError
	if !errors.As(err, &authErr) {
		slog.Error("token verification failed",
			"request_id", RequestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err)
		writeJSONError(w, http.StatusInternalServerError, apierror.CodeInternal, "Unexpected server error")
		return
	}

	slog.Warn("request rejected",
		"request_id", RequestIDFromContext(r.Context()),
		"path", r.URL.Path,
		"reason", string(authErr.Reason))

	message := msgLoginAgain
	if authErr.Expired() {
		message = msgTokenExpired
	}
	writeJSONError(w, http.StatusUnauthorized, apierror.CodeUnauthenticated, message)
}
