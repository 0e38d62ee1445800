package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"go-notes-api/internal/model"
	"go-notes-api/pkg/apierror"
)

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:   "validation",
			err:    apierror.Validation("username, email and password are required", "email"),
			status: http.StatusBadRequest, code: apierror.CodeValidation,
			message: "username, email and password are required",
		},
		{
			name:   "conflict",
			err:    fmt.Errorf("register: %w", &model.ConflictError{Field: "email"}),
			status: http.StatusConflict, code: apierror.CodeAlreadyExists,
			message: "User already exists with this email",
		},
		{
			name:   "invalid credentials",
			err:    model.ErrInvalidCredentials,
			status: http.StatusUnauthorized, code: apierror.CodeInvalidCredentials,
			message: "Invalid email or password",
		},
		{
			name:   "expired token",
			err:    model.NewAuthError(model.ReasonExpiredToken, nil),
			status: http.StatusUnauthorized, code: apierror.CodeUnauthenticated,
			message: "Token expired. Please log in again.",
		},
		{
			name:   "subject gone",
			err:    model.NewAuthError(model.ReasonSubjectNotFound, model.ErrUserNotFound),
			status: http.StatusUnauthorized, code: apierror.CodeUnauthenticated,
			message: "Authentication required. Please log in again.",
		},
		{
			name:   "note not found",
			err:    model.ErrNoteNotFound,
			status: http.StatusNotFound, code: apierror.CodeNotFound,
			message: "Note not found",
		},
		{
			name:   "storage failure",
			err:    fmt.Errorf("create user: %w: %w", model.ErrStorage, errors.New(`duplicate column "password_hash"`)),
			status: http.StatusInternalServerError, code: apierror.CodeInternal,
			message: "Unexpected server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			require.Equal(t, tt.status, rec.Code)

			var body model.APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.False(t, body.Success)
			require.Equal(t, tt.code, body.Error.Code)
			require.Equal(t, tt.message, body.Error.Message)
			require.NotContains(t, rec.Body.String(), "password_hash")
		})
	}
}
