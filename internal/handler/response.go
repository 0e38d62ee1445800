package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"go-notes-api/internal/middleware"
	"go-notes-api/internal/model"
	"go-notes-api/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, body model.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, model.APIResponse{Success: true, Data: data})
}

// writeError maps domain errors to the client envelope. Anything it does not
// recognise, storage faults included, is logged and rendered generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    apierror.CodeInternal,
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	var authErr *model.AuthError
	var conflict *model.ConflictError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	case errors.As(err, &conflict):
		status = http.StatusConflict
		body.Code = apierror.CodeAlreadyExists
		body.Message = fmt.Sprintf("User already exists with this %s", conflict.Field)
		body.Details = conflict.Field
	case errors.Is(err, model.ErrUserAlreadyExists):
		status = http.StatusConflict
		body.Code = apierror.CodeAlreadyExists
		body.Message = "User already exists"
	case errors.Is(err, model.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		body.Code = apierror.CodeInvalidCredentials
		body.Message = "Invalid email or password"
	case errors.As(err, &authErr):
		status = http.StatusUnauthorized
		body.Code = apierror.CodeUnauthenticated
		body.Message = "Authentication required. Please log in again."
		if authErr.Expired() {
			body.Message = "Token expired. Please log in again."
		}
	case errors.Is(err, model.ErrUnauthenticated):
		status = http.StatusUnauthorized
		body.Code = apierror.CodeUnauthenticated
		body.Message = "Authentication required. Please log in again."
	case errors.Is(err, model.ErrNoteNotFound):
		status = http.StatusNotFound
		body.Code = apierror.CodeNotFound
		body.Message = "Note not found"
	default:
		slog.Error("request failed",
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err.Error())
	}

	writeJSON(w, status, model.APIResponse{Error: body})
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apierror.New(apierror.CodeBadRequest, "request body too large", "", http.StatusRequestEntityTooLarge)
		}
		if errors.Is(err, io.EOF) {
			return apierror.New(apierror.CodeBadRequest, "request body is required", "", http.StatusBadRequest)
		}
		return apierror.New(apierror.CodeBadRequest, "invalid JSON body", "", http.StatusBadRequest)
	}

	return nil
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, model.NewAuthError(model.ReasonMissingToken, nil))
		return model.Identity{}, false
	}
	return identity, true
}
