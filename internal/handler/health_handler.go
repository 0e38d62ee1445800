package handler

import (
	"context"
	"log/slog"
	"net/http"

	"go-notes-api/internal/model"
	"go-notes-api/pkg/apierror"
)

type healthChecker interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	checker healthChecker
}

func NewHealthHandler(checker healthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Check reports readiness; a nil checker means there is no backing store to
// probe.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h.checker != nil {
		if err := h.checker.Health(r.Context()); err != nil {
			slog.Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, model.APIResponse{
				Error: &model.APIError{Code: apierror.CodeUnavailable, Message: "Database unavailable"},
			})
			return
		}
	}

	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}
