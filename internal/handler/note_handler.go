package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-notes-api/internal/model"
)

type noteService interface {
	Create(ctx context.Context, ownerID string, in model.NoteInput) (model.Note, error)
	List(ctx context.Context, ownerID string) (model.NoteList, error)
	Get(ctx context.Context, ownerID string, noteID string) (model.Note, error)
	Update(ctx context.Context, ownerID string, noteID string, in model.NoteInput) (model.Note, error)
	Delete(ctx context.Context, ownerID string, noteID string) error
	Stats(ctx context.Context, ownerID string) (model.NoteStats, error)
}

// NoteHandler serves notes of the authenticated caller only; the owner key
// always comes from the verified identity, never from the request.
type NoteHandler struct {
	service noteService
}

func NewNoteHandler(service noteService) *NoteHandler {
	return &NoteHandler{service: service}
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	notes, err := h.service.List(r.Context(), identity.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, notes)
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var payload model.NoteInput
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	note, err := h.service.Create(r.Context(), identity.ID, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, note)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	note, err := h.service.Get(r.Context(), identity.ID, chi.URLParam(r, "noteID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var payload model.NoteInput
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	note, err := h.service.Update(r.Context(), identity.ID, chi.URLParam(r, "noteID"), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), identity.ID, chi.URLParam(r, "noteID")); err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *NoteHandler) Stats(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), identity.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, stats)
}
