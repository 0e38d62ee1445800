package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"go-notes-api/internal/model"
	"go-notes-api/internal/util"
	"go-notes-api/pkg/apierror"
)

const (
	maxTitleLength    = 255
	maxCategoryLength = 50
	statsWindow       = 7 * 24 * time.Hour
)

// NoteStore is owner-scoped: every lookup, update and delete takes the
// owner id and treats a foreign note as missing.
type NoteStore interface {
	Create(ctx context.Context, n model.Note) (model.Note, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Note, error)
	FindByOwner(ctx context.Context, ownerID string, noteID string) (model.Note, error)
	UpdateByOwner(ctx context.Context, n model.Note) (model.Note, error)
	DeleteByOwner(ctx context.Context, ownerID string, noteID string) error
	StatsByOwner(ctx context.Context, ownerID string, since time.Time) (model.NoteStats, error)
}

type NoteService struct {
	notes NoteStore
	now   func() time.Time
}

func NewNoteService(notes NoteStore) *NoteService {
	return &NoteService{notes: notes, now: time.Now}
}

func (s *NoteService) Create(ctx context.Context, ownerID string, in model.NoteInput) (model.Note, error) {
	in, err := normalizeNoteInput(in)
	if err != nil {
		return model.Note{}, err
	}

	category := in.Category
	if category == "" {
		category = model.DefaultNoteCategory
	}

	now := s.now().UTC()
	note := model.Note{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		Title:     in.Title,
		Content:   in.Content,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.IsFavorite != nil {
		note.IsFavorite = *in.IsFavorite
	}

	return s.notes.Create(ctx, note)
}

func (s *NoteService) List(ctx context.Context, ownerID string) (model.NoteList, error) {
	notes, err := s.notes.ListByOwner(ctx, ownerID)
	if err != nil {
		return model.NoteList{}, err
	}
	return model.NoteList{Notes: notes, Count: len(notes)}, nil
}

func (s *NoteService) Get(ctx context.Context, ownerID string, noteID string) (model.Note, error) {
	return s.notes.FindByOwner(ctx, ownerID, strings.TrimSpace(noteID))
}

// Update replaces title and content; an empty category or a nil favourite
// flag keeps the stored value.
func (s *NoteService) Update(ctx context.Context, ownerID string, noteID string, in model.NoteInput) (model.Note, error) {
	in, err := normalizeNoteInput(in)
	if err != nil {
		return model.Note{}, err
	}

	existing, err := s.notes.FindByOwner(ctx, ownerID, strings.TrimSpace(noteID))
	if err != nil {
		return model.Note{}, err
	}

	existing.Title = in.Title
	existing.Content = in.Content
	if in.Category != "" {
		existing.Category = in.Category
	}
	if in.IsFavorite != nil {
		existing.IsFavorite = *in.IsFavorite
	}
	existing.UpdatedAt = s.now().UTC()

	return s.notes.UpdateByOwner(ctx, existing)
}

func (s *NoteService) Delete(ctx context.Context, ownerID string, noteID string) error {
	return s.notes.DeleteByOwner(ctx, ownerID, strings.TrimSpace(noteID))
}

func (s *NoteService) Stats(ctx context.Context, ownerID string) (model.NoteStats, error) {
	return s.notes.StatsByOwner(ctx, ownerID, s.now().UTC().Add(-statsWindow))
}

func normalizeNoteInput(in model.NoteInput) (model.NoteInput, error) {
	in.Title = util.SanitizeLine(in.Title)
	in.Category = util.SanitizeLine(in.Category)
	in.Content = util.SanitizeText(in.Content)

	var missing []string
	if in.Title == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Content) == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return in, apierror.Validation("title and content are required", missing...)
	}

	if utf8.RuneCountInString(in.Title) > maxTitleLength {
		return in, apierror.Validation("title is too long", "title")
	}
	if utf8.RuneCountInString(in.Category) > maxCategoryLength {
		return in, apierror.Validation("category is too long", "category")
	}

	return in, nil
}
