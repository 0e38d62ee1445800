// Package repotest provides in-memory stand-ins for the PostgreSQL
// repositories. Each store is an independent instance for a single test; they
// mirror the database constraints (unique username and email, owner-scoped
// note access) so service and HTTP tests exercise the same rules.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-notes-api/internal/model"
)

type UserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: map[string]model.User{}}
}

func (s *UserStore) Create(_ context.Context, username string, email string, passwordHash string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return model.User{}, &model.ConflictError{Field: "username"}
		}
		if u.Email == email {
			return model.User{}, &model.ConflictError{Field: "email"}
		}
	}

	u := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *UserStore) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.FindByEmail(ctx, email)
	return err == nil, nil
}

func (s *UserStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// Delete simulates an account removed out of band.
func (s *UserStore) Delete(id string) {
	s.mu.Lock()
	delete(s.users, id)
	s.mu.Unlock()
}

type NoteStore struct {
	mu    sync.Mutex
	notes map[string]model.Note
}

func NewNoteStore() *NoteStore {
	return &NoteStore{notes: map[string]model.Note{}}
}

func (s *NoteStore) Create(_ context.Context, n model.Note) (model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes[n.ID] = n
	return n, nil
}

func (s *NoteStore) ListByOwner(_ context.Context, ownerID string) ([]model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := make([]model.Note, 0)
	for _, n := range s.notes {
		if n.UserID == ownerID {
			notes = append(notes, n)
		}
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes, nil
}

func (s *NoteStore) FindByOwner(_ context.Context, ownerID string, noteID string) (model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[noteID]
	if !ok || n.UserID != ownerID {
		return model.Note{}, model.ErrNoteNotFound
	}
	return n, nil
}

func (s *NoteStore) UpdateByOwner(_ context.Context, n model.Note) (model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.notes[n.ID]
	if !ok || existing.UserID != n.UserID {
		return model.Note{}, model.ErrNoteNotFound
	}
	n.CreatedAt = existing.CreatedAt
	s.notes[n.ID] = n
	return n, nil
}

func (s *NoteStore) DeleteByOwner(_ context.Context, ownerID string, noteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[noteID]
	if !ok || n.UserID != ownerID {
		return model.ErrNoteNotFound
	}
	delete(s.notes, noteID)
	return nil
}

func (s *NoteStore) StatsByOwner(_ context.Context, ownerID string, since time.Time) (model.NoteStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats model.NoteStats
	for _, n := range s.notes {
		if n.UserID != ownerID {
			continue
		}
		stats.TotalNotes++
		if n.IsFavorite {
			stats.FavoriteNotes++
		}
		if !n.CreatedAt.Before(since) {
			stats.WeeklyNotes++
		}
	}
	return stats, nil
}
