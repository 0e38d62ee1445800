package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-notes-api/internal/model"
)

// NoteRepository scopes every statement by owner. A note belonging to
// someone else is indistinguishable from a missing one.
type NoteRepository struct {
	pool *pgxpool.Pool
}

func NewNoteRepository(pool *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{pool: pool}
}

const noteColumns = `id, user_id, title, content, category, is_favorite, created_at, updated_at`

func (r *NoteRepository) Create(ctx context.Context, n model.Note) (model.Note, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO notes (`+noteColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.UserID, n.Title, n.Content, n.Category, n.IsFavorite, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return model.Note{}, fmt.Errorf("create note: %w: %w", model.ErrStorage, err)
	}
	return n, nil
}

func (r *NoteRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Note, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+noteColumns+` FROM notes
		 WHERE user_id = $1
		 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w: %w", model.ErrStorage, err)
	}
	defer rows.Close()

	notes := make([]model.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w: %w", model.ErrStorage, err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notes: %w: %w", model.ErrStorage, err)
	}
	return notes, nil
}

func (r *NoteRepository) FindByOwner(ctx context.Context, ownerID string, noteID string) (model.Note, error) {
	if _, err := uuid.Parse(noteID); err != nil {
		return model.Note{}, model.ErrNoteNotFound
	}

	n, err := scanNote(r.pool.QueryRow(ctx,
		`SELECT `+noteColumns+` FROM notes
		 WHERE id = $1 AND user_id = $2`, noteID, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Note{}, model.ErrNoteNotFound
	}
	if err != nil {
		return model.Note{}, fmt.Errorf("find note: %w: %w", model.ErrStorage, err)
	}
	return n, nil
}

func (r *NoteRepository) UpdateByOwner(ctx context.Context, n model.Note) (model.Note, error) {
	if _, err := uuid.Parse(n.ID); err != nil {
		return model.Note{}, model.ErrNoteNotFound
	}

	updated, err := scanNote(r.pool.QueryRow(ctx,
		`UPDATE notes
		 SET title = $3, content = $4, category = $5, is_favorite = $6, updated_at = $7
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+noteColumns,
		n.ID, n.UserID, n.Title, n.Content, n.Category, n.IsFavorite, n.UpdatedAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Note{}, model.ErrNoteNotFound
	}
	if err != nil {
		return model.Note{}, fmt.Errorf("update note: %w: %w", model.ErrStorage, err)
	}
	return updated, nil
}

func (r *NoteRepository) DeleteByOwner(ctx context.Context, ownerID string, noteID string) error {
	if _, err := uuid.Parse(noteID); err != nil {
		return model.ErrNoteNotFound
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, noteID, ownerID)
	if err != nil {
		return fmt.Errorf("delete note: %w: %w", model.ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNoteNotFound
	}
	return nil
}

func (r *NoteRepository) StatsByOwner(ctx context.Context, ownerID string, since time.Time) (model.NoteStats, error) {
	var stats model.NoteStats
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE is_favorite),
		        COUNT(*) FILTER (WHERE created_at >= $2)
		 FROM notes WHERE user_id = $1`, ownerID, since).
		Scan(&stats.TotalNotes, &stats.FavoriteNotes, &stats.WeeklyNotes)
	if err != nil {
		return model.NoteStats{}, fmt.Errorf("note stats: %w: %w", model.ErrStorage, err)
	}
	return stats, nil
}

func scanNote(row pgx.Row) (model.Note, error) {
	var n model.Note
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Category, &n.IsFavorite, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}
