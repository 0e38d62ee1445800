package model

import "time"

const DefaultNoteCategory = "general"

type Note struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Category   string    `json:"category"`
	IsFavorite bool      `json:"is_favorite"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type NoteList struct {
	Notes []Note `json:"notes"`
	Count int    `json:"count"`
}

type NoteStats struct {
	TotalNotes    int `json:"total_notes"`
	FavoriteNotes int `json:"favorite_notes"`
	WeeklyNotes   int `json:"weekly_notes"`
}
