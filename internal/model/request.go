package model

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NoteInput is the body of note create and update calls. IsFavorite is a
// pointer so an update can leave the flag untouched.
type NoteInput struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Category   string `json:"category"`
	IsFavorite *bool  `json:"is_favorite,omitempty"`
}
