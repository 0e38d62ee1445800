package model

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated subject handed to protected handlers.
// It never carries the password hash.
type Identity struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func (u User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username, Email: u.Email}
}

type AuthClaims struct {
	UserID    string
	Username  string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (c AuthClaims) Identity() Identity {
	return Identity{ID: c.UserID, Username: c.Username, Email: c.Email}
}

type LoginResult struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresIn int64     `json:"expires_in"`
	ExpiresAt time.Time `json:"expires_at"`
	User      Identity  `json:"user"`
}
