package models

import "time"

// Principal is the signed-in user as the auth service reports it.
type Principal struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone,omitempty"`
	Role      string         `json:"role,omitempty"`
	Metadata  map[string]any `json:"user_metadata,omitempty"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
}

// Session is returned by sign-up (when auto-confirm is on) and sign-in.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    int64     `json:"expires_at,omitempty"`
	User         Principal `json:"user"`
}

// Credentials carries sign-up input; Metadata is stored as user metadata.
type Credentials struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Metadata map[string]any `json:"data,omitempty"`
}
