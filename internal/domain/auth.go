package domain

import "time"

// User is the authenticated identity attached to a request
type User struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	DisplayName  string                 `json:"display_name,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	CreatedAt    string                 `json:"created_at,omitempty"`
}

// Session is returned by a successful sign-in
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user"`
}

type AuthService interface {
	ValidateToken(token string) (*User, error)
	SignIn(email, password string) (*Session, error)
	SignOut(token string) error
}
