package domain

import "github.com/supabase-community/supabase-go"

type SupabaseClient interface {
	Initialize() error
	ValidateToken(token string) (*User, error)
	SignIn(email, password string) (*Session, error)
	SignOut(token string) error

	DB() *supabase.Client
	GetClientWithToken(token string) (*supabase.Client, error)
}
