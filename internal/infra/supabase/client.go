package supabase

import (
	"errors"
	"fmt"
	"time"

	"bloggenie-server/internal/domain"

	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"
)

// ErrServiceRoleUnavailable is returned for tokenless requests when no
// SUPABASE_SERVICE_ROLE_KEY is configured.
var ErrServiceRoleUnavailable = errors.New("supabase service role key not configured")

// SupabaseClient implements the domain.SupabaseClient interface
type SupabaseClient struct {
	client        *supabase.Client
	serviceClient *supabase.Client
	config        domain.Config
	logger        domain.Logger
}

// NewSupabaseClient creates a new Supabase client instance
func NewSupabaseClient(config domain.Config, logger domain.Logger) domain.SupabaseClient {
	return &SupabaseClient{
		config: config,
		logger: logger,
	}
}

func (s *SupabaseClient) DB() *supabase.Client {
	return s.client
}

// Initialize establishes a connection to Supabase
func (s *SupabaseClient) Initialize() error {
	supabaseURL := s.config.GetSupabaseURL()
	supabaseKey := s.config.GetSupabaseKey()

	if supabaseURL == "" || supabaseKey == "" {
		return fmt.Errorf("supabase URL and key must be provided")
	}

	client, err := supabase.NewClient(supabaseURL, supabaseKey, &supabase.ClientOptions{})
	if err != nil {
		return fmt.Errorf("failed to create Supabase client: %w", err)
	}

	s.client = client

	// The service role key bypasses RLS; only requests without a user token use it.
	if serviceRoleKey := s.config.GetSupabaseServiceRoleKey(); serviceRoleKey != "" {
		serviceClient, err := supabase.NewClient(supabaseURL, serviceRoleKey, &supabase.ClientOptions{})
		if err != nil {
			return fmt.Errorf("failed to create Supabase service role client: %w", err)
		}
		s.serviceClient = serviceClient
	}

	s.logger.Info("Supabase client initialized successfully", "url", supabaseURL, "service_role", s.serviceClient != nil)
	return nil
}

// GetClientWithToken returns a client whose PostgREST requests carry the
// user's access token, so row level security policies apply. An empty token
// selects the service role client.
func (s *SupabaseClient) GetClientWithToken(token string) (*supabase.Client, error) {
	if s.client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}
	if token == "" {
		if s.serviceClient == nil {
			return nil, ErrServiceRoleUnavailable
		}
		return s.serviceClient, nil
	}

	client, err := supabase.NewClient(s.config.GetSupabaseURL(), s.config.GetSupabaseKey(), &supabase.ClientOptions{
		Headers: map[string]string{"Authorization": "Bearer " + token},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create scoped Supabase client: %w", err)
	}
	return client, nil
}

// ValidateToken validates a Supabase JWT token and returns user info
func (s *SupabaseClient) ValidateToken(token string) (*domain.User, error) {
	if s.client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	// Headers set on the supabase client do not reach GoTrue, so the token goes through WithToken.
	user, err := s.client.Auth.WithToken(token).GetUser()
	if err != nil {
		s.logger.Error("Failed to validate token with Supabase", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	return toDomainUser(user.User), nil
}

// SignIn exchanges email and password for a session
func (s *SupabaseClient) SignIn(email, password string) (*domain.Session, error) {
	if s.client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	resp, err := s.client.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		s.logger.Warn("Sign in rejected", "email", email, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCredentials, err)
	}

	expiresAt := time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	if resp.ExpiresAt > 0 {
		expiresAt = time.Unix(resp.ExpiresAt, 0)
	}

	return &domain.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		ExpiresAt:    expiresAt,
		User:         toDomainUser(resp.User),
	}, nil
}

// SignOut revokes the session behind token
func (s *SupabaseClient) SignOut(token string) error {
	if s.client == nil {
		return fmt.Errorf("supabase client not initialized")
	}
	if err := s.client.Auth.WithToken(token).Logout(); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

func toDomainUser(user types.User) *domain.User {
	out := &domain.User{
		ID:           user.ID.String(),
		Email:        user.Email,
		UserMetadata: user.UserMetadata,
		CreatedAt:    user.CreatedAt.Format(time.RFC3339),
	}
	if name, ok := user.UserMetadata["full_name"].(string); ok {
		out.DisplayName = name
	} else if name, ok := user.UserMetadata["name"].(string); ok {
		out.DisplayName = name
	}
	return out
}
