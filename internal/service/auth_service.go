package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bloggenie-server/internal/domain"
)

const (
	AuthModeSupabase = "supabase"
	AuthModeDemo     = "demo"

	demoTokenPrefix = "demo:"
)

type authService struct {
	supabaseClient domain.SupabaseClient
	jwtSecret      []byte
	mode           string
	logger         domain.Logger
}

// NewAuthService validates tokens locally with jwtSecret when it is set and
// through Supabase otherwise. In demo mode tokens look like demo:<id>:<email>.
func NewAuthService(
	supabaseClient domain.SupabaseClient,
	jwtSecret string,
	mode string,
	logger domain.Logger,
) *authService {
	if mode == "" {
		mode = AuthModeSupabase
	}
	return &authService{
		supabaseClient: supabaseClient,
		jwtSecret:      []byte(jwtSecret),
		mode:           mode,
		logger:         logger,
	}
}

// ValidateToken validates a token and returns the user it belongs to
func (s *authService) ValidateToken(token string) (*domain.User, error) {
	if s.mode == AuthModeDemo {
		return parseDemoToken(token)
	}
	if len(s.jwtSecret) > 0 {
		return s.validateJWT(token)
	}
	if s.supabaseClient == nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.supabaseClient.ValidateToken(token)
	if err != nil {
		s.logger.Error("Failed to validate token with Supabase", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return user, nil
}

func (s *authService) SignIn(email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if s.mode == AuthModeDemo {
		if email == "" {
			return nil, domain.ErrInvalidCredentials
		}
		user := &domain.User{ID: demoUserID(email), Email: email}
		return &domain.Session{
			AccessToken: demoTokenPrefix + user.ID + ":" + email,
			TokenType:   "bearer",
			ExpiresAt:   time.Now().Add(24 * time.Hour),
			User:        user,
		}, nil
	}
	if s.supabaseClient == nil {
		return nil, fmt.Errorf("identity provider not configured")
	}
	return s.supabaseClient.SignIn(email, password)
}

func (s *authService) SignOut(token string) error {
	if s.mode == AuthModeDemo || s.supabaseClient == nil {
		return nil
	}
	return s.supabaseClient.SignOut(token)
}

func (s *authService) validateJWT(token string) (*domain.User, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		s.logger.Debug("Rejected access token", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}

	user := &domain.User{ID: sub}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if meta, ok := claims["user_metadata"].(map[string]interface{}); ok {
		user.UserMetadata = meta
		if name, ok := meta["full_name"].(string); ok {
			user.DisplayName = name
		} else if name, ok := meta["name"].(string); ok {
			user.DisplayName = name
		}
	}
	return user, nil
}

func parseDemoToken(token string) (*domain.User, error) {
	if !strings.HasPrefix(token, demoTokenPrefix) {
		return nil, domain.ErrInvalidToken
	}
	parts := strings.SplitN(strings.TrimPrefix(token, demoTokenPrefix), ":", 2)
	if len(parts) != 2 || parts[0] == "" || !strings.Contains(parts[1], "@") {
		return nil, domain.ErrInvalidToken
	}
	return &domain.User{ID: parts[0], Email: parts[1]}, nil
}

func demoUserID(email string) string {
	return "demo-" + strings.NewReplacer("@", "-", ".", "-").Replace(email)
}
