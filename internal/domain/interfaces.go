package domain

import (
	"context"
	"time"
)

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetLogLevel() string
	GetLogFormat() string

	GetSupabaseURL() string
	GetSupabaseKey() string
	GetSupabaseServiceRoleKey() string
	GetJWTSecret() string
	GetAuthMode() string

	GetStoreBackend() string
	GetSQLitePath() string
	GetUsageBackend() string
	GetRedisURL() string

	GetOpenAIKey() string
	GetOpenAIBaseURL() string
	GetOpenAIModel() string
	GetGenerationAuth() string
	GetGCPProjectID() string
	GetGCPLocation() string

	GetPaystackSecretKey() string
	GetPaystackBaseURL() string

	GetAdminSecret() string
	GetRatingCooldown() time.Duration
	GetCORSAllowedOrigins() []string
}

// TextCompleter turns a prompt into generated text. Implementations talk to a
// remote model and may fail for any reason; callers are expected to degrade.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error)
}

// ContentGenerator produces ideas, full posts and rewrites.
type ContentGenerator interface {
	GenerateIdeas(ctx context.Context, topic string, count int) ([]*BlogIdea, error)
	GenerateFullContent(ctx context.Context, idea *BlogIdea) (*BlogPost, error)
	Rewrite(ctx context.Context, content string, style RewriteStyle) (string, error)
}
