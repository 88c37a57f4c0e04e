package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"bloggenie-server/internal/domain"
)

const (
	StoreSupabase = "supabase"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"

	UsageStore = "store"
	UsageRedis = "redis"

	GenerationBearer = "bearer"
	GenerationGoogle = "google"
	GenerationVertex = "vertex"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort string
	LogLevel   string
	LogFormat  string

	SupabaseURL            string
	SupabaseKey            string
	SupabaseServiceRoleKey string
	JWTSecret              string
	AuthMode               string

	StoreBackend string
	SQLitePath   string
	UsageBackend string
	RedisURL     string

	OpenAIKey      string
	OpenAIBaseURL  string
	OpenAIModel    string
	GenerationAuth string
	GCPProjectID   string
	GCPLocation    string

	PaystackSecretKey string
	PaystackBaseURL   string

	AdminSecret        string
	RatingCooldown     time.Duration
	CORSAllowedOrigins []string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	supabaseURL := getEnvOrDefault("SUPABASE_URL", "")
	defaultStore := StoreMemory
	if supabaseURL != "" {
		defaultStore = StoreSupabase
	}

	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort: getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:   getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:  getEnvOrDefault("LOG_FORMAT", "text"),

		SupabaseURL:            supabaseURL,
		SupabaseKey:            getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		SupabaseServiceRoleKey: getEnvOrDefault("SUPABASE_SERVICE_ROLE_KEY", ""),
		JWTSecret:              getEnvOrDefault("JWT_SECRET", ""),
		AuthMode:               strings.ToLower(getEnvOrDefault("AUTH_MODE", "supabase")),

		StoreBackend: strings.ToLower(getEnvOrDefault("STORE_BACKEND", defaultStore)),
		SQLitePath:   getEnvOrDefault("SQLITE_PATH", "./bloggenie.db"),
		UsageBackend: strings.ToLower(getEnvOrDefault("USAGE_BACKEND", UsageStore)),
		RedisURL:     getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),

		OpenAIKey:      getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  getEnvOrDefault("OPENAI_BASE_URL", ""),
		OpenAIModel:    getEnvOrDefault("OPENAI_MODEL", ""),
		GenerationAuth: strings.ToLower(getEnvOrDefault("GENERATION_AUTH", GenerationBearer)),
		GCPProjectID:   getEnvOrDefault("GCP_PROJECT_ID", ""),
		GCPLocation:    getEnvOrDefault("GCP_LOCATION", "us-central1"),

		PaystackSecretKey: getEnvOrDefault("PAYSTACK_SECRET_KEY", ""),
		PaystackBaseURL:   getEnvOrDefault("PAYSTACK_BASE_URL", "https://api.paystack.co"),

		AdminSecret:        getEnvOrDefault("ADMIN_API_SECRET", ""),
		RatingCooldown:     time.Duration(getEnvInt64OrDefault("RATING_COOLDOWN_HOURS", 7*24)) * time.Hour,
		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "")),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetLogFormat returns text or json
func (c *AppConfig) GetLogFormat() string {
	return c.LogFormat
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetSupabaseServiceRoleKey returns the key used for requests made without a user token
func (c *AppConfig) GetSupabaseServiceRoleKey() string {
	return c.SupabaseServiceRoleKey
}

// GetJWTSecret returns the JWT secret key. Empty means tokens are checked with Supabase.
func (c *AppConfig) GetJWTSecret() string {
	return c.JWTSecret
}

func (c *AppConfig) GetAuthMode() string {
	return c.AuthMode
}

func (c *AppConfig) GetStoreBackend() string {
	return c.StoreBackend
}

func (c *AppConfig) GetSQLitePath() string {
	return c.SQLitePath
}

func (c *AppConfig) GetUsageBackend() string {
	return c.UsageBackend
}

func (c *AppConfig) GetRedisURL() string {
	return c.RedisURL
}

func (c *AppConfig) GetOpenAIKey() string {
	return c.OpenAIKey
}

func (c *AppConfig) GetOpenAIBaseURL() string {
	return c.OpenAIBaseURL
}

// GetOpenAIModel returns the model name for any generation backend. Empty
// selects the backend's default.
func (c *AppConfig) GetOpenAIModel() string {
	return c.OpenAIModel
}

// GetGenerationAuth returns bearer, google or vertex
func (c *AppConfig) GetGenerationAuth() string {
	return c.GenerationAuth
}

func (c *AppConfig) GetGCPProjectID() string {
	return c.GCPProjectID
}

func (c *AppConfig) GetGCPLocation() string {
	return c.GCPLocation
}

func (c *AppConfig) GetPaystackSecretKey() string {
	return c.PaystackSecretKey
}

func (c *AppConfig) GetPaystackBaseURL() string {
	return c.PaystackBaseURL
}

// GetAdminSecret returns the X-Admin-Secret value. Admin routes are off when empty.
func (c *AppConfig) GetAdminSecret() string {
	return c.AdminSecret
}

func (c *AppConfig) GetRatingCooldown() time.Duration {
	return c.RatingCooldown
}

func (c *AppConfig) GetCORSAllowedOrigins() []string {
	return c.CORSAllowedOrigins
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil && intValue >= 0 {
			return intValue
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
