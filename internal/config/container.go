package config

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"bloggenie-server/internal/domain"
	"bloggenie-server/internal/handler"
	"bloggenie-server/internal/infra/supabase"
	"bloggenie-server/internal/repository"
	"bloggenie-server/internal/service"
	"bloggenie-server/internal/validator"
	"bloggenie-server/pkg/logger"
)

const startupTimeout = 10 * time.Second

// Container holds all application dependencies
type Container struct {
	Config         domain.Config
	Logger         domain.Logger
	SupabaseClient domain.SupabaseClient
	Store          domain.DocumentStore

	AuthService         domain.AuthService
	SubscriptionService *service.SubscriptionService
	UsageService        *service.UsageService
	PreferencesService  *service.UserPreferencesService
	Generator           *service.Generator
	IdeaService         *service.IdeaService
	PostService         *service.PostService
	PaymentService      *service.PaymentService
	RatingService       *service.RatingService
	Router              http.Handler

	closers []io.Closer
}

// NewContainer creates a new dependency injection container. Backends are
// chosen from configuration; anything left unconfigured falls back to a local
// implementation so the server still starts.
func NewContainer() (*Container, error) {
	cfg := NewConfig()
	appLogger := logger.New(logger.Options{
		Name:   "bloggenie",
		Level:  cfg.GetLogLevel(),
		Format: cfg.GetLogFormat(),
	})
	return NewContainerWith(cfg, appLogger)
}

// NewContainerWith builds the container from an explicit config and logger
func NewContainerWith(cfg domain.Config, appLogger domain.Logger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	c := &Container{Config: cfg, Logger: appLogger}

	if cfg.GetSupabaseURL() != "" {
		client := supabase.NewSupabaseClient(cfg, appLogger)
		if err := client.Initialize(); err != nil {
			return nil, err
		}
		c.SupabaseClient = client
	}

	store, err := c.newStore(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Store = store

	usageRepo, err := c.newUsageRepository(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}

	completer, err := c.newCompleter(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}

	// Repositories
	subRepo := repository.NewSubscriptionRepository(store, appLogger)
	paymentRepo := repository.NewPaymentRepository(store, appLogger)
	prefRepo := repository.NewPreferenceRepository(store, appLogger)
	ideaRepo := repository.NewIdeaRepository(store, appLogger)
	postRepo := repository.NewPostRepository(store, appLogger)
	ratingRepo := repository.NewRatingRepository(store, appLogger)

	// Services
	c.AuthService = service.NewAuthService(c.SupabaseClient, cfg.GetJWTSecret(), cfg.GetAuthMode(), appLogger)
	c.SubscriptionService = service.NewSubscriptionService(subRepo, paymentRepo, appLogger)
	c.UsageService = service.NewUsageService(usageRepo, appLogger)
	c.PreferencesService = service.NewUserPreferencesService(prefRepo, appLogger)
	c.Generator = service.NewGenerator(completer, appLogger)
	c.IdeaService = service.NewIdeaService(ideaRepo, c.SubscriptionService, c.UsageService, c.PreferencesService, c.Generator, appLogger)
	c.PostService = service.NewPostService(postRepo, c.IdeaService, c.SubscriptionService, c.Generator, appLogger)
	c.PaymentService = service.NewPaymentService(c.newGateway(), paymentRepo, c.SubscriptionService, appLogger)
	c.RatingService = service.NewRatingService(ratingRepo, prefRepo, cfg.GetRatingCooldown(), appLogger)

	// Handlers
	validate := validator.New()
	handlers := handler.Handlers{
		Auth:         handler.NewAuthHandler(c.AuthService, c.SubscriptionService, validate, appLogger),
		Subscription: handler.NewSubscriptionHandler(c.SubscriptionService, c.IdeaService, appLogger),
		Payment:      handler.NewPaymentHandler(c.PaymentService, c.PreferencesService, validate, appLogger),
		Idea:         handler.NewIdeaHandler(c.IdeaService, validate, appLogger),
		Post:         handler.NewPostHandler(c.PostService, validate, appLogger),
		Preference:   handler.NewPreferenceHandler(c.PreferencesService, validate, appLogger),
		Rating:       handler.NewRatingHandler(c.RatingService, validate, appLogger),
	}
	if secret := cfg.GetAdminSecret(); secret != "" {
		handlers.Admin = handler.NewAdminHandler(secret, c.SubscriptionService, validate, appLogger)
	}

	authMiddleware := handler.NewAuthMiddleware(c.AuthService, appLogger)
	c.Router = handler.NewRouter(handlers, authMiddleware.Middleware, cfg.GetCORSAllowedOrigins())

	return c, nil
}

func (c *Container) newStore(ctx context.Context) (domain.DocumentStore, error) {
	switch backend := c.Config.GetStoreBackend(); backend {
	case StoreSupabase:
		if c.SupabaseClient == nil {
			return nil, fmt.Errorf("store backend %q requires SUPABASE_URL", backend)
		}
		// webhooks, admin grants and public reviews run without a user token
		if c.Config.GetSupabaseServiceRoleKey() == "" {
			return nil, fmt.Errorf("store backend %q requires SUPABASE_SERVICE_ROLE_KEY", backend)
		}
		c.Logger.Info("Using Supabase store")
		return repository.NewSupabaseStore(c.SupabaseClient, c.Logger), nil
	case StoreSQLite:
		store, err := repository.NewSQLiteStore(ctx, c.Config.GetSQLitePath(), c.Logger)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, store)
		c.Logger.Info("Using SQLite store", "path", c.Config.GetSQLitePath())
		return store, nil
	case StoreMemory:
		c.Logger.Warn("Using in-memory store; data is lost on restart")
		return repository.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

func (c *Container) newUsageRepository(ctx context.Context) (domain.UsageRepository, error) {
	switch backend := c.Config.GetUsageBackend(); backend {
	case UsageRedis:
		client, err := repository.NewRedisClient(ctx, c.Config.GetRedisURL())
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, client)
		c.Logger.Info("Using Redis usage counter")
		return repository.NewRedisUsageRepository(client, c.Logger), nil
	case UsageStore, "":
		return repository.NewUsageRepository(c.Store, c.Logger), nil
	default:
		return nil, fmt.Errorf("unknown usage backend %q", backend)
	}
}

// newCompleter returns nil when no generation backend is configured; the
// generator then serves the offline templates.
func (c *Container) newCompleter(ctx context.Context) (domain.TextCompleter, error) {
	cfg := c.Config
	switch mode := cfg.GetGenerationAuth(); mode {
	case GenerationVertex:
		if cfg.GetGCPProjectID() == "" {
			break
		}
		completer, err := service.NewVertexCompleter(ctx, cfg.GetGCPProjectID(), cfg.GetGCPLocation(), cfg.GetOpenAIModel())
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, completer)
		c.Logger.Info("Using Vertex AI generation", "project", cfg.GetGCPProjectID(), "model", cfg.GetOpenAIModel())
		return completer, nil
	case GenerationGoogle:
		completer, err := service.NewGoogleOpenAICompleter(ctx, cfg.GetOpenAIBaseURL(), cfg.GetOpenAIModel())
		if err != nil {
			return nil, err
		}
		c.Logger.Info("Using OpenAI-compatible generation with Google credentials", "base_url", cfg.GetOpenAIBaseURL())
		return completer, nil
	case GenerationBearer, "":
		if cfg.GetOpenAIKey() == "" {
			break
		}
		c.Logger.Info("Using OpenAI-compatible generation", "base_url", cfg.GetOpenAIBaseURL(), "model", cfg.GetOpenAIModel())
		return service.NewOpenAICompleter(cfg.GetOpenAIBaseURL(), cfg.GetOpenAIKey(), cfg.GetOpenAIModel()), nil
	default:
		return nil, fmt.Errorf("unknown generation auth %q", mode)
	}

	c.Logger.Warn("No generation backend configured; serving offline templates")
	return nil, nil
}

func (c *Container) newGateway() domain.PaymentGateway {
	if key := c.Config.GetPaystackSecretKey(); key != "" {
		return service.NewPaystackGateway(c.Config.GetPaystackBaseURL(), key)
	}
	c.Logger.Warn("PAYSTACK_SECRET_KEY not set; using sandbox payments")
	return service.NewSandboxGateway()
}

// Close releases database and cache connections
func (c *Container) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}
