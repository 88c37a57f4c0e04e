package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Auth         *AuthHandler
	Subscription *SubscriptionHandler
	Payment      *PaymentHandler
	Idea         *IdeaHandler
	Post         *PostHandler
	Preference   *PreferenceHandler
	Rating       *RatingHandler
	Admin        *AdminHandler
}

var defaultAllowedOrigins = []string{
	"http://localhost:5173", // Vite dev server
	"http://localhost:4173", // Vite preview
	"http://localhost:3000", // Alternative dev port
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(h Handlers, authMiddleware func(http.Handler) http.Handler, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"bloggenie-server"}`))
	}).Methods(http.MethodGet)

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/signin", h.Auth.SignIn).Methods(http.MethodPost)
	api.HandleFunc("/pricing", h.Payment.Pricing).Methods(http.MethodGet)
	api.HandleFunc("/reviews", h.Rating.Reviews).Methods(http.MethodGet)
	api.HandleFunc("/payments/webhook", h.Payment.Webhook).Methods(http.MethodPost)

	if h.Admin != nil {
		api.HandleFunc("/admin/users/{id}/subscription", h.Admin.GetSubscription).Methods(http.MethodGet)
		api.HandleFunc("/admin/users/{id}/subscription", h.Admin.GrantSubscription).Methods(http.MethodPost)
	}

	// Protected routes (require authentication)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(authMiddleware)

	protected.HandleFunc("/auth/signout", h.Auth.SignOut).Methods(http.MethodPost)
	protected.HandleFunc("/auth/profile", h.Auth.GetProfile).Methods(http.MethodGet)

	protected.HandleFunc("/subscription", h.Subscription.GetSubscription).Methods(http.MethodGet)
	protected.HandleFunc("/subscription/cancel", h.Subscription.Cancel).Methods(http.MethodPost)
	protected.HandleFunc("/usage", h.Subscription.GetUsage).Methods(http.MethodGet)

	protected.HandleFunc("/payments/checkout", h.Payment.Checkout).Methods(http.MethodPost)
	protected.HandleFunc("/payments/callback", h.Payment.Callback).Methods(http.MethodPost)

	protected.HandleFunc("/ideas", h.Idea.Generate).Methods(http.MethodPost)
	protected.HandleFunc("/ideas", h.Idea.List).Methods(http.MethodGet)
	protected.HandleFunc("/ideas/{id}", h.Idea.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/ideas/{id}/expand", h.Post.Expand).Methods(http.MethodPost)

	protected.HandleFunc("/posts", h.Post.List).Methods(http.MethodGet)
	protected.HandleFunc("/posts/{id}", h.Post.Get).Methods(http.MethodGet)
	protected.HandleFunc("/posts/{id}", h.Post.Update).Methods(http.MethodPut)
	protected.HandleFunc("/posts/{id}", h.Post.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/posts/{id}/export", h.Post.Export).Methods(http.MethodGet)
	protected.HandleFunc("/posts/{id}/rewrite", h.Post.Rewrite).Methods(http.MethodPost)

	protected.HandleFunc("/preferences", h.Preference.GetPreferences).Methods(http.MethodGet)
	protected.HandleFunc("/preferences", h.Preference.UpdatePreferences).Methods(http.MethodPut)

	protected.HandleFunc("/ratings/prompt", h.Rating.Prompt).Methods(http.MethodGet)
	protected.HandleFunc("/ratings", h.Rating.Submit).Methods(http.MethodPost)

	if len(allowedOrigins) == 0 {
		allowedOrigins = defaultAllowedOrigins
	}

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Accept-Language",
			"Authorization",
			"Content-Type",
			timezoneHeader,
		},
		ExposedHeaders: []string{
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
