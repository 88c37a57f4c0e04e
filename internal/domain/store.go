package domain

import "context"

// Entity names shared by every DocumentStore backend.
const (
	EntitySubscriptions = "subscriptions"
	EntityUsage         = "daily_usage"
	EntityIdeas         = "blog_ideas"
	EntityPosts         = "blog_posts"
	EntityRatings       = "ratings"
	EntityPreferences   = "user_preferences"
	EntityPayments      = "payments"
)

// Record is one stored row keyed by column name. Every record has a string "id".
type Record map[string]interface{}

// Query narrows a List call. Filter values are compared by equality.
type Query struct {
	Filter     map[string]interface{}
	OrderBy    string
	Descending bool
	Limit      int
}

// DocumentStore is the CRUD contract over named entities. The token scopes
// access for backends that enforce row level security; an empty token means
// service-level access.
type DocumentStore interface {
	List(ctx context.Context, entity string, q Query, token string) ([]Record, error)
	Get(ctx context.Context, entity, id string, token string) (Record, error)
	Create(ctx context.Context, entity string, fields Record, token string) (Record, error)
	Update(ctx context.Context, entity, id string, fields Record, token string) (Record, error)
	Delete(ctx context.Context, entity, id string, token string) error
}
