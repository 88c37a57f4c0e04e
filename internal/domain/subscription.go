package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// PlanTier is the product tier a subscription grants.
type PlanTier int

const (
	PlanFree PlanTier = iota
	PlanStarter
	PlanPro
)

func (t PlanTier) String() string {
	switch t {
	case PlanStarter:
		return "starter"
	case PlanPro:
		return "pro"
	default:
		return "free"
	}
}

// MarshalText persists the canonical tier name.
func (t PlanTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *PlanTier) UnmarshalText(b []byte) error {
	tier, err := ParsePlanTier(string(b))
	if err != nil {
		return err
	}
	*t = tier
	return nil
}

// ParsePlanTier accepts canonical tier names and the billing-period aliases
// older records were written with (monthly for starter, yearly for pro).
func ParsePlanTier(s string) (PlanTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "free", "":
		return PlanFree, nil
	case "starter", "monthly":
		return PlanStarter, nil
	case "pro", "yearly":
		return PlanPro, nil
	}
	return PlanFree, fmt.Errorf("%w: %q", ErrInvalidPlan, s)
}

// SubscriptionStatus is the lifecycle state of a subscription record.
type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusExpired   SubscriptionStatus = "expired"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusPending   SubscriptionStatus = "pending"
)

// Valid reports whether s is a known status.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case StatusActive, StatusExpired, StatusCancelled, StatusPending:
		return true
	}
	return false
}

const (
	// UnlimitedQuota marks a limit that is never enforced.
	UnlimitedQuota = -1

	FreeDailyIdeaLimit    = 5
	StarterDailyIdeaLimit = 50

	// FreePlanValidity is how long an auto-created free record stays valid.
	FreePlanValidity = 5 * 365 * 24 * time.Hour
)

// Subscription is the single per-user subscription record.
type Subscription struct {
	ID               string             `json:"id"`
	UserID           string             `json:"user_id"`
	PlanTier         PlanTier           `json:"plan_type"`
	Status           SubscriptionStatus `json:"status"`
	ExpiresAt        time.Time          `json:"expires_at"`
	Amount           int64              `json:"amount"`
	CurrencyCode     string             `json:"currency"`
	PaymentReference string             `json:"payment_reference,omitempty"`
	AutoRenew        bool               `json:"auto_renew"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// Plan describes a purchasable tier.
type Plan struct {
	Tier     PlanTier      `json:"tier"`
	Name     string        `json:"name"`
	Interval string        `json:"interval"`
	PriceUSD float64       `json:"price_usd"`
	Period   time.Duration `json:"-"`
	Features []string      `json:"features"`
}

var plans = []Plan{
	{
		Tier:     PlanFree,
		Name:     "Free",
		Interval: "forever",
		PriceUSD: 0,
		Period:   FreePlanValidity,
		Features: []string{"5 blog ideas per day", "Basic topic suggestions"},
	},
	{
		Tier:     PlanStarter,
		Name:     "Starter",
		Interval: "month",
		PriceUSD: 5,
		Period:   30 * 24 * time.Hour,
		Features: []string{"50 blog ideas per day", "Full blog post generation", "Export to Markdown, HTML and text"},
	},
	{
		Tier:     PlanPro,
		Name:     "Pro",
		Interval: "year",
		PriceUSD: 50,
		Period:   365 * 24 * time.Hour,
		Features: []string{"Unlimited blog ideas", "Full blog post generation", "Export to Markdown, HTML and text", "Content rewriting"},
	},
}

// Plans returns the plan catalogue ordered by tier.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// PlanFor looks up the catalogue entry for a tier.
func PlanFor(tier PlanTier) (Plan, bool) {
	for _, p := range plans {
		if p.Tier == tier {
			return p, true
		}
	}
	return Plan{}, false
}

// IsPremium reports whether sub grants paid features at now: a paid tier,
// status active and an expiry strictly in the future.
func IsPremium(sub *Subscription, now time.Time) bool {
	if sub == nil {
		return false
	}
	switch sub.PlanTier {
	case PlanStarter, PlanPro:
		return sub.Status == StatusActive && sub.ExpiresAt.After(now)
	default:
		return false
	}
}

// EffectiveTier is the tier whose features sub actually unlocks at now.
func EffectiveTier(sub *Subscription, now time.Time) PlanTier {
	if !IsPremium(sub, now) {
		return PlanFree
	}
	return sub.PlanTier
}

func CanGenerateFullContent(sub *Subscription, now time.Time) bool {
	switch EffectiveTier(sub, now) {
	case PlanStarter, PlanPro:
		return true
	default:
		return false
	}
}

func CanExport(sub *Subscription, now time.Time) bool {
	switch EffectiveTier(sub, now) {
	case PlanStarter, PlanPro:
		return true
	default:
		return false
	}
}

func CanUseRewriting(sub *Subscription, now time.Time) bool {
	return EffectiveTier(sub, now) == PlanPro
}

func HasUnlimitedIdeas(sub *Subscription, now time.Time) bool {
	return EffectiveTier(sub, now) == PlanPro
}

// DailyIdeaLimit returns the per-day generation limit, or UnlimitedQuota.
func DailyIdeaLimit(sub *Subscription, now time.Time) int {
	switch EffectiveTier(sub, now) {
	case PlanPro:
		return UnlimitedQuota
	case PlanStarter:
		return StarterDailyIdeaLimit
	default:
		return FreeDailyIdeaLimit
	}
}

// Entitlements is the evaluated feature set of a subscription.
type Entitlements struct {
	Tier           PlanTier `json:"tier"`
	Premium        bool     `json:"premium"`
	FullContent    bool     `json:"full_content"`
	Export         bool     `json:"export"`
	Rewriting      bool     `json:"rewriting"`
	UnlimitedIdeas bool     `json:"unlimited_ideas"`
	DailyIdeaLimit int      `json:"daily_idea_limit"`
}

// EvaluateEntitlements derives every entitlement from the same subscription snapshot.
func EvaluateEntitlements(sub *Subscription, now time.Time) Entitlements {
	return Entitlements{
		Tier:           EffectiveTier(sub, now),
		Premium:        IsPremium(sub, now),
		FullContent:    CanGenerateFullContent(sub, now),
		Export:         CanExport(sub, now),
		Rewriting:      CanUseRewriting(sub, now),
		UnlimitedIdeas: HasUnlimitedIdeas(sub, now),
		DailyIdeaLimit: DailyIdeaLimit(sub, now),
	}
}

// ActivationResult is returned after a payment is applied.
type ActivationResult struct {
	Subscription *Subscription `json:"subscription"`
	Entitlements Entitlements  `json:"entitlements"`
	Duplicate    bool          `json:"duplicate"`
}

type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID string, token string) (*Subscription, error)
	Create(ctx context.Context, sub *Subscription, token string) error
	Update(ctx context.Context, sub *Subscription, token string) error
}
