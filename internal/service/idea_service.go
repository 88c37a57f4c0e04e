package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"bloggenie-server/internal/domain"
	"bloggenie-server/pkg/keylock"
)

const (
	persistIdeaWorkers = 4
	maxListedIdeas     = 100

	persistenceWarning = "Your ideas were generated but could not be saved. Copy anything you want to keep."
)

// IdeaService runs a generation request end to end: entitlement, daily
// quota, generation and persistence.
type IdeaService struct {
	ideas         domain.IdeaRepository
	subscriptions *SubscriptionService
	usage         *UsageService
	prefs         *UserPreferencesService
	generator     domain.ContentGenerator
	inflight      *keylock.Set
	logger        domain.Logger
	now           func() time.Time
}

func NewIdeaService(
	ideas domain.IdeaRepository,
	subscriptions *SubscriptionService,
	usage *UsageService,
	prefs *UserPreferencesService,
	generator domain.ContentGenerator,
	logger domain.Logger,
) *IdeaService {
	return &IdeaService{
		ideas:         ideas,
		subscriptions: subscriptions,
		usage:         usage,
		prefs:         prefs,
		generator:     generator,
		inflight:      keylock.NewSet(),
		logger:        logger,
		now:           time.Now,
	}
}

// Generate produces count ideas about topic for user. One request consumes
// one unit of the daily quota whatever the count. A second request from the
// same user while one is running is rejected. If saving fails the ideas are
// still returned with a warning.
func (s *IdeaService) Generate(ctx context.Context, user *domain.User, topic string, count int, tzHint string, token string) (*domain.IdeaGenerationResult, error) {
	topic = strings.Join(strings.Fields(topic), " ")
	if topic == "" {
		return nil, &domain.ValidationError{Field: "topic", Message: "topic is required"}
	}
	if utf8.RuneCountInString(topic) > domain.MaxTopicLength {
		return nil, &domain.ValidationError{Field: "topic", Message: fmt.Sprintf("must be at most %d characters", domain.MaxTopicLength)}
	}
	if count == 0 {
		count = domain.DefaultIdeaCount
	}
	if count < domain.MinIdeaCount || count > domain.MaxIdeaCount {
		return nil, &domain.ValidationError{Field: "count", Message: fmt.Sprintf("must be between %d and %d", domain.MinIdeaCount, domain.MaxIdeaCount)}
	}

	if !s.inflight.TryAcquire(user.ID) {
		return nil, domain.ErrGenerationInProgress
	}
	defer s.inflight.Release(user.ID)

	sub, ent, err := s.subscriptions.Entitlements(ctx, user.ID, token)
	if err != nil {
		return nil, err
	}

	loc := s.prefs.Location(ctx, user.ID, tzHint, token)
	usage, err := s.usage.CheckAndIncrement(ctx, user.ID, ent.DailyIdeaLimit, loc, token)
	if err != nil {
		return nil, err
	}
	if !usage.Allowed {
		s.logger.Info("Daily idea limit reached", "user_id", user.ID, "limit", usage.Limit, "date_key", usage.DateKey)
		return nil, &domain.QuotaExceededError{
			Limit:    usage.Limit,
			Count:    usage.Count,
			DateKey:  usage.DateKey,
			PlanTier: sub.PlanTier,
		}
	}

	ideas, err := s.generator.GenerateIdeas(ctx, topic, count)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, idea := range ideas {
		idea.ID = uuid.NewString()
		idea.UserID = user.ID
		idea.Topic = topic
		idea.CreatedAt = now
	}

	result := &domain.IdeaGenerationResult{Ideas: ideas, Usage: usage}
	if err := s.persist(ctx, ideas, token); err != nil {
		s.logger.Error("Failed to save generated ideas", err, "user_id", user.ID, "count", len(ideas))
		result.Warning = persistenceWarning
	}

	s.logger.Info("Ideas generated",
		"user_id", user.ID,
		"count", len(ideas),
		"remaining", usage.Remaining,
		"unlimited", usage.Unlimited)
	return result, nil
}

func (s *IdeaService) persist(ctx context.Context, ideas []*domain.BlogIdea, token string) error {
	sem := make(chan struct{}, persistIdeaWorkers)
	g, gctx := errgroup.WithContext(ctx)
	for _, idea := range ideas {
		idea := idea
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}
			return s.ideas.Create(gctx, idea, token)
		})
	}
	return g.Wait()
}

// List returns the user's saved ideas, newest first.
func (s *IdeaService) List(ctx context.Context, userID string, limit int, token string) ([]*domain.BlogIdea, error) {
	if limit <= 0 || limit > maxListedIdeas {
		limit = maxListedIdeas
	}
	return s.ideas.ListByUser(ctx, userID, limit, token)
}

// Get returns one idea owned by userID.
func (s *IdeaService) Get(ctx context.Context, userID, ideaID string, token string) (*domain.BlogIdea, error) {
	idea, err := s.ideas.Get(ctx, ideaID, token)
	if err != nil {
		return nil, err
	}
	if idea.UserID != userID {
		// do not reveal other users' ids
		return nil, domain.ErrIdeaNotFound
	}
	return idea, nil
}

func (s *IdeaService) Delete(ctx context.Context, userID, ideaID string, token string) error {
	if _, err := s.Get(ctx, userID, ideaID, token); err != nil {
		return err
	}
	if err := s.ideas.Delete(ctx, ideaID, token); err != nil && !errors.Is(err, domain.ErrIdeaNotFound) {
		return err
	}
	return nil
}

// Usage reports today's quota state without consuming it.
func (s *IdeaService) Usage(ctx context.Context, userID, tzHint string, token string) (*domain.UsageResult, error) {
	_, ent, err := s.subscriptions.Entitlements(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	loc := s.prefs.Location(ctx, userID, tzHint, token)
	return s.usage.Peek(ctx, userID, ent.DailyIdeaLimit, loc, token)
}
