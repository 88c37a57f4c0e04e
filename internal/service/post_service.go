package service

import (
	"context"
	"time"

	"bloggenie-server/internal/domain"
	"bloggenie-server/pkg/keylock"
)

const maxListedPosts = 100

// PostService expands ideas into posts and gates the paid post features.
type PostService struct {
	posts         domain.PostRepository
	ideas         *IdeaService
	subscriptions *SubscriptionService
	generator     domain.ContentGenerator
	inflight      *keylock.Set
	logger        domain.Logger
	now           func() time.Time
}

func NewPostService(
	posts domain.PostRepository,
	ideas *IdeaService,
	subscriptions *SubscriptionService,
	generator domain.ContentGenerator,
	logger domain.Logger,
) *PostService {
	return &PostService{
		posts:         posts,
		ideas:         ideas,
		subscriptions: subscriptions,
		generator:     generator,
		inflight:      keylock.NewSet(),
		logger:        logger,
		now:           time.Now,
	}
}

func (s *PostService) require(ctx context.Context, userID, feature string, tier domain.PlanTier, allowed func(domain.Entitlements) bool, token string) error {
	_, ent, err := s.subscriptions.Entitlements(ctx, userID, token)
	if err != nil {
		return err
	}
	if !allowed(ent) {
		return &domain.UpgradeRequiredError{Feature: feature, RequiredTier: tier}
	}
	return nil
}

// Expand generates and saves a full post from one of the user's ideas.
func (s *PostService) Expand(ctx context.Context, userID, ideaID string, token string) (*domain.BlogPost, error) {
	if err := s.require(ctx, userID, "full post generation", domain.PlanStarter,
		func(e domain.Entitlements) bool { return e.FullContent }, token); err != nil {
		return nil, err
	}

	idea, err := s.ideas.Get(ctx, userID, ideaID, token)
	if err != nil {
		return nil, err
	}

	if !s.inflight.TryAcquire(userID) {
		return nil, domain.ErrGenerationInProgress
	}
	defer s.inflight.Release(userID)

	post, err := s.generator.GenerateFullContent(ctx, idea)
	if err != nil {
		return nil, err
	}

	now := s.now()
	post.ID = ""
	post.UserID = userID
	post.IdeaID = idea.ID
	post.Status = domain.PostDraft
	post.CreatedAt = now
	post.UpdatedAt = now
	if err := s.posts.Create(ctx, post, token); err != nil {
		return nil, err
	}

	s.logger.Info("Post generated", "user_id", userID, "idea_id", idea.ID, "post_id", post.ID)
	return post, nil
}

func (s *PostService) List(ctx context.Context, userID string, limit int, token string) ([]*domain.BlogPost, error) {
	if limit <= 0 || limit > maxListedPosts {
		limit = maxListedPosts
	}
	return s.posts.ListByUser(ctx, userID, limit, token)
}

// Get returns one post owned by userID.
func (s *PostService) Get(ctx context.Context, userID, postID string, token string) (*domain.BlogPost, error) {
	post, err := s.posts.Get(ctx, postID, token)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, domain.ErrPostNotFound
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, userID, postID string, update *domain.PostUpdate, token string) (*domain.BlogPost, error) {
	post, err := s.Get(ctx, userID, postID, token)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		post.Title = *update.Title
	}
	if update.Content != nil {
		post.Content = *update.Content
		post.EstimatedReadTime = readTimeMinutes(post.Content)
	}
	if update.Excerpt != nil {
		post.Excerpt = *update.Excerpt
	}
	if update.Tags != nil {
		post.Tags = update.Tags
	}
	if update.Status != nil {
		post.Status = *update.Status
	}
	post.UpdatedAt = s.now()

	if err := s.posts.Update(ctx, post, token); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, userID, postID string, token string) error {
	if _, err := s.Get(ctx, userID, postID, token); err != nil {
		return err
	}
	return s.posts.Delete(ctx, postID, token)
}

// Export renders a post for download. Starter and Pro only.
func (s *PostService) Export(ctx context.Context, userID, postID string, format domain.ExportFormat, token string) (*domain.ExportedDocument, error) {
	if err := s.require(ctx, userID, "export", domain.PlanStarter,
		func(e domain.Entitlements) bool { return e.Export }, token); err != nil {
		return nil, err
	}
	post, err := s.Get(ctx, userID, postID, token)
	if err != nil {
		return nil, err
	}
	return RenderPost(post, format)
}

// Rewrite restyles a post's content and saves it. Pro only.
func (s *PostService) Rewrite(ctx context.Context, userID, postID string, style domain.RewriteStyle, token string) (*domain.BlogPost, error) {
	if err := s.require(ctx, userID, "content rewriting", domain.PlanPro,
		func(e domain.Entitlements) bool { return e.Rewriting }, token); err != nil {
		return nil, err
	}
	post, err := s.Get(ctx, userID, postID, token)
	if err != nil {
		return nil, err
	}

	if !s.inflight.TryAcquire(userID) {
		return nil, domain.ErrGenerationInProgress
	}
	defer s.inflight.Release(userID)

	content, err := s.generator.Rewrite(ctx, post.Content, style)
	if err != nil {
		return nil, err
	}
	post.Content = content
	post.EstimatedReadTime = readTimeMinutes(content)
	post.UpdatedAt = s.now()
	if err := s.posts.Update(ctx, post, token); err != nil {
		return nil, err
	}

	s.logger.Info("Post rewritten", "user_id", userID, "post_id", postID, "style", string(style))
	return post, nil
}
