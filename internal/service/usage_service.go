package service

import (
	"context"
	"fmt"
	"time"

	"bloggenie-server/internal/domain"
)

// UsageService enforces daily limits. It fails closed: when the counter
// cannot be read or written the request is refused, never granted.
type UsageService struct {
	repo   domain.UsageRepository
	logger domain.Logger
	now    func() time.Time
}

func NewUsageService(repo domain.UsageRepository, logger domain.Logger) *UsageService {
	return &UsageService{repo: repo, logger: logger, now: time.Now}
}

// CheckAndIncrement consumes one unit for today in loc if the count is below limit.
func (s *UsageService) CheckAndIncrement(ctx context.Context, userID string, limit int, loc *time.Location, token string) (*domain.UsageResult, error) {
	today := domain.DateKey(s.now(), loc)
	if limit == domain.UnlimitedQuota {
		return &domain.UsageResult{
			Allowed:   true,
			Unlimited: true,
			Limit:     domain.UnlimitedQuota,
			Remaining: domain.UnlimitedQuota,
			DateKey:   today,
		}, nil
	}

	count, allowed, err := s.repo.Increment(ctx, userID, today, limit, token)
	if err != nil {
		s.logger.Error("Usage counter unavailable", err, "user_id", userID, "date_key", today)
		return nil, fmt.Errorf("%w: %v", domain.ErrUsageUnavailable, err)
	}

	return &domain.UsageResult{
		Allowed:   allowed,
		Count:     count,
		Limit:     limit,
		Remaining: remaining(limit, count),
		DateKey:   today,
	}, nil
}

// Peek reports today's usage without consuming a unit.
func (s *UsageService) Peek(ctx context.Context, userID string, limit int, loc *time.Location, token string) (*domain.UsageResult, error) {
	today := domain.DateKey(s.now(), loc)
	count, err := s.repo.Peek(ctx, userID, today, token)
	if err != nil {
		s.logger.Error("Usage counter unavailable", err, "user_id", userID, "date_key", today)
		return nil, fmt.Errorf("%w: %v", domain.ErrUsageUnavailable, err)
	}

	if limit == domain.UnlimitedQuota {
		return &domain.UsageResult{
			Allowed:   true,
			Unlimited: true,
			Count:     count,
			Limit:     domain.UnlimitedQuota,
			Remaining: domain.UnlimitedQuota,
			DateKey:   today,
		}, nil
	}
	return &domain.UsageResult{
		Allowed:   count < limit,
		Count:     count,
		Limit:     limit,
		Remaining: remaining(limit, count),
		DateKey:   today,
	}, nil
}

func remaining(limit, count int) int {
	if r := limit - count; r > 0 {
		return r
	}
	return 0
}
