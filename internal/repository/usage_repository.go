package repository

import (
	"context"
	"fmt"
	"time"

	"bloggenie-server/internal/domain"
	"bloggenie-server/pkg/keylock"
)

// UsageRepository keeps one daily_usage row per user and resets it lazily
// when the stored date key is not today. The read-compare-write runs under a
// per-user lock, so it is atomic within one process.
type UsageRepository struct {
	store  domain.DocumentStore
	locks  *keylock.KeyLock
	logger domain.Logger
}

func NewUsageRepository(store domain.DocumentStore, logger domain.Logger) *UsageRepository {
	return &UsageRepository{
		store:  store,
		locks:  keylock.New(),
		logger: logger,
	}
}

func (r *UsageRepository) Increment(ctx context.Context, userID, dateKey string, limit int, token string) (int, bool, error) {
	unlock := r.locks.Lock(userID)
	defer unlock()

	row, err := r.load(ctx, userID, token)
	if err != nil {
		return 0, false, err
	}

	count := 0
	if row != nil && getString(row, "date_key") == dateKey {
		count = getInt(row, "count")
	}
	if count >= limit {
		return count, false, nil
	}

	fields := domain.Record{
		"user_id":    userID,
		"date_key":   dateKey,
		"count":      count + 1,
		"updated_at": formatTime(time.Now()),
	}
	if row == nil {
		_, err = r.store.Create(ctx, domain.EntityUsage, fields, token)
	} else {
		_, err = r.store.Update(ctx, domain.EntityUsage, getString(row, "id"), fields, token)
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to record usage: %w", err)
	}
	return count + 1, true, nil
}

func (r *UsageRepository) Peek(ctx context.Context, userID, dateKey string, token string) (int, error) {
	row, err := r.load(ctx, userID, token)
	if err != nil {
		return 0, err
	}
	if row == nil || getString(row, "date_key") != dateKey {
		return 0, nil
	}
	return getInt(row, "count"), nil
}

func (r *UsageRepository) load(ctx context.Context, userID, token string) (domain.Record, error) {
	rows, err := r.store.List(ctx, domain.EntityUsage, domain.Query{
		Filter: map[string]interface{}{"user_id": userID},
		Limit:  1,
	}, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}
