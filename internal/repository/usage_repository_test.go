package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloggenie-server/internal/domain"
)

func newRedisUsageRepository(t *testing.T) (*RedisUsageRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewRedisUsageRepository(client, noopLogger{}), mr
}

// exerciseUsage checks the limit, denial and day rollover contract.
func exerciseUsage(t *testing.T, repo domain.UsageRepository) {
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		count, allowed, err := repo.Increment(ctx, "u1", "2025-03-10", 5, "")
		require.NoError(t, err)
		assert.True(t, allowed, "call %d", i)
		assert.Equal(t, i, count)
	}

	count, allowed, err := repo.Increment(ctx, "u1", "2025-03-10", 5, "")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 5, count)

	peek, err := repo.Peek(ctx, "u1", "2025-03-10", "")
	require.NoError(t, err)
	assert.Equal(t, 5, peek)

	// other users are independent
	count, allowed, err = repo.Increment(ctx, "u2", "2025-03-10", 5, "")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, count)

	// a new day starts from zero
	count, allowed, err = repo.Increment(ctx, "u1", "2025-03-11", 5, "")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, count)

	peek, err = repo.Peek(ctx, "u3", "2025-03-11", "")
	require.NoError(t, err)
	assert.Equal(t, 0, peek)
}

func TestStoreUsageRepository(t *testing.T) {
	exerciseUsage(t, NewUsageRepository(NewMemoryStore(), noopLogger{}))
}

func TestStoreUsageRepositoryOnSQLite(t *testing.T) {
	exerciseUsage(t, NewUsageRepository(newSQLiteStore(t), noopLogger{}))
}

func TestRedisUsageRepository(t *testing.T) {
	repo, mr := newRedisUsageRepository(t)
	exerciseUsage(t, repo)

	assert.True(t, mr.Exists("usage:u1:2025-03-10"))
	assert.Greater(t, mr.TTL("usage:u1:2025-03-10"), time.Duration(0))
}

func TestRedisUsageRepositoryZeroLimitDenies(t *testing.T) {
	repo, mr := newRedisUsageRepository(t)

	count, allowed, err := repo.Increment(context.Background(), "u1", "2025-03-10", 0, "")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, count)
	assert.False(t, mr.Exists("usage:u1:2025-03-10"))
}

func TestUsageRepositoriesNeverExceedLimitConcurrently(t *testing.T) {
	redisRepo, _ := newRedisUsageRepository(t)
	backends := map[string]domain.UsageRepository{
		"store": NewUsageRepository(NewMemoryStore(), noopLogger{}),
		"redis": redisRepo,
	}

	for name, repo := range backends {
		t.Run(name, func(t *testing.T) {
			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				granted int
			)
			for i := 0; i < 40; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, allowed, err := repo.Increment(context.Background(), "race", "2025-03-10", 5, "")
					if err == nil && allowed {
						mu.Lock()
						granted++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, 5, granted)
		})
	}
}

func TestRedisUsageRepositoryFailsWhenServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	repo := NewRedisUsageRepository(client, noopLogger{})
	mr.Close()

	_, _, err := repo.Increment(context.Background(), "u1", "2025-03-10", 5, "")
	assert.Error(t, err)
}
