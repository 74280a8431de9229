package sessions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doorman/infrastructure"
	"doorman/internal/shortcode"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb, 24*time.Hour, 30*24*time.Hour), mr
}

func TestCreateAndGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	created, err := store.Create(ctx, userID, "alice", false)
	require.NoError(t, err)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "alice", got.Username)
	assert.False(t, got.Remember)
}

func TestGet_UnknownSession(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, infrastructure.ErrSessionNotFound)
}

func TestDelete_Idempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, uuid.New(), "bob", true)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.ID))
	require.NoError(t, store.Delete(ctx, created.ID))

	_, err = store.Get(ctx, created.ID)
	assert.ErrorIs(t, err, infrastructure.ErrSessionNotFound)
}

func TestSessionExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, uuid.New(), "carol", false)
	require.NoError(t, err)

	mr.FastForward(25 * time.Hour)

	_, err = store.Get(ctx, created.ID)
	assert.ErrorIs(t, err, infrastructure.ErrSessionNotFound)
}

func TestIncrementAttempts_Atomic(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, uuid.New(), "dave", false)
	require.NoError(t, err)

	// Concurrent wrong submissions must never yield more than MaxAttempts
	// effective attempts: the post-increment counts are unique, so at most
	// MaxAttempts callers see a count within the limit.
	const submissions = 10
	var wg sync.WaitGroup
	within := make(chan int64, submissions)
	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := store.IncrementAttempts(ctx, created.ID)
			if !assert.NoError(t, err) {
				return
			}
			if n <= shortcode.MaxAttempts {
				within <- n
			}
		}()
	}
	wg.Wait()
	close(within)

	seen := map[int64]bool{}
	for n := range within {
		assert.False(t, seen[n], "duplicate effective attempt %d", n)
		seen[n] = true
	}
	assert.Len(t, seen, shortcode.MaxAttempts)
}

func TestResetAttempts(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, uuid.New(), "erin", false)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := store.IncrementAttempts(ctx, created.ID)
		require.NoError(t, err)
	}
	require.NoError(t, store.ResetAttempts(ctx, created.ID))

	n, err := store.IncrementAttempts(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "counter must restart after a fresh dispatch")
}
