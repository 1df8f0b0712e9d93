package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/espalier-dev/espalier/pkg/adapters/redis"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr, backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newTestClient(t)
	tests.ResponseStoreContractTest(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newTestClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "mood", &domain.Response{Value: "bad"}))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "mood")

	mr.FastForward(2 * time.Second)

	resp, err := store.Get(ctx, "mood")
	require.NoError(t, err)
	assert.Nil(t, resp)

	// Expired entries are pruned from the index lazily.
	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newTestClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:form:"))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "mood", &domain.Response{Value: "good"}))

	assert.True(t, mr.Exists("custom:form:mood"))
	assert.True(t, mr.Exists("custom:form:index"))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"mood"}, ids)
}

func TestRedisStore_ComplexValues(t *testing.T) {
	_, client := newTestClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "hobbies", &domain.Response{
		Value:   []string{"music", "sport"},
		Comment: "mostly weekends",
	}))

	resp, err := store.Get(ctx, "hobbies")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "mostly weekends", resp.Comment)
	// JSON round trip yields []any.
	assert.True(t, resp.Checked("music"))
	assert.True(t, resp.Checked("sport"))
	assert.False(t, resp.Checked("reading"))
}

func TestLocker(t *testing.T) {
	_, client := newTestClient(t)
	locker := redis.NewLocker(client, "espalier:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "respondent-1", time.Minute)
	require.NoError(t, err)

	// Second acquisition blocks until cancelled.
	shortCtx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(shortCtx, "respondent-1", time.Minute)
	assert.Error(t, err)

	require.NoError(t, unlock(ctx))

	unlock2, err := locker.Lock(ctx, "respondent-1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}
