package limitsvc

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/icba/core"
)

func testAllow(t *testing.T, limiter core.Limiter, advance func(time.Duration)) {
	ctx := context.Background()
	key := "pwdreset:" + uuid.NewString()

	ok, err := limiter.Allow(ctx, key, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = limiter.Allow(ctx, key, time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = limiter.Allow(ctx, "other:"+key, time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")

	ok, err = limiter.Allow(ctx, key, 0)
	require.NoError(t, err)
	assert.True(t, ok, "no window, no limit")

	advance(1100 * time.Millisecond)
	ok, err = limiter.Allow(ctx, key, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLimiter(t *testing.T) {
	now := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = time.Now })

	testAllow(t, NewMemoryLimiter(), func(d time.Duration) { now = now.Add(d) })
}

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("ICBA_TEST_REDIS_ADDRESS")
	if addr == "" {
		t.Skip("ICBA_TEST_REDIS_ADDRESS not set")
	}
	conf := core.NewTestConfig()
	conf.Redis.Address = addr

	rdb, err := NewRedisClient(context.Background(), conf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	testAllow(t, NewRedisLimiter(rdb), time.Sleep)
}
