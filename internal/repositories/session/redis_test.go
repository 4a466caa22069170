package session

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/google/uuid"
	"github.com/renning22/fmcp/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRedisRepository connects to the redis named by REDIS_HOST/REDIS_PORT and
// skips the test when none is configured.
func newRedisRepository(t *testing.T) *RedisRepository {
	t.Helper()

	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("REDIS_HOST not set, skipping redis repository tests")
	}
	port := 6379
	if p, err := strconv.Atoi(os.Getenv("REDIS_PORT")); err == nil {
		port = p
	}

	client := redis.NewClient(redis.Config{Host: host, Port: port}, testLogger())
	require.NoError(t, client.Start(context.Background()))
	t.Cleanup(func() { _ = client.Stop(context.Background()) })

	prefix := "fmcp-test:" + uuid.New().String() + ":"
	return NewRedisRepository(client, prefix, time.Minute, 200*time.Millisecond, testLogger())
}

func TestRedisRepositorySaveGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := newRedisRepository(t)

	state := sampleState("s1")
	require.NoError(t, repo.Save(ctx, state))

	loaded, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, state.GoalName, loaded.GoalName)
	assert.Equal(t, state.ParamValues.Pairs(), loaded.ParamValues.Pairs())
	require.Len(t, loaded.Sequence, 1)
	assert.Equal(t, state.Sequence[0].Line(1), loaded.Sequence[0].Line(1))

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.Get(ctx, "s1")
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
}

func TestRedisRepositoryLock(t *testing.T) {
	ctx := context.Background()
	repo := newRedisRepository(t)

	unlock, err := repo.Lock(ctx, "s1")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = repo.Lock(waitCtx, "s1")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))

	unlock()
	unlock, err = repo.Lock(ctx, "s1")
	require.NoError(t, err)
	unlock()
}

func TestRedisRepositoryLockExpires(t *testing.T) {
	ctx := context.Background()
	repo := newRedisRepository(t)

	// never released; the 200ms lock timeout frees it
	_, err := repo.Lock(ctx, "s1")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	unlock, err := repo.Lock(waitCtx, "s1")
	require.NoError(t, err)
	unlock()
}
