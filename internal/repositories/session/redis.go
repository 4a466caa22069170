package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/renning22/fmcp/pkg/models"
	"github.com/renning22/fmcp/pkg/redis"
	"github.com/renning22/fmcp/pkg/tracing"
)

// RedisRepository stores sessions as JSON with a sliding TTL and serialises
// operations with a distributed lock, so several instances can share sessions.
type RedisRepository struct {
	client    *redis.Client
	locker    *redis.Locker
	keyPrefix string
	ttl       time.Duration
	logger    ectologger.Logger
}

// NewRedisRepository creates a redis-backed session repository
func NewRedisRepository(client *redis.Client, keyPrefix string, ttl, lockTimeout time.Duration, logger ectologger.Logger) *RedisRepository {
	return &RedisRepository{
		client:    client,
		locker:    redis.NewLocker(client, keyPrefix+"lock:", lockTimeout),
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    logger,
	}
}

func (r *RedisRepository) key(id string) string {
	return r.keyPrefix + "session:" + id
}

func (r *RedisRepository) Get(ctx context.Context, id string) (models.SessionState, error) {
	ctx, span := tracing.StartSpan(ctx, "RedisRepository.Get")
	defer span.End()

	data, err := r.client.Get(ctx, r.key(id))
	if redis.IsNil(err) {
		return models.SessionState{}, errSessionNotFound(id)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("session_id", id).Error("Failed to load session")
		return models.SessionState{}, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load training session")
	}

	return decode([]byte(data))
}

func (r *RedisRepository) Save(ctx context.Context, state models.SessionState) error {
	ctx, span := tracing.StartSpan(ctx, "RedisRepository.Save")
	defer span.End()

	data, err := encode(state)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.key(state.ID), data, r.ttl); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("session_id", state.ID).Error("Failed to save session")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to save training session")
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "RedisRepository.Delete")
	defer span.End()

	exists, err := r.client.Exists(ctx, r.key(id))
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	if !exists {
		return errSessionNotFound(id)
	}

	if err := r.client.Del(ctx, r.key(id)); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("session_id", id).Error("Failed to delete session")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete training session")
	}
	return nil
}

// Lock takes the session's distributed lock, waiting until ctx is done. A lock
// that is never released expires after the lock timeout.
func (r *RedisRepository) Lock(ctx context.Context, id string) (Unlock, error) {
	lock, err := r.locker.Lock(ctx, id)
	if errors.Is(err, redis.ErrLockNotAcquired) {
		return nil, errSessionBusy(id)
	}
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}

	return func() {
		// the lock context is usually done by the time the operation ends
		if err := lock.Unlock(context.WithoutCancel(ctx)); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithField("session_id", id).Warn("Failed to release session lock")
		}
	}, nil
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}
