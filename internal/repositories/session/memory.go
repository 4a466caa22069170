package session

import (
	"context"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/renning22/fmcp/pkg/metrics"
	"github.com/renning22/fmcp/pkg/models"
	"github.com/renning22/fmcp/pkg/tracing"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// memoryLock is a session's lock slot. refs counts holders and waiters; the
// slot is dropped from the map once nobody references it.
type memoryLock struct {
	ch   chan struct{}
	refs int
}

// MemoryRepository keeps sessions in process. Entries are stored serialised
// so callers never share state with the store.
type MemoryRepository struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	locks   map[string]*memoryLock
	ttl     time.Duration
	logger  ectologger.Logger
	now     func() time.Time
}

// NewMemoryRepository creates an in-memory session repository. A zero ttl
// keeps sessions until they are deleted.
func NewMemoryRepository(ttl time.Duration, logger ectologger.Logger) *MemoryRepository {
	return &MemoryRepository{
		entries: map[string]memoryEntry{},
		locks:   map[string]*memoryLock{},
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (models.SessionState, error) {
	ctx, span := tracing.StartSpan(ctx, "MemoryRepository.Get")
	defer span.End()

	r.mu.Lock()
	entry, ok := r.entries[id]
	if ok && r.expired(entry) {
		delete(r.entries, id)
		metrics.RecordSessionsExpired(1)
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		r.logger.WithContext(ctx).WithField("session_id", id).Debug("Session not found")
		return models.SessionState{}, errSessionNotFound(id)
	}

	return decode(entry.data)
}

func (r *MemoryRepository) Save(ctx context.Context, state models.SessionState) error {
	_, span := tracing.StartSpan(ctx, "MemoryRepository.Save")
	defer span.End()

	data, err := encode(state)
	if err != nil {
		return err
	}

	entry := memoryEntry{data: data}
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()
	r.entries[state.ID] = entry
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	_, span := tracing.StartSpan(ctx, "MemoryRepository.Delete")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return errSessionNotFound(id)
	}
	delete(r.entries, id)
	return nil
}

// Lock waits for the session's lock until ctx is done.
func (r *MemoryRepository) Lock(ctx context.Context, id string) (Unlock, error) {
	r.mu.Lock()
	lock, ok := r.locks[id]
	if !ok {
		lock = &memoryLock{ch: make(chan struct{}, 1)}
		r.locks[id] = lock
	}
	lock.refs++
	r.mu.Unlock()

	select {
	case lock.ch <- struct{}{}:
		return func() {
			<-lock.ch
			r.release(id, lock)
		}, nil
	case <-ctx.Done():
		r.release(id, lock)
		return nil, errSessionBusy(id)
	}
}

func (r *MemoryRepository) release(id string, lock *memoryLock) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock.refs--
	if lock.refs == 0 {
		delete(r.locks, id)
	}
}

func (r *MemoryRepository) Ping(_ context.Context) error {
	return nil
}

func (r *MemoryRepository) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt)
}

// sweep drops expired sessions. Callers hold r.mu.
func (r *MemoryRepository) sweep() {
	expired := 0
	for id, entry := range r.entries {
		if r.expired(entry) {
			delete(r.entries, id)
			expired++
		}
	}
	if expired > 0 {
		metrics.RecordSessionsExpired(expired)
	}
}
