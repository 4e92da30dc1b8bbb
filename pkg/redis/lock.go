package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = time.Minute

var (
	ErrLockStoreRequired = errors.New("redis: lock store is required")
	ErrLockKeyRequired   = errors.New("redis: lock key is required")
)

// LockStore is the subset of Client a Lock needs.
type LockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// Lock is a lease on one key. The holder writes a random token and only
// deletes the key while the token still matches, so an expired lease taken
// over by another owner is left alone.
type Lock struct {
	store LockStore
	key   string
	ttl   time.Duration

	mu    sync.Mutex
	token string
}

// NewLock builds a lock on key. A non-positive ttl means one minute.
func NewLock(store LockStore, key string, ttl time.Duration) (*Lock, error) {
	if store == nil {
		return nil, ErrLockStoreRequired
	}
	if key == "" {
		return nil, ErrLockKeyRequired
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Lock{store: store, key: key, ttl: ttl}, nil
}

// Acquire reports whether this lock now holds the key.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.token != "" {
		return true, nil
	}
	token := uuid.NewString()
	ok, err := l.store.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("redis: acquire %s: %w", l.key, err)
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

// Release gives the key up when this lock still holds it. Releasing a lock
// that was never acquired is a no-op.
func (l *Lock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.token == "" {
		return nil
	}
	token := l.token
	l.token = ""

	current, err := l.store.Get(ctx, l.key)
	switch {
	case errors.Is(err, redis.Nil):
		return nil
	case err != nil:
		return fmt.Errorf("redis: read %s owner: %w", l.key, err)
	case current != token:
		return nil
	}
	if err := l.store.Del(ctx, l.key); err != nil {
		return fmt.Errorf("redis: release %s: %w", l.key, err)
	}
	return nil
}

// Held reports whether Acquire succeeded and Release has not run since.
func (l *Lock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.token != ""
}

// Key returns the guarded redis key.
func (l *Lock) Key() string { return l.key }
