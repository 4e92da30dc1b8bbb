package checkout

import (
	"context"
	"time"

	pkgredis "github.com/angelmondragon/bookverse-backend/pkg/redis"
)

const submitLockScope = "checkout"

// Locker guards a submit across API instances.
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// LockFactory builds a fresh Locker for a cart owner.
type LockFactory func(ownerKey string) (Locker, error)

type lockKeyStore interface {
	pkgredis.LockStore
	LockKey(scope, id string) string
}

// RedisLocks builds SETNX submit locks keyed by cart owner.
func RedisLocks(store lockKeyStore, ttl time.Duration) LockFactory {
	return func(ownerKey string) (Locker, error) {
		lock, err := pkgredis.NewLock(store, store.LockKey(submitLockScope, ownerKey), ttl)
		if err != nil {
			return nil, err
		}
		return lock, nil
	}
}
