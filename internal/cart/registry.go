package cart

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
)

const (
	sessionOwnerPrefix = "session:"
	userOwnerPrefix    = "user:"
	persistTimeout     = 2 * time.Second
)

// Owner names whose cart a request operates on.
type Owner struct {
	Key    string
	UserID string
}

// GuestOwner scopes a cart to an anonymous browser session.
func GuestOwner(sessionID string) Owner {
	return Owner{Key: sessionOwnerPrefix + strings.TrimSpace(sessionID)}
}

// UserOwner scopes a cart to an authenticated user.
func UserOwner(userID string) Owner {
	id := strings.TrimSpace(userID)
	return Owner{Key: userOwnerPrefix + id, UserID: id}
}

func (o Owner) valid() bool {
	return o.Key != sessionOwnerPrefix && o.Key != userOwnerPrefix && o.Key != ""
}

// RegistryParams configure the cart registry.
type RegistryParams struct {
	Logger    *logger.Logger
	Persister Persister
	IdleTTL   time.Duration
}

type registryEntry struct {
	store    *Store
	lastUsed time.Time
}

// Registry owns the in-process Store for every active cart.
type Registry struct {
	logg      *logger.Logger
	persister Persister
	idleTTL   time.Duration
	now       func() time.Time

	mu     sync.Mutex
	stores map[string]*registryEntry
}

func NewRegistry(params RegistryParams) (*Registry, error) {
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	return &Registry{
		logg:      params.Logger,
		persister: params.Persister,
		idleTTL:   params.IdleTTL,
		now:       time.Now,
		stores:    map[string]*registryEntry{},
	}, nil
}

// Get returns the owner's store, reconciling it with any newer persisted copy.
func (r *Registry) Get(ctx context.Context, owner Owner) (*Store, error) {
	if !owner.valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session is required")
	}

	r.mu.Lock()
	entry, ok := r.stores[owner.Key]
	if !ok {
		entry = &registryEntry{store: NewStore(r.observerFor(owner.Key))}
		r.stores[owner.Key] = entry
	}
	entry.lastUsed = r.now()
	r.mu.Unlock()

	if r.persister == nil {
		return entry.store, nil
	}
	persisted, found, err := r.persister.Load(ctx, owner.Key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if found && persisted.Version() > entry.store.Snapshot().Version() {
		entry.store.restore(persisted)
	}
	return entry.store, nil
}

// Sweep evicts stores idle for longer than the configured TTL and returns how
// many were dropped. Persisted copies are kept.
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for key, entry := range r.stores {
		if entry.lastUsed.Before(cutoff) {
			delete(r.stores, key)
			evicted++
		}
	}
	return evicted
}

// RunSweeper evicts idle stores every interval until ctx ends.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logg.Debug(r.logg.WithField(ctx, "evicted", n), "idle carts evicted")
			}
		}
	}
}

func (r *Registry) observerFor(ownerKey string) Observer {
	if r.persister == nil {
		return nil
	}
	return func(ctx context.Context, snap Snapshot) {
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer cancel()
		if err := r.persister.Save(saveCtx, ownerKey, snap); err != nil {
			r.logg.Error(r.logg.WithCartSession(ctx, ownerKey), "persist cart snapshot", err)
		}
	}
}
