package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Persister saves cart snapshots so carts survive reloads and restarts.
type Persister interface {
	Load(ctx context.Context, owner string) (Snapshot, bool, error)
	Save(ctx context.Context, owner string, snap Snapshot) error
}

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CartKey(owner string) string
}

type storedCart struct {
	Version uint64     `json:"version"`
	Lines   []LineItem `json:"lines"`
}

// RedisPersister keeps one JSON document per cart owner with a sliding TTL.
type RedisPersister struct {
	store kvStore
	ttl   time.Duration
}

func NewRedisPersister(store kvStore, ttl time.Duration) (*RedisPersister, error) {
	if store == nil {
		return nil, errors.New("redis store required for cart persistence")
	}
	return &RedisPersister{store: store, ttl: ttl}, nil
}

func (p *RedisPersister) Load(ctx context.Context, owner string) (Snapshot, bool, error) {
	raw, err := p.store.Get(ctx, p.store.CartKey(owner))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("load cart: %w", err)
	}
	var doc storedCart
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode cart: %w", err)
	}
	return NewSnapshot(doc.Version, doc.Lines), true, nil
}

// Save writes the snapshot. An empty cart keeps its version marker so a stale
// replica cannot resurrect cleared lines.
func (p *RedisPersister) Save(ctx context.Context, owner string, snap Snapshot) error {
	payload, err := json.Marshal(storedCart{Version: snap.Version(), Lines: snap.Lines()})
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := p.store.Set(ctx, p.store.CartKey(owner), string(payload), p.ttl); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
