// Package idempotency deduplicates at-least-once analytics deliveries.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/bookverse-backend/pkg/redis"
)

// DefaultTTL applies when the configured dedupe window is zero.
const DefaultTTL = 24 * time.Hour

const processedScope = "evt:processed"

var (
	ErrNoStore     = errors.New("idempotency: store is required")
	ErrNegativeTTL = errors.New("idempotency: ttl must not be negative")
	ErrNoConsumer  = errors.New("idempotency: consumer is required")
	ErrNoEventID   = errors.New("idempotency: event id is required")
)

// Manager records which event ids each consumer already handled, under
// bv:idempotency:evt:processed:<consumer>:<event_id>.
type Manager struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

func NewManager(store redis.IdempotencyStore, ttl time.Duration) (*Manager, error) {
	switch {
	case store == nil:
		return nil, ErrNoStore
	case ttl < 0:
		return nil, ErrNegativeTTL
	case ttl == 0:
		ttl = DefaultTTL
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// CheckAndMarkProcessed claims eventID for consumer. It returns true when a
// previous delivery already holds the claim.
func (m *Manager) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	key, err := m.claimKey(consumer, eventID)
	if err != nil {
		return false, err
	}
	claimed, err := m.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), m.ttl)
	if err != nil {
		return false, fmt.Errorf("idempotency: claim %s: %w", eventID, err)
	}
	return !claimed, nil
}

// Release drops the claim so the next redelivery is processed.
func (m *Manager) Release(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := m.claimKey(consumer, eventID)
	if err != nil {
		return err
	}
	if err := m.store.Del(ctx, key); err != nil {
		return fmt.Errorf("idempotency: release %s: %w", eventID, err)
	}
	return nil
}

func (m *Manager) claimKey(consumer string, eventID uuid.UUID) (string, error) {
	if consumer == "" {
		return "", ErrNoConsumer
	}
	if eventID == uuid.Nil {
		return "", ErrNoEventID
	}
	return m.store.IdempotencyKey(processedScope+":"+consumer, eventID.String()), nil
}
