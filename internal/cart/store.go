package cart

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Observer is invoked with every published snapshot while the writer lock is
// held, so observers see snapshots in mutation order.
type Observer func(ctx context.Context, snap Snapshot)

// Store is the authoritative cart for one owner. Mutations are serialized;
// Snapshot is a single atomic load and never blocks on writers.
type Store struct {
	mu       sync.Mutex
	lines    map[Key]LineItem
	order    []Key
	version  uint64
	current  atomic.Pointer[Snapshot]
	observer Observer
	now      func() time.Time
}

// NewStore returns an empty store. observer may be nil.
func NewStore(observer Observer) *Store {
	s := &Store{
		lines:    map[Key]LineItem{},
		observer: observer,
		now:      time.Now,
	}
	empty := Snapshot{}
	s.current.Store(&empty)
	return s
}

// Snapshot returns the latest published view.
func (s *Store) Snapshot() Snapshot {
	return *s.current.Load()
}

// AddItem merges into an existing (itemId, mode) line or inserts a new one.
// A non-positive quantity counts as one. An existing line keeps its price.
func (s *Store) AddItem(ctx context.Context, add Addition) Snapshot {
	qty := add.Quantity
	if qty < 1 {
		qty = 1
	}
	key := Key{ItemID: add.ItemID, Mode: add.Mode}

	s.mu.Lock()
	defer s.mu.Unlock()
	if line, ok := s.lines[key]; ok {
		line.Quantity += qty
		s.lines[key] = line
	} else {
		s.lines[key] = LineItem{
			ItemID:    add.ItemID,
			Mode:      add.Mode,
			Quantity:  qty,
			UnitPrice: add.UnitPrice,
			Title:     add.Title,
			Author:    add.Author,
			AddedAt:   s.now().UTC(),
		}
		s.order = append(s.order, key)
	}
	return s.publishLocked(ctx)
}

// SetQuantity replaces the quantity of an existing line; below one removes it.
// Unknown keys are left untouched.
func (s *Store) SetQuantity(ctx context.Context, key Key, quantity int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	line, ok := s.lines[key]
	if !ok {
		return s.Snapshot()
	}
	if quantity < 1 {
		s.removeLocked(key)
	} else {
		line.Quantity = quantity
		s.lines[key] = line
	}
	return s.publishLocked(ctx)
}

// RemoveItem deletes the line if present.
func (s *Store) RemoveItem(ctx context.Context, key Key) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lines[key]; !ok {
		return s.Snapshot()
	}
	s.removeLocked(key)
	return s.publishLocked(ctx)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = map[Key]LineItem{}
	s.order = nil
	return s.publishLocked(ctx)
}

// Merge folds other's lines in with composite-key semantics: quantities add
// and lines already present keep their own price snapshot.
func (s *Store) Merge(ctx context.Context, other Snapshot) Snapshot {
	if other.IsEmpty() {
		return s.Snapshot()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, incoming := range other.lines {
		key := incoming.Key()
		if line, ok := s.lines[key]; ok {
			line.Quantity += incoming.Quantity
			s.lines[key] = line
			continue
		}
		s.lines[key] = incoming
		s.order = append(s.order, key)
	}
	return s.publishLocked(ctx)
}

// restore replaces the contents with a persisted snapshot without notifying
// the observer.
func (s *Store) restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = make(map[Key]LineItem, snap.Len())
	s.order = s.order[:0]
	for _, line := range snap.lines {
		s.lines[line.Key()] = line
		s.order = append(s.order, line.Key())
	}
	s.version = snap.version
	published := Snapshot{version: s.version, lines: snap.Lines()}
	s.current.Store(&published)
}

func (s *Store) removeLocked(key Key) {
	delete(s.lines, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) publishLocked(ctx context.Context) Snapshot {
	s.version++
	lines := make([]LineItem, 0, len(s.order))
	for _, key := range s.order {
		lines = append(lines, s.lines[key])
	}
	snap := Snapshot{version: s.version, lines: lines}
	s.current.Store(&snap)
	if s.observer != nil {
		s.observer(ctx, snap)
	}
	return snap
}
