package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/bookverse-backend/pkg/enums"
)

type fakeKV struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}


func (f *fakeKV) CartKey(owner string) string { return "bv:cart:" + owner }

func TestRedisPersisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	persister, err := NewRedisPersister(kv, time.Hour)
	if err != nil {
		t.Fatalf("new persister: %v", err)
	}

	store := NewStore(nil)
	store.AddItem(ctx, purchaseOf("42", 2, 1000))
	snap := store.AddItem(ctx, borrowOf("7", 1, 500))

	if err := persister.Save(ctx, "session:abc", snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	if kv.ttls["bv:cart:session:abc"] != time.Hour {
		t.Fatalf("expected ttl to be applied, got %v", kv.ttls)
	}

	loaded, found, err := persister.Load(ctx, "session:abc")
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if loaded.Version() != snap.Version() || loaded.Len() != 2 {
		t.Fatalf("unexpected loaded snapshot %+v", loaded)
	}
	line, _ := loaded.Get(Key{ItemID: "7", Mode: enums.AcquisitionModeBorrow})
	if line.UnitPrice != 500 || line.Quantity != 1 {
		t.Fatalf("unexpected borrow line %+v", line)
	}
}

func TestRedisPersisterMissingAndErrors(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	persister, _ := NewRedisPersister(kv, time.Hour)

	if _, found, err := persister.Load(ctx, "session:none"); err != nil || found {
		t.Fatalf("missing carts should load as not found, found=%v err=%v", found, err)
	}

	kv.data["bv:cart:session:bad"] = "{not json"
	if _, _, err := persister.Load(ctx, "session:bad"); err == nil {
		t.Fatal("expected decode error")
	}

	kv.getErr = errors.New("connection refused")
	if _, _, err := persister.Load(ctx, "session:abc"); err == nil {
		t.Fatal("expected redis error to surface")
	}

	if _, err := NewRedisPersister(nil, time.Hour); err == nil {
		t.Fatal("expected nil store to be rejected")
	}
}
