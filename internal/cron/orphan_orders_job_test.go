package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/bookverse-backend/internal/orders"
	"github.com/angelmondragon/bookverse-backend/pkg/db/models"
	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
)

type fakeOrphanStore struct {
	pending   []models.Order
	cutoff    time.Time
	limit     int
	failFor   string
	settled   string
	cancelled map[string]orders.Patch
}

func (f *fakeOrphanStore) FindPendingBefore(_ context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	f.cutoff = cutoff
	f.limit = limit
	return f.pending, nil
}

func (f *fakeOrphanStore) Update(_ context.Context, orderID string, patch orders.Patch) (*models.Order, error) {
	if orderID == f.failFor {
		return nil, errors.New("write failed")
	}
	if orderID == f.settled && patch.OnlyPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer pending")
	}
	if f.cancelled == nil {
		f.cancelled = map[string]orders.Patch{}
	}
	f.cancelled[orderID] = patch
	return &models.Order{OrderID: orderID}, nil
}

func TestOrphanOrdersJobCancelsStalePendingOrders(t *testing.T) {
	store := &fakeOrphanStore{pending: []models.Order{{OrderID: "ORD-1"}, {OrderID: "ORD-2"}}}
	job, err := NewOrphanOrdersJob(OrphanOrdersJobParams{Logger: logger.Nop(), Orders: store, MaxAge: 2 * time.Hour, BatchSize: 50})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	job.(*orphanOrdersJob).now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !store.cutoff.Equal(now.Add(-2*time.Hour)) || store.limit != 50 {
		t.Fatalf("unexpected query cutoff=%s limit=%d", store.cutoff, store.limit)
	}
	if len(store.cancelled) != 2 {
		t.Fatalf("expected 2 cancellations, got %d", len(store.cancelled))
	}
	patch := store.cancelled["ORD-1"]
	if *patch.PaymentStatus != enums.PaymentStatusFailed || *patch.Status != enums.OrderStatusCancelled || *patch.FailureReason != "orphaned" {
		t.Fatalf("unexpected patch %+v", patch)
	}
}

func TestOrphanOrdersJobContinuesPastFailures(t *testing.T) {
	store := &fakeOrphanStore{
		pending: []models.Order{{OrderID: "ORD-1"}, {OrderID: "ORD-2"}, {OrderID: "ORD-3"}},
		failFor: "ORD-2",
	}
	job, _ := NewOrphanOrdersJob(OrphanOrdersJobParams{Logger: logger.Nop(), Orders: store})

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if len(store.cancelled) != 2 {
		t.Fatalf("expected the remaining orders cancelled, got %d", len(store.cancelled))
	}
	if job.Name() != "orphan-orders" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
}

func TestNewOrphanOrdersJobValidatesParams(t *testing.T) {
	if _, err := NewOrphanOrdersJob(OrphanOrdersJobParams{Orders: &fakeOrphanStore{}}); err == nil {
		t.Fatal("expected logger error")
	}
	if _, err := NewOrphanOrdersJob(OrphanOrdersJobParams{Logger: logger.Nop()}); err == nil {
		t.Fatal("expected orders error")
	}
}

func TestOrphanOrdersJobSkipsOrdersSettledMeanwhile(t *testing.T) {
	store := &fakeOrphanStore{
		pending: []models.Order{{OrderID: "ORD-1"}, {OrderID: "ORD-2"}},
		settled: "ORD-2",
	}
	job, _ := NewOrphanOrdersJob(OrphanOrdersJobParams{Logger: logger.Nop(), Orders: store})

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("a settled order must not fail the sweep: %v", err)
	}
	if _, ok := store.cancelled["ORD-2"]; ok {
		t.Fatal("settled order must not be cancelled")
	}
	if !store.cancelled["ORD-1"].OnlyPending {
		t.Fatal("orphan patch must be guarded on pending state")
	}
}
