package orders

import (
	"context"
	"time"

	"github.com/angelmondragon/bookverse-backend/pkg/db/models"
	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	"github.com/angelmondragon/bookverse-backend/pkg/pagination"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	Update(ctx context.Context, orderID string, patch Patch) (*models.Order, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string, limit int, cursor *pagination.Cursor) ([]models.Order, *pagination.Cursor, error)
	ListRecent(ctx context.Context, limit int) ([]models.Order, error)
	FindPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}

// Patch lists the mutable order fields. Nil fields are left untouched.
// OnlyPending restricts the write to orders still pending/pending.
type Patch struct {
	PaymentStatus *enums.PaymentStatus
	Status        *enums.OrderStatus
	TransactionID *string
	FailureReason *string
	OnlyPending   bool
}

func (p Patch) updates() map[string]any {
	updates := map[string]any{}
	if p.PaymentStatus != nil {
		updates["payment_status"] = *p.PaymentStatus
	}
	if p.Status != nil {
		updates["status"] = *p.Status
	}
	if p.TransactionID != nil {
		updates["transaction_id"] = *p.TransactionID
	}
	if p.FailureReason != nil {
		updates["failure_reason"] = *p.FailureReason
	}
	return updates
}

// Settled builds the patch for a confirmed charge.
func Settled(transactionID string) Patch {
	paid := enums.PaymentStatusPaid
	completed := enums.OrderStatusCompleted
	return Patch{PaymentStatus: &paid, Status: &completed, TransactionID: &transactionID}
}

// Failed builds the patch for a declined, timed out or aborted charge. It
// never overwrites an order that has already settled.
func Failed(reason string) Patch {
	failed := enums.PaymentStatusFailed
	cancelled := enums.OrderStatusCancelled
	return Patch{PaymentStatus: &failed, Status: &cancelled, FailureReason: &reason, OnlyPending: true}
}
