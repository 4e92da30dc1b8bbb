package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/bookverse-backend/pkg/db"
	"github.com/angelmondragon/bookverse-backend/pkg/db/models"
	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
	"github.com/angelmondragon/bookverse-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = enums.PaymentStatusPending
	}
	if order.Status == "" {
		order.Status = enums.OrderStatusPending
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order id already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create order")
	}
	return order, nil
}

func (r *repository) Update(ctx context.Context, orderID string, patch Patch) (*models.Order, error) {
	updates := patch.updates()
	if len(updates) > 0 {
		updates["updated_at"] = time.Now().UTC()
		query := r.db.WithContext(ctx).Model(&models.Order{}).Where("order_id = ?", orderID)
		if patch.OnlyPending {
			query = query.Where("payment_status = ? AND status = ?", enums.PaymentStatusPending, enums.OrderStatusPending)
		}
		result := query.Updates(updates)
		if result.Error != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, result.Error, "update order")
		}
		if result.RowsAffected == 0 {
			return nil, r.missedUpdate(ctx, orderID, patch)
		}
	}
	return r.FindByOrderID(ctx, orderID)
}

// missedUpdate tells a missing order apart from one a guarded patch skipped.
func (r *repository) missedUpdate(ctx context.Context, orderID string, patch Patch) error {
	if !patch.OnlyPending {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	current, err := r.FindByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer pending").
		WithDetails(map[string]any{"orderId": orderID, "state": string(current.PaymentStatus)})
}

func (r *repository) FindByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load order")
	}
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string, limit int, cursor *pagination.Cursor) ([]models.Order, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(limit)
	query := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	if cursor != nil {
		query = query.Where("(created_at < ? OR (created_at = ? AND id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&rows).Error; err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list orders")
	}
	if len(rows) > normalized {
		last := rows[normalized-1]
		return rows[:normalized], &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

func (r *repository) ListRecent(ctx context.Context, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list recent orders")
	}
	return rows, nil
}

// FindPendingBefore returns orders still pending/pending that were created
// before cutoff, oldest first.
func (r *repository) FindPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Where("payment_status = ? AND status = ? AND created_at < ?", enums.PaymentStatusPending, enums.OrderStatusPending, cutoff).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.Order
	if err := query.Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "find pending orders")
	}
	return rows, nil
}
