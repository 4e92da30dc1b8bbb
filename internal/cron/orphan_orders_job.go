package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/bookverse-backend/internal/orders"
	"github.com/angelmondragon/bookverse-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
)

const (
	orphanJobName       = "orphan-orders"
	orphanFailureReason = "orphaned"
	defaultOrphanAge    = time.Hour
	defaultOrphanBatch  = 200
)

type orphanOrderStore interface {
	FindPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
	Update(ctx context.Context, orderID string, patch orders.Patch) (*models.Order, error)
}

// OrphanOrdersJobParams configure the orphaned order sweep.
type OrphanOrdersJobParams struct {
	Logger    *logger.Logger
	Orders    orphanOrderStore
	MaxAge    time.Duration
	BatchSize int
}

// NewOrphanOrdersJob builds the job that cancels orders whose charge never
// settled, typically because the process died mid-checkout.
func NewOrphanOrdersJob(params OrphanOrdersJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	maxAge := params.MaxAge
	if maxAge <= 0 {
		maxAge = defaultOrphanAge
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultOrphanBatch
	}
	return &orphanOrdersJob{
		logg:   params.Logger,
		orders: params.Orders,
		maxAge: maxAge,
		batch:  batch,
		now:    time.Now,
	}, nil
}

type orphanOrdersJob struct {
	logg   *logger.Logger
	orders orphanOrderStore
	maxAge time.Duration
	batch  int
	now    func() time.Time
}

func (j *orphanOrdersJob) Name() string { return orphanJobName }

func (j *orphanOrdersJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.maxAge)
	pending, err := j.orders.FindPendingBefore(ctx, cutoff, j.batch)
	if err != nil {
		return fmt.Errorf("query orphaned orders: %w", err)
	}

	var errs error
	cancelled, skipped := 0, 0
	for _, order := range pending {
		orderCtx := j.logg.WithOrderID(ctx, order.OrderID)
		_, err := j.orders.Update(orderCtx, order.OrderID, orders.Failed(orphanFailureReason))
		switch {
		case pkgerrors.HasCode(err, pkgerrors.CodeStateConflict):
			skipped++
			j.logg.Debug(orderCtx, "orphan candidate settled before sweep")
			continue
		case err != nil:
			errs = multierr.Append(errs, fmt.Errorf("cancel order %s: %w", order.OrderID, err))
			continue
		}
		cancelled++
		j.logg.Debug(orderCtx, "orphaned order cancelled")
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"found":     len(pending),
		"cancelled": cancelled,
		"skipped":   skipped,
		"cutoff":    cutoff.Format(time.RFC3339),
	}), "orphan order sweep finished")
	return errs
}
