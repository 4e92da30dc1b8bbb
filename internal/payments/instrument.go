package payments

import (
	"context"
	"time"

	"github.com/angelmondragon/bookverse-backend/pkg/metrics"
)

const outcomeSuccess = "success"

// Instrumented records the outcome and latency of every charge.
type Instrumented struct {
	next    Gateway
	metrics *metrics.PaymentMetrics
	now     func() time.Time
}

func WithMetrics(next Gateway, m *metrics.PaymentMetrics) *Instrumented {
	return &Instrumented{next: next, metrics: m, now: time.Now}
}

func (i *Instrumented) Charge(ctx context.Context, req ChargeRequest) (Receipt, error) {
	start := i.now()
	receipt, err := i.next.Charge(ctx, req)
	outcome := outcomeSuccess
	if err != nil {
		outcome = string(KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	i.metrics.Observe(req.Provider.String(), outcome, i.now().Sub(start))
	return receipt, err
}
