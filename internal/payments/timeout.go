package payments

import (
	"context"
	"errors"
	"time"
)

type chargeResult struct {
	receipt Receipt
	err     error
}

// Timeout bounds every charge by d. The bound holds even when the wrapped
// gateway ignores ctx; a late result is discarded.
type Timeout struct {
	next Gateway
	d    time.Duration
}

func WithTimeout(next Gateway, d time.Duration) *Timeout {
	return &Timeout{next: next, d: d}
}

func (t *Timeout) Charge(ctx context.Context, req ChargeRequest) (Receipt, error) {
	if t.d <= 0 {
		return t.next.Charge(ctx, req)
	}
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	done := make(chan chargeResult, 1)
	go func() {
		receipt, err := t.next.Charge(ctx, req)
		done <- chargeResult{receipt: receipt, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && KindOf(res.err) == "" {
			return Receipt{}, classifyContextErr(req, res.err)
		}
		return res.receipt, res.err
	case <-ctx.Done():
		return Receipt{}, classifyContextErr(req, ctx.Err())
	}
}

func classifyContextErr(req ChargeRequest, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return TimedOut(req.Provider, err)
	}
	return Unavailable(req.Provider, "charge aborted", err)
}
