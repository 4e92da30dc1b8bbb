package payments

import (
	"context"
	"sync"
	"time"
)

// FixedGateway always returns the same outcome. It records every request so
// tests can assert on what was charged.
type FixedGateway struct {
	outcome error
	delay   time.Duration
	now     func() time.Time

	mu    sync.Mutex
	calls []ChargeRequest
}

// NewFixedGateway succeeds when outcome is nil and fails with outcome otherwise.
func NewFixedGateway(outcome error) *FixedGateway {
	return &FixedGateway{outcome: outcome, now: time.Now}
}

// WithDelay makes each charge wait d (or until ctx ends) before answering.
func (g *FixedGateway) WithDelay(d time.Duration) *FixedGateway {
	g.delay = d
	return g
}

func (g *FixedGateway) Charge(ctx context.Context, req ChargeRequest) (Receipt, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	g.mu.Unlock()

	if err := wait(ctx, g.delay); err != nil {
		return Receipt{}, classifyContextErr(req, err)
	}
	if g.outcome != nil {
		return Receipt{}, g.outcome
	}
	now := g.now()
	return Receipt{TransactionID: transactionID(req.Provider, now), Provider: req.Provider, ProcessedAt: now}, nil
}

// Calls returns the requests seen so far.
func (g *FixedGateway) Calls() []ChargeRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]ChargeRequest, len(g.calls))
	copy(out, g.calls)
	return out
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
