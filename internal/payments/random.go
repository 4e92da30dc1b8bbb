package payments

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

const declineReason = "payment declined by provider"

// RandomGatewayParams configure the simulated provider.
type RandomGatewayParams struct {
	SuccessRate float64
	Delay       time.Duration
	Seed        uint64
}

// RandomGateway simulates a mobile money provider: it waits Delay and then
// succeeds with probability SuccessRate.
type RandomGateway struct {
	successRate float64
	delay       time.Duration
	now         func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomGateway(params RandomGatewayParams) (*RandomGateway, error) {
	if params.SuccessRate < 0 || params.SuccessRate > 1 {
		return nil, fmt.Errorf("success rate must be within [0,1], got %v", params.SuccessRate)
	}
	seed := params.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomGateway{
		successRate: params.SuccessRate,
		delay:       params.Delay,
		now:         time.Now,
		rng:         rand.New(rand.NewPCG(seed, seed>>1|1)),
	}, nil
}

func (g *RandomGateway) Charge(ctx context.Context, req ChargeRequest) (Receipt, error) {
	if err := wait(ctx, g.delay); err != nil {
		return Receipt{}, classifyContextErr(req, err)
	}
	if !g.roll() {
		return Receipt{}, Declined(req.Provider, declineReason)
	}
	now := g.now()
	return Receipt{TransactionID: transactionID(req.Provider, now), Provider: req.Provider, ProcessedAt: now}, nil
}

func (g *RandomGateway) roll() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64() < g.successRate
}
