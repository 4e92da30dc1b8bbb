package payments

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
)

const (
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
)

// BreakerParams tune the per-provider circuit breakers.
type BreakerParams struct {
	Logger      *logger.Logger
	MaxFailures uint32
	OpenTimeout time.Duration
}

// Breaker trips a provider's circuit after consecutive timeouts or outages.
// Declines are business outcomes and never count against the provider.
type Breaker struct {
	next   Gateway
	params BreakerParams

	mu       sync.Mutex
	breakers map[enums.PaymentProvider]*gobreaker.CircuitBreaker[Receipt]
}

func WithBreaker(next Gateway, params BreakerParams) *Breaker {
	if params.MaxFailures == 0 {
		params.MaxFailures = defaultBreakerFailures
	}
	if params.OpenTimeout <= 0 {
		params.OpenTimeout = defaultBreakerTimeout
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	return &Breaker{
		next:     next,
		params:   params,
		breakers: map[enums.PaymentProvider]*gobreaker.CircuitBreaker[Receipt]{},
	}
}

func (b *Breaker) Charge(ctx context.Context, req ChargeRequest) (Receipt, error) {
	cb := b.breakerFor(req.Provider)
	receipt, err := cb.Execute(func() (Receipt, error) {
		return b.next.Charge(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Receipt{}, Unavailable(req.Provider, "circuit open", err)
	}
	return receipt, err
}

// State reports the breaker state for provider.
func (b *Breaker) State(provider enums.PaymentProvider) gobreaker.State {
	return b.breakerFor(provider).State()
}

func (b *Breaker) breakerFor(provider enums.PaymentProvider) *gobreaker.CircuitBreaker[Receipt] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cb, ok := b.breakers[provider]; ok {
		return cb
	}
	maxFailures := b.params.MaxFailures
	cb := gobreaker.NewCircuitBreaker[Receipt](gobreaker.Settings{
		Name:        "payments." + provider.String(),
		MaxRequests: 1,
		Timeout:     b.params.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || KindOf(err) == KindDeclined
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			ctx := b.params.Logger.WithFields(context.Background(), map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			b.params.Logger.Warn(ctx, "payment circuit breaker state changed")
		},
	})
	b.breakers[provider] = cb
	return cb
}
