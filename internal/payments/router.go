package payments

import (
	"context"
	"fmt"

	"github.com/angelmondragon/bookverse-backend/pkg/enums"
)

// Router dispatches charges to the gateway registered for the provider.
type Router struct {
	routes map[enums.PaymentProvider]Gateway
}

func NewRouter(routes map[enums.PaymentProvider]Gateway) (*Router, error) {
	if len(routes) == 0 {
		return nil, fmt.Errorf("at least one provider route required")
	}
	copied := make(map[enums.PaymentProvider]Gateway, len(routes))
	for provider, gw := range routes {
		if !provider.IsValid() {
			return nil, fmt.Errorf("unknown payment provider %q", provider)
		}
		if gw == nil {
			return nil, fmt.Errorf("gateway for %s is nil", provider)
		}
		copied[provider] = gw
	}
	return &Router{routes: copied}, nil
}

func (r *Router) Charge(ctx context.Context, req ChargeRequest) (Receipt, error) {
	gw, ok := r.routes[req.Provider]
	if !ok {
		return Receipt{}, Unavailable(req.Provider, "no gateway configured for provider", nil)
	}
	return gw.Charge(ctx, req)
}
