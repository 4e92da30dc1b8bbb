package payments

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/bookverse-backend/pkg/config"
	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
	"github.com/angelmondragon/bookverse-backend/pkg/metrics"
)

const (
	GatewayModeRandom = "random"
	GatewayModeFixed  = "fixed"
)

// Params assemble the production gateway chain.
type Params struct {
	Config  config.PaymentsConfig
	Timeout time.Duration
	Logger  *logger.Logger
	Metrics *metrics.PaymentMetrics
}

// New builds metrics -> breaker -> timeout -> router -> provider stubs.
func New(params Params) (Gateway, error) {
	routes := map[enums.PaymentProvider]Gateway{}
	for _, provider := range []enums.PaymentProvider{enums.PaymentProviderAirtel, enums.PaymentProviderMTN} {
		gw, err := providerGateway(params.Config)
		if err != nil {
			return nil, err
		}
		routes[provider] = gw
	}
	router, err := NewRouter(routes)
	if err != nil {
		return nil, err
	}
	var gw Gateway = WithTimeout(router, params.Timeout)
	gw = WithBreaker(gw, BreakerParams{
		Logger:      params.Logger,
		MaxFailures: params.Config.BreakerMaxFailures,
		OpenTimeout: params.Config.BreakerOpenTimeout,
	})
	return WithMetrics(gw, params.Metrics), nil
}

func providerGateway(cfg config.PaymentsConfig) (Gateway, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Gateway)) {
	case GatewayModeRandom, "":
		return NewRandomGateway(RandomGatewayParams{SuccessRate: cfg.SuccessRate, Delay: cfg.SimulatedDelay})
	case GatewayModeFixed:
		return NewFixedGateway(nil).WithDelay(cfg.SimulatedDelay), nil
	default:
		return nil, fmt.Errorf("unknown payment gateway mode %q", cfg.Gateway)
	}
}
