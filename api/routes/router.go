package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/bookverse-backend/api/controllers"
	"github.com/angelmondragon/bookverse-backend/api/middleware"
	"github.com/angelmondragon/bookverse-backend/internal/auth"
	"github.com/angelmondragon/bookverse-backend/internal/cart"
	"github.com/angelmondragon/bookverse-backend/internal/catalog"
	"github.com/angelmondragon/bookverse-backend/internal/checkout"
	"github.com/angelmondragon/bookverse-backend/internal/events"
	"github.com/angelmondragon/bookverse-backend/internal/orders"
	"github.com/angelmondragon/bookverse-backend/pkg/config"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
	"github.com/angelmondragon/bookverse-backend/pkg/metrics"
	"github.com/angelmondragon/bookverse-backend/pkg/money"
	pkgredis "github.com/angelmondragon/bookverse-backend/pkg/redis"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Params carries everything the HTTP surface depends on. Nil services make
// their routes answer with an internal error; a nil Redis disables
// idempotency replay and rate limiting.
type Params struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       *pkgredis.Client
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
	Auth        auth.Service
	Catalog     catalog.Repository
	Carts       cart.Service
	Checkout    checkout.Service
	Orders      orders.Service
	Emitter     events.Emitter
	Ingest      *events.IngestService
	Currency    money.Currency
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	var (
		idempotencyStore pkgredis.IdempotencyStore
		limiter          rateLimiter
		ready            = map[string]controllers.Pinger{"db": p.DB}
	)
	if p.Redis != nil {
		idempotencyStore = p.Redis
		limiter = p.Redis
		ready["redis"] = p.Redis
	}
	var emitter events.Emitter = events.NopEmitter{}
	if p.Emitter != nil {
		emitter = p.Emitter
	}
	ingest := p.Ingest
	if ingest == nil {
		ingest = events.NewIngestService(emitter)
	}
	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg, p.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.ClientInfo(),
		middleware.OptionalAuth(p.Auth, logg),
		middleware.CartSession(cfg.App.IsProd(), logg),
	)

	eventsPolicy := middleware.NewRateLimitPolicy("events", cfg.Events.IngestWindow, cfg.Events.IngestLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, ready))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/books", controllers.BooksList(p.Catalog, emitter, logg))
		r.Get("/books/{bookId}", controllers.BookDetail(p.Catalog, emitter, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartView(p.Carts, p.Currency, logg))
			r.Delete("/", controllers.CartClear(p.Carts, p.Currency, logg))
			r.Post("/items", controllers.CartAddItem(p.Carts, p.Currency, logg))
			r.Put("/items/{itemId}/{mode}", controllers.CartUpdateItem(p.Carts, p.Currency, logg))
			r.Delete("/items/{itemId}/{mode}", controllers.CartRemoveItem(p.Carts, p.Currency, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutView(p.Checkout, p.Carts, logg))
			r.Post("/open", controllers.CheckoutOpen(p.Checkout, p.Carts, logg))
			r.Post("/provider", controllers.CheckoutSelectProvider(p.Checkout, p.Carts, logg))
			r.Post("/phone", controllers.CheckoutEnterPhone(p.Checkout, p.Carts, logg))
			r.With(
				middleware.RequireAuth(logg),
				middleware.Idempotency(idempotencyStore, logg),
			).Post("/submit", controllers.CheckoutSubmit(p.Checkout, p.Carts, logg))
		})
		r.With(
			middleware.RequireAuth(logg),
			middleware.Idempotency(idempotencyStore, logg),
		).Post("/payment", controllers.Payment(p.Checkout, p.Carts, logg))

		r.With(middleware.RequireAuth(logg)).Get("/orders", controllers.OrdersList(p.Orders, logg))

		r.With(middleware.RateLimit(eventsPolicy, limiter, logg)).Post("/events", controllers.EventsIngest(ingest, logg))

		r.Route("/admin", func(r chi.Router) {
			r.With(middleware.RequireAuth(logg)).Get("/check-status", controllers.AdminCheckStatus(p.Auth, logg))
			r.With(middleware.RequireAdmin(p.Auth, logg)).Get("/transactions", controllers.AdminTransactions(p.Orders, logg))
		})
	})

	return r
}
