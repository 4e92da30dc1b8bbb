package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/bookverse-backend/api/routes"
	"github.com/angelmondragon/bookverse-backend/internal/auth"
	"github.com/angelmondragon/bookverse-backend/internal/cart"
	"github.com/angelmondragon/bookverse-backend/internal/catalog"
	"github.com/angelmondragon/bookverse-backend/internal/checkout"
	"github.com/angelmondragon/bookverse-backend/internal/events"
	"github.com/angelmondragon/bookverse-backend/internal/orders"
	"github.com/angelmondragon/bookverse-backend/internal/payments"
	"github.com/angelmondragon/bookverse-backend/pkg/config"
	"github.com/angelmondragon/bookverse-backend/pkg/db"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
	"github.com/angelmondragon/bookverse-backend/pkg/metrics"
	"github.com/angelmondragon/bookverse-backend/pkg/migrate"
	"github.com/angelmondragon/bookverse-backend/pkg/money"
	"github.com/angelmondragon/bookverse-backend/pkg/phone"
	"github.com/angelmondragon/bookverse-backend/pkg/pubsub"
	"github.com/angelmondragon/bookverse-backend/pkg/redis"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 15 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "api server shut down gracefully")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	currency, err := money.ParseCurrency(cfg.Checkout.Currency)
	if err != nil {
		return err
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sinks := []events.Sink{events.NewStoreSink(dbClient.DB())}
	if cfg.Events.PublishEnabled {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return err
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub client", err)
			}
		}()
		publishSink, err := events.NewPublishSink(pubsubClient.AnalyticsPublisher())
		if err != nil {
			return err
		}
		sinks = append(sinks, publishSink)
	}

	emitter, err := events.NewAsyncEmitter(events.AsyncEmitterParams{
		Logger:      logg,
		Sinks:       sinks,
		Metrics:     metrics.NewEventMetrics(reg),
		QueueSize:   cfg.Events.QueueSize,
		Workers:     cfg.Events.Workers,
		SinkTimeout: cfg.Events.SinkTimeout,
	})
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		JWTConfig:    cfg.JWT,
		AdminUserIDs: cfg.Admin.UserIDs,
	})
	if err != nil {
		return err
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())

	persister, err := cart.NewRedisPersister(redisClient, cfg.Cart.TTL)
	if err != nil {
		return err
	}
	cartRegistry, err := cart.NewRegistry(cart.RegistryParams{
		Logger:    logg,
		Persister: persister,
		IdleTTL:   cfg.Checkout.SessionTTL,
	})
	if err != nil {
		return err
	}
	cartService, err := cart.NewService(cart.ServiceParams{
		Registry:  cartRegistry,
		Catalog:   catalogRepo,
		Emitter:   emitter,
		BorrowFee: money.Money(cfg.Checkout.BorrowFeeMinor),
	})
	if err != nil {
		return err
	}

	gateway, err := payments.New(payments.Params{
		Config:  cfg.Payments,
		Timeout: cfg.Checkout.ProviderTimeout,
		Logger:  logg,
		Metrics: metrics.NewPaymentMetrics(reg),
	})
	if err != nil {
		return err
	}

	normalizer, err := phone.NewNormalizer(cfg.Checkout.CountryCode)
	if err != nil {
		return err
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersService, err := orders.NewService(ordersRepo)
	if err != nil {
		return err
	}

	sessions := checkout.NewManager(cfg.Checkout.SessionTTL)
	orchestrator, err := checkout.NewOrchestrator(checkout.Params{
		Logger:             logg,
		Carts:              cartService,
		Orders:             ordersRepo,
		Gateway:            gateway,
		Emitter:            emitter,
		Phone:              normalizer,
		OrderIDs:           orders.NewIDGenerator(),
		Sessions:           sessions,
		Locks:              checkout.RedisLocks(redisClient, cfg.Checkout.SubmitLockTTL),
		Metrics:            metrics.NewCheckoutMetrics(reg),
		Currency:           currency,
		BorrowDurationDays: cfg.Checkout.BorrowDurationDays,
		ProviderTimeout:    cfg.Checkout.ProviderTimeout,
	})
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"currency": string(currency),
		"gateway":  cfg.Payments.Gateway,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Gatherer:    reg,
			HTTPMetrics: metrics.NewHTTPMetrics(reg),
			Auth:        authService,
			Catalog:     catalogRepo,
			Carts:       cartService,
			Checkout:    orchestrator,
			Orders:      ordersService,
			Emitter:     emitter,
			Ingest:      events.NewIngestService(emitter),
			Currency:    currency,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		cartRegistry.RunSweeper(groupCtx, sweepInterval)
		return nil
	})
	group.Go(func() error {
		sessions.RunSweeper(groupCtx, sweepInterval)
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logg.Info(logCtx, "shutting down api server")
		err := server.Shutdown(shutdownCtx)
		if drainErr := emitter.Close(shutdownCtx); drainErr != nil {
			logg.Warn(logg.WithField(logCtx, "error", drainErr.Error()), "analytics queue not fully drained")
		}
		return err
	})

	return group.Wait()
}
