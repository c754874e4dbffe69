package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cafefusion/backend/internal/domain/auth"
	"github.com/cafefusion/backend/internal/domain/event"
	"github.com/cafefusion/backend/internal/domain/menu"
	"github.com/cafefusion/backend/internal/domain/order"
	"github.com/cafefusion/backend/internal/domain/user"
	"github.com/cafefusion/backend/internal/handler"
	"github.com/cafefusion/backend/internal/notify"
	"github.com/cafefusion/backend/internal/storage/postgres"
	"github.com/cafefusion/backend/pkg/health"
	"github.com/cafefusion/backend/pkg/httpmiddleware"
)

// API is the assembled HTTP application.
type API struct {
	Handler http.Handler
	Health  *health.Health
	Limiter *httpmiddleware.Limiter

	closers []func() error
}

// Close releases resources opened by NewAPI.
// The first error is returned; every closer runs regardless.
func (a *API) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewAPI wires repositories, domain services and HTTP routes on top of pool.
// Background work is not started.
func NewAPI(ctx context.Context, lg *zap.Logger, tel httpmiddleware.Telemetry, cfg *Config, pool *pgxpool.Pool) (*API, error) {
	a := &API{}

	// Health check service.
	a.Health = health.New(lg.Named("health"))
	a.Health.Register(health.Readiness, "postgres", health.Ping(pool), health.WithTimeout(5*time.Second))
	a.Health.Register(health.Liveness, "goroutines", health.GoroutineCount(10000))

	// Domain services.
	tokens, err := auth.NewTokens([]byte(cfg.JWT.Secret), cfg.JWT.Issuer, cfg.JWT.TTL)
	if err != nil {
		return nil, errors.Wrap(err, "create token issuer")
	}
	menuService := menu.NewService(postgres.NewMenuRepository(pool))
	eventService := event.NewService(postgres.NewEventRepository(pool), time.Now)
	userService := user.NewService(postgres.NewUserRepository(pool), tokens,
		user.WithAdminSignup(cfg.AllowAdminSignup),
	)

	orderOpts := []order.Option{
		order.WithTracerProvider(tel.TracerProvider()),
		order.WithMeterProvider(tel.MeterProvider()),
	}
	if cfg.Kafka.Brokers != "" {
		publisher := notify.NewPublisher(notify.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		a.closers = append(a.closers, publisher.Close)
		orderOpts = append(orderOpts, order.WithNotifier(publisher))
		lg.Info("Publishing order status changes",
			zap.String("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}
	orderService, err := order.NewService(menuService, postgres.NewOrderStore(pool), orderOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "create order service")
	}

	trusted, err := httpmiddleware.ParsePrefixes(cfg.RateLimit.TrustedProxies)
	if err != nil {
		return nil, errors.Wrap(err, "parse trusted proxies")
	}
	a.Limiter = httpmiddleware.NewLimiter(httpmiddleware.RateLimitConfig{
		Rate:           cfg.RateLimit.Rate,
		Per:            cfg.RateLimit.Per,
		TrustedProxies: trusted,
	})

	// Health endpoints + API routes on one router.
	h := handler.New(handler.Config{
		Orders:       orderService,
		Menu:         menuService,
		Events:       eventService,
		Users:        userService,
		Tokens:       tokens,
		LoginLimiter: a.Limiter.Middleware(),
	})
	routes := h.Routes(func(r chi.Router) {
		r.Get("/livez", a.Health.LiveEndpoint)
		r.Get("/readyz", a.Health.ReadyEndpoint)
	})

	a.Handler = httpmiddleware.Wrap(routes,
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:  cfg.CORS.Origins,
			AllowHeaders:  []string{"Content-Type", "Authorization", httpmiddleware.RequestIDHeader},
			ExposeHeaders: []string{httpmiddleware.RequestIDHeader, "Retry-After"},
			MaxAge:        86400,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.Instrument("cafe-api", tel),
	)
	return a, nil
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	api, err := NewAPI(ctx, lg, m, cfg, pool)
	if err != nil {
		return err
	}
	defer func() {
		if err := api.Close(); err != nil {
			lg.Warn("Close API resources", zap.Error(err))
		}
	}()
	api.Health.Start(ctx, 10*time.Second)
	api.Health.SetReady(true)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           api.Handler,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		api.Limiter.Run(gctx)
		return nil
	})

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	g.Go(func() error {
		<-gctx.Done()
		api.Health.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		api.Health.Stop()
		return nil
	})

	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	return g.Wait()
}
