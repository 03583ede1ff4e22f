// Package runtime assembles the process: configuration, logging, stores,
// providers, the HTTP server and background jobs.
package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	goredis "github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	app "github.com/berea-labs/study_layer/internal/app"
	"github.com/berea-labs/study_layer/internal/app/domain/entitlement"
	"github.com/berea-labs/study_layer/internal/app/generation"
	"github.com/berea-labs/study_layer/internal/app/httpapi"
	"github.com/berea-labs/study_layer/internal/app/search"
	"github.com/berea-labs/study_layer/internal/app/storage/memory"
	"github.com/berea-labs/study_layer/internal/app/storage/postgres"
	redisstore "github.com/berea-labs/study_layer/internal/app/storage/redis"
	"github.com/berea-labs/study_layer/internal/config"
	svcerrors "github.com/berea-labs/study_layer/internal/errors"
	"github.com/berea-labs/study_layer/internal/logging"
	"github.com/berea-labs/study_layer/internal/metrics"
	"github.com/berea-labs/study_layer/internal/middleware"
	"github.com/berea-labs/study_layer/internal/platform/revenuecat"
)

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg        *config.Config
	log        *logging.Logger
	app        *app.Application
	httpServer *http.Server
	janitor    *cron.Cron
	db         *sql.DB
	redis      *goredis.Client
}

// NewApplication constructs a new application instance with default wiring.
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewApplicationWithConfig(ctx, cfg)
}

// NewApplicationWithConfig constructs an application from an explicit config.
func NewApplicationWithConfig(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logging.New(cfg.Logging)

	stores, db, redisClient, err := buildStores(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("configure stores: %w", err)
	}

	providers, err := buildProviders(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("configure providers: %w", err)
	}

	application := app.New(stores, providers, log)

	m := metrics.New("study_layer")
	router := httpapi.NewHandler(application, m, log.Named("httpapi"))

	rl := middleware.NewRateLimiter(cfg.Limits.RequestsPerSecond, cfg.Limits.Burst, log.Named("ratelimit"))
	cors := middleware.NewCORSMiddleware(cfg.Server.AllowedOrigins)
	router.Use(
		cors.Handler,
		middleware.LoggingMiddleware(log.Named("http")),
		middleware.MetricsMiddleware("study_layer", m),
		middleware.IdentityMiddleware(),
		rl.Handler,
	)

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ModelTimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	janitor := cron.New()
	if _, err := janitor.AddFunc("@hourly", func() {
		purgeCtx, cancel := context.WithTimeout(context.Background(), cfg.StorageTimeout())
		defer cancel()
		purged, err := stores.Studies.PurgeExpired(purgeCtx, time.Now())
		if err != nil {
			log.WithError(err).Warnf("purging expired studies")
			return
		}
		if purged > 0 {
			log.Infof("purged %d expired studies", purged)
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule purge job: %w", err)
	}

	return &Application{
		cfg:        cfg,
		log:        log,
		app:        application,
		httpServer: httpSrv,
		janitor:    janitor,
		db:         db,
		redis:      redisClient,
	}, nil
}

// App exposes the composed services, mainly for tests.
func (a *Application) App() *app.Application { return a.app }

// Run starts the HTTP server and background jobs, blocking until the context
// is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	a.janitor.Start()

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("HTTP server listening on %s", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the server, background jobs and connections.
func (a *Application) Shutdown(ctx context.Context) error {
	timeout := time.Duration(a.cfg.Server.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	<-a.janitor.Stop().Done()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warnf("closing redis connection")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warnf("closing database connection")
		}
	}

	a.log.Sync()
	return nil
}

func buildStores(ctx context.Context, cfg *config.Config) (app.Stores, *sql.DB, *goredis.Client, error) {
	var stores app.Stores
	var db *sql.DB

	switch cfg.Database.Driver {
	case "", "memory":
		mem := memory.New()
		stores = app.Stores{Studies: mem, Notes: mem, Counters: mem}
	case "postgres":
		var err error
		db, err = openDatabase(ctx, cfg.Database)
		if err != nil {
			return app.Stores{}, nil, nil, err
		}
		store := postgres.New(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return app.Stores{}, nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		stores = app.Stores{Studies: store, Notes: store, Counters: store}
	default:
		return app.Stores{}, nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			if db != nil {
				db.Close()
			}
			return app.Stores{}, nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		stores.Counters = redisstore.NewCounter(redisClient, "")
	}

	return stores, db, redisClient, nil
}

func buildProviders(ctx context.Context, cfg *config.Config, log *logging.Logger) (app.Providers, error) {
	providers := app.Providers{ModelTimeout: cfg.ModelTimeout()}

	if cfg.Model.APIKey == "" {
		return app.Providers{}, fmt.Errorf("model api key is required")
	}
	invoker, err := generation.NewGeminiInvoker(ctx, cfg.Model.APIKey, cfg.Model.Model)
	if err != nil {
		return app.Providers{}, fmt.Errorf("configure model client: %w", err)
	}
	providers.Invoker = invoker

	if cfg.Search.Endpoint != "" {
		providers.SearchIndex = search.NewClient(search.Config{
			Endpoint: cfg.Search.Endpoint,
			Index:    cfg.Search.Index,
			APIKey:   cfg.Search.APIKey,
			Timeout:  cfg.StorageTimeout(),
		})
	} else {
		log.Warnf("search endpoint not configured; mentor answers use notes only")
	}

	if cfg.Purchases.BaseURL != "" && cfg.Purchases.APIKey != "" {
		rc, err := revenuecat.New(revenuecat.Config{
			BaseURL: cfg.Purchases.BaseURL,
			APIKey:  cfg.Purchases.APIKey,
			Timeout: cfg.StorageTimeout(),
		})
		if err != nil {
			return app.Providers{}, fmt.Errorf("configure purchase provider: %w", err)
		}
		providers.Purchases = rc
	} else {
		log.Warnf("purchase provider not configured; all subscription checks will fail closed")
		providers.Purchases = unconfiguredPurchases{}
	}

	return providers, nil
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn not configured")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// unconfiguredPurchases rejects every provider call. With it in place the
// subscription check always fails closed, so only the free tier is usable.
type unconfiguredPurchases struct{}

func (unconfiguredPurchases) GetCustomerInfo(context.Context, string) (entitlement.CustomerInfo, error) {
	return entitlement.CustomerInfo{}, fmt.Errorf("purchase provider not configured")
}

func (unconfiguredPurchases) GetOfferings(context.Context, string) ([]entitlement.Package, error) {
	return nil, svcerrors.ProviderUnavailable("purchases", fmt.Errorf("not configured"))
}

func (unconfiguredPurchases) Purchase(context.Context, string, string, string) (entitlement.CustomerInfo, error) {
	return entitlement.CustomerInfo{}, fmt.Errorf("purchase provider not configured")
}

func (unconfiguredPurchases) Restore(context.Context, string) (entitlement.CustomerInfo, error) {
	return entitlement.CustomerInfo{}, fmt.Errorf("purchase provider not configured")
}
