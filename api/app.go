package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/winterop-com/servicekit-sub001/db"
	"github.com/winterop-com/servicekit-sub001/middleware"
	"github.com/winterop-com/servicekit-sub001/scheduler"
)

// DefaultListenAddr is where Run binds unless overridden.
const DefaultListenAddr = "0.0.0.0:8000"

const shutdownTimeout = 10 * time.Second

// Application is a fully assembled service. It is produced by
// Builder.Build and immutable afterwards.
type Application struct {
	info       Info
	listenAddr string
	logger     *slog.Logger
	router     chi.Router

	sqldb     *sql.DB
	scheduler *scheduler.Scheduler
	history   *scheduler.History

	checks        []Check
	systemEnabled bool
	metrics       *metricsRegistry
	apps          []StaticApp

	startupHooks  []Hook
	shutdownHooks []Hook

	closeOnce sync.Once
	closeErr  error
}

// newApplication opens resources and wires the router from a validated
// builder.
func newApplication(b *Builder) (*Application, error) {
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &Application{
		info:          b.info,
		listenAddr:    b.listenAddr,
		logger:        logger,
		systemEnabled: b.systemEnabled,
		apps:          dedupeApps(b.apps),
		startupHooks:  b.startupHooks,
		shutdownHooks: b.shutdownHooks,
	}
	if a.listenAddr == "" {
		a.listenAddr = DefaultListenAddr
	}

	if b.databaseEnabled {
		sqldb, err := db.Open(b.dsn)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.sqldb = sqldb
		// Migrations carry the job history schema; they are SQLite-only.
		if !strings.HasPrefix(b.dsn, db.DuckDBPrefix) {
			if err := db.RunMigrations(sqldb); err != nil {
				_ = sqldb.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
			a.history = scheduler.NewHistory(sqldb)
		}
	}

	if b.healthEnabled {
		a.checks = b.checks
		if a.sqldb != nil {
			a.checks = append(a.checks, databaseCheck(a.sqldb.PingContext))
		}
	}

	if b.jobsEnabled {
		opts := []scheduler.Option{scheduler.WithLogger(logger)}
		if a.history != nil {
			opts = append(opts, scheduler.WithHistory(a.history))
		}
		a.scheduler = scheduler.New(b.maxConcurrency, opts...)
	}

	if b.monitoringEnabled {
		a.metrics = newMetricsRegistry(b.info.Name)
	}

	var authMw func(http.Handler) http.Handler
	if b.authEnabled {
		keys, err := resolveAPIKeys(b.auth)
		if err != nil {
			a.closeResources()
			return nil, err
		}
		open := map[string]struct{}{
			"/":              {},
			"/health":        {},
			"/health/stream": {},
			"/metrics":       {},
		}
		for _, path := range b.auth.UnauthenticatedPaths {
			open[path] = struct{}{}
		}
		var secret []byte
		if b.auth.JWTSecret != "" {
			secret = []byte(b.auth.JWTSecret)
		}
		authMw = middleware.Auth(middleware.AuthConfig{
			APIKeys:              keys,
			HeaderName:           b.auth.Header,
			JWTSecret:            secret,
			UnauthenticatedPaths: open,
			Logger:               logger,
		})
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	if b.loggingEnabled {
		r.Use(middleware.RequestID)
		r.Use(middleware.RequestLogger(logger))
	}
	if a.metrics != nil {
		r.Use(a.metrics.middleware)
	}
	if len(b.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: b.corsOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
			MaxAge:         300,
		}))
	}
	if b.rateLimit != nil {
		r.Use(middleware.RateLimiter(*b.rateLimit))
	}
	if authMw != nil {
		r.Use(authMw)
	}

	r.Get("/api/v1/info", a.handleInfo)
	if b.healthEnabled {
		r.Get("/health", a.handleHealth)
		r.Get("/health/stream", a.handleHealthStream)
	}
	if b.systemEnabled {
		r.Get("/api/v1/system", a.handleSystem)
		r.Get("/api/v1/system/apps", a.handleSystemApps)
	}
	if a.scheduler != nil {
		r.Route("/api/v1/jobs", a.jobRoutes)
	}
	if a.metrics != nil {
		r.Handle("/metrics", a.metrics.handler())
	}
	if b.landingEnabled {
		r.Get("/", a.handleLanding)
	}
	for _, mount := range b.routes {
		r.Route(mount.pattern, mount.fn)
	}
	for _, app := range a.apps {
		r.Handle(app.Prefix, app.handler())
		r.Handle(app.Prefix+"/*", app.handler())
	}
	a.router = r

	return a, nil
}

// Handler returns the application's HTTP handler, suitable for mounting
// in tests or a custom server.
func (a *Application) Handler() http.Handler { return a.router }

// Info returns the service descriptor.
func (a *Application) Info() Info { return a.info }

// DB returns the service database, or nil when persistence is disabled.
func (a *Application) DB() *sql.DB { return a.sqldb }

// Scheduler returns the job scheduler, or nil when jobs are disabled.
func (a *Application) Scheduler() *scheduler.Scheduler { return a.scheduler }

// ListenAddr returns the address Run binds to.
func (a *Application) ListenAddr() string { return a.listenAddr }

// Run starts the HTTP server and blocks until ctx is canceled or the
// server fails. Startup hooks run before listening; Close runs on the
// way out.
func (a *Application) Run(ctx context.Context) error {
	for _, hook := range a.startupHooks {
		if err := hook(ctx, a); err != nil {
			_ = a.Close()
			return fmt.Errorf("startup hook: %w", err)
		}
	}

	server := &http.Server{
		Addr:              a.listenAddr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server.listening", "addr", a.listenAddr, "service", a.info.Name)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("server.shutting_down", "service", a.info.Name)
		return server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if closeErr := a.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// Close runs shutdown hooks in reverse order, stops the scheduler, and
// closes the database. Close is idempotent.
func (a *Application) Close() error {
	a.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for i := len(a.shutdownHooks) - 1; i >= 0; i-- {
			if err := a.shutdownHooks[i](ctx, a); err != nil {
				errs = append(errs, fmt.Errorf("shutdown hook: %w", err))
			}
		}
		if a.scheduler != nil {
			if err := a.scheduler.Stop(ctx); err != nil {
				errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
			}
		}
		if a.sqldb != nil {
			if err := a.sqldb.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close database: %w", err))
			}
		}
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}

// closeResources releases whatever was opened before a Build failure.
func (a *Application) closeResources() {
	if a.scheduler != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = a.scheduler.Stop(ctx)
	}
	if a.sqldb != nil {
		_ = a.sqldb.Close()
	}
}
