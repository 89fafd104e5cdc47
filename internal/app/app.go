// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tkarolak/greenroom/internal/config"
	"github.com/tkarolak/greenroom/internal/identity"
	identitypostgres "github.com/tkarolak/greenroom/internal/identity/postgres"
	"github.com/tkarolak/greenroom/internal/pkg/ctxlog"
	"github.com/tkarolak/greenroom/internal/pkg/httputil"
	"github.com/tkarolak/greenroom/internal/pkg/metrics"
	"github.com/tkarolak/greenroom/internal/pkg/postgres"
	"github.com/tkarolak/greenroom/internal/sessions"
	sessionspostgres "github.com/tkarolak/greenroom/internal/sessions/postgres"
	"github.com/tkarolak/greenroom/internal/version"
	"github.com/tkarolak/greenroom/internal/web"
)

// App represents the application instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	db            *pgxpool.Pool
	server        *http.Server
	metricsServer *http.Server
	metricsCancel context.CancelFunc
	janitor       *sessions.Janitor
}

// New creates a new application instance. It connects to the database,
// applies pending migrations and wires the portal; any failure here is
// fatal on purpose, the process must not come up half-working.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)

	connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer connectCancel()

	db, err := postgres.Connect(connectCtx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnectAttempts: cfg.Database.ConnectAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := postgres.Migrate(cfg.Database.URL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())

	app := &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		metricsCancel: backgroundCancel,
	}

	go app.collectDBMetrics(backgroundCtx)

	router, janitor, err := app.setupRouter(backgroundCtx)
	if err != nil {
		db.Close()
		backgroundCancel()
		return nil, fmt.Errorf("setup router: %w", err)
	}

	app.janitor = janitor

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

// Run starts the HTTP servers.
func (a *App) Run() error {
	// Start metrics server in background
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	// Start main server
	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	a.metricsCancel()

	// Stop the session janitor first
	if a.janitor != nil {
		a.janitor.Stop()
	}

	// Shutdown both servers in parallel
	var wg sync.WaitGroup
	var errs []error
	var mu sync.Mutex

	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := a.server.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
			mu.Unlock()
		}
	}()

	go func() {
		defer wg.Done()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
			mu.Unlock()
		}
	}()

	wg.Wait()

	a.db.Close()

	return errors.Join(errs...)
}

func (a *App) collectDBMetrics(ctx context.Context) {
	// Collect immediately on start
	metrics.RecordDBPoolMetrics(a.db)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			metrics.RecordDBPoolMetrics(a.db)
		case <-ctx.Done():
			return
		}
	}
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

func (a *App) setupRouter(ctx context.Context) (*chi.Mux, *sessions.Janitor, error) {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(httputil.SecurityHeaders)

	r.Get("/healthz", a.healthzHandler)
	r.Get("/readyz", a.readyzHandler)
	r.Get("/version", a.versionHandler)

	userRepo := identitypostgres.NewRepository(a.db)
	identityService := identity.NewService(userRepo, identity.NewHasher())

	sessionRepo := sessionspostgres.NewRepository(a.db)
	sessionManager := sessions.NewManager(sessions.Config{
		Secret:       a.config.Session.Secret,
		TTL:          a.config.Session.TTL,
		CookieName:   a.config.Session.CookieName,
		CookieSecure: a.config.Session.CookieSecure,
		CookieDomain: a.config.Session.CookieDomain,
	}, sessionRepo)

	janitor := sessions.NewJanitor(sessions.DefaultJanitorConfig(), sessionRepo)
	janitor.Start(ctx)

	if a.config.Admin.Email != "" {
		seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer seedCancel()

		if err := identityService.EnsureAdmin(seedCtx, a.config.Admin.Name, a.config.Admin.Email, a.config.Admin.Password); err != nil {
			janitor.Stop()
			return nil, nil, fmt.Errorf("seed admin account: %w", err)
		}
		slog.Info("admin account ensured", "email", a.config.Admin.Email)
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		janitor.Stop()
		return nil, nil, fmt.Errorf("create renderer: %w", err)
	}

	portalHandler := web.NewHandler(web.Config{
		LoginRPS:   a.config.Limits.LoginRPS,
		LoginBurst: a.config.Limits.LoginBurst,
	}, identityService, sessionManager, renderer)

	r.Group(func(r chi.Router) {
		r.Use(httputil.SessionMiddleware(sessionManager))
		portalHandler.RegisterRoutes(r)
	})

	return r, janitor, nil
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		ctxlog.From(r.Context()).Error("readiness check failed", "error", err)
		httputil.Text(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.GitCommit,
		"build_date": version.BuildDate,
	})
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
