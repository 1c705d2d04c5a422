package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/alovak/pos-gateway/internal/config"
	"github.com/alovak/pos-gateway/internal/metrics"
	migraterunner "github.com/alovak/pos-gateway/internal/migrate"
	"github.com/alovak/pos-gateway/internal/middleware"
	"github.com/alovak/pos-gateway/internal/nequi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/exp/slog"

	_ "github.com/lib/pq"
)

// App wires the gateway together and owns its lifecycle: database pool,
// HTTP server, and graceful shutdown.
type App struct {
	srv    *http.Server
	wg     *sync.WaitGroup
	db     *sql.DB
	Addr   string
	logger *slog.Logger
	config *config.Config
}

func NewApp(logger *slog.Logger, cfg *config.Config) *App {
	logger = logger.With(slog.String("app", "pos-gateway"))

	return &App{
		wg:     &sync.WaitGroup{},
		logger: logger,
		config: cfg,
	}
}

func (a *App) Start() error {
	a.logger.Info("starting app...")

	router := chi.NewRouter()
	router.Use(middleware.WithRequestID)
	router.Use(middleware.NewStructuredLogger(a.logger))

	// Choose repository backend: default to pg for runtime; allow mem only
	// when explicitly enabled for tests.
	var repository *Repository
	switch a.config.RepoBackend {
	case "pg":
		db, err := sql.Open("postgres", a.config.DB.DSN())
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxIdleConns(5)
		db.SetMaxOpenConns(10)
		if err := db.Ping(); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		a.db = db
		if a.config.MigrationsPath != "" {
			if err := migraterunner.Run(db, a.config.MigrationsPath); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}
			a.logger.Info("migrations applied", slog.String("path", a.config.MigrationsPath))
		}
		repository = NewPGRepository(db)
	case "mem":
		if !a.config.AllowMemBackend {
			return fmt.Errorf("mem repository is disabled at runtime; set ALLOW_MEM_BACKEND_FOR_TESTS=true only in tests")
		}
		repository = NewRepository()
	default:
		return fmt.Errorf("unsupported REPO_BACKEND=%s", a.config.RepoBackend)
	}

	registry := prometheus.NewRegistry()
	gatewayMetrics := metrics.New(registry)

	client := nequi.New(a.config.Nequi.BaseURL, nil, a.logger)
	service := NewService(repository, client, a.logger, gatewayMetrics)

	api := NewAPI(service, a.logger)
	apiRouter := chi.NewRouter()
	api.AppendRoutes(apiRouter)
	router.Mount("/api", apiRouter)

	// Health and metrics endpoints
	router.Get("/-/live", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	router.Get("/-/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := repository.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	l, err := net.Listen("tcp", "0.0.0.0:"+a.config.Port)
	if err != nil {
		return fmt.Errorf("listening tcp port: %w", err)
	}

	a.Addr = l.Addr().String()

	a.srv = &http.Server{
		Handler: router,
	}

	a.wg.Add(1)
	go func() {
		a.logger.Info("http server started", slog.String("addr", a.Addr))

		if err := a.srv.Serve(l); err != nil {
			if err != http.ErrServerClosed {
				a.logger.Error("starting http server", "err", err)
			}

			a.logger.Info("http server stopped")
		}

		a.wg.Done()
	}()

	return nil
}

func (a *App) Shutdown() {
	a.logger.Info("shutting down app...")

	a.srv.Shutdown(context.Background())

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("closing database pool", "err", err)
		}
	}

	a.wg.Wait()

	a.logger.Info("app stopped")
}
