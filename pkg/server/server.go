package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accountinghandlers "github.com/de-tools/ops-atlas/pkg/handlers/accounting"
	analyticshandlers "github.com/de-tools/ops-atlas/pkg/handlers/analytics"
	commercehandlers "github.com/de-tools/ops-atlas/pkg/handlers/commerce"
	"github.com/de-tools/ops-atlas/pkg/handlers/respond"
	setuphandlers "github.com/de-tools/ops-atlas/pkg/handlers/setup"
	"github.com/de-tools/ops-atlas/pkg/models/api"
	opsatlasmiddleware "github.com/de-tools/ops-atlas/pkg/server/middleware"
	"github.com/de-tools/ops-atlas/pkg/services/accounting"
	"github.com/de-tools/ops-atlas/pkg/services/analytics"
	"github.com/de-tools/ops-atlas/pkg/services/commerce"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router          http.Handler
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Analytics  analytics.Runner
	Setup      setuphandlers.Flow
	Commerce   commerce.Client
	Accounting accounting.Client
}

type Config struct {
	Addr               string
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string
	Dependencies       Dependencies
}

// ConfigureRouter builds the HTTP surface shared by the web server and the
// serverless adapter.
func ConfigureRouter(logger zerolog.Logger, config Config) http.Handler {
	analyticsHandler := analyticshandlers.NewHandler(config.Dependencies.Analytics)
	setupHandler := setuphandlers.NewHandler(config.Dependencies.Setup)
	commerceHandler := commercehandlers.NewHandler(config.Dependencies.Commerce)
	accountingHandler := accountinghandlers.NewHandler(config.Dependencies.Accounting)

	origins := config.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(opsatlasmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	router.Use(opsatlasmiddleware.Metrics)

	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, http.StatusNotFound, "Not found")
	})

	router.Get("/report", analyticsHandler.GetReport)
	router.Get("/authorize-url", setupHandler.AuthorizeURL)
	router.Get("/oauth-callback", setupHandler.OAuthCallback)
	router.Get("/shopify", commerceHandler.GetResource)
	router.Get("/xero", accountingHandler.GetResource)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, api.HealthResponse{Status: "ok"})
	})
	router.Handle("/metrics", promhttp.Handler())

	return router
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	router := ConfigureRouter(logger, config)

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router:          router,
		logger:          &logger,
		shutdownTimeout: shutdownTimeout,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (w *WebAPI) Handler() http.Handler {
	return w.router
}

// Start serves until SIGINT or SIGTERM.
func (w *WebAPI) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return w.Run(ctx)
}

// Run serves until ctx is done, then drains in-flight requests for at most
// the configured shutdown timeout before closing the listener.
func (w *WebAPI) Run(ctx context.Context) error {
	serverErrors := make(chan error, 1)
	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	w.logger.Info().Dur("timeout", w.shutdownTimeout).Msg("shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.shutdownTimeout)
	defer cancel()

	if err := w.server.Shutdown(shutdownCtx); err != nil {
		w.logger.Error().Err(err).Msg("graceful shutdown failed")
		return w.server.Close()
	}
	return nil
}
