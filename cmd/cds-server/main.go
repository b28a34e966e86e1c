package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/cds/internal/config"
	"github.com/ehr/cds/internal/domain/cds"
	"github.com/ehr/cds/internal/platform/auth"
	"github.com/ehr/cds/internal/platform/fhir"
	"github.com/ehr/cds/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cds-server",
		Short: "CDS Hooks decision-support server",
	}

	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the CDS Hooks server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()

	// Feedback storage: Postgres when configured, in-memory otherwise.
	var feedback cds.FeedbackRepository = cds.NewMemoryFeedbackRepository()
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		feedback, err = cds.NewFeedbackRepoPG(ctx, pool)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare feedback storage")
		}
		logger.Info().Msg("feedback storage: postgres")
	}

	// Decision core
	client := fhir.NewClient(time.Duration(cfg.FHIRTimeoutSeconds) * time.Second)
	resolver := cds.NewResolver(client)
	svc := cds.NewService(resolver, cds.AssemblerConfig{
		MaxCards:        cfg.MaxCards,
		DedupeBySummary: cfg.DedupBySummary,
	}, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(time.Duration(cfg.RequestTimeoutSecs) * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	if cfg.AuthEnabled() {
		e.Use(auth.BearerGate([]byte(cfg.AuthTokenSecret)))
	}

	// Health checks
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": "0.1.0"})
	})
	e.GET("/readyz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})

	// Discovery responses are static per process, so cache those two routes.
	// Health probes and hook invocations stay uncached.
	discoveryCache := middleware.DiscoveryCache(middleware.NewInMemoryCacheStore(), time.Duration(cfg.CacheMaxAge)*time.Second)
	cds.NewHandler(svc, feedback).RegisterRoutes(e, discoveryCache)

	// Start with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting cds server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
