package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"energy-planner/internal/api"
	"energy-planner/internal/config"
	"energy-planner/internal/data"
	"energy-planner/internal/logging"
	"energy-planner/internal/metrics"
	"energy-planner/internal/planner"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}

	cfg, baseDir, err := loadConfig(os.Getenv("ENGINE_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load engine config")
	}
	if err := logging.Setup(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		log.Fatal().Err(err).Msg("invalid logging config")
	}

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	m, err := metrics.NewCollector(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}
	cache := data.NewResultCache(cfg.Results.TTL)
	p := planner.New(cfg,
		planner.WithCache(cache),
		planner.WithMetrics(m),
		planner.WithBaseDir(baseDir),
	)

	var origins []string
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	}
	router := api.NewRouter(p, api.Options{Metrics: m, AllowedOrigins: origins})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go cache.Run(ctx, time.Minute)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Int("horizon_hours", cfg.HorizonHours).
			Dur("solver_timeout", cfg.Solver.Timeout).
			Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}

// loadConfig reads the engine config at path, or the defaults when path is
// empty. Relative request files resolve against the config directory.
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		wd, _ := os.Getwd()
		return config.Default(), wd, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, filepath.Dir(path), nil
}
