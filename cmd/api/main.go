package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cache "preop-drug-check/internal/adapters/cache/redis"
	pg "preop-drug-check/internal/adapters/storage/postgres"
	"preop-drug-check/internal/config"
	"preop-drug-check/internal/platform/logger"
	"preop-drug-check/internal/router"

	goredis "github.com/redis/go-redis/v9"
)

// @title Preop Drug Check API
// @version 1.0
// @description Consulta de medicamentos antes de una cirugía contra un workflow Dify.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewFromEnv().Error("config error", map[string]any{"error": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Format: logger.ParseFormat(cfg.Logging.Format),
		App:    cfg.App.Name,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Dify.APIKey == "" {
		log.Warn("DIFY_API_KEY not set; checks will fail until configured", nil)
	}

	var db *sql.DB
	if cfg.Database.DSN != "" {
		db, err = pg.Open(cfg.Database.DSN)
		if err != nil {
			log.Warn("postgres unavailable, using in-memory history", map[string]any{"error": err})
			db = nil
		} else {
			defer db.Close()
		}
	}

	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = cache.NewClient(ctx, cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			log.Warn("redis unavailable, result cache disabled", map[string]any{"error": err})
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	h, err := router.NewRouter(router.Options{
		Config: *cfg,
		Logger: log,
		DB:     db,
		Redis:  rdb,
	})
	if err != nil {
		log.Error("router error", map[string]any{"error": err})
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// un check espera a la respuesta más lenta del workflow
		WriteTimeout: cfg.Dify.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", map[string]any{"error": err})
		}
	}()

	log.Info("starting server", map[string]any{"addr": srv.Addr, "dify_base_url": cfg.Dify.BaseURL})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", map[string]any{"error": err})
		os.Exit(1)
	}
	log.Info("server stopped", nil)
}
