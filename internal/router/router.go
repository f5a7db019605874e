package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	cache "preop-drug-check/internal/adapters/cache/redis"
	"preop-drug-check/internal/adapters/secrets/configapi"
	mem "preop-drug-check/internal/adapters/storage/memory"
	pg "preop-drug-check/internal/adapters/storage/postgres"
	"preop-drug-check/internal/adapters/workflow/dify"
	"preop-drug-check/internal/config"
	"preop-drug-check/internal/domain/checks"
	"preop-drug-check/internal/middleware"
	"preop-drug-check/internal/platform/logger"
	"preop-drug-check/internal/ports/workflow"
	"preop-drug-check/internal/web"

	_ "preop-drug-check/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Config config.Config
	Logger logger.Logger // nil => nop

	// Opcional: si viene, usa Postgres. Si no, in-memory (aunque Config tenga DSN).
	DB *sql.DB

	// Opcional: si viene, cachea salidas del workflow.
	Redis *goredis.Client

	// Opcional (tests): reemplaza el cliente Dify.
	Runner workflow.Runner
}

func NewRouter(opts Options) (http.Handler, error) {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics)
	r.Use(middleware.WorkflowUser(cfg.Dify.User))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	runner := opts.Runner
	if runner == nil {
		c, err := dify.NewClient(dify.Config{
			BaseURL: cfg.Dify.BaseURL,
			User:    cfg.Dify.User,
			Timeout: cfg.Dify.Timeout,
		})
		if err != nil {
			return nil, err
		}
		runner = c
	}

	// El router no abre conexiones: quien crea opts.DB la cierra.
	db := opts.DB
	var repo checks.Repository
	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := pg.Migrate(ctx, db); err != nil {
			return nil, err
		}
		repo = pg.NewChecksRepo(db)
	} else {
		repo = mem.NewCheckRepo()
	}

	var resultCache checks.ResultCache
	if opts.Redis != nil {
		resultCache = cache.NewResultCache(opts.Redis, cfg.Redis.TTL)
	}

	keys := configapi.NewStatic(cfg.Dify.APIKey)
	svc := checks.NewService(checks.Deps{
		Keys:        keys,
		Runner:      runner,
		Repo:        repo,
		Cache:       resultCache,
		Logger:      log,
		DefaultUser: cfg.Dify.User,
	})

	// Rutas por módulo
	r.Get("/api/config", configapi.Handler(keys, log))
	checks.RegisterRoutes(r, svc)
	web.RegisterRoutes(r, svc, log)

	return r, nil
}
