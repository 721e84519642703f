package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/teamboard/schedule-engine/internal/adapters/cache"
	adapterHTTP "github.com/teamboard/schedule-engine/internal/adapters/handler/http"
	"github.com/teamboard/schedule-engine/internal/adapters/repository"
	"github.com/teamboard/schedule-engine/internal/config"
	"github.com/teamboard/schedule-engine/internal/core/domain"
	"github.com/teamboard/schedule-engine/internal/core/services"
	"github.com/teamboard/schedule-engine/internal/core/workers"
)

type app struct {
	router *gin.Engine
	worker *workers.LayoutWorker
	db     *sqlx.DB
	redis  *redis.Client
}

func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	opts, err := cfg.CalendarOptions()
	if err != nil {
		return nil, err
	}

	a := &app{}

	var repo domain.ScheduleRepository
	switch cfg.Storage {
	case config.StoragePostgres:
		log.Println("Connecting to database...")
		db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DSN())
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
		a.db = db

		pg := repository.NewPostgresScheduleRepository(db)
		if err := pg.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
		repo = pg
		log.Println("Database connected successfully.")
	default:
		log.Println("Using in-memory schedule storage.")
		repo = repository.NewInMemoryScheduleRepository()
	}

	var layoutCache domain.LayoutCache = cache.NewMemoryLayoutCache(opts)
	if cfg.LayoutCache == config.CacheRedis {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis())
		if err != nil {
			log.Printf("[CACHE] Redis unavailable, falling back to in-memory layouts: %v", err)
		} else {
			a.redis = rdb
			layoutCache = cache.NewRedisLayoutCache(rdb, cfg.LayoutCacheTTL)
		}
	}

	layoutService := services.NewLayoutService(repo, layoutCache, opts)
	a.worker = workers.NewLayoutWorker(layoutService)
	scheduleService := services.NewScheduleService(repo, a.worker, opts)

	a.router = adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		ScheduleHandler: adapterHTTP.NewScheduleHandler(scheduleService),
		CalendarHandler: adapterHTTP.NewCalendarHandler(layoutService, scheduleService),
		DB:              a.db,
		Redis:           a.redis,
		RateLimit:       cfg.RateLimit,
		RateWindow:      cfg.RateWindow,
		StartTime:       time.Now(),
	})

	return a, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Critical: Failed to start: %v", err)
	}
	defer a.Close()

	a.worker.Start(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Schedule Engine running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Critical server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Stop signal received. Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown error: %v", err)
		os.Exit(1)
	}

	log.Println("Server stopped gracefully.")
}
