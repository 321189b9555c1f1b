// @title        Kanso Weeks API
// @version      1.0
// @description  Weeks, days and habits with derived completion progress.
// @BasePath     /api/v1
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
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-weeks/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-weeks/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-weeks/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-weeks/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-weeks/internal/config"
	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-weeks/internal/core/services"
	"github.com/comitanigiacomo/kanso-weeks/internal/core/workers"
)

type app struct {
	router  *gin.Engine
	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}
}

func openStore(ctx context.Context, cfg *config.Config) (domain.TransactionalStore, *repository.SQLStore, error) {
	switch cfg.DBDriver {
	case config.DriverMemory:
		log.Println("Using in-memory store, data will not survive a restart.")
		return repository.NewInMemoryStore(), nil, nil
	case config.DriverSQLite:
		log.Printf("Opening SQLite database at %s...", cfg.SQLitePath)
		store, err := repository.OpenSQLStore(ctx, "sqlite", repository.SQLiteDSN(cfg.SQLitePath))
		return store, store, err
	default:
		log.Printf("Connecting to database (%s driver)...", cfg.DBDriver)
		store, err := repository.OpenSQLStore(ctx, cfg.DBDriver, cfg.PostgresDSN())
		return store, store, err
	}
}

// buildApp wires stores, cache, worker and HTTP layer. The worker runs
// until ctx is cancelled.
func buildApp(ctx context.Context, cfg *config.Config, startTime time.Time) (*app, error) {
	a := &app{}

	store, sqlStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	deps := adapterHTTP.RouterDependencies{StartTime: startTime}
	if sqlStore != nil {
		a.closers = append(a.closers, sqlStore.Close)
		deps.Store = sqlStore
	}
	log.Println("Database ready.")

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb, err = cache.NewRedisClient(ctx, cache.Options{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Printf("Redis unavailable, running without cache and rate limiting: %v", err)
			rdb = nil
		} else {
			a.closers = append(a.closers, rdb.Close)
			store = repository.NewCachedWeekRepository(store, rdb, cfg.CacheTTL)
			deps.Redis = rdb
			deps.RateLimit = middleware.RateLimit{Limit: cfg.RateLimit, Window: cfg.RateWindow}
			log.Println("Redis connected, week cache enabled.")
		}
	}

	orphans := workers.NewOrphanWeekWorker(store, cfg.OrphanRetries, cfg.OrphanRetryDelay)
	orphans.Start(ctx)

	weekService := services.NewWeekService(store, orphans)
	habitService := services.NewHabitService(store)

	deps.WeekHandler = adapterHTTP.NewWeekHandler(weekService)
	deps.DayHandler = adapterHTTP.NewDayHandler(weekService, habitService)
	deps.HabitHandler = adapterHTTP.NewHabitHandler(habitService)

	a.router = adapterHTTP.NewRouter(deps)
	return a, nil
}

func main() {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Critical: invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := buildApp(ctx, cfg, startTime)
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}
	defer application.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      application.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Kanso Weeks running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown error: %v", err)
	}
	cancel()

	log.Println("Server stopped gracefully.")
}
