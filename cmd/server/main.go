package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kiril6/users-directory/internal/directory"
	"github.com/kiril6/users-directory/internal/directory/grouping"
	dirhandler "github.com/kiril6/users-directory/internal/directory/handler"
	"github.com/kiril6/users-directory/internal/directory/metrics"
	"github.com/kiril6/users-directory/internal/directory/pagination"
	"github.com/kiril6/users-directory/internal/directory/source"
	"github.com/kiril6/users-directory/internal/directory/source/cache"
	"github.com/kiril6/users-directory/internal/platform/config"
	"github.com/kiril6/users-directory/internal/platform/httpserver"
	"github.com/kiril6/users-directory/internal/platform/logger"
	platformredis "github.com/kiril6/users-directory/internal/platform/redis"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Orchestration logic lives in the internal/directory packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	stats := metrics.New()

	var pageCache cache.Store = cache.NewInMemoryStore()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable, using in-memory page cache", "error", err)
	} else if redisClient != nil {
		pageCache = cache.NewRedisStore(redisClient.Client, cfg.Redis.CacheTTL)
		defer redisClient.Close()
	}

	client := source.NewClient(cfg.SourceBaseURL, cfg.Seed,
		source.WithHTTPClient(&http.Client{Timeout: cfg.SourceTimeout}),
		source.WithCache(pageCache),
		source.WithLogger(log),
		source.WithMetrics(stats),
	)
	pager := pagination.NewController(client, cfg.PageSize,
		pagination.WithLogger(log),
		pagination.WithMetrics(stats),
	)
	grouper := grouping.NewCoordinator(grouping.NewEngine(),
		grouping.WithWorker(cfg.WorkerEnabled),
		grouping.WithLogger(log),
		grouping.WithMetrics(stats),
	)
	svc := directory.New(pager, grouper,
		pagination.ContinuationPolicy{
			LowWaterMark: cfg.LowWaterMark,
			TargetTotal:  cfg.TargetTotal,
			Delay:        cfg.LoadDelay,
		},
		directory.WithLogger(log),
		directory.WithMetrics(stats),
		directory.WithDebounceWindow(cfg.DebounceWindow),
	)
	defer svc.Close()

	router := dirhandler.NewRouter(dirhandler.New(svc, dirhandler.WithLogger(log)))
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting users-directory", "addr", cfg.Addr, "seed", cfg.Seed)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	svc.Start(context.Background())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
