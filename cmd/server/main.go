package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcache "seva/internal/application/cache"
	apphandler "seva/internal/application/handler"
	appservice "seva/internal/application/service"
	appstore "seva/internal/application/store"
	"seva/internal/audit"
	histhandler "seva/internal/history/handler"
	histservice "seva/internal/history/service"
	histstore "seva/internal/history/store"
	sevahttp "seva/internal/http"
	"seva/internal/migrate"
	"seva/internal/platform/config"
	"seva/internal/platform/httpserver"
	"seva/internal/platform/logger"
	"seva/internal/platform/metrics"
	"seva/internal/platform/postgres"
	platformredis "seva/internal/platform/redis"
	"seva/internal/sequence"
	"seva/pkg/platform/tx"
)

const statsCacheTTL = 30 * time.Second

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrate.Up(ctx, db); err != nil {
		log.Error("run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	sinks := []audit.Sink{audit.NewPostgresSink(db)}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.Kafka)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
	}
	auditor := audit.NewPublisher(sinks...)

	m := metrics.New()
	txRunner := tx.NewRunner(db)
	applications := appstore.NewPostgres(db)
	history := histstore.NewPostgres(db)
	allocator := sequence.NewPostgres(db)
	statsCache := appcache.New(redisClient, statsCacheTTL, log)

	appSvc := appservice.New(applications, allocator, history, txRunner, log,
		appservice.WithMetrics(m),
		appservice.WithAuditPublisher(auditor),
		appservice.WithStatsCache(statsCache),
	)
	histSvc := histservice.New(history, applications, cfg.AdminToken, log,
		histservice.WithMetrics(m),
		histservice.WithAuditPublisher(auditor),
	)

	router := sevahttp.NewRouter(log, m, db,
		apphandler.New(appSvc, log),
		histhandler.New(histSvc, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
