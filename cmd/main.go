package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tickerduel/stockpick_backend/config"
	"github.com/tickerduel/stockpick_backend/data"
	"github.com/tickerduel/stockpick_backend/data/cache"
	"github.com/tickerduel/stockpick_backend/data/repository/postgres"
	"github.com/tickerduel/stockpick_backend/data/session"
	"github.com/tickerduel/stockpick_backend/internal/externalApi/yahooApi"
	"github.com/tickerduel/stockpick_backend/internal/httpserver"
	"github.com/tickerduel/stockpick_backend/internal/reportGenerator/xlsxGenerator"
	"github.com/tickerduel/stockpick_backend/internal/scheduler"
	"github.com/tickerduel/stockpick_backend/internal/service/competitionService"
	transport "github.com/tickerduel/stockpick_backend/internal/transport/http"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)
	redisSession := session.NewRedisSession(redisClient, cfg)

	yahooApiClient := yahooApi.New(cfg)

	reportGenerator := xlsxGenerator.New()

	competitionSrv := competitionService.New(pgRepo, redisCache, yahooApiClient, reportGenerator)

	if err := competitionSrv.EnsureDefaultCompetitions(ctx); err != nil {
		panic(err)
	}

	sched := scheduler.New()
	sched.NewIntervalJob("refresh portfolios", competitionSrv.RefreshAllPortfolios, cfg.Jobs.RefreshPortfoliosInterval, false)
	sched.Start()
	defer sched.Stop()

	httpController := transport.NewController(competitionSrv, redisSession)

	server := httpserver.New(cfg, httpController)
	server.Start()
	defer server.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
