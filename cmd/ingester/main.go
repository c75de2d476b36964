package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zinoono/evemarket/internal/config"
	"github.com/zinoono/evemarket/internal/database"
	"github.com/zinoono/evemarket/internal/esi"
	"github.com/zinoono/evemarket/internal/ops"
	"github.com/zinoono/evemarket/internal/pipeline"
	"github.com/zinoono/evemarket/internal/repository"
	"github.com/zinoono/evemarket/internal/scheduler"
	"github.com/zinoono/evemarket/internal/task"
	"github.com/zinoono/evemarket/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/ingester.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting ingester",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"esi_url", cfg.ESI.BaseURL,
		"regions", cfg.Regions,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Create ESI client
	client := esi.NewClient(
		esi.WithBaseURL(cfg.ESI.BaseURL),
		esi.WithUserAgent(cfg.ESI.UserAgent),
		esi.WithTimeout(cfg.ESI.Timeout),
		esi.WithPermits(cfg.ESI.Permits),
		esi.WithPublishCheck(cfg.Pipelines.PublishCheck),
		esi.WithLogger(logger),
	)

	// Repositories and pipelines
	historyRepo := repository.NewHistoryRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	itemRepo := repository.NewItemRepository(pool, logger)

	historyPipeline := pipeline.NewHistoryPipeline(client, historyRepo, itemRepo, cfg.Pipelines.HistoryChunkSize, logger)
	orderPipeline := pipeline.NewOrderPipeline(client, orderRepo, itemRepo, cfg.Pipelines.OrderBatchSize, logger)

	// One task per (region, kind) pair so regions never block each other.
	historyTasks := make([]*task.RegionTask, 0, len(cfg.Regions))
	orderTasks := make([]*task.RegionTask, 0, len(cfg.Regions))
	for _, regionID := range cfg.Regions {
		historyTasks = append(historyTasks, task.New(regionID, task.KindHistory, historyPipeline.Run, logger))
		orderTasks = append(orderTasks, task.New(regionID, task.KindOrders, orderPipeline.Run, logger))
	}
	allTasks := append(append([]*task.RegionTask{}, historyTasks...), orderTasks...)

	// Ops endpoint up before the first run so startup is observable.
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: ops.NewHandler(pool, orderRepo, allTasks, logger),
	}

	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	// Schedulers
	historySched := scheduler.New("history", cfg.Schedules.History, historyTasks, logger)
	orderSched := scheduler.New("orders", cfg.Schedules.Orders, orderTasks, logger)

	if err := historySched.Start(); err != nil {
		logger.Error("failed to start history scheduler", "error", err)
		os.Exit(1)
	}
	if err := orderSched.Start(); err != nil {
		logger.Error("failed to start order scheduler", "error", err)
		os.Exit(1)
	}

	// Kick off an immediate pass so a fresh deployment does not idle until
	// the first cron tick.
	for _, t := range allTasks {
		t.Trigger()
	}

	logger.Info("ingester running",
		"regions", len(cfg.Regions),
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Health.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	historySched.Stop()
	orderSched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	for _, t := range allTasks {
		if err := t.Stop(shutdownCtx); err != nil {
			logger.Warn("task did not stop in time",
				"region", t.RegionID(),
				"kind", t.Kind(),
				"error", err,
			)
		}
	}

	healthServer.Shutdown(shutdownCtx)

	logger.Info("ingester stopped")
}
