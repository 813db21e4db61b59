package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/akontos/portfolio-tracker/internal/config"
	"github.com/akontos/portfolio-tracker/internal/database"
	"github.com/akontos/portfolio-tracker/internal/domain"
	"github.com/akontos/portfolio-tracker/internal/modules/benchmark"
	"github.com/akontos/portfolio-tracker/internal/modules/holdings"
	"github.com/akontos/portfolio-tracker/internal/modules/indicators"
	"github.com/akontos/portfolio-tracker/internal/modules/portfolio"
	"github.com/akontos/portfolio-tracker/internal/modules/prices"
	"github.com/akontos/portfolio-tracker/internal/scheduler"
	"github.com/akontos/portfolio-tracker/internal/server"
	"github.com/akontos/portfolio-tracker/internal/tasks"
	"github.com/akontos/portfolio-tracker/pkg/logger"
)

const refreshCycleTask = "refresh-cycle"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting portfolio tracker")

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Stores
	priceStore := prices.NewStore(cfg.HistoryDir, db.Conn(), log)
	indicatorRepo := indicators.NewRepository(db.Conn(), log)
	benchmarkRepo := benchmark.NewRepository(db.Conn(), log)
	portfolioRepo := portfolio.NewRepository(db.Conn(), log)
	holdingsRepo := holdings.NewRepository(db.Conn(), log)

	if err := initSchemas(priceStore, indicatorRepo, benchmarkRepo, portfolioRepo, holdingsRepo); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database schema")
	}

	// Engine
	indicatorService := indicators.NewService(priceStore, indicatorRepo, cfg.SymbolPause, log)
	resolver := benchmark.NewResolver(benchmarkRepo, log)
	aggregator := holdings.NewAggregator(portfolioRepo, priceStore, resolver, holdingsRepo, log)

	// Task registry: one refresh task per region plus the full cycle
	registry := tasks.NewRegistry(log)
	registerTasks(registry, indicatorService, aggregator, log)

	// Scheduler
	sched := scheduler.New(log)
	if err := sched.AddJob("0 22 * * MON-FRI", scheduler.NewRefreshCycleJob(registry, refreshCycleTask, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register refresh cycle job")
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Port:             cfg.Port,
		Log:              log,
		DevMode:          cfg.DevMode,
		IndicatorHandler: indicators.NewHandler(indicatorService, log),
		HoldingsHandler:  holdings.NewHandler(aggregator, holdingsRepo, log),
		TaskRegistry:     registry,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

type schemaIniter interface {
	InitSchema() error
}

func initSchemas(stores ...schemaIniter) error {
	for _, store := range stores {
		if err := store.InitSchema(); err != nil {
			return err
		}
	}
	return nil
}

func registerTasks(
	registry *tasks.Registry,
	indicatorService *indicators.Service,
	aggregator *holdings.Aggregator,
	log zerolog.Logger,
) {
	for _, cfg := range domain.Regions {
		region := cfg.Region
		registry.Register(fmt.Sprintf("indicators-%s", region), func() error {
			_, err := indicatorService.UpdateRegion(region)
			return err
		})
		registry.Register(fmt.Sprintf("holdings-%s", region), func() error {
			_, err := aggregator.AggregateRegion(region)
			return err
		})
	}

	registry.Register(refreshCycleTask, func() error {
		var firstErr error
		for _, cfg := range domain.Regions {
			if _, err := indicatorService.UpdateRegion(cfg.Region); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		for region, result := range aggregator.AggregateAll() {
			if !result.Success && firstErr == nil {
				firstErr = fmt.Errorf("holdings aggregation failed for %s: %s", region, result.Message)
			}
		}
		return firstErr
	})

	log.Info().Int("tasks", len(registry.Names())).Msg("Tasks registered")
}
