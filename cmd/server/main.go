package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/belovelace/Portfolio-Optimizer/internal/clients/yahoo"
	"github.com/belovelace/Portfolio-Optimizer/internal/config"
	"github.com/belovelace/Portfolio-Optimizer/internal/database"
	"github.com/belovelace/Portfolio-Optimizer/internal/modules/correlation"
	"github.com/belovelace/Portfolio-Optimizer/internal/modules/diversification"
	"github.com/belovelace/Portfolio-Optimizer/internal/modules/marketdata"
	"github.com/belovelace/Portfolio-Optimizer/internal/modules/screening"
	"github.com/belovelace/Portfolio-Optimizer/internal/modules/sessions"
	"github.com/belovelace/Portfolio-Optimizer/internal/modules/stocks"
	"github.com/belovelace/Portfolio-Optimizer/internal/scheduler"
	"github.com/belovelace/Portfolio-Optimizer/internal/server"
	"github.com/belovelace/Portfolio-Optimizer/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Int("port", cfg.Port).
		Msg("Starting portfolio optimizer")

	// Core databases
	marketDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "market.db"),
		Profile: database.ProfileStandard,
		Name:    "market",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open market database")
	}
	defer marketDB.Close()

	analysisDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "analysis.db"),
		Profile: database.ProfileStandard,
		Name:    "analysis",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open analysis database")
	}
	defer analysisDB.Close()

	// Repositories and stores
	stockRepo := stocks.NewRepository(marketDB.Conn(), log)
	selectedRepo := stocks.NewSelectedRepository(analysisDB.Conn(), stockRepo, log)
	sessionSvc := sessions.NewService(analysisDB.Conn(), log)
	corrStore := correlation.NewStore(analysisDB.Conn(), log)
	screenStore := screening.NewStore(analysisDB.Conn(), log)

	for name, ensure := range map[string]func() error{
		"stocks":          stockRepo.EnsureSchema,
		"selected_assets": selectedRepo.EnsureSchema,
		"sessions":        sessionSvc.EnsureSchema,
		"correlation":     corrStore.EnsureSchema,
		"screening":       screenStore.EnsureSchema,
	} {
		if err := ensure(); err != nil {
			log.Fatal().Err(err).Str("schema", name).Msg("Failed to ensure schema")
		}
	}

	// Market data
	historyRepo := marketdata.NewHistoryRepository(cfg.HistoryPath, log)
	defer historyRepo.Close()
	provider := marketdata.NewProvider(historyRepo, log)
	yahooClient := yahoo.NewClient(log)
	syncService := marketdata.NewSyncService(yahooClient, stockRepo, historyRepo, time.Second, log)

	// Services
	corrService := correlation.NewService(corrStore, provider, stockRepo, selectedRepo, log)
	divService := diversification.NewService(corrStore, stockRepo, log)
	screenService := screening.NewService(stockRepo, screenStore, log)

	// Background jobs
	sched := scheduler.New(log)
	cleanup := scheduler.NewCleanupJob(
		sessionSvc,
		selectedRepo,
		[]scheduler.SessionDataPurger{corrStore, screenStore},
		cfg.SessionRetentionDays,
		log,
	)
	maintenance := scheduler.NewMaintenanceJob([]*database.DB{marketDB, analysisDB}, log)
	historySync := scheduler.NewHistorySyncJob(syncService, log)

	if err := sched.AddJob("0 0 4 * * *", cleanup); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cleanup job")
	}
	if err := sched.AddJob("0 30 3 * * 0", maintenance); err != nil {
		log.Fatal().Err(err).Msg("Failed to register maintenance job")
	}
	if err := sched.AddJob("0 0 1 * * *", historySync); err != nil {
		log.Fatal().Err(err).Msg("Failed to register history sync job")
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(
		cfg,
		[]*database.DB{marketDB, analysisDB},
		[]server.Module{
			correlation.NewHandler(corrService, sessionSvc, log),
			diversification.NewHandler(divService, sessionSvc, log),
			stocks.NewHandler(stockRepo, selectedRepo, sessionSvc, log),
			screening.NewHandler(screenService, sessionSvc, log),
		},
		log,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}

	log.Info().Msg("Server stopped")
}
