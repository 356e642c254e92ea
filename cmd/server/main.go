package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/clients/navsource"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/config"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/database"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/allocation"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/anomaly"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/report"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/returns"
	returnsjobs "github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/returns/jobs"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/riskmetrics"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/scheduler"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/server"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/pkg/logger"
)

func main() {
	// Initialize logger first
	log := logger.New(logger.Config{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Pretty: getEnvOrDefault("DEV_MODE", "false") == "true",
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting fund analytics service")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}
	log.Info().Str("path", cfg.DatabasePath).Msg("Database ready")

	// Storage and engine components
	repo := returns.NewRepository(db.Conn(), log)
	riskCalc := riskmetrics.NewCalculator(log)
	detector := anomaly.NewDetector(log)
	optimizer := allocation.NewOptimizer(log)
	reportSvc := report.NewService(riskCalc, detector, optimizer, log)

	riskDefaults := riskmetrics.Params{
		RiskFreeRate:   cfg.RiskFreeRate,
		Confidence:     cfg.VaRConfidence,
		PeriodsPerYear: returns.Daily.PeriodsPerYear(),
	}
	anomalyDefaults := anomaly.Params{
		Contamination: cfg.AnomalyContamination,
		Seed:          cfg.AnomalySeed,
		MinSamples:    cfg.AnomalyMinSamples,
		Features: anomaly.FeatureConfig{
			Window:            cfg.FeatureWindow,
			IncludeVolatility: true,
			IncludeZScore:     true,
		},
	}
	allocDefaults := allocation.Params{
		MaxStep:      cfg.MaxAllocationStep,
		RiskFreeRate: cfg.RiskFreeRate,
	}

	// Dev instances get reproducible synthetic data to analyze
	if cfg.DevMode {
		demoFunds := cfg.RefreshFunds
		if len(demoFunds) == 0 {
			demoFunds = []string{"GLOBAL-EQ", "EURO-BOND", "BALANCED"}
		}
		if err := returnsjobs.SeedSyntheticNAV(repo, demoFunds, 252, log); err != nil {
			log.Error().Err(err).Msg("Failed to seed synthetic data")
		}
	}

	// Background refresh of NAV history and derived returns
	sched := scheduler.New(log)
	if len(cfg.RefreshFunds) > 0 {
		navClient := navsource.NewClient(log)
		refreshJob := returnsjobs.NewRefreshJob(repo, navClient, cfg.RefreshFunds, cfg.RefreshPeriod, log)
		if err := sched.AddJob(cfg.RefreshSchedule, refreshJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to register refresh job")
		}
	} else {
		log.Info().Msg("REFRESH_FUNDS not set, NAV refresh job disabled")
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Port:    cfg.Port,
		Log:     log,
		DevMode: cfg.DevMode,
		Handlers: server.Handlers{
			Returns:    returns.NewHandler(repo, log),
			Risk:       riskmetrics.NewHandler(riskCalc, repo, riskDefaults, log),
			Anomaly:    anomaly.NewHandler(detector, repo, anomalyDefaults, log),
			Allocation: allocation.NewHandler(optimizer, allocDefaults, log),
			Report:     report.NewHandler(reportSvc, repo, riskDefaults, anomalyDefaults, allocDefaults, log),
		},
	})

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	case sig := <-shutdown:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}

	log.Info().Msg("Service stopped")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
