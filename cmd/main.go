package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/fight-league/brackets"
	"github.com/Dosada05/fight-league/config"
	"github.com/Dosada05/fight-league/db"
	"github.com/Dosada05/fight-league/handlers"
	"github.com/Dosada05/fight-league/repositories"
	"github.com/Dosada05/fight-league/routes"
	"github.com/Dosada05/fight-league/scheduler"
	"github.com/Dosada05/fight-league/services"
	"github.com/Dosada05/fight-league/storage"
	"github.com/go-chi/chi/v5"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.Duration("bracket_deadline", cfg.BracketDeadline),
		slog.String("sweep_cron", cfg.SweepCron))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.Migrate(migrateCtx, dbConn)
	cancelMigrate()
	if err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	// Bracket archiving is optional; without R2 credentials completed brackets stay in postgres only.
	var archive storage.FileUploader
	r2Config := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	if r2Config.Enabled() {
		archive, err = storage.NewCloudflareR2Uploader(context.Background(), r2Config)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Warn("R2 not configured, bracket archiving disabled")
	}

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	fighterRepo := repositories.NewPostgresFighterRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	logger.Info("Repositories initialized")

	tx := services.NewSQLTransactor(dbConn, logger)
	rankingService := services.NewRankingService(fighterRepo, logger)
	fightService := services.NewFightService(tx, fighterRepo, logger)
	matchmakingService := services.NewMatchmakingService(fighterRepo, rankingService, logger)
	participantService := services.NewParticipantService(tx, tournamentRepo, participantRepo, fighterRepo, logger)
	tournamentService := services.NewTournamentService(tx, tournamentRepo, wsHub, logger)
	bracketService := services.NewBracketService(
		tx,
		tournamentRepo,
		participantRepo,
		matchRepo,
		wsHub,
		archive,
		brackets.Policy{Deadline: cfg.BracketDeadline},
		logger,
	)
	logger.Info("Services initialized")

	sweeps, err := scheduler.New(scheduler.Config{CronSpec: cfg.SweepCron}, bracketService, logger)
	if err != nil {
		logger.Error("failed to create deadline sweep scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	sweeps.Start()

	router := chi.NewRouter()
	routes.SetupRoutes(router, routes.Handlers{
		Ranking:     handlers.NewRankingHandler(rankingService),
		Matchmaking: handlers.NewMatchmakingHandler(matchmakingService, cfg.RecentOpponentWindow),
		Bout:        handlers.NewBoutHandler(fightService),
		Participant: handlers.NewParticipantHandler(participantService),
		Tournament:  handlers.NewTournamentHandler(tournamentService, bracketService),
		Match:       handlers.NewMatchHandler(bracketService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub, tournamentService, bracketService, logger),
	}, routes.Options{
		JWTSecret:            cfg.JWTSecretKey,
		MatchmakingRateLimit: cfg.MatchmakingRateLimit,
	})
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		sweeps.Stop()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		sweeps.Stop()
		logger.Info("deadline sweep scheduler stopped")

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
