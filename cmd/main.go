package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pitchside/tournament-engine/config"
	"github.com/pitchside/tournament-engine/db"
	"github.com/pitchside/tournament-engine/handlers"
	"github.com/pitchside/tournament-engine/live"
	"github.com/pitchside/tournament-engine/repositories"
	"github.com/pitchside/tournament-engine/retry"
	"github.com/pitchside/tournament-engine/routes"
	"github.com/pitchside/tournament-engine/services"
	"github.com/pitchside/tournament-engine/storage"
)

// @title Tournament Engine API
// @version 1.0
// @description Amateur football tournament engine: teams, registrations, fixtures, standings and live results.
// @BasePath /
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	database, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close()
	logger.Info("database connection established")

	var uploader storage.FileUploader
	if cfg.MediaEnabled() {
		uploader, err = storage.NewS3Uploader(storage.S3UploaderConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			BucketName:      cfg.S3Bucket,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize object storage", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("object storage configured", slog.String("bucket", cfg.S3Bucket))
	} else {
		logger.Info("object storage not configured, media uploads disabled")
	}

	hub := live.NewHub(logger)
	go hub.Run()

	teamRepo := repositories.NewPostgresTeamRepository(database)
	playerRepo := repositories.NewPostgresPlayerRepository(database)
	tournamentRepo := repositories.NewPostgresTournamentRepository(database)
	registrationRepo := repositories.NewPostgresRegistrationRepository(database)
	matchRepo := repositories.NewPostgresMatchRepository(database)

	teamService := services.NewTeamService(teamRepo, playerRepo, uploader, logger)
	tournamentService := services.NewTournamentService(
		database, tournamentRepo, registrationRepo, teamRepo, playerRepo, matchRepo, uploader, logger)
	registrationService := services.NewRegistrationService(
		database, tournamentRepo, teamRepo, registrationRepo, logger)
	fixtureService := services.NewFixtureService(
		database, tournamentRepo, registrationRepo, teamRepo, matchRepo, logger)
	standingsService := services.NewStandingsService(
		tournamentRepo, registrationRepo, teamRepo, matchRepo)
	progressionService := services.NewProgressionService(
		database, tournamentRepo, registrationRepo, teamRepo, matchRepo, hub, logger)
	matchService := services.NewMatchService(
		database, tournamentRepo, teamRepo, playerRepo, matchRepo, progressionService, hub, logger)
	simulationService := services.NewSimulationService(
		matchRepo, playerRepo, matchService, retry.DefaultPolicy(), time.Now().UnixNano(), logger)

	teamHandler := handlers.NewTeamHandler(teamService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, fixtureService, simulationService)
	matchHandler := handlers.NewMatchHandler(matchService, simulationService)
	registrationHandler := handlers.NewRegistrationHandler(registrationService)
	standingsHandler := handlers.NewStandingsHandler(standingsService)
	webSocketHandler := handlers.NewWebSocketHandler(hub, logger)

	router := chi.NewRouter()
	routes.SetupRoutes(router, cfg.AllowedOrigins,
		teamHandler, tournamentHandler, matchHandler, registrationHandler, standingsHandler, webSocketHandler)

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
		logger.Info("starting server", slog.Int("port", cfg.ServerPort))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	case sig := <-shutdown:
		logger.Info("shutdown started", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			_ = server.Close()
		}
		logger.Info("shutdown complete")
	}
}
