package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/courtware/draw-system/config"
	"github.com/courtware/draw-system/db"
	"github.com/courtware/draw-system/draws"
	"github.com/courtware/draw-system/handlers"
	"github.com/courtware/draw-system/repositories"
	"github.com/courtware/draw-system/routes"
	"github.com/courtware/draw-system/services"
	"github.com/courtware/draw-system/storage"
)

// @title Draw System API
// @version 1.0
// @description Draw generation, scoring and court scheduling for racquet-sport tournaments.
// @BasePath /
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zlog.Logger = logger

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Info().Int("port", cfg.ServerPort).Msg("configuration loaded")

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close database connection")
		}
	}()
	logger.Info().Msg("database connection established")

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize Cloudflare R2 uploader")
	}
	logger.Info().Msg("Cloudflare R2 uploader initialized")

	hub := draws.NewHub(logger)
	go hub.Run()
	logger.Info().Msg("websocket hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	courtRepo := repositories.NewPostgresCourtRepository(dbConn)
	divisionRepo := repositories.NewPostgresDivisionRepository(dbConn)
	entryRepo := repositories.NewPostgresEntryRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	drawStateRepo := repositories.NewPostgresDrawStateRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)
	overrideRepo := repositories.NewPostgresOverrideRepository(dbConn)
	logger.Info().Msg("repositories initialized")

	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey, cfg.TokenTTL)
	tournamentService := services.NewTournamentService(
		tournamentRepo,
		divisionRepo,
		courtRepo,
		drawStateRepo,
		uploader,
		cfg.DefaultRestWindowMinutes,
		logger,
	)
	entryService := services.NewEntryService(
		entryRepo,
		teamRepo,
		divisionRepo,
		tournamentRepo,
		drawStateRepo,
		logger,
	)
	drawService := services.NewDrawService(
		dbConn,
		divisionRepo,
		entryRepo,
		matchRepo,
		drawStateRepo,
		standingRepo,
		hub,
		logger,
	)
	matchService := services.NewMatchService(
		dbConn,
		matchRepo,
		entryRepo,
		drawStateRepo,
		standingRepo,
		hub,
		logger,
	)
	standingsService := services.NewStandingsService(
		dbConn,
		entryRepo,
		matchRepo,
		drawStateRepo,
		standingRepo,
		hub,
		logger,
	)
	scheduleService := services.NewScheduleService(
		dbConn,
		matchRepo,
		entryRepo,
		teamRepo,
		userRepo,
		courtRepo,
		divisionRepo,
		tournamentRepo,
		overrideRepo,
		hub,
		logger,
	)
	logger.Info().Msg("services initialized")

	authHandler := handlers.NewAuthHandler(authService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	entryHandler := handlers.NewEntryHandler(entryService)
	drawHandler := handlers.NewDrawHandler(drawService, standingsService)
	matchHandler := handlers.NewMatchHandler(matchService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	webSocketHandler := handlers.NewWebSocketHandler(hub)

	router := chi.NewRouter()
	routes.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		tournamentHandler,
		entryHandler,
		drawHandler,
		matchHandler,
		scheduleHandler,
		webSocketHandler,
	)
	logger.Info().Msg("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("address", server.Addr).Msg("starting server")
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
		logger.Info().Msg("server stopped")
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to force close server")
			}
			os.Exit(1)
		}
		logger.Info().Msg("server shutdown complete")
	}
}
