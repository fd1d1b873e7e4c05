package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/http/handlers"
	httpapi "server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/live"
	"server/internal/service"
	"server/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	campaigns := repo.NewCampaignRepository(dbpool)
	donations := repo.NewDonationRepository(dbpool)
	users := repo.NewUserRepository(dbpool)

	feed := live.NewFeed(campaigns, logger, cfg.FeedQuiet)
	go feed.Run(ctx)
	go feed.Listen(ctx, dbpool)

	ledger := service.NewLedger(donations, logger, cfg.LedgerMaxRetries, feed.Invalidate)
	auth := service.NewAuth(users, service.LogMailer{Logger: logger}, logger, cfg.JWTSecret, cfg.TokenTTL)

	app := &handlers.App{
		Campaigns: campaigns,
		Donations: donations,
		Users:     users,
		Ledger:    ledger,
		Auth:      auth,
		Feed:      feed,
		Logger:    logger,
	}

	// Blob storage is optional; without it image uploads degrade to an
	// empty URL.
	if cfg.StoragePath != "" {
		images, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init file store")
		}
		app.Images = images
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:       cfg.JWTSecret,
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Logger:          logger,
		StaticDir:       cfg.StoragePath,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
