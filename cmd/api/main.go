package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"scaler/internal/adapter/repo"
	"scaler/internal/creative"
	"scaler/internal/domain"
	"scaler/internal/http/handlers"
	"scaler/internal/http/httpapi"
	"scaler/internal/infra"
	"scaler/internal/infra/geoip"
	"scaler/internal/middleware"
	"scaler/internal/providers/bannerbear"
	"scaler/internal/providers/fal"
	"scaler/internal/providers/n8n"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	sqlRunner := infra.NewSQLRunner(dbpool, logger)
	magpie := repo.NewMagpieRepository(sqlRunner)

	countryResolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, country attribution disabled")
	}
	var countryLookup middleware.CountryLookup
	if countryResolver != nil {
		countryLookup = countryResolver.CountryCode
	}

	falClient := fal.NewClient(fal.Options{
		APIKey:   cfg.FalKey,
		BaseURL:  cfg.FalBaseURL,
		QueueURL: cfg.FalQueueURL,
		Model:    cfg.FalModel,
		Limiter:  rate.NewLimiter(rate.Limit(cfg.FalRequestsPerSec), 4),
	})
	if !falClient.Configured() {
		logger.Warn().Msg("FAL_KEY not set, image generation disabled")
	}

	bbClient := bannerbear.NewClient(bannerbear.Options{
		APIKey:  cfg.BannerbearAPIKey,
		BaseURL: cfg.BannerbearBaseURL,
		Templates: bannerbear.NewTemplates(
			cfg.BannerbearSquareTmpl,
			cfg.BannerbearStoryTmpl,
			cfg.BannerbearLandscapeTmpl,
		),
	})
	if !bbClient.Configured() {
		logger.Warn().Msg("BANNERBEAR_API_KEY not set, overlay compositing disabled")
	}

	adCopy := n8n.NewClient(n8n.Options{
		BaseURL:     cfg.N8NBaseURL,
		AdCopyHook:  cfg.N8NAdCopyHook,
		ImagesHook:  cfg.N8NImagesHook,
		PromptsHook: cfg.N8NPromptsHook,
	})

	composer := creative.NewComposer(
		creative.NewFalImageService(falClient, cfg.FalPollInterval, cfg.FalPollMaxAttempts),
		creative.NewBannerbearOverlayService(bbClient, cfg.BannerbearPollInterval, cfg.BannerbearPollAttempts),
		logger,
	)

	batches := creative.NewRegistry(creative.RegistryOptions{
		Composer: composer,
		Logger:   logger,
		OnComplete: func(snap creative.RunSnapshot) {
			// Finished batches show up in the operations activity feed.
			err := magpie.AppendActivity(context.Background(), domain.ActivityEvent{
				Type:        "batch_completed",
				Title:       "Creative batch finished",
				Description: fmt.Sprintf("%d of %d creatives generated", snap.Completed-snap.Failed, snap.Total),
				AgentID:     "scaler",
				Source:      "scaler",
			})
			if err != nil {
				logger.Warn().Err(err).Str("run_id", snap.ID).Msg("failed to record batch activity")
			}
		},
	})

	app := handlers.NewApp(handlers.App{
		Repo:     magpie,
		Composer: composer,
		Batches:  batches,
		AdCopy:   adCopy,
		Overlays: bbClient,
		Cfg:      cfg,
		Logger:   logger,
	})

	router := httpapi.NewRouter(app, countryLookup)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if closer, ok := countryResolver.(*geoip.Resolver); ok {
		_ = closer.Close()
	}
	logger.Info().Msg("server stopped")
}
