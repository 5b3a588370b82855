package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"bank_reviews/internal/adapters/observability"
	"bank_reviews/internal/adapters/playstore"
	"bank_reviews/internal/app"
	"bank_reviews/internal/shared"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger("scraper", cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	log.Info().
		Str("base", cfg.Scraper.BaseURL).
		Int("workers", cfg.Scraper.Workers).
		Int("reviews", cfg.Scraper.Count).
		Int("apps", len(cfg.Scraper.Apps)).
		Msg("scraper starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := playstore.New(cfg.Scraper.BaseURL, cfg.Scraper.APIKey, playstore.Options{
		Lang:    cfg.Scraper.Lang,
		Country: cfg.Scraper.Country,
		RPS:     cfg.Scraper.RPS,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize review client")
	}

	svc := app.NewScrapeService(client, cfg.Scraper.Workers, cfg.Scraper.Count, log.Logger)
	path, n, err := svc.Run(ctx, cfg.Scraper.Apps, cfg.Paths.RawDir)
	if err != nil {
		log.Fatal().Err(err).Msg("scrape failed")
	}
	log.Info().Str("file", path).Int("reviews", n).Msg("scrape completed")
}
