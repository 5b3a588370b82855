package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"bank_reviews/internal/adapters/observability"
	redisad "bank_reviews/internal/adapters/redis"
	"bank_reviews/internal/app"
	"bank_reviews/internal/keywords"
	"bank_reviews/internal/ngram"
	"bank_reviews/internal/pipeline"
	"bank_reviews/internal/sentiment"
	"bank_reviews/internal/shared"
	"bank_reviews/internal/storage/sqlstore"
)

func main() {
	flag.Usage = func() {
		os.Stderr.WriteString("usage: pipeline [stage ...]\nstages: " + strings.Join(pipeline.Stages, " ") + "\n")
	}
	flag.Parse()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger("pipeline", cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// models are loaded once and shared by every stage
	scorer, err := sentiment.New(sentiment.NewVaderModel(), sentiment.Thresholds{
		Positive: cfg.Sentiment.Positive,
		Negative: cfg.Sentiment.Negative,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("sentiment model unavailable")
	}
	lem, err := keywords.NewLemmatizer(cfg.Keywords.Lemmatizer)
	if err != nil {
		log.Fatal().Err(err).Msg("lemmatizer unavailable")
	}

	deps := pipeline.Deps{
		Scorer:    scorer,
		Keywords:  keywords.NewNormalizer(keywords.NewProseTokenizer(), lem, keywords.EnglishStopwords),
		Extractor: ngram.New(nil),
	}
	if cfg.DB.DSN != "" {
		var repo *sqlstore.Repo
		deps.OpenStore = func(ctx context.Context) (pipeline.ReviewStore, error) {
			r, err := sqlstore.Open(ctx, strings.ToLower(cfg.DB.Driver), cfg.DB.DSN)
			if err != nil {
				return nil, err
			}
			repo = r
			return r, nil
		}
		defer func() {
			if repo != nil {
				_ = repo.Close()
			}
		}()
		if cfg.Redis.Addr != "" {
			cache := redisad.New(cfg.Redis.Addr, cfg.Redis.Pass, cfg.Redis.DB)
			defer cache.Close()
			deps.Invalidate = func(ctx context.Context, banks []string) {
				if repo == nil {
					return
				}
				app.NewQueryService(repo, cache, cfg.CacheTTL).InvalidateBanks(ctx, banks)
			}
		}
	}

	p, err := pipeline.New(cfg, deps, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline init failed")
	}

	log.Info().Strs("stages", flag.Args()).Msg("pipeline starting")
	if err := p.Run(ctx, flag.Args()...); err != nil {
		log.Fatal().Err(err).Msg("pipeline failed")
	}
	log.Info().Msg("pipeline completed")
}
