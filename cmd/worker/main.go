package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/PzmuV1517/FTCinsight/internal/cache"
	"github.com/PzmuV1517/FTCinsight/internal/client"
	"github.com/PzmuV1517/FTCinsight/internal/config"
	"github.com/PzmuV1517/FTCinsight/internal/epa"
	"github.com/PzmuV1517/FTCinsight/internal/metrics"
	"github.com/PzmuV1517/FTCinsight/internal/pipeline"
	"github.com/PzmuV1517/FTCinsight/internal/repository"
	"github.com/PzmuV1517/FTCinsight/internal/scheduler"
)

func main() {
	setupLogger()

	log.Info().Msg("Starting FTCinsight Season Processing Worker")

	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Int("first_season", cfg.FirstSeason).
		Int("current_season", cfg.CurrentSeason).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Redis response cache; a failed connection degrades to no caching.
	var store cache.Store
	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		store = cache.Noop{}
	} else {
		defer redisCache.Close()
		store = redisCache
		log.Info().Msg("Redis cache connected")
	}

	ftcClient := client.NewClient(
		cfg.FTCAPIBaseURL,
		cfg.FTCAPIUsername,
		cfg.FTCAPIToken,
		cfg.FTCAPITimeout,
		store,
	)
	log.Info().Msg("FTC Events API client initialized")

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	if cfg.EnableMetrics {
		metrics.StartMetricsServer(cfg.MetricsPort)
	}

	sched := scheduler.NewScheduler(cfg, ftcClient, db)

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	if cfg.InitialSyncEnabled {
		log.Info().Msg("Running initial season sync...")
		runInitialSync(ctx, cfg, ftcClient, db)
	}

	<-ctx.Done()

	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// runInitialSync processes every configured season once on startup. A
// failed season is logged and skipped so the worker still comes up.
func runInitialSync(ctx context.Context, cfg *config.Config, fetcher pipeline.Fetcher, db *repository.Database) {
	opts := pipeline.Options{
		UseCache:    true,
		MaxWorkers:  cfg.MaxWorkers,
		Epa:         epa.Config{Prior: cfg.PriorEpa, K: cfg.EpaKFactor},
		PredictionK: cfg.PredictionK,
	}

	results := pipeline.ProcessAllSeasons(ctx, fetcher, cfg.FirstSeason, cfg.CurrentSeason, opts)

	for _, res := range results {
		if err := db.SaveSeasonResult(ctx, res); err != nil {
			log.Error().Err(err).Int("season", res.Season).Msg("Failed to save season result")
			continue
		}
		log.Info().
			Int("season", res.Season).
			Int("events", len(res.Events)).
			Int("matches", len(res.Matches)).
			Int("failed_events", len(res.Errors)).
			Msg("Season synced")
	}

	log.Info().Int("seasons", len(results)).Msg("Initial sync complete")
}
