// Command seasonsync runs one season-processing pass and exits. Useful for
// backfills and for re-running a single season after upstream corrections.
//
// Usage:
//
//	seasonsync -season 2024
//	seasonsync -from 2022 -to 2024 -no-cache
package main

import (
	"context"
	"flag"
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
	"github.com/PzmuV1517/FTCinsight/internal/pipeline"
	"github.com/PzmuV1517/FTCinsight/internal/repository"
)

func main() {
	var (
		season  = flag.Int("season", 0, "process a single season (overrides -from/-to)")
		from    = flag.Int("from", 0, "first season to process (default FIRST_SEASON)")
		to      = flag.Int("to", 0, "last season to process (default CURRENT_SEASON)")
		noCache = flag.Bool("no-cache", false, "bypass the API response cache")
		dryRun  = flag.Bool("dry-run", false, "process but do not write to the database")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg := config.MustLoad()

	first, last := cfg.FirstSeason, cfg.CurrentSeason
	if *from != 0 {
		first = *from
	}
	if *to != 0 {
		last = *to
	}
	if *season != 0 {
		first, last = *season, *season
	}
	if first > last {
		log.Fatal().Int("from", first).Int("to", last).Msg("Invalid season range")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Interrupted, cancelling...")
		cancel()
	}()

	var store cache.Store = cache.Noop{}
	if !*noCache {
		redisCache, err := cache.NewRedisCache(cache.Config{
			Host:     cfg.RedisHost,
			Port:     strconv.Itoa(cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, running without cache")
		} else {
			defer redisCache.Close()
			store = redisCache
		}
	}

	ftcClient := client.NewClient(
		cfg.FTCAPIBaseURL,
		cfg.FTCAPIUsername,
		cfg.FTCAPIToken,
		cfg.FTCAPITimeout,
		store,
	)

	var db *repository.Database
	if !*dryRun {
		var err error
		db, err = repository.NewDatabase(ctx, repository.Config{
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
	}

	opts := pipeline.Options{
		UseCache:    !*noCache,
		MaxWorkers:  cfg.MaxWorkers,
		Epa:         epa.Config{Prior: cfg.PriorEpa, K: cfg.EpaKFactor},
		PredictionK: cfg.PredictionK,
	}

	failed := 0
	for s := first; s <= last; s++ {
		if ctx.Err() != nil {
			break
		}

		res, err := pipeline.ProcessSeason(ctx, ftcClient, s, opts)
		if err != nil {
			log.Error().Err(err).Int("season", s).Msg("Season run failed")
			failed++
			continue
		}

		for _, evErr := range res.Errors {
			log.Warn().Err(evErr).Int("season", s).Msg("Event skipped")
		}

		if *dryRun {
			log.Info().
				Int("season", s).
				Int("events", len(res.Events)).
				Int("matches", len(res.Matches)).
				Int("team_years", len(res.TeamYears)).
				Msg("Dry run: season processed, nothing written")
			continue
		}

		if err := db.SaveSeasonResult(ctx, res); err != nil {
			log.Error().Err(err).Int("season", s).Msg("Failed to save season result")
			failed++
		}
	}

	if failed > 0 {
		log.Error().Int("failed", failed).Msg("Sync finished with failures")
		os.Exit(1)
	}
	log.Info().Msg("Sync complete")
}
