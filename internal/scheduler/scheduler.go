// Package scheduler runs the background sync jobs: a periodic refresh of
// the current season (served from cache where possible) and a nightly full
// refresh of every season that bypasses the cache.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/PzmuV1517/FTCinsight/internal/config"
	"github.com/PzmuV1517/FTCinsight/internal/epa"
	"github.com/PzmuV1517/FTCinsight/internal/pipeline"
	"github.com/PzmuV1517/FTCinsight/internal/repository"
)

// Scheduler manages the background season sync jobs
type Scheduler struct {
	cfg      *config.Config
	fetcher  pipeline.Fetcher
	db       *repository.Database
	cron     *cron.Cron
	ticker   *time.Ticker
	stopChan chan struct{}
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, fetcher pipeline.Fetcher, db *repository.Database) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		fetcher:  fetcher,
		db:       db,
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.NightlyRefreshCron, func() {
		log.Info().Msg("Running nightly full refresh...")
		if err := s.refreshAllSeasons(ctx); err != nil {
			log.Error().Err(err).Msg("Nightly refresh failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly refresh: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.NightlyRefreshCron).
		Msg("Nightly refresh scheduled")

	s.ticker = time.NewTicker(s.cfg.UpdateInterval)
	log.Info().
		Dur("interval", s.cfg.UpdateInterval).
		Msg("Current season polling started")

	go s.pollCurrentSeason(ctx)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}

	if s.ticker != nil {
		s.ticker.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

// pollCurrentSeason periodically re-processes the current season, serving
// unchanged API responses from the cache.
func (s *Scheduler) pollCurrentSeason(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping season polling")
			return
		case <-s.stopChan:
			log.Info().Msg("Stop signal received, stopping season polling")
			return
		case <-s.ticker.C:
			if err := s.syncSeason(ctx, s.cfg.CurrentSeason, true); err != nil {
				log.Error().Err(err).Int("season", s.cfg.CurrentSeason).Msg("Season sync failed")
			}
		}
	}
}

// refreshAllSeasons re-processes every configured season without the cache,
// picking up late score corrections and roster changes.
func (s *Scheduler) refreshAllSeasons(ctx context.Context) error {
	start := time.Now()

	results := pipeline.ProcessAllSeasons(ctx, s.fetcher, s.cfg.FirstSeason, s.cfg.CurrentSeason, pipeline.Options{
		UseCache:    false,
		MaxWorkers:  s.cfg.MaxWorkers,
		Epa:         s.epaConfig(),
		PredictionK: s.cfg.PredictionK,
	})

	for _, res := range results {
		if err := s.db.SaveSeasonResult(ctx, res); err != nil {
			return fmt.Errorf("failed to save season %d: %w", res.Season, err)
		}
	}

	log.Info().
		Int("seasons", len(results)).
		Dur("duration", time.Since(start)).
		Msg("Nightly full refresh complete")
	return nil
}

// syncSeason processes and persists one season
func (s *Scheduler) syncSeason(ctx context.Context, season int, useCache bool) error {
	res, err := pipeline.ProcessSeason(ctx, s.fetcher, season, pipeline.Options{
		UseCache:    useCache,
		MaxWorkers:  s.cfg.MaxWorkers,
		Epa:         s.epaConfig(),
		PredictionK: s.cfg.PredictionK,
	})
	if err != nil {
		return err
	}

	if len(res.Errors) > 0 {
		log.Warn().
			Int("season", season).
			Int("failed_events", len(res.Errors)).
			Msg("Season processed with event failures")
	}

	return s.db.SaveSeasonResult(ctx, res)
}

func (s *Scheduler) epaConfig() epa.Config {
	return epa.Config{Prior: s.cfg.PriorEpa, K: s.cfg.EpaKFactor}
}
