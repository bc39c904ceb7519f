package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/PzmuV1517/FTCinsight/internal/epa"
	"github.com/PzmuV1517/FTCinsight/internal/metrics"
	"github.com/PzmuV1517/FTCinsight/internal/models"
	"github.com/PzmuV1517/FTCinsight/internal/stats"
)

// Options control a season run
type Options struct {
	UseCache    bool
	MaxWorkers  int
	Epa         epa.Config
	PredictionK float64 // 0 means epa.DefaultPredictionK
}

// SeasonResult is the full output of one season run. A non-empty Errors
// list is a partial success: the named events were skipped, everything
// else is valid.
type SeasonResult struct {
	Season      int
	Teams       []*models.Team
	Events      []*models.Event
	Matches     []*models.Match
	TeamYears   []*models.TeamYear
	TeamEvents  []*models.TeamEvent
	TeamMatches []*models.TeamMatch
	Rankings    []*models.Ranking
	Year        *models.Year
	Errors      []error
}

// ProcessSeason runs the full pipeline for one season: fetch the team and
// event listings, process every event on a bounded worker pool, merge the
// results, replay ratings, annotate predictions, and derive the rollups.
// Listing failures are fatal for the season; per-event failures are not.
func ProcessSeason(ctx context.Context, f Fetcher, season int, opts Options) (*SeasonResult, error) {
	start := time.Now()
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 10
	}
	if opts.Epa == (epa.Config{}) {
		opts.Epa = epa.DefaultConfig()
	}

	teams, err := f.FetchTeams(ctx, season, opts.UseCache)
	if err != nil {
		return nil, fmt.Errorf("season %d: failed to fetch teams: %w", season, err)
	}
	events, err := f.FetchEvents(ctx, season, opts.UseCache)
	if err != nil {
		return nil, fmt.Errorf("season %d: failed to fetch events: %w", season, err)
	}

	log.Info().
		Int("season", season).
		Int("teams", len(teams)).
		Int("events", len(events)).
		Int("workers", opts.MaxWorkers).
		Msg("Processing season")

	res := &SeasonResult{Season: season, Teams: teams}
	now := time.Now()

	for result := range processEvents(ctx, f, events, opts, now) {
		if result.Err != nil {
			log.Warn().Err(result.Err).Str("event", result.Event.Key).Msg("Event processing failed")
			metrics.RecordError("event_processor")
			res.Errors = append(res.Errors, result.Err)
			continue
		}
		res.Events = append(res.Events, result.Event)
		res.Matches = append(res.Matches, result.Matches...)
		res.TeamEvents = append(res.TeamEvents, result.TeamEvents...)
		res.Rankings = append(res.Rankings, result.Rankings...)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("season %d: %w", season, err)
	}

	derive(res, teams, opts)

	metrics.RecordMatchesIngested(season, len(res.Matches))
	metrics.RecordSeasonProcessed(season, time.Since(start))
	log.Info().
		Int("season", season).
		Int("events", len(res.Events)).
		Int("matches", len(res.Matches)).
		Int("team_years", len(res.TeamYears)).
		Int("errors", len(res.Errors)).
		Dur("elapsed", time.Since(start)).
		Msg("Season processed")

	return res, nil
}

// processEvents fans event processing out over the worker pool and streams
// results back as they complete. The returned channel closes once all
// events are done or the context is cancelled.
func processEvents(ctx context.Context, f Fetcher, events []*models.Event, opts Options, now time.Time) <-chan *EventResult {
	jobs := make(chan *models.Event)
	results := make(chan *EventResult)

	var wg sync.WaitGroup
	for i := 0; i < opts.MaxWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for event := range jobs {
				results <- ProcessEvent(ctx, f, event, opts.UseCache, now)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, event := range events {
			select {
			case <-ctx.Done():
				return
			case jobs <- event:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// derive runs the single-threaded reduction phase: ratings, predictions,
// team-event enrichment, and the season rollups.
func derive(res *SeasonResult, teams []*models.Team, opts Options) {
	cfg := opts.Epa
	teamsByNumber := make(map[int]*models.Team, len(teams))
	for _, t := range teams {
		teamsByNumber[t.Number] = t
	}

	matchesByTeam := make(map[int][]*models.Match)
	matchesByEvent := make(map[string][]*models.Match)
	for _, m := range res.Matches {
		matchesByEvent[m.Event] = append(matchesByEvent[m.Event], m)
		for _, team := range m.TeamNumbers() {
			if team != 0 {
				matchesByTeam[team] = append(matchesByTeam[team], m)
			}
		}
	}

	epaStart := time.Now()
	ratings := make(map[int]*epa.Rating, len(matchesByTeam))
	for team, teamMatches := range matchesByTeam {
		ratings[team] = epa.Calculate(teamMatches, team, cfg)
	}
	metrics.EpaComputeDuration.Observe(time.Since(epaStart).Seconds())

	var scores []float64
	for _, m := range res.Matches {
		if m.Completed() {
			scores = append(scores, float64(m.RedScore), float64(m.BlueScore))
		}
	}
	scoreSd := stats.StdDev(scores)

	epa.PredictMatches(res.Matches, ratings, scoreSd, opts.PredictionK, cfg)

	// Event completion order depends on worker scheduling; sort so the
	// derived output is identical across runs.
	sort.Slice(res.TeamEvents, func(i, j int) bool {
		a, b := res.TeamEvents[i], res.TeamEvents[j]
		if a.Event != b.Event {
			return a.Event < b.Event
		}
		return a.Team < b.Team
	})

	eventKeysByTeam := make(map[int][]string)
	for _, te := range res.TeamEvents {
		eventKeysByTeam[te.Team] = append(eventKeysByTeam[te.Team], te.Event)

		if t, ok := teamsByNumber[te.Team]; ok {
			te.TeamName = t.Name
		}
		eventMatches := matchesByTeam[te.Team]
		scoped := make([]*models.Match, 0, len(eventMatches))
		for _, m := range eventMatches {
			if m.Event == te.Event {
				scoped = append(scoped, m)
			}
		}
		te.WLT = epa.Record(scoped, te.Team, false)
		te.QualWLT = epa.Record(scoped, te.Team, true)
		stats.FillTeamEventEpa(te, ratings[te.Team], scoped)
	}

	// Every fetched team gets a TeamYear, including teams with no merged
	// matches; those stay at the prior rating with a zero record. Teams
	// that only appear in match data are kept as well.
	teamNumbers := make([]int, 0, len(teams))
	seen := make(map[int]bool, len(teams))
	for _, t := range teams {
		if seen[t.Number] {
			continue
		}
		seen[t.Number] = true
		teamNumbers = append(teamNumbers, t.Number)
	}
	for team := range ratings {
		if _, ok := teamsByNumber[team]; !ok {
			teamNumbers = append(teamNumbers, team)
		}
	}

	for _, team := range teamNumbers {
		rating, ok := ratings[team]
		if !ok {
			rating = epa.Calculate(nil, team, cfg)
		}
		ty := &models.TeamYear{
			Team:           team,
			Year:           res.Season,
			Epa:            rating.Epa,
			AutoEpa:        rating.AutoEpa,
			TeleopEpa:      rating.TeleopEpa,
			EndgameEpa:     rating.EndgameEpa,
			EpaStart:       rating.EpaStart,
			EpaMax:         rating.EpaMax,
			EpaDiff:        rating.Epa - rating.EpaStart,
			EventKeys:      eventKeysByTeam[team],
			EventsAttended: len(eventKeysByTeam[team]),
		}
		if t, ok := teamsByNumber[team]; ok {
			ty.Name = t.Name
			ty.Country = t.Country
			ty.State = t.State
			ty.RookieYear = t.RookieYear
		}
		ty.WLT = epa.Record(matchesByTeam[team], team, false)
		ty.QualWLT = epa.Record(matchesByTeam[team], team, true)
		res.TeamYears = append(res.TeamYears, ty)
	}

	stats.RankTeamYears(res.TeamYears)
	res.TeamMatches = stats.BuildTeamMatches(res.Matches, ratings)
	res.Year = stats.BuildYear(res.Season, res.TeamYears, res.Matches, len(res.Events))
}

// ProcessAllSeasons runs every season in [from, to] independently. A failed
// season is logged and skipped; the others still run.
func ProcessAllSeasons(ctx context.Context, f Fetcher, from, to int, opts Options) []*SeasonResult {
	var out []*SeasonResult
	for season := from; season <= to; season++ {
		if ctx.Err() != nil {
			break
		}
		res, err := ProcessSeason(ctx, f, season, opts)
		if err != nil {
			log.Error().Err(err).Int("season", season).Msg("Season run failed")
			metrics.RecordError("season_orchestrator")
			continue
		}
		out = append(out, res)
	}
	return out
}
