// Package pipeline orchestrates season processing: per-event fetching and
// normalization fanned out over a worker pool, then a single-threaded merge
// that feeds the rating engine and the statistics rollups.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/PzmuV1517/FTCinsight/internal/client"
	"github.com/PzmuV1517/FTCinsight/internal/metrics"
	"github.com/PzmuV1517/FTCinsight/internal/models"
)

// Fetcher is the data-source surface the pipeline consumes. *client.Client
// satisfies it; tests substitute a fake.
type Fetcher interface {
	FetchTeams(ctx context.Context, season int, useCache bool) ([]*models.Team, error)
	FetchEvents(ctx context.Context, season int, useCache bool) ([]*models.Event, error)
	FetchEventTeams(ctx context.Context, season int, eventCode string, useCache bool) ([]int, error)
	FetchEventMatches(ctx context.Context, season int, event *models.Event, useCache bool) ([]*models.Match, error)
	FetchEventScores(ctx context.Context, season int, eventCode, level string, useCache bool) (client.EventScores, error)
	FetchEventRankings(ctx context.Context, season int, eventCode string, useCache bool) ([]*models.Ranking, error)
}

// EventResult is one event's normalized output. Err is set instead of the
// data fields when processing failed; the orchestrator skips such events.
type EventResult struct {
	Event      *models.Event
	Matches    []*models.Match
	TeamEvents []*models.TeamEvent
	Rankings   []*models.Ranking
	Err        error
}

// ProcessEvent fetches and normalizes one event. It never fails past its
// own boundary: any fetch or decode error is captured into the result so a
// single bad event cannot abort the season.
func ProcessEvent(ctx context.Context, f Fetcher, event *models.Event, useCache bool, now time.Time) *EventResult {
	res := &EventResult{Event: event}

	teamNumbers, err := f.FetchEventTeams(ctx, event.Season, event.Code, useCache)
	if err != nil {
		res.Err = fmt.Errorf("event %s: %w", event.Key, err)
		return res
	}

	for _, number := range teamNumbers {
		res.TeamEvents = append(res.TeamEvents, &models.TeamEvent{
			Team:      number,
			Event:     event.Key,
			Year:      event.Season,
			EventName: event.Name,
			Week:      event.Week,
			Time:      event.Time,
			Type:      event.Type,
			Country:   event.Country,
			State:     event.State,
			NumTeams:  len(teamNumbers),
		})
	}

	matches, err := f.FetchEventMatches(ctx, event.Season, event, useCache)
	if err != nil {
		res.Err = fmt.Errorf("event %s: %w", event.Key, err)
		return res
	}

	if err := mergeBreakdowns(ctx, f, event, matches, useCache); err != nil {
		res.Err = fmt.Errorf("event %s: %w", event.Key, err)
		return res
	}
	res.Matches = matches

	rankings, err := f.FetchEventRankings(ctx, event.Season, event.Code, useCache)
	if err != nil {
		res.Err = fmt.Errorf("event %s: %w", event.Key, err)
		return res
	}
	res.Rankings = rankings

	rankByTeam := make(map[int]int, len(rankings))
	for _, r := range rankings {
		rankByTeam[r.Team] = r.Rank
	}
	for _, te := range res.TeamEvents {
		te.Rank = rankByTeam[te.Team]
	}

	event.Status = models.DeriveEventStatus(event, matches, now)
	event.TeamCount = len(teamNumbers)
	event.MatchCount = len(matches)

	log.Debug().
		Str("event", event.Key).
		Str("status", string(event.Status)).
		Int("teams", event.TeamCount).
		Int("matches", event.MatchCount).
		Msg("Processed event")
	metrics.RecordEventProcessed(string(event.Status))

	return res
}

// mergeBreakdowns attaches the per-level score breakdowns to matches,
// keyed by match number within each tournament level.
func mergeBreakdowns(ctx context.Context, f Fetcher, event *models.Event, matches []*models.Match, useCache bool) error {
	for _, level := range []string{"qual", "playoff"} {
		scores, err := f.FetchEventScores(ctx, event.Season, event.Code, level, useCache)
		if err != nil {
			return err
		}
		if len(scores) == 0 {
			continue
		}
		elim := level != "qual"
		for _, m := range matches {
			if m.Elim != elim {
				continue
			}
			if pair, ok := scores[m.MatchNumber]; ok {
				m.RedBreakdown = pair[0]
				m.BlueBreakdown = pair[1]
			}
		}
	}
	return nil
}
