package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PzmuV1517/FTCinsight/internal/client"
	"github.com/PzmuV1517/FTCinsight/internal/models"
)

// fakeFetcher serves a canned season from memory
type fakeFetcher struct {
	teams      []*models.Team
	events     []*models.Event
	eventTeams map[string][]int
	matches    map[string][]*models.Match
	scores     map[string]client.EventScores
	rankings   map[string][]*models.Ranking
	failEvents map[string]error
}

func (f *fakeFetcher) FetchTeams(_ context.Context, _ int, _ bool) ([]*models.Team, error) {
	return f.teams, nil
}

func (f *fakeFetcher) FetchEvents(_ context.Context, _ int, _ bool) ([]*models.Event, error) {
	return f.events, nil
}

func (f *fakeFetcher) FetchEventTeams(_ context.Context, _ int, code string, _ bool) ([]int, error) {
	if err := f.failEvents[code]; err != nil {
		return nil, err
	}
	return f.eventTeams[code], nil
}

func (f *fakeFetcher) FetchEventMatches(_ context.Context, _ int, event *models.Event, _ bool) ([]*models.Match, error) {
	out := make([]*models.Match, len(f.matches[event.Code]))
	for i, m := range f.matches[event.Code] {
		clone := *m
		out[i] = &clone
	}
	return out, nil
}

func (f *fakeFetcher) FetchEventScores(_ context.Context, _ int, code, level string, _ bool) (client.EventScores, error) {
	if level != "qual" {
		return nil, nil
	}
	return f.scores[code], nil
}

func (f *fakeFetcher) FetchEventRankings(_ context.Context, _ int, code string, _ bool) ([]*models.Ranking, error) {
	return f.rankings[code], nil
}

func testSeason() *fakeFetcher {
	event := &models.Event{
		Key: "2024_USTXCMP", Season: 2024, Code: "USTXCMP", Name: "Texas Championship",
		StartDate: "2024-11-01", EndDate: "2024-11-02", Time: 1730419200, Week: 9,
	}

	completed := &models.Match{
		Key: "2024_USTXCMP_qm0m1", Event: event.Key, Season: 2024, Week: 9,
		CompLevel: models.CompLevelQual, MatchNumber: 1, Time: 1730420000,
		Status: models.MatchCompleted,
		Red1:   101, Red2: 102, Blue1: 103, Blue2: 104,
		RedScore: 50, BlueScore: 40, Winner: models.WinnerRed,
	}
	upcoming := &models.Match{
		Key: "2024_USTXCMP_qm0m2", Event: event.Key, Season: 2024, Week: 9,
		CompLevel: models.CompLevelQual, MatchNumber: 2, Time: 1730430000,
		Status: models.MatchUpcoming,
		Red1:   101, Red2: 103, Blue1: 102, Blue2: 104,
	}

	return &fakeFetcher{
		teams: []*models.Team{
			{Number: 101, Name: "Alpha", Country: "USA", State: "TX", RookieYear: 2015},
			{Number: 102, Name: "Beta"},
			{Number: 103, Name: "Gamma"},
			{Number: 104, Name: "Delta"},
		},
		events:     []*models.Event{event},
		eventTeams: map[string][]int{"USTXCMP": {101, 102, 103, 104}},
		matches:    map[string][]*models.Match{"USTXCMP": {completed, upcoming}},
		scores: map[string]client.EventScores{
			"USTXCMP": {
				1: {
					{TotalPoints: 50, AutoPoints: 10, TeleopPoints: 30, EndgamePoints: 10},
					{TotalPoints: 40, AutoPoints: 10, TeleopPoints: 20, EndgamePoints: 10},
				},
			},
		},
		rankings: map[string][]*models.Ranking{
			"USTXCMP": {
				{Team: 101, Event: event.Key, Rank: 1},
				{Team: 103, Event: event.Key, Rank: 2},
			},
		},
		failEvents: map[string]error{},
	}
}

func TestProcessSeason(t *testing.T) {
	f := testSeason()

	res, err := ProcessSeason(context.Background(), f, 2024, Options{MaxWorkers: 2})
	require.NoError(t, err)
	assert.Empty(t, res.Errors)

	require.Len(t, res.Events, 1)
	// End date in the past decides the status before match ratios do.
	assert.Equal(t, models.EventCompleted, res.Events[0].Status)
	assert.Equal(t, 4, res.Events[0].TeamCount)
	assert.Equal(t, 2, res.Events[0].MatchCount)

	assert.Len(t, res.Matches, 2)
	assert.Len(t, res.Rankings, 2)
	require.Len(t, res.TeamYears, 4)
	require.NotNil(t, res.Year)
	assert.Equal(t, 2024, res.Year.Year)
	assert.Equal(t, 4, res.Year.TeamCount)

	// Winners' ratings rose, losers' fell.
	byTeam := make(map[int]*models.TeamYear)
	for _, ty := range res.TeamYears {
		byTeam[ty.Team] = ty
	}
	assert.InDelta(t, 21.0, byTeam[101].Epa, 1e-9)
	assert.InDelta(t, 20.0, byTeam[103].Epa, 1e-9)
	assert.Equal(t, "Alpha", byTeam[101].Name)
	assert.Equal(t, 2015, byTeam[101].RookieYear)
	assert.Equal(t, 1, byTeam[101].Wins)
	assert.Equal(t, 1, byTeam[103].Losses)
	assert.Equal(t, 1, byTeam[101].EpaRank)

	// Every alliance slot of every match yields a team-match snapshot.
	assert.Len(t, res.TeamMatches, 8)

	// Team-event records were replayed and enriched.
	require.Len(t, res.TeamEvents, 4)
	for _, te := range res.TeamEvents {
		assert.NotEmpty(t, te.TeamName)
		assert.Equal(t, 4, te.NumTeams)
		if te.Team == 101 {
			assert.Equal(t, 1, te.Wins)
			assert.Equal(t, 1, te.Rank)
		}
	}

	// The upcoming match got a prediction.
	for _, m := range res.Matches {
		assert.Greater(t, m.WinProb, 0.0)
		assert.NotEmpty(t, m.PredWinner)
	}
}

func TestProcessSeason_Idempotent(t *testing.T) {
	f := testSeason()

	first, err := ProcessSeason(context.Background(), f, 2024, Options{})
	require.NoError(t, err)
	second, err := ProcessSeason(context.Background(), f, 2024, Options{})
	require.NoError(t, err)

	assert.Equal(t, first.Year, second.Year)
	assert.Equal(t, first.TeamYears, second.TeamYears)
}

func TestProcessSeason_MatchlessTeamGetsTeamYear(t *testing.T) {
	f := testSeason()
	f.teams = append(f.teams, &models.Team{Number: 105, Name: "Epsilon"})
	f.eventTeams["USTXCMP"] = append(f.eventTeams["USTXCMP"], 105)

	res, err := ProcessSeason(context.Background(), f, 2024, Options{})
	require.NoError(t, err)

	// Every fetched team gets a TeamYear even without a single match,
	// and the season team count follows the roster.
	require.Len(t, res.TeamYears, 5)
	assert.Equal(t, 5, res.Year.TeamCount)

	byTeam := make(map[int]*models.TeamYear)
	for _, ty := range res.TeamYears {
		byTeam[ty.Team] = ty
	}
	require.Contains(t, byTeam, 105)
	assert.InDelta(t, 20.0, byTeam[105].Epa, 1e-9)
	assert.InDelta(t, 20.0, byTeam[105].EpaStart, 1e-9)
	assert.Equal(t, 0, byTeam[105].Count)
	assert.Equal(t, 0.0, byTeam[105].Winrate)
	assert.Equal(t, "Epsilon", byTeam[105].Name)

	// The matchless team is ranked with everyone else, widening the
	// percentile denominator to the roster size.
	assert.Equal(t, 5, byTeam[105].EpaRank)
	assert.InDelta(t, 0.2, byTeam[105].EpaPercentile, 1e-9)
}

func TestProcessSeason_EventKeysSorted(t *testing.T) {
	f := testSeason()
	second := &models.Event{
		Key: "2024_USAZCMP", Season: 2024, Code: "USAZCMP", Name: "Arizona Championship",
		StartDate: "2024-11-08", EndDate: "2024-11-09", Time: 1731024000, Week: 10,
	}
	f.events = append(f.events, second)
	f.eventTeams["USAZCMP"] = []int{101, 102, 103, 104}
	f.matches["USAZCMP"] = []*models.Match{{
		Key: "2024_USAZCMP_qm0m1", Event: second.Key, Season: 2024, Week: 10,
		CompLevel: models.CompLevelQual, MatchNumber: 1, Time: 1731030000,
		Status: models.MatchCompleted,
		Red1:   101, Red2: 104, Blue1: 102, Blue2: 103,
		RedScore: 30, BlueScore: 35, Winner: models.WinnerBlue,
	}}

	// Event keys must come out sorted regardless of which worker finishes
	// first, so repeat runs see identical aggregates.
	for i := 0; i < 10; i++ {
		res, err := ProcessSeason(context.Background(), f, 2024, Options{MaxWorkers: 2})
		require.NoError(t, err)

		for _, ty := range res.TeamYears {
			require.Equal(t, []string{"2024_USAZCMP", "2024_USTXCMP"}, ty.EventKeys)
		}
	}
}

func TestProcessSeason_EventFailureIsIsolated(t *testing.T) {
	f := testSeason()
	f.events = append(f.events, &models.Event{
		Key: "2024_BROKEN", Season: 2024, Code: "BROKEN",
	})
	f.failEvents["BROKEN"] = errors.New("upstream 500")

	res, err := ProcessSeason(context.Background(), f, 2024, Options{})
	require.NoError(t, err)

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Error(), "2024_BROKEN")
	assert.Len(t, res.Events, 1)
	assert.Len(t, res.Matches, 2)
}

func TestProcessSeason_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ProcessSeason(ctx, testSeason(), 2024, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessEvent_StatusFromDates(t *testing.T) {
	f := testSeason()
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	res := ProcessEvent(context.Background(), f, f.events[0], false, now)
	require.NoError(t, res.Err)
	assert.Equal(t, models.EventCompleted, res.Event.Status)
}

func TestProcessAllSeasons(t *testing.T) {
	f := testSeason()

	results := ProcessAllSeasons(context.Background(), f, 2023, 2024, Options{})
	require.Len(t, results, 2)
	assert.Equal(t, 2023, results[0].Season)
	assert.Equal(t, 2024, results[1].Season)
}
