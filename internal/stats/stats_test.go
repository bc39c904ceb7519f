package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PzmuV1517/FTCinsight/internal/epa"
	"github.com/PzmuV1517/FTCinsight/internal/models"
)

func TestMeanMedianStdDev(t *testing.T) {
	values := []float64{10, 20, 30, 40}

	assert.Equal(t, 25.0, Mean(values))
	assert.Equal(t, 25.0, Median(values))
	assert.InDelta(t, 11.1803, StdDev(values), 1e-4)

	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 0.0, StdDev([]float64{5}))
	assert.Equal(t, 30.0, Median([]float64{30, 10, 50}))
}

func TestRankTeamYears(t *testing.T) {
	teamYears := []*models.TeamYear{
		{Team: 1, Epa: 25},
		{Team: 2, Epa: 40},
		{Team: 3, Epa: 10},
		{Team: 4, Epa: 32},
	}

	RankTeamYears(teamYears)

	require.Equal(t, 2, teamYears[0].Team)
	assert.Equal(t, 1, teamYears[0].EpaRank)
	assert.Equal(t, 1.0, teamYears[0].EpaPercentile)
	assert.Equal(t, 1800.0, teamYears[0].UnitlessEpa)

	require.Equal(t, 3, teamYears[3].Team)
	assert.Equal(t, 4, teamYears[3].EpaRank)
	assert.Equal(t, 0.25, teamYears[3].EpaPercentile)
	assert.Equal(t, 1350.0, teamYears[3].UnitlessEpa)

	// The z-score scale is centered at 1500.
	var sum float64
	for _, ty := range teamYears {
		sum += ty.NormEpa
	}
	assert.InDelta(t, 1500.0, sum/4, 0.01)
}

func TestRankTeamYears_EqualEpaBrokenByTeamNumber(t *testing.T) {
	teamYears := []*models.TeamYear{
		{Team: 9, Epa: 20},
		{Team: 3, Epa: 20},
	}

	RankTeamYears(teamYears)

	assert.Equal(t, 3, teamYears[0].Team)
	assert.Equal(t, 1, teamYears[0].EpaRank)
	assert.Equal(t, 2, teamYears[1].EpaRank)
}

func TestBuildYear(t *testing.T) {
	teamYears := []*models.TeamYear{
		{Team: 1, Epa: 30, AutoEpa: 9, TeleopEpa: 15, EndgameEpa: 6},
		{Team: 2, Epa: 20, AutoEpa: 6, TeleopEpa: 10, EndgameEpa: 4},
	}
	matches := []*models.Match{
		{
			Status: models.MatchCompleted, Season: 2024,
			RedScore: 60, BlueScore: 40,
			RedBreakdown:  models.Breakdown{AutoPoints: 20, TeleopPoints: 30, EndgamePoints: 10},
			BlueBreakdown: models.Breakdown{AutoPoints: 10, TeleopPoints: 20, EndgamePoints: 10},
		},
		{Status: models.MatchUpcoming, Season: 2024},
	}

	y := BuildYear(2024, teamYears, matches, 3)

	assert.Equal(t, 2024, y.Year)
	assert.Equal(t, 2, y.TeamCount)
	assert.Equal(t, 3, y.EventCount)
	assert.Equal(t, 2, y.MatchCount)

	// Only the completed match contributes scores.
	assert.Equal(t, 50.0, y.ScoreMean)
	assert.Equal(t, 50.0, y.ScoreMedian)
	assert.Equal(t, 15.0, y.AutoMean)
	assert.Equal(t, 25.0, y.TeleopMean)

	assert.Equal(t, 25.0, y.EpaMean)
	assert.Equal(t, 30.0, y.EpaMax)
	assert.Equal(t, 30.0, y.Epa99p)
	assert.Equal(t, 20.0, y.Epa25p)
}

func TestFillTeamEventEpa(t *testing.T) {
	qual1 := &models.Match{Key: "2024_USTXCMP_qm0m1", Time: 100, Red1: 7, Red2: 8, Blue1: 9, Blue2: 10}
	qual2 := &models.Match{Key: "2024_USTXCMP_qm0m2", Time: 200, Red1: 7, Red2: 11, Blue1: 12, Blue2: 13}
	elim := &models.Match{Key: "2024_USTXCMP_f0m1", Time: 300, Elim: true, Red1: 7, Red2: 8, Blue1: 9, Blue2: 10}

	rating := &epa.Rating{
		History: map[string]epa.Snapshot{
			qual1.Key: {EpaPre: 20, EpaPost: 22},
			qual2.Key: {EpaPre: 22, EpaPost: 21},
			elim.Key:  {EpaPre: 21, EpaPost: 24},
		},
	}

	te := &models.TeamEvent{Team: 7, Event: "2024_USTXCMP"}
	FillTeamEventEpa(te, rating, []*models.Match{elim, qual2, qual1})

	assert.Equal(t, 20.0, te.EpaStart)
	assert.Equal(t, 24.0, te.EpaEnd)
	assert.Equal(t, 24.0, te.EpaMax)
	assert.Equal(t, 21.0, te.EpaPreElim)
}

func TestFillTeamEventEpa_NoQualMatches(t *testing.T) {
	elim := &models.Match{Key: "2024_USTXCMP_sf1m1", Time: 300, Elim: true, Red1: 7, Red2: 8, Blue1: 9, Blue2: 10}
	rating := &epa.Rating{
		History: map[string]epa.Snapshot{
			elim.Key: {EpaPre: 21, EpaPost: 24},
		},
	}

	te := &models.TeamEvent{Team: 7, Event: "2024_USTXCMP"}
	FillTeamEventEpa(te, rating, []*models.Match{elim})

	assert.Equal(t, 24.0, te.EpaEnd)
	assert.Equal(t, te.EpaEnd, te.EpaPreElim)
}

func TestBuildTeamMatches(t *testing.T) {
	m := &models.Match{
		Key: "2024_USTXCMP_qm0m1", Event: "2024_USTXCMP", Season: 2024, Week: 10,
		Time: 100, Status: models.MatchCompleted,
		Red1: 7, Red2: 8, Blue1: 9, Blue2: 10,
	}
	ratings := map[int]*epa.Rating{
		7: {History: map[string]epa.Snapshot{m.Key: {EpaPre: 20, EpaPost: 21, AutoPre: 6}}},
		9: {History: map[string]epa.Snapshot{m.Key: {EpaPre: 18, EpaPost: 17}}},
	}

	teamMatches := BuildTeamMatches([]*models.Match{m}, ratings)
	require.Len(t, teamMatches, 2)

	assert.Equal(t, 7, teamMatches[0].Team)
	assert.Equal(t, models.AllianceRed, teamMatches[0].Alliance)
	assert.Equal(t, 20.0, teamMatches[0].Epa)
	assert.Equal(t, 21.0, teamMatches[0].PostEpa)
	assert.Equal(t, 6.0, teamMatches[0].AutoEpa)

	assert.Equal(t, 9, teamMatches[1].Team)
	assert.Equal(t, models.AllianceBlue, teamMatches[1].Alliance)
}
