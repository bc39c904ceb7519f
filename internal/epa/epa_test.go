package epa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PzmuV1517/FTCinsight/internal/models"
)

func completedMatch(key string, t int64, red1, red2, blue1, blue2, redScore, blueScore int) *models.Match {
	return &models.Match{
		Key:       key,
		Time:      t,
		Status:    models.MatchCompleted,
		Red1:      red1,
		Red2:      red2,
		Blue1:     blue1,
		Blue2:     blue2,
		RedScore:  redScore,
		BlueScore: blueScore,
		Winner:    models.WinnerFromScores(redScore, blueScore),
	}
}

func TestCalculate_SingleMatch(t *testing.T) {
	matches := []*models.Match{
		completedMatch("2024_USTXCMP_qm0m1", 100, 100, 200, 300, 400, 50, 40),
	}

	r := Calculate(matches, 100, DefaultConfig())

	// 20 + 0.2*(50/2 - 20) = 21
	assert.InDelta(t, 21.0, r.Epa, 1e-9)
	assert.Equal(t, 20.0, r.EpaStart)
	assert.InDelta(t, 21.0, r.EpaMax, 1e-9)
	assert.Equal(t, 1, r.Count)

	snap, ok := r.History["2024_USTXCMP_qm0m1"]
	require.True(t, ok)
	assert.Equal(t, 20.0, snap.EpaPre)
	assert.InDelta(t, 21.0, snap.EpaPost, 1e-9)
}

func TestCalculate_LosingAllianceScoreDrivesUpdate(t *testing.T) {
	// The model tracks alliance output, not match outcome: the blue team
	// updates toward its own alliance score even in a loss.
	matches := []*models.Match{
		completedMatch("2024_USTXCMP_qm0m1", 100, 100, 200, 300, 400, 80, 40),
	}

	r := Calculate(matches, 300, DefaultConfig())

	// 20 + 0.2*(40/2 - 20) = 20
	assert.InDelta(t, 20.0, r.Epa, 1e-9)
}

func TestCalculate_HistoryContinuity(t *testing.T) {
	matches := []*models.Match{
		completedMatch("2024_USTXCMP_qm0m2", 200, 100, 201, 301, 401, 30, 60),
		completedMatch("2024_USTXCMP_qm0m1", 100, 100, 200, 300, 400, 50, 40),
	}

	r := Calculate(matches, 100, DefaultConfig())
	require.Len(t, r.History, 2)

	first := r.History["2024_USTXCMP_qm0m1"]
	second := r.History["2024_USTXCMP_qm0m2"]
	assert.Equal(t, first.EpaPost, second.EpaPre)
	assert.Equal(t, second.EpaPost, r.Epa)
	assert.Equal(t, 2, r.Count)
}

func TestCalculate_TimeTieBrokenByKey(t *testing.T) {
	// Same timestamp: the lexically smaller key replays first.
	matches := []*models.Match{
		completedMatch("2024_USTXCMP_qm0m2", 100, 100, 201, 301, 401, 30, 60),
		completedMatch("2024_USTXCMP_qm0m1", 100, 100, 200, 300, 400, 50, 40),
	}

	r := Calculate(matches, 100, DefaultConfig())

	assert.Equal(t, 20.0, r.History["2024_USTXCMP_qm0m1"].EpaPre)
	assert.Equal(t, r.History["2024_USTXCMP_qm0m1"].EpaPost, r.History["2024_USTXCMP_qm0m2"].EpaPre)
}

func TestCalculate_UnplayedMatchIsFlat(t *testing.T) {
	upcoming := &models.Match{
		Key:    "2024_USTXCMP_qm0m3",
		Time:   300,
		Status: models.MatchUpcoming,
		Red1:   100, Red2: 200, Blue1: 300, Blue2: 400,
	}
	matches := []*models.Match{
		completedMatch("2024_USTXCMP_qm0m1", 100, 100, 200, 300, 400, 50, 40),
		upcoming,
	}

	r := Calculate(matches, 100, DefaultConfig())

	snap, ok := r.History["2024_USTXCMP_qm0m3"]
	require.True(t, ok)
	assert.Equal(t, snap.EpaPre, snap.EpaPost)
	assert.Equal(t, snap.AutoPre, snap.AutoPost)
	assert.Equal(t, 1, r.Count)
}

func TestCalculate_ComponentPriorsAndGate(t *testing.T) {
	m := completedMatch("2024_USTXCMP_qm0m1", 100, 100, 200, 300, 400, 50, 40)
	m.RedBreakdown = models.Breakdown{
		TotalPoints:   50,
		AutoPoints:    10,
		TeleopPoints:  30,
		EndgamePoints: 10,
	}
	r := Calculate([]*models.Match{m}, 100, DefaultConfig())

	// Component priors split the total prior 30/50/20.
	assert.InDelta(t, 0.3*20+0.2*(5-0.3*20), r.AutoEpa, 1e-9)
	assert.InDelta(t, 0.5*20+0.2*(15-0.5*20), r.TeleopEpa, 1e-9)
	assert.InDelta(t, 0.2*20+0.2*(5-0.2*20), r.EndgameEpa, 1e-9)

	// An empty breakdown leaves the component ratings untouched.
	m2 := completedMatch("2024_USTXCMP_qm0m1", 100, 100, 200, 300, 400, 50, 40)
	r2 := Calculate([]*models.Match{m2}, 100, DefaultConfig())
	assert.Equal(t, 0.3*20.0, r2.AutoEpa)
	assert.Equal(t, 0.5*20.0, r2.TeleopEpa)
	assert.Equal(t, 0.2*20.0, r2.EndgameEpa)
}

func TestCalculate_NeverNegative(t *testing.T) {
	var matches []*models.Match
	for i := 1; i <= 20; i++ {
		matches = append(matches, completedMatch(
			models.MatchKey("2024_USTXCMP", models.CompLevelQual, 0, i),
			int64(i*100), 100, 200, 300, 400, 0, 0))
	}

	r := Calculate(matches, 100, DefaultConfig())
	assert.GreaterOrEqual(t, r.Epa, 0.0)
	assert.Equal(t, 20.0, r.EpaMax)
}

func TestRecord(t *testing.T) {
	matches := []*models.Match{
		completedMatch("2024_USTXCMP_qm0m1", 100, 100, 200, 300, 400, 50, 40),
		completedMatch("2024_USTXCMP_qm0m2", 200, 100, 201, 301, 401, 30, 30),
	}

	rec := Record(matches, 100, false)
	assert.Equal(t, models.WLT{Wins: 1, Losses: 0, Ties: 1, Count: 2, Winrate: 0.5}, rec)

	// A loss on the blue side.
	rec = Record(matches, 300, false)
	assert.Equal(t, models.WLT{Wins: 0, Losses: 1, Ties: 0, Count: 1, Winrate: 0.0}, rec)
}

func TestRecord_QualOnly(t *testing.T) {
	elim := completedMatch("2024_USTXCMP_sf1m1", 300, 100, 200, 300, 400, 20, 70)
	elim.Elim = true
	elim.CompLevel = models.CompLevelSemi
	matches := []*models.Match{
		completedMatch("2024_USTXCMP_qm0m1", 100, 100, 200, 300, 400, 50, 40),
		elim,
	}

	full := Record(matches, 100, false)
	assert.Equal(t, 2, full.Count)
	assert.Equal(t, 1, full.Losses)

	qual := Record(matches, 100, true)
	assert.Equal(t, models.WLT{Wins: 1, Losses: 0, Ties: 0, Count: 1, Winrate: 1.0}, qual)
}

func TestRecord_Empty(t *testing.T) {
	rec := Record(nil, 100, false)
	assert.Equal(t, 0.0, rec.Winrate)
	assert.Equal(t, 0, rec.Count)
}
