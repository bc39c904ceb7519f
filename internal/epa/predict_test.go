package epa

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PzmuV1517/FTCinsight/internal/models"
)

func TestWinProbability_EvenMatch(t *testing.T) {
	assert.Equal(t, 0.5, WinProbability(40, 40, 30, DefaultPredictionK))
}

func TestWinProbability_Clamped(t *testing.T) {
	assert.Equal(t, 0.99, WinProbability(500, 10, 30, DefaultPredictionK))
	assert.Equal(t, 0.01, WinProbability(10, 500, 30, DefaultPredictionK))
}

func TestWinProbability_SdFallback(t *testing.T) {
	// A non-positive deviation falls back to 50.
	assert.Equal(t, WinProbability(60, 40, 50, DefaultPredictionK), WinProbability(60, 40, 0, DefaultPredictionK))
	assert.Equal(t, WinProbability(60, 40, 50, DefaultPredictionK), WinProbability(60, 40, -3, DefaultPredictionK))
}

func TestPredictMatches(t *testing.T) {
	ratings := map[int]*Rating{
		100: {Epa: 30},
		200: {Epa: 25},
		300: {Epa: 10},
		400: {Epa: 15},
	}
	m := &models.Match{
		Key:  "2024_USTXCMP_qm0m1",
		Red1: 100, Red2: 200, Blue1: 300, Blue2: 400,
	}

	PredictMatches([]*models.Match{m}, ratings, 20, 0, DefaultConfig())

	// gap = 55 - 25 = 30, p = 1/(1+10^(-0.8*30/20))
	assert.InDelta(t, 0.9407, m.WinProb, 1e-4)
	assert.Equal(t, models.WinnerRed, m.PredWinner)
	assert.Equal(t, 85.0, m.RedScorePred)  // 55 + 1.5*20
	assert.Equal(t, 55.0, m.BlueScorePred) // 25 + 1.5*20
}

func TestPredictMatches_UnknownTeamUsesPrior(t *testing.T) {
	ratings := map[int]*Rating{
		100: {Epa: 20},
		200: {Epa: 20},
	}
	m := &models.Match{
		Key:  "2024_USTXCMP_qm0m1",
		Red1: 100, Red2: 200, Blue1: 999, Blue2: 998,
	}

	PredictMatches([]*models.Match{m}, ratings, 20, 0, DefaultConfig())

	// Unknown blue teams default to the 20.0 prior, so the match is even.
	assert.Equal(t, 0.5, m.WinProb)
	assert.Equal(t, models.WinnerRed, m.PredWinner)
}
