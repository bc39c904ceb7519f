package epa

import (
	"math"

	"github.com/PzmuV1517/FTCinsight/internal/models"
)

// DefaultPredictionK scales the rating gap inside the logistic win model
const DefaultPredictionK = 0.8

// WinProbability returns the red alliance win probability for the given
// rating sums and season score deviation, clamped to [0.01, 0.99].
func WinProbability(redEpa, blueEpa, scoreSd, k float64) float64 {
	if scoreSd <= 0 {
		scoreSd = 50
	}
	p := 1 / (1 + math.Pow(10, -k*(redEpa-blueEpa)/scoreSd))
	p = math.Min(0.99, math.Max(0.01, p))
	return round(p, 4)
}

// PredictMatches fills in the prediction fields of every match from the
// team ratings. Teams without a rating contribute the prior. scoreSd is the
// season-wide alliance score standard deviation; k is the logistic
// steepness (DefaultPredictionK when 0).
func PredictMatches(matches []*models.Match, ratings map[int]*Rating, scoreSd, k float64, cfg Config) {
	if k == 0 {
		k = DefaultPredictionK
	}
	for _, m := range matches {
		redEpa := teamEpa(ratings, m.Red1, cfg.Prior) + teamEpa(ratings, m.Red2, cfg.Prior)
		blueEpa := teamEpa(ratings, m.Blue1, cfg.Prior) + teamEpa(ratings, m.Blue2, cfg.Prior)

		sd := scoreSd
		if sd <= 0 {
			sd = 50
		}

		m.WinProb = WinProbability(redEpa, blueEpa, sd, k)
		m.RedScorePred = round(redEpa+1.5*sd, 2)
		m.BlueScorePred = round(blueEpa+1.5*sd, 2)
		if m.WinProb >= 0.5 {
			m.PredWinner = models.WinnerRed
		} else {
			m.PredWinner = models.WinnerBlue
		}
	}
}

// teamEpa resolves a team's rating, falling back to the season prior for
// teams the model has never seen.
func teamEpa(ratings map[int]*Rating, team int, prior float64) float64 {
	if r, ok := ratings[team]; ok {
		return r.Epa
	}
	return prior
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
