// Package stats derives the season-wide rollups: team ranks and rating
// scales, score and rating distributions, and the per-event and per-match
// rating windows. Everything here is recomputed from scratch each run.
package stats

import (
	"math"
	"sort"

	"github.com/PzmuV1517/FTCinsight/internal/epa"
	"github.com/PzmuV1517/FTCinsight/internal/models"
)

// Mean returns the arithmetic mean, 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation, 0 for fewer than two values
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}

// Median returns the middle value, averaging the two middle values for an
// even count. 0 for an empty slice.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// percentileDesc returns the p-th percentile of a descending-sorted slice
// by direct indexing, without interpolation.
func percentileDesc(sortedDesc []float64, p float64) float64 {
	n := len(sortedDesc)
	if n == 0 {
		return 0
	}
	idx := int(float64(n) * (1 - p))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sortedDesc[idx]
}

// RankTeamYears sorts the season's team records by final rating, assigns
// 1-based ranks and percentiles, and fills in the two normalized scales:
// a z-score scale centered at 1500 and a percentile scale on [1200, 1800].
// The slice is reordered in place.
func RankTeamYears(teamYears []*models.TeamYear) {
	n := len(teamYears)
	if n == 0 {
		return
	}

	sort.SliceStable(teamYears, func(i, j int) bool {
		if teamYears[i].Epa != teamYears[j].Epa {
			return teamYears[i].Epa > teamYears[j].Epa
		}
		return teamYears[i].Team < teamYears[j].Team
	})

	epas := make([]float64, n)
	for i, ty := range teamYears {
		epas[i] = ty.Epa
	}
	mean := Mean(epas)
	sd := StdDev(epas)

	for i, ty := range teamYears {
		ty.EpaRank = i + 1
		ty.EpaPercentile = 1 - float64(i)/float64(n)

		z := 0.0
		if sd > 0 {
			z = (ty.Epa - mean) / sd
		}
		ty.NormEpa = round2(1500 + 150*z)
		ty.UnitlessEpa = round2(1200 + 600*ty.EpaPercentile)
	}
}

// BuildYear computes the season's score and rating distributions from the
// merged match set and the ranked team records.
func BuildYear(season int, teamYears []*models.TeamYear, matches []*models.Match, eventCount int) *models.Year {
	y := &models.Year{
		Year:       season,
		TeamCount:  len(teamYears),
		EventCount: eventCount,
		MatchCount: len(matches),
	}

	var scores, autos, teleops, endgames []float64
	for _, m := range matches {
		if !m.Completed() {
			continue
		}
		scores = append(scores, float64(m.RedScore), float64(m.BlueScore))
		for _, bd := range []models.Breakdown{m.RedBreakdown, m.BlueBreakdown} {
			if bd.HasComponents() {
				autos = append(autos, bd.AutoPoints)
				teleops = append(teleops, bd.TeleopPoints)
				endgames = append(endgames, bd.EndgamePoints)
			}
		}
	}

	y.ScoreMean = round2(Mean(scores))
	y.ScoreSD = round2(StdDev(scores))
	y.ScoreMedian = round2(Median(scores))
	y.AutoMean = round2(Mean(autos))
	y.TeleopMean = round2(Mean(teleops))
	y.EndgameMean = round2(Mean(endgames))

	total := ratingColumn(teamYears, func(ty *models.TeamYear) float64 { return ty.Epa })
	auto := ratingColumn(teamYears, func(ty *models.TeamYear) float64 { return ty.AutoEpa })
	teleop := ratingColumn(teamYears, func(ty *models.TeamYear) float64 { return ty.TeleopEpa })
	endgame := ratingColumn(teamYears, func(ty *models.TeamYear) float64 { return ty.EndgameEpa })

	y.EpaMean = round2(Mean(total))
	y.EpaSD = round2(StdDev(total))
	if len(total) > 0 {
		y.EpaMax = total[0]
	}

	y.Epa99p = percentileDesc(total, 0.99)
	y.Epa90p = percentileDesc(total, 0.90)
	y.Epa75p = percentileDesc(total, 0.75)
	y.Epa25p = percentileDesc(total, 0.25)

	y.AutoEpa99p = percentileDesc(auto, 0.99)
	y.AutoEpa90p = percentileDesc(auto, 0.90)
	y.AutoEpa75p = percentileDesc(auto, 0.75)
	y.AutoEpa25p = percentileDesc(auto, 0.25)

	y.TeleopEpa99p = percentileDesc(teleop, 0.99)
	y.TeleopEpa90p = percentileDesc(teleop, 0.90)
	y.TeleopEpa75p = percentileDesc(teleop, 0.75)
	y.TeleopEpa25p = percentileDesc(teleop, 0.25)

	y.EndgameEpa99p = percentileDesc(endgame, 0.99)
	y.EndgameEpa90p = percentileDesc(endgame, 0.90)
	y.EndgameEpa75p = percentileDesc(endgame, 0.75)
	y.EndgameEpa25p = percentileDesc(endgame, 0.25)

	return y
}

func ratingColumn(teamYears []*models.TeamYear, field func(*models.TeamYear) float64) []float64 {
	out := make([]float64, 0, len(teamYears))
	for _, ty := range teamYears {
		out = append(out, field(ty))
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(out)))
	return out
}

// FillTeamEventEpa recomputes a team-event's rating window from the team's
// history restricted to that event's matches. EpaPreElim is the rating
// after the team's last qualification match, or EpaEnd if it played none.
func FillTeamEventEpa(te *models.TeamEvent, rating *epa.Rating, eventMatches []*models.Match) {
	if rating == nil {
		return
	}

	played := make([]*models.Match, 0, len(eventMatches))
	for _, m := range eventMatches {
		if _, ok := m.AllianceOf(te.Team); !ok {
			continue
		}
		if _, ok := rating.History[m.Key]; !ok {
			continue
		}
		played = append(played, m)
	}
	if len(played) == 0 {
		return
	}
	epa.SortMatches(played)

	first := rating.History[played[0].Key]
	last := rating.History[played[len(played)-1].Key]
	te.EpaStart = first.EpaPre
	te.EpaEnd = last.EpaPost
	te.EpaPreElim = te.EpaEnd

	te.EpaMax = te.EpaStart
	for _, m := range played {
		snap := rating.History[m.Key]
		if snap.EpaPost > te.EpaMax {
			te.EpaMax = snap.EpaPost
		}
		if !m.Elim {
			te.EpaPreElim = snap.EpaPost
		}
	}
}

// BuildTeamMatches emits one record per (team, match) alliance slot with
// the team's rating snapshot for that match.
func BuildTeamMatches(matches []*models.Match, ratings map[int]*epa.Rating) []*models.TeamMatch {
	var out []*models.TeamMatch
	for _, m := range matches {
		for _, team := range m.TeamNumbers() {
			if team == 0 {
				continue
			}
			r, ok := ratings[team]
			if !ok {
				continue
			}
			snap, ok := r.History[m.Key]
			if !ok {
				continue
			}
			alliance, _ := m.AllianceOf(team)

			out = append(out, &models.TeamMatch{
				Team:       team,
				Match:      m.Key,
				Event:      m.Event,
				Year:       m.Season,
				Week:       m.Week,
				Time:       m.Time,
				Alliance:   alliance,
				Status:     m.Status,
				Epa:        snap.EpaPre,
				AutoEpa:    snap.AutoPre,
				TeleopEpa:  snap.TeleopPre,
				EndgameEpa: snap.EndgamePre,
				PostEpa:    snap.EpaPost,
			})
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
