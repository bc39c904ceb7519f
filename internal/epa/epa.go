// Package epa implements the iterative alliance-share rating model. A
// team's rating starts at a season prior and moves toward half of each
// completed match's alliance score, weighted by the K factor.
package epa

import (
	"sort"

	"github.com/PzmuV1517/FTCinsight/internal/models"
)

// Config holds the rating model parameters
type Config struct {
	Prior float64 // Season starting rating
	K     float64 // Update weight per match
}

// DefaultConfig returns the standard model parameters
func DefaultConfig() Config {
	return Config{Prior: 20.0, K: 0.2}
}

// Snapshot captures a team's ratings immediately before and after one match
type Snapshot struct {
	EpaPre      float64 `json:"epa_pre"`
	EpaPost     float64 `json:"epa_post"`
	AutoPre     float64 `json:"auto_pre"`
	AutoPost    float64 `json:"auto_post"`
	TeleopPre   float64 `json:"teleop_pre"`
	TeleopPost  float64 `json:"teleop_post"`
	EndgamePre  float64 `json:"endgame_pre"`
	EndgamePost float64 `json:"endgame_post"`
}

// Rating is a team's season rating state after replaying its matches in order
type Rating struct {
	Epa        float64
	AutoEpa    float64
	TeleopEpa  float64
	EndgameEpa float64
	EpaStart   float64
	EpaMax     float64
	Count      int // Completed matches contributing to the rating
	History    map[string]Snapshot
}

// SortMatches orders matches chronologically, breaking time ties by key so
// replays are deterministic. The slice is sorted in place.
func SortMatches(matches []*models.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Time != matches[j].Time {
			return matches[i].Time < matches[j].Time
		}
		return matches[i].Key < matches[j].Key
	})
}

// Calculate replays a team's matches in chronological order and returns its
// rating state. Matches the team does not play in are ignored; scheduled but
// unplayed matches record a flat history snapshot and do not move the rating.
func Calculate(matches []*models.Match, team int, cfg Config) *Rating {
	ordered := make([]*models.Match, len(matches))
	copy(ordered, matches)
	SortMatches(ordered)

	r := &Rating{
		Epa:        cfg.Prior,
		AutoEpa:    0.3 * cfg.Prior,
		TeleopEpa:  0.5 * cfg.Prior,
		EndgameEpa: 0.2 * cfg.Prior,
		EpaStart:   cfg.Prior,
		EpaMax:     cfg.Prior,
		History:    make(map[string]Snapshot),
	}

	for _, m := range ordered {
		alliance, ok := m.AllianceOf(team)
		if !ok {
			continue
		}

		snap := Snapshot{
			EpaPre:     r.Epa,
			AutoPre:    r.AutoEpa,
			TeleopPre:  r.TeleopEpa,
			EndgamePre: r.EndgameEpa,
		}

		if m.Completed() {
			score := float64(m.AllianceScore(alliance))
			r.Epa = max(0, r.Epa+cfg.K*(score/2-r.Epa))
			if r.Epa > r.EpaMax {
				r.EpaMax = r.Epa
			}

			bd := m.AllianceBreakdown(alliance)
			if bd.HasComponents() {
				r.AutoEpa = max(0, r.AutoEpa+cfg.K*(bd.AutoPoints/2-r.AutoEpa))
				r.TeleopEpa = max(0, r.TeleopEpa+cfg.K*(bd.TeleopPoints/2-r.TeleopEpa))
				r.EndgameEpa = max(0, r.EndgameEpa+cfg.K*(bd.EndgamePoints/2-r.EndgameEpa))
			}
			r.Count++
		}

		snap.EpaPost = r.Epa
		snap.AutoPost = r.AutoEpa
		snap.TeleopPost = r.TeleopEpa
		snap.EndgamePost = r.EndgameEpa
		r.History[m.Key] = snap
	}

	return r
}

// Record replays a team's completed matches and tallies its win/loss/tie
// record. When qualOnly is set, only qualification matches count.
func Record(matches []*models.Match, team int, qualOnly bool) models.WLT {
	var rec models.WLT
	for _, m := range matches {
		if !m.Completed() {
			continue
		}
		if qualOnly && m.Elim {
			continue
		}
		alliance, ok := m.AllianceOf(team)
		if !ok {
			continue
		}

		switch {
		case m.Winner == models.WinnerTie:
			rec.Ties++
		case (m.Winner == models.WinnerRed) == (alliance == models.AllianceRed):
			rec.Wins++
		default:
			rec.Losses++
		}
		rec.Count++
	}

	if rec.Count > 0 {
		rec.Winrate = float64(rec.Wins) / float64(rec.Count)
	}
	return rec
}
