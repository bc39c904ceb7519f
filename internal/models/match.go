package models

import "fmt"

// Match represents one played or scheduled match. Key is
// "<season>_<code>_<level><series>m<number>". Completed matches are
// immutable aside from the appended prediction fields.
type Match struct {
	Key         string      `db:"key"`
	Event       string      `db:"event"` // event key
	Season      int         `db:"year"`
	Week        int         `db:"week"`
	Elim        bool        `db:"elim"`
	CompLevel   CompLevel   `db:"comp_level"`
	Series      int         `db:"set_number"`
	MatchNumber int         `db:"match_number"`
	Time        int64       `db:"time"`
	ActualTime  int64       `db:"actual_time"`
	PostResult  int64       `db:"post_result_time"`
	Status      MatchStatus `db:"status"`

	Red1           int  `db:"red_1"`
	Red2           int  `db:"red_2"`
	RedSurrogate1  bool `db:"red_surrogate_1"`
	RedSurrogate2  bool `db:"red_surrogate_2"`
	Blue1          int  `db:"blue_1"`
	Blue2          int  `db:"blue_2"`
	BlueSurrogate1 bool `db:"blue_surrogate_1"`
	BlueSurrogate2 bool `db:"blue_surrogate_2"`

	Winner    Winner `db:"winner"` // set iff Status == Completed
	RedScore  int    `db:"red_score"`
	BlueScore int    `db:"blue_score"`

	RedBreakdown  Breakdown `db:"red_breakdown"`
	BlueBreakdown Breakdown `db:"blue_breakdown"`

	// Prediction annotations, filled in after ratings are computed
	WinProb       float64 `db:"win_prob"`
	RedScorePred  float64 `db:"red_score_pred"`
	BlueScorePred float64 `db:"blue_score_pred"`
	PredWinner    Winner  `db:"pred_winner"`
}

// MatchKey builds the canonical match key
func MatchKey(eventKey string, level CompLevel, series, number int) string {
	return fmt.Sprintf("%s_%s%dm%d", eventKey, level, series, number)
}

// Completed reports whether the match has a final result
func (m *Match) Completed() bool {
	return m.Status == MatchCompleted
}

// TeamNumbers returns the four alliance slots in red-then-blue order.
// Slots may be 0 if the schedule was incomplete.
func (m *Match) TeamNumbers() [4]int {
	return [4]int{m.Red1, m.Red2, m.Blue1, m.Blue2}
}

// AllianceOf returns which alliance the team played on
func (m *Match) AllianceOf(team int) (Alliance, bool) {
	switch team {
	case 0:
		return "", false
	case m.Red1, m.Red2:
		return AllianceRed, true
	case m.Blue1, m.Blue2:
		return AllianceBlue, true
	}
	return "", false
}

// AllianceScore returns the given alliance's final score
func (m *Match) AllianceScore(a Alliance) int {
	if a == AllianceRed {
		return m.RedScore
	}
	return m.BlueScore
}

// AllianceBreakdown returns the given alliance's score breakdown
func (m *Match) AllianceBreakdown(a Alliance) Breakdown {
	if a == AllianceRed {
		return m.RedBreakdown
	}
	return m.BlueBreakdown
}

// WinnerFromScores derives the match winner from final scores
func WinnerFromScores(red, blue int) Winner {
	switch {
	case red > blue:
		return WinnerRed
	case blue > red:
		return WinnerBlue
	default:
		return WinnerTie
	}
}
