package models

// Ranking is one team's qualification ranking at an event
type Ranking struct {
	Event         string  `db:"event"`
	Team          int     `db:"team"`
	Rank          int     `db:"rank"`
	Wins          int     `db:"wins"`
	Losses        int     `db:"losses"`
	Ties          int     `db:"ties"`
	MatchesPlayed int     `db:"matches_played"`
	RankingPoints float64 `db:"ranking_points"`
	TieBreaker    float64 `db:"tie_breaker_points"`
	DQ            int     `db:"dq"`
}

// RankingInput is the FTC Events API shape of a ranking row
type RankingInput struct {
	TeamNumber       int     `json:"teamNumber"`
	Rank             int     `json:"rank"`
	Wins             int     `json:"wins"`
	Losses           int     `json:"losses"`
	Ties             int     `json:"ties"`
	MatchesPlayed    int     `json:"matchesPlayed"`
	RankingPoints    float64 `json:"rankingPoints"`
	TieBreakerPoints float64 `json:"tieBreakerPoints"`
	DQ               int     `json:"dq"`
}

// ToRanking converts a RankingInput for the given event key
func (ri *RankingInput) ToRanking(eventKey string) *Ranking {
	return &Ranking{
		Event:         eventKey,
		Team:          ri.TeamNumber,
		Rank:          ri.Rank,
		Wins:          ri.Wins,
		Losses:        ri.Losses,
		Ties:          ri.Ties,
		MatchesPlayed: ri.MatchesPlayed,
		RankingPoints: ri.RankingPoints,
		TieBreaker:    ri.TieBreakerPoints,
		DQ:            ri.DQ,
	}
}
