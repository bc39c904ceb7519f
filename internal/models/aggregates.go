package models

// WLT is a win/loss/tie record. Winrate is wins over total, 0 when no
// matches were played.
type WLT struct {
	Wins    int     `db:"wins"`
	Losses  int     `db:"losses"`
	Ties    int     `db:"ties"`
	Count   int     `db:"count"`
	Winrate float64 `db:"winrate"`
}

// TeamYear aggregates one team's season: final EPA state, record, rank and
// percentile within the season, and the normalized rating scales. Fully
// recomputed on every run.
type TeamYear struct {
	Team       int    `db:"team"`
	Year       int    `db:"year"`
	Name       string `db:"name"`
	Country    string `db:"country"`
	State      string `db:"state"`
	RookieYear int    `db:"rookie_year"`

	Epa        float64 `db:"epa_end"`
	AutoEpa    float64 `db:"auto_epa_end"`
	TeleopEpa  float64 `db:"teleop_epa_end"`
	EndgameEpa float64 `db:"endgame_epa_end"`
	EpaStart   float64 `db:"epa_start"`
	EpaMax     float64 `db:"epa_max"`
	EpaDiff    float64 `db:"epa_diff"`

	WLT
	QualWLT WLT `db:"-"`

	EventKeys      []string `db:"event_keys"`
	EventsAttended int      `db:"events_attended"`

	EpaRank       int     `db:"epa_rank"`
	EpaPercentile float64 `db:"epa_percentile"`
	NormEpa       float64 `db:"norm_epa"`      // z-score scale centered at 1500
	UnitlessEpa   float64 `db:"unitless_epa"`  // percentile scale on [1200, 1800]
}

// TeamEvent aggregates one team's performance at one event
type TeamEvent struct {
	Team      int    `db:"team"`
	Event     string `db:"event"`
	Year      int    `db:"year"`
	TeamName  string `db:"team_name"`
	EventName string `db:"event_name"`
	Week      int    `db:"week"`
	Time      int64  `db:"time"`
	Type      EventType `db:"type"`
	Country   string `db:"country"`
	State     string `db:"state"`

	Rank     int `db:"rank"`
	NumTeams int `db:"num_teams"`

	EpaStart   float64 `db:"epa_start"`
	EpaEnd     float64 `db:"epa_end"`
	EpaMax     float64 `db:"epa_max"`
	EpaPreElim float64 `db:"epa_pre_elim"`

	WLT
	QualWLT WLT `db:"-"`
}

// TeamMatch is a team's EPA snapshot immediately before and after one match
type TeamMatch struct {
	Team     int         `db:"team"`
	Match    string      `db:"match"` // match key
	Event    string      `db:"event"`
	Year     int         `db:"year"`
	Week     int         `db:"week"`
	Time     int64       `db:"time"`
	Alliance Alliance    `db:"alliance"`
	Status   MatchStatus `db:"status"`

	Epa        float64 `db:"epa"`
	AutoEpa    float64 `db:"auto_epa"`
	TeleopEpa  float64 `db:"teleop_epa"`
	EndgameEpa float64 `db:"endgame_epa"`
	PostEpa    float64 `db:"post_epa"`
}

// Year aggregates one season's score and EPA distributions
type Year struct {
	Year       int `db:"year"`
	TeamCount  int `db:"team_count"`
	EventCount int `db:"event_count"`
	MatchCount int `db:"match_count"`

	ScoreMean   float64 `db:"score_mean"`
	ScoreSD     float64 `db:"score_sd"`
	ScoreMedian float64 `db:"score_median"`
	AutoMean    float64 `db:"auto_mean"`
	TeleopMean  float64 `db:"teleop_mean"`
	EndgameMean float64 `db:"endgame_mean"`

	EpaMean float64 `db:"epa_mean"`
	EpaSD   float64 `db:"epa_sd"`
	EpaMax  float64 `db:"epa_max"`

	Epa99p float64 `db:"epa_99p"`
	Epa90p float64 `db:"epa_90p"`
	Epa75p float64 `db:"epa_75p"`
	Epa25p float64 `db:"epa_25p"`

	AutoEpa99p float64 `db:"auto_epa_99p"`
	AutoEpa90p float64 `db:"auto_epa_90p"`
	AutoEpa75p float64 `db:"auto_epa_75p"`
	AutoEpa25p float64 `db:"auto_epa_25p"`

	TeleopEpa99p float64 `db:"teleop_epa_99p"`
	TeleopEpa90p float64 `db:"teleop_epa_90p"`
	TeleopEpa75p float64 `db:"teleop_epa_75p"`
	TeleopEpa25p float64 `db:"teleop_epa_25p"`

	EndgameEpa99p float64 `db:"endgame_epa_99p"`
	EndgameEpa90p float64 `db:"endgame_epa_90p"`
	EndgameEpa75p float64 `db:"endgame_epa_75p"`
	EndgameEpa25p float64 `db:"endgame_epa_25p"`
}
