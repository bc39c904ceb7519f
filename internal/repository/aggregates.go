package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/PzmuV1517/FTCinsight/internal/models"
)

// The derived entity sets (team_years, team_events, team_matches, years)
// are recomputed from scratch every run, so their writers are plain
// natural-key upserts with no partial-update paths.

// TeamYearRepository handles team-season aggregate database operations
type TeamYearRepository struct {
	db *Database
}

const upsertTeamYearQuery = `
	INSERT INTO team_years (
		team, year, name, country, state, rookie_year,
		epa_end, auto_epa_end, teleop_epa_end, endgame_epa_end,
		epa_start, epa_max, epa_diff,
		wins, losses, ties, count, winrate,
		qual_wins, qual_losses, qual_ties, qual_count, qual_winrate,
		event_keys, events_attended,
		epa_rank, epa_percentile, norm_epa, unitless_epa
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29
	)
	ON CONFLICT (team, year) DO UPDATE SET
		name = EXCLUDED.name,
		country = EXCLUDED.country,
		state = EXCLUDED.state,
		rookie_year = EXCLUDED.rookie_year,
		epa_end = EXCLUDED.epa_end,
		auto_epa_end = EXCLUDED.auto_epa_end,
		teleop_epa_end = EXCLUDED.teleop_epa_end,
		endgame_epa_end = EXCLUDED.endgame_epa_end,
		epa_start = EXCLUDED.epa_start,
		epa_max = EXCLUDED.epa_max,
		epa_diff = EXCLUDED.epa_diff,
		wins = EXCLUDED.wins,
		losses = EXCLUDED.losses,
		ties = EXCLUDED.ties,
		count = EXCLUDED.count,
		winrate = EXCLUDED.winrate,
		qual_wins = EXCLUDED.qual_wins,
		qual_losses = EXCLUDED.qual_losses,
		qual_ties = EXCLUDED.qual_ties,
		qual_count = EXCLUDED.qual_count,
		qual_winrate = EXCLUDED.qual_winrate,
		event_keys = EXCLUDED.event_keys,
		events_attended = EXCLUDED.events_attended,
		epa_rank = EXCLUDED.epa_rank,
		epa_percentile = EXCLUDED.epa_percentile,
		norm_epa = EXCLUDED.norm_epa,
		unitless_epa = EXCLUDED.unitless_epa,
		updated_at = NOW()
`

// UpsertBatch inserts or updates team-year aggregates in bulk
func (r *TeamYearRepository) UpsertBatch(ctx context.Context, teamYears []*models.TeamYear) error {
	return upsertChunked(ctx, r.db, "team_years", teamYears, func(batch *pgx.Batch, ty *models.TeamYear) {
		batch.Queue(
			upsertTeamYearQuery,
			ty.Team, ty.Year, ty.Name, ty.Country, ty.State, ty.RookieYear,
			ty.Epa, ty.AutoEpa, ty.TeleopEpa, ty.EndgameEpa,
			ty.EpaStart, ty.EpaMax, ty.EpaDiff,
			ty.Wins, ty.Losses, ty.Ties, ty.Count, ty.Winrate,
			ty.QualWLT.Wins, ty.QualWLT.Losses, ty.QualWLT.Ties, ty.QualWLT.Count, ty.QualWLT.Winrate,
			ty.EventKeys, ty.EventsAttended,
			ty.EpaRank, ty.EpaPercentile, ty.NormEpa, ty.UnitlessEpa,
		)
	})
}

// ListBySeason retrieves a season's team-year aggregates ordered by rank
func (r *TeamYearRepository) ListBySeason(ctx context.Context, season int) ([]*models.TeamYear, error) {
	query := `
		SELECT team, year, name, country, state, rookie_year,
		       epa_end, auto_epa_end, teleop_epa_end, endgame_epa_end,
		       epa_start, epa_max, epa_diff,
		       wins, losses, ties, count, winrate,
		       qual_wins, qual_losses, qual_ties, qual_count, qual_winrate,
		       event_keys, events_attended,
		       epa_rank, epa_percentile, norm_epa, unitless_epa
		FROM team_years
		WHERE year = $1
		ORDER BY epa_rank
	`

	rows, err := r.db.Pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list team years: %w", err)
	}
	defer rows.Close()

	var teamYears []*models.TeamYear
	for rows.Next() {
		var ty models.TeamYear
		err := rows.Scan(
			&ty.Team, &ty.Year, &ty.Name, &ty.Country, &ty.State, &ty.RookieYear,
			&ty.Epa, &ty.AutoEpa, &ty.TeleopEpa, &ty.EndgameEpa,
			&ty.EpaStart, &ty.EpaMax, &ty.EpaDiff,
			&ty.Wins, &ty.Losses, &ty.Ties, &ty.Count, &ty.Winrate,
			&ty.QualWLT.Wins, &ty.QualWLT.Losses, &ty.QualWLT.Ties, &ty.QualWLT.Count, &ty.QualWLT.Winrate,
			&ty.EventKeys, &ty.EventsAttended,
			&ty.EpaRank, &ty.EpaPercentile, &ty.NormEpa, &ty.UnitlessEpa,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team year: %w", err)
		}
		teamYears = append(teamYears, &ty)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team years: %w", err)
	}

	return teamYears, nil
}

// TeamEventRepository handles team-event aggregate database operations
type TeamEventRepository struct {
	db *Database
}

const upsertTeamEventQuery = `
	INSERT INTO team_events (
		team, event, year, team_name, event_name, week, time, type,
		country, state, rank, num_teams,
		epa_start, epa_end, epa_max, epa_pre_elim,
		wins, losses, ties, count, winrate,
		qual_wins, qual_losses, qual_ties, qual_count, qual_winrate
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
	)
	ON CONFLICT (team, event) DO UPDATE SET
		team_name = EXCLUDED.team_name,
		event_name = EXCLUDED.event_name,
		week = EXCLUDED.week,
		time = EXCLUDED.time,
		type = EXCLUDED.type,
		country = EXCLUDED.country,
		state = EXCLUDED.state,
		rank = EXCLUDED.rank,
		num_teams = EXCLUDED.num_teams,
		epa_start = EXCLUDED.epa_start,
		epa_end = EXCLUDED.epa_end,
		epa_max = EXCLUDED.epa_max,
		epa_pre_elim = EXCLUDED.epa_pre_elim,
		wins = EXCLUDED.wins,
		losses = EXCLUDED.losses,
		ties = EXCLUDED.ties,
		count = EXCLUDED.count,
		winrate = EXCLUDED.winrate,
		qual_wins = EXCLUDED.qual_wins,
		qual_losses = EXCLUDED.qual_losses,
		qual_ties = EXCLUDED.qual_ties,
		qual_count = EXCLUDED.qual_count,
		qual_winrate = EXCLUDED.qual_winrate,
		updated_at = NOW()
`

// UpsertBatch inserts or updates team-event aggregates in bulk
func (r *TeamEventRepository) UpsertBatch(ctx context.Context, teamEvents []*models.TeamEvent) error {
	return upsertChunked(ctx, r.db, "team_events", teamEvents, func(batch *pgx.Batch, te *models.TeamEvent) {
		batch.Queue(
			upsertTeamEventQuery,
			te.Team, te.Event, te.Year, te.TeamName, te.EventName, te.Week, te.Time, te.Type,
			te.Country, te.State, te.Rank, te.NumTeams,
			te.EpaStart, te.EpaEnd, te.EpaMax, te.EpaPreElim,
			te.Wins, te.Losses, te.Ties, te.Count, te.Winrate,
			te.QualWLT.Wins, te.QualWLT.Losses, te.QualWLT.Ties, te.QualWLT.Count, te.QualWLT.Winrate,
		)
	})
}

// TeamMatchRepository handles per-match rating snapshot database operations
type TeamMatchRepository struct {
	db *Database
}

const upsertTeamMatchQuery = `
	INSERT INTO team_matches (
		team, match, event, year, week, time, alliance, status,
		epa, auto_epa, teleop_epa, endgame_epa, post_epa
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (team, match) DO UPDATE SET
		time = EXCLUDED.time,
		alliance = EXCLUDED.alliance,
		status = EXCLUDED.status,
		epa = EXCLUDED.epa,
		auto_epa = EXCLUDED.auto_epa,
		teleop_epa = EXCLUDED.teleop_epa,
		endgame_epa = EXCLUDED.endgame_epa,
		post_epa = EXCLUDED.post_epa,
		updated_at = NOW()
`

// UpsertBatch inserts or updates team-match snapshots in bulk
func (r *TeamMatchRepository) UpsertBatch(ctx context.Context, teamMatches []*models.TeamMatch) error {
	return upsertChunked(ctx, r.db, "team_matches", teamMatches, func(batch *pgx.Batch, tm *models.TeamMatch) {
		batch.Queue(
			upsertTeamMatchQuery,
			tm.Team, tm.Match, tm.Event, tm.Year, tm.Week, tm.Time, tm.Alliance, tm.Status,
			tm.Epa, tm.AutoEpa, tm.TeleopEpa, tm.EndgameEpa, tm.PostEpa,
		)
	})
}

// YearRepository handles season aggregate database operations
type YearRepository struct {
	db *Database
}

const upsertYearQuery = `
	INSERT INTO years (
		year, team_count, event_count, match_count,
		score_mean, score_sd, score_median,
		auto_mean, teleop_mean, endgame_mean,
		epa_mean, epa_sd, epa_max,
		epa_99p, epa_90p, epa_75p, epa_25p,
		auto_epa_99p, auto_epa_90p, auto_epa_75p, auto_epa_25p,
		teleop_epa_99p, teleop_epa_90p, teleop_epa_75p, teleop_epa_25p,
		endgame_epa_99p, endgame_epa_90p, endgame_epa_75p, endgame_epa_25p
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29
	)
	ON CONFLICT (year) DO UPDATE SET
		team_count = EXCLUDED.team_count,
		event_count = EXCLUDED.event_count,
		match_count = EXCLUDED.match_count,
		score_mean = EXCLUDED.score_mean,
		score_sd = EXCLUDED.score_sd,
		score_median = EXCLUDED.score_median,
		auto_mean = EXCLUDED.auto_mean,
		teleop_mean = EXCLUDED.teleop_mean,
		endgame_mean = EXCLUDED.endgame_mean,
		epa_mean = EXCLUDED.epa_mean,
		epa_sd = EXCLUDED.epa_sd,
		epa_max = EXCLUDED.epa_max,
		epa_99p = EXCLUDED.epa_99p,
		epa_90p = EXCLUDED.epa_90p,
		epa_75p = EXCLUDED.epa_75p,
		epa_25p = EXCLUDED.epa_25p,
		auto_epa_99p = EXCLUDED.auto_epa_99p,
		auto_epa_90p = EXCLUDED.auto_epa_90p,
		auto_epa_75p = EXCLUDED.auto_epa_75p,
		auto_epa_25p = EXCLUDED.auto_epa_25p,
		teleop_epa_99p = EXCLUDED.teleop_epa_99p,
		teleop_epa_90p = EXCLUDED.teleop_epa_90p,
		teleop_epa_75p = EXCLUDED.teleop_epa_75p,
		teleop_epa_25p = EXCLUDED.teleop_epa_25p,
		endgame_epa_99p = EXCLUDED.endgame_epa_99p,
		endgame_epa_90p = EXCLUDED.endgame_epa_90p,
		endgame_epa_75p = EXCLUDED.endgame_epa_75p,
		endgame_epa_25p = EXCLUDED.endgame_epa_25p,
		updated_at = NOW()
`

// Upsert inserts or updates a season aggregate
func (r *YearRepository) Upsert(ctx context.Context, y *models.Year) error {
	_, err := r.db.Pool.Exec(
		ctx, upsertYearQuery,
		y.Year, y.TeamCount, y.EventCount, y.MatchCount,
		y.ScoreMean, y.ScoreSD, y.ScoreMedian,
		y.AutoMean, y.TeleopMean, y.EndgameMean,
		y.EpaMean, y.EpaSD, y.EpaMax,
		y.Epa99p, y.Epa90p, y.Epa75p, y.Epa25p,
		y.AutoEpa99p, y.AutoEpa90p, y.AutoEpa75p, y.AutoEpa25p,
		y.TeleopEpa99p, y.TeleopEpa90p, y.TeleopEpa75p, y.TeleopEpa25p,
		y.EndgameEpa99p, y.EndgameEpa90p, y.EndgameEpa75p, y.EndgameEpa25p,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert year %d: %w", y.Year, err)
	}
	return nil
}

// Get retrieves one season aggregate
func (r *YearRepository) Get(ctx context.Context, season int) (*models.Year, error) {
	query := `
		SELECT year, team_count, event_count, match_count,
		       score_mean, score_sd, score_median,
		       auto_mean, teleop_mean, endgame_mean,
		       epa_mean, epa_sd, epa_max,
		       epa_99p, epa_90p, epa_75p, epa_25p,
		       auto_epa_99p, auto_epa_90p, auto_epa_75p, auto_epa_25p,
		       teleop_epa_99p, teleop_epa_90p, teleop_epa_75p, teleop_epa_25p,
		       endgame_epa_99p, endgame_epa_90p, endgame_epa_75p, endgame_epa_25p
		FROM years
		WHERE year = $1
	`

	var y models.Year
	err := r.db.Pool.QueryRow(ctx, query, season).Scan(
		&y.Year, &y.TeamCount, &y.EventCount, &y.MatchCount,
		&y.ScoreMean, &y.ScoreSD, &y.ScoreMedian,
		&y.AutoMean, &y.TeleopMean, &y.EndgameMean,
		&y.EpaMean, &y.EpaSD, &y.EpaMax,
		&y.Epa99p, &y.Epa90p, &y.Epa75p, &y.Epa25p,
		&y.AutoEpa99p, &y.AutoEpa90p, &y.AutoEpa75p, &y.AutoEpa25p,
		&y.TeleopEpa99p, &y.TeleopEpa90p, &y.TeleopEpa75p, &y.TeleopEpa25p,
		&y.EndgameEpa99p, &y.EndgameEpa90p, &y.EndgameEpa75p, &y.EndgameEpa25p,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("year not found: %d", season)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get year: %w", err)
	}

	return &y, nil
}
