package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/PzmuV1517/FTCinsight/internal/models"
)

// MatchRepository handles match database operations. Score breakdowns are
// stored as JSONB alongside the scalar columns.
type MatchRepository struct {
	db *Database
}

const upsertMatchQuery = `
	INSERT INTO matches (
		key, event, year, week, elim, comp_level, set_number, match_number,
		time, actual_time, post_result_time, status,
		red_1, red_2, red_surrogate_1, red_surrogate_2,
		blue_1, blue_2, blue_surrogate_1, blue_surrogate_2,
		winner, red_score, blue_score, red_breakdown, blue_breakdown,
		win_prob, red_score_pred, blue_score_pred, pred_winner
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29
	)
	ON CONFLICT (key) DO UPDATE SET
		time = EXCLUDED.time,
		actual_time = EXCLUDED.actual_time,
		post_result_time = EXCLUDED.post_result_time,
		status = EXCLUDED.status,
		red_1 = EXCLUDED.red_1,
		red_2 = EXCLUDED.red_2,
		red_surrogate_1 = EXCLUDED.red_surrogate_1,
		red_surrogate_2 = EXCLUDED.red_surrogate_2,
		blue_1 = EXCLUDED.blue_1,
		blue_2 = EXCLUDED.blue_2,
		blue_surrogate_1 = EXCLUDED.blue_surrogate_1,
		blue_surrogate_2 = EXCLUDED.blue_surrogate_2,
		winner = EXCLUDED.winner,
		red_score = EXCLUDED.red_score,
		blue_score = EXCLUDED.blue_score,
		red_breakdown = EXCLUDED.red_breakdown,
		blue_breakdown = EXCLUDED.blue_breakdown,
		win_prob = EXCLUDED.win_prob,
		red_score_pred = EXCLUDED.red_score_pred,
		blue_score_pred = EXCLUDED.blue_score_pred,
		pred_winner = EXCLUDED.pred_winner,
		updated_at = NOW()
`

// UpsertBatch inserts or updates matches in bulk
func (r *MatchRepository) UpsertBatch(ctx context.Context, matches []*models.Match) error {
	return upsertChunked(ctx, r.db, "matches", matches, func(batch *pgx.Batch, m *models.Match) {
		redBd, err := json.Marshal(m.RedBreakdown)
		if err != nil {
			log.Warn().Err(err).Str("match", m.Key).Msg("Failed to marshal red breakdown")
		}
		blueBd, err := json.Marshal(m.BlueBreakdown)
		if err != nil {
			log.Warn().Err(err).Str("match", m.Key).Msg("Failed to marshal blue breakdown")
		}

		batch.Queue(
			upsertMatchQuery,
			m.Key, m.Event, m.Season, m.Week, m.Elim, m.CompLevel, m.Series, m.MatchNumber,
			m.Time, m.ActualTime, m.PostResult, m.Status,
			m.Red1, m.Red2, m.RedSurrogate1, m.RedSurrogate2,
			m.Blue1, m.Blue2, m.BlueSurrogate1, m.BlueSurrogate2,
			m.Winner, m.RedScore, m.BlueScore, redBd, blueBd,
			m.WinProb, m.RedScorePred, m.BlueScorePred, m.PredWinner,
		)
	})
}

// ListByEvent retrieves all matches of one event in chronological order
func (r *MatchRepository) ListByEvent(ctx context.Context, eventKey string) ([]*models.Match, error) {
	query := `
		SELECT key, event, year, week, elim, comp_level, set_number, match_number,
		       time, actual_time, post_result_time, status,
		       red_1, red_2, red_surrogate_1, red_surrogate_2,
		       blue_1, blue_2, blue_surrogate_1, blue_surrogate_2,
		       winner, red_score, blue_score, red_breakdown, blue_breakdown,
		       win_prob, red_score_pred, blue_score_pred, pred_winner
		FROM matches
		WHERE event = $1
		ORDER BY time, key
	`

	rows, err := r.db.Pool.Query(ctx, query, eventKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		var m models.Match
		var redBd, blueBd []byte
		err := rows.Scan(
			&m.Key, &m.Event, &m.Season, &m.Week, &m.Elim, &m.CompLevel, &m.Series, &m.MatchNumber,
			&m.Time, &m.ActualTime, &m.PostResult, &m.Status,
			&m.Red1, &m.Red2, &m.RedSurrogate1, &m.RedSurrogate2,
			&m.Blue1, &m.Blue2, &m.BlueSurrogate1, &m.BlueSurrogate2,
			&m.Winner, &m.RedScore, &m.BlueScore, &redBd, &blueBd,
			&m.WinProb, &m.RedScorePred, &m.BlueScorePred, &m.PredWinner,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		if len(redBd) > 0 {
			if err := json.Unmarshal(redBd, &m.RedBreakdown); err != nil {
				return nil, fmt.Errorf("failed to decode red breakdown for %s: %w", m.Key, err)
			}
		}
		if len(blueBd) > 0 {
			if err := json.Unmarshal(blueBd, &m.BlueBreakdown); err != nil {
				return nil, fmt.Errorf("failed to decode blue breakdown for %s: %w", m.Key, err)
			}
		}
		matches = append(matches, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}

	return matches, nil
}

// CountBySeason returns the number of stored matches for a season
func (r *MatchRepository) CountBySeason(ctx context.Context, season int) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM matches WHERE year = $1`, season).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}
