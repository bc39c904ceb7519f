package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/PzmuV1517/FTCinsight/internal/models"
)

// RankingRepository handles event ranking database operations
type RankingRepository struct {
	db *Database
}

const upsertRankingQuery = `
	INSERT INTO rankings (
		event, team, rank, wins, losses, ties, matches_played,
		ranking_points, tie_breaker_points, dq
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (event, team) DO UPDATE SET
		rank = EXCLUDED.rank,
		wins = EXCLUDED.wins,
		losses = EXCLUDED.losses,
		ties = EXCLUDED.ties,
		matches_played = EXCLUDED.matches_played,
		ranking_points = EXCLUDED.ranking_points,
		tie_breaker_points = EXCLUDED.tie_breaker_points,
		dq = EXCLUDED.dq,
		updated_at = NOW()
`

// UpsertBatch inserts or updates rankings in bulk
func (r *RankingRepository) UpsertBatch(ctx context.Context, rankings []*models.Ranking) error {
	return upsertChunked(ctx, r.db, "rankings", rankings, func(batch *pgx.Batch, rk *models.Ranking) {
		batch.Queue(
			upsertRankingQuery,
			rk.Event, rk.Team, rk.Rank, rk.Wins, rk.Losses, rk.Ties,
			rk.MatchesPlayed, rk.RankingPoints, rk.TieBreaker, rk.DQ,
		)
	})
}

// ListByEvent retrieves an event's rankings ordered by rank
func (r *RankingRepository) ListByEvent(ctx context.Context, eventKey string) ([]*models.Ranking, error) {
	query := `
		SELECT event, team, rank, wins, losses, ties, matches_played,
		       ranking_points, tie_breaker_points, dq
		FROM rankings
		WHERE event = $1
		ORDER BY rank
	`

	rows, err := r.db.Pool.Query(ctx, query, eventKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankings: %w", err)
	}
	defer rows.Close()

	var rankings []*models.Ranking
	for rows.Next() {
		var rk models.Ranking
		err := rows.Scan(
			&rk.Event, &rk.Team, &rk.Rank, &rk.Wins, &rk.Losses, &rk.Ties,
			&rk.MatchesPlayed, &rk.RankingPoints, &rk.TieBreaker, &rk.DQ,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ranking: %w", err)
		}
		rankings = append(rankings, &rk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rankings: %w", err)
	}

	return rankings, nil
}
