package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/PzmuV1517/FTCinsight/internal/models"
)

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

const upsertTeamQuery = `
	INSERT INTO teams (
		team, name, country, state, city, school_name, website,
		region, rookie_year, active
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (team) DO UPDATE SET
		name = EXCLUDED.name,
		country = EXCLUDED.country,
		state = EXCLUDED.state,
		city = EXCLUDED.city,
		school_name = EXCLUDED.school_name,
		website = EXCLUDED.website,
		region = EXCLUDED.region,
		rookie_year = EXCLUDED.rookie_year,
		active = EXCLUDED.active,
		updated_at = NOW()
`

// Upsert inserts or updates a single team
func (r *TeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	_, err := r.db.Pool.Exec(
		ctx, upsertTeamQuery,
		team.Number, team.Name, team.Country, team.State, team.City,
		team.School, team.Website, team.Region, team.RookieYear, team.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert team %d: %w", team.Number, err)
	}
	return nil
}

// UpsertBatch inserts or updates teams in bulk
func (r *TeamRepository) UpsertBatch(ctx context.Context, teams []*models.Team) error {
	return upsertChunked(ctx, r.db, "teams", teams, func(batch *pgx.Batch, t *models.Team) {
		batch.Queue(
			upsertTeamQuery,
			t.Number, t.Name, t.Country, t.State, t.City,
			t.School, t.Website, t.Region, t.RookieYear, t.Active,
		)
	})
}

// GetByNumber retrieves a team by its team number
func (r *TeamRepository) GetByNumber(ctx context.Context, number int) (*models.Team, error) {
	query := `
		SELECT team, name, country, state, city, school_name, website,
		       region, rookie_year, active
		FROM teams
		WHERE team = $1
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, number).Scan(
		&team.Number, &team.Name, &team.Country, &team.State, &team.City,
		&team.School, &team.Website, &team.Region, &team.RookieYear, &team.Active,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("team not found: team=%d", number)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// List retrieves all teams ordered by team number
func (r *TeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT team, name, country, state, city, school_name, website,
		       region, rookie_year, active
		FROM teams
		ORDER BY team
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var team models.Team
		err := rows.Scan(
			&team.Number, &team.Name, &team.Country, &team.State, &team.City,
			&team.School, &team.Website, &team.Region, &team.RookieYear, &team.Active,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// Count returns the total number of teams
func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM teams`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return count, nil
}

// Delete removes a team
func (r *TeamRepository) Delete(ctx context.Context, number int) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM teams WHERE team = $1`, number)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("team not found: team=%d", number)
	}

	log.Debug().Int("team", number).Msg("Team deleted")
	return nil
}
