package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/PzmuV1517/FTCinsight/internal/models"
)

// EventRepository handles event database operations
type EventRepository struct {
	db *Database
}

const upsertEventQuery = `
	INSERT INTO events (
		key, year, event_code, name, country, state, city, venue, region,
		league_code, start_date, end_date, time, week, type, status,
		website, team_count, match_count
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	ON CONFLICT (key) DO UPDATE SET
		name = EXCLUDED.name,
		country = EXCLUDED.country,
		state = EXCLUDED.state,
		city = EXCLUDED.city,
		venue = EXCLUDED.venue,
		region = EXCLUDED.region,
		league_code = EXCLUDED.league_code,
		start_date = EXCLUDED.start_date,
		end_date = EXCLUDED.end_date,
		time = EXCLUDED.time,
		week = EXCLUDED.week,
		type = EXCLUDED.type,
		status = EXCLUDED.status,
		website = EXCLUDED.website,
		team_count = EXCLUDED.team_count,
		match_count = EXCLUDED.match_count,
		updated_at = NOW()
`

// UpsertBatch inserts or updates events in bulk
func (r *EventRepository) UpsertBatch(ctx context.Context, events []*models.Event) error {
	return upsertChunked(ctx, r.db, "events", events, func(batch *pgx.Batch, e *models.Event) {
		batch.Queue(
			upsertEventQuery,
			e.Key, e.Season, e.Code, e.Name, e.Country, e.State, e.City,
			e.Venue, e.Region, e.LeagueCode, e.StartDate, e.EndDate,
			e.Time, e.Week, e.Type, e.Status,
			e.Website, e.TeamCount, e.MatchCount,
		)
	})
}

// GetByKey retrieves an event by its key
func (r *EventRepository) GetByKey(ctx context.Context, key string) (*models.Event, error) {
	query := `
		SELECT key, year, event_code, name, country, state, city, venue, region,
		       league_code, start_date, end_date, time, week, type, status,
		       website, team_count, match_count
		FROM events
		WHERE key = $1
	`

	var e models.Event
	err := r.db.Pool.QueryRow(ctx, query, key).Scan(
		&e.Key, &e.Season, &e.Code, &e.Name, &e.Country, &e.State, &e.City,
		&e.Venue, &e.Region, &e.LeagueCode, &e.StartDate, &e.EndDate,
		&e.Time, &e.Week, &e.Type, &e.Status,
		&e.Website, &e.TeamCount, &e.MatchCount,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("event not found: key=%s", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return &e, nil
}

// ListBySeason retrieves all events of one season ordered by start time
func (r *EventRepository) ListBySeason(ctx context.Context, season int) ([]*models.Event, error) {
	query := `
		SELECT key, year, event_code, name, country, state, city, venue, region,
		       league_code, start_date, end_date, time, week, type, status,
		       website, team_count, match_count
		FROM events
		WHERE year = $1
		ORDER BY time, key
	`

	rows, err := r.db.Pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		var e models.Event
		err := rows.Scan(
			&e.Key, &e.Season, &e.Code, &e.Name, &e.Country, &e.State, &e.City,
			&e.Venue, &e.Region, &e.LeagueCode, &e.StartDate, &e.EndDate,
			&e.Time, &e.Week, &e.Type, &e.Status,
			&e.Website, &e.TeamCount, &e.MatchCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}
