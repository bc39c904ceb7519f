// Package repository persists the pipeline's entity sets to Postgres.
// Every writer is an idempotent upsert keyed by the entity's natural key,
// so re-running a season replaces rather than accumulates.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/PzmuV1517/FTCinsight/internal/metrics"
	"github.com/PzmuV1517/FTCinsight/internal/pipeline"
)

// batchSize caps the number of rows queued into one pgx batch
const batchSize = 500

// Database holds the database connection pool and provides access to repositories
type Database struct {
	Pool *pgxpool.Pool

	// Repositories
	Teams       *TeamRepository
	Events      *EventRepository
	Matches     *MatchRepository
	Rankings    *RankingRepository
	TeamYears   *TeamYearRepository
	TeamEvents  *TeamEventRepository
	TeamMatches *TeamMatchRepository
	Years       *YearRepository
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewDatabase creates a new database connection pool and initializes repositories
func NewDatabase(ctx context.Context, cfg Config) (*Database, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Successfully connected to database")

	db := &Database{Pool: pool}
	db.Teams = &TeamRepository{db: db}
	db.Events = &EventRepository{db: db}
	db.Matches = &MatchRepository{db: db}
	db.Rankings = &RankingRepository{db: db}
	db.TeamYears = &TeamYearRepository{db: db}
	db.TeamEvents = &TeamEventRepository{db: db}
	db.TeamMatches = &TeamMatchRepository{db: db}
	db.Years = &YearRepository{db: db}

	return db, nil
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Info().Msg("Database connection pool closed")
	}
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// PoolStats returns database pool statistics
func (db *Database) PoolStats() map[string]interface{} {
	stat := db.Pool.Stat()
	return map[string]interface{}{
		"total_conns":    stat.TotalConns(),
		"acquired_conns": stat.AcquiredConns(),
		"idle_conns":     stat.IdleConns(),
		"max_conns":      stat.MaxConns(),
	}
}

// SaveSeasonResult persists every entity set of one season run. Entity sets
// are independent; there is no cross-set transaction.
func (db *Database) SaveSeasonResult(ctx context.Context, res *pipeline.SeasonResult) error {
	if err := db.Teams.UpsertBatch(ctx, res.Teams); err != nil {
		return err
	}
	if err := db.Events.UpsertBatch(ctx, res.Events); err != nil {
		return err
	}
	if err := db.Matches.UpsertBatch(ctx, res.Matches); err != nil {
		return err
	}
	if err := db.Rankings.UpsertBatch(ctx, res.Rankings); err != nil {
		return err
	}
	if err := db.TeamYears.UpsertBatch(ctx, res.TeamYears); err != nil {
		return err
	}
	if err := db.TeamEvents.UpsertBatch(ctx, res.TeamEvents); err != nil {
		return err
	}
	if err := db.TeamMatches.UpsertBatch(ctx, res.TeamMatches); err != nil {
		return err
	}
	if res.Year != nil {
		if err := db.Years.Upsert(ctx, res.Year); err != nil {
			return err
		}
	}

	log.Info().
		Int("season", res.Season).
		Int("teams", len(res.Teams)).
		Int("events", len(res.Events)).
		Int("matches", len(res.Matches)).
		Msg("Season result saved")

	return nil
}

// upsertChunked sends rows in fixed-size pgx batches and records the write
// count for the table.
func upsertChunked[T any](ctx context.Context, db *Database, table string, rows []T, queue func(*pgx.Batch, T)) error {
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}

		batch := &pgx.Batch{}
		for _, row := range rows[start:end] {
			queue(batch, row)
		}

		br := db.Pool.SendBatch(ctx, batch)
		for range rows[start:end] {
			if _, err := br.Exec(); err != nil {
				br.Close()
				metrics.RecordError("repository")
				return fmt.Errorf("failed to upsert into %s: %w", table, err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to close %s batch: %w", table, err)
		}
	}

	metrics.RecordDBWrites(table, len(rows))
	log.Debug().Str("table", table).Int("rows", len(rows)).Msg("Bulk upsert complete")
	return nil
}
