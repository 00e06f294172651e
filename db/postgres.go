package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"goLangClient/config"
	"goLangClient/state"
)

var (
	// PostgresPool is the global PostgreSQL connection pool
	PostgresPool *pgxpool.Pool

	ErrRoundNotFound = errors.New("round not found")
)

// InitPostgres initializes the PostgreSQL connection pool
func InitPostgres(cfg config.PostgresConfig) error {
	log.Info("🔌 Connecting to PostgreSQL...")

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = config.PostgresMaxConns
	poolConfig.MinConns = config.PostgresMinConns
	poolConfig.MaxConnLifetime = config.PostgresConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	PostgresPool = pool

	log.Info("✅ PostgreSQL connected successfully")

	if err := InitSchema(context.Background()); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// ClosePostgres closes the PostgreSQL connection pool
func ClosePostgres() {
	if PostgresPool != nil {
		log.Info("🔌 Closing PostgreSQL connection...")
		PostgresPool.Close()
		PostgresPool = nil
	}
}

// InitSchema creates the database tables if they don't exist
func InitSchema(ctx context.Context) error {
	log.Info("📋 Initializing database schema...")

	chartRoundsSchema := `
	CREATE TABLE IF NOT EXISTS chart_rounds (
		id SERIAL PRIMARY KEY,
		round_id TEXT NOT NULL UNIQUE,
		symbol TEXT NOT NULL,
		candles JSONB NOT NULL,
		leaderboard JSONB NOT NULL DEFAULT '[]',
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ NOT NULL
	);

	-- Index on ended_at for recent rounds
	CREATE INDEX IF NOT EXISTS idx_chart_rounds_ended_at ON chart_rounds(ended_at DESC);
	`

	if _, err := PostgresPool.Exec(ctx, chartRoundsSchema); err != nil {
		return fmt.Errorf("failed to create chart_rounds table: %w", err)
	}

	log.Info("✅ Database schema initialized")
	return nil
}

/* =========================
   ROUND ARCHIVE
========================= */

// StoreRound archives a finished round. Storing the same round twice is a
// no-op.
func StoreRound(ctx context.Context, round state.RoundRecord) error {
	if PostgresPool == nil {
		return ErrNotInitialized
	}

	candlesJSON, err := json.Marshal(round.Candles)
	if err != nil {
		return fmt.Errorf("failed to marshal candles: %w", err)
	}
	leaderboard := round.Leaderboard
	if leaderboard == nil {
		leaderboard = []state.LeaderboardEntry{}
	}
	leaderboardJSON, err := json.Marshal(leaderboard)
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard: %w", err)
	}

	query := `
		INSERT INTO chart_rounds
		(round_id, symbol, candles, leaderboard, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (round_id) DO NOTHING
	`

	_, err = PostgresPool.Exec(ctx, query,
		round.RoundID,
		round.Symbol,
		candlesJSON,
		leaderboardJSON,
		round.StartedAt,
		round.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store round: %w", err)
	}

	log.Infof("✅ Stored round %s (%s, %d candles)", round.RoundID, round.Symbol, len(round.Candles))
	return nil
}

// GetRound retrieves one archived round.
func GetRound(ctx context.Context, roundID string) (*state.RoundRecord, error) {
	if PostgresPool == nil {
		return nil, ErrNotInitialized
	}

	query := `
		SELECT round_id, symbol, candles, leaderboard, started_at, ended_at
		FROM chart_rounds
		WHERE round_id = $1
	`

	round, err := scanRound(PostgresPool.QueryRow(ctx, query, roundID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRoundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	return round, nil
}

// RecentRounds returns the most recently finished rounds, newest first.
func RecentRounds(ctx context.Context, limit int) ([]*state.RoundRecord, error) {
	if PostgresPool == nil {
		return nil, ErrNotInitialized
	}

	query := `
		SELECT round_id, symbol, candles, leaderboard, started_at, ended_at
		FROM chart_rounds
		ORDER BY ended_at DESC
		LIMIT $1
	`

	rows, err := PostgresPool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}
	defer rows.Close()

	rounds := make([]*state.RoundRecord, 0, limit)
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rounds = append(rounds, round)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return rounds, nil
}

func scanRound(row pgx.Row) (*state.RoundRecord, error) {
	var round state.RoundRecord
	var candlesJSON, leaderboardJSON []byte

	if err := row.Scan(
		&round.RoundID,
		&round.Symbol,
		&candlesJSON,
		&leaderboardJSON,
		&round.StartedAt,
		&round.EndedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(candlesJSON, &round.Candles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal candles: %w", err)
	}
	if err := json.Unmarshal(leaderboardJSON, &round.Leaderboard); err != nil {
		return nil, fmt.Errorf("failed to unmarshal leaderboard: %w", err)
	}
	return &round, nil
}

/* =========================
   HEALTH CHECK
========================= */

// HealthCheckPostgres performs a PostgreSQL health check
func HealthCheckPostgres(ctx context.Context) error {
	if PostgresPool == nil {
		return ErrNotInitialized
	}
	return PostgresPool.Ping(ctx)
}
