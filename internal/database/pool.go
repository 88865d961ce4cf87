package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"go.uber.org/zap"
)

// Connect opens a pool with SQL tracing routed to logger and pings it.
func Connect(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   newZapTracer(logger),
		LogLevel: tracelog.LogLevelInfo,
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// Migrate creates the schema and the satellite table if they are missing.
func (r *Repo) Migrate(ctx context.Context) error {
	schema := r.ident()[:1].Sanitize()
	stmts := []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
			  seq          BIGINT GENERATED ALWAYS AS IDENTITY,
			  id           TEXT PRIMARY KEY,
			  name         TEXT NOT NULL,
			  tle_line_one TEXT NOT NULL,
			  tle_line_two TEXT NOT NULL,
			  satrec       JSONB NOT NULL,
			  created_at   TIMESTAMPTZ NOT NULL,
			  updated_at   TIMESTAMPTZ NOT NULL
			)
		`, r.qt()),
	}
	for _, stmt := range stmts {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return wrap("migrate", err)
		}
	}
	return nil
}
