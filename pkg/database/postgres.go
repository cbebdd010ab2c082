// Package database opens the planner's Postgres pool and applies its schema.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const (
	applicationName = "project-planner"
	maxBackoff      = 16 * time.Second
	pingTimeout     = 5 * time.Second
)

// TxQuerier is implemented by both pgxpool.Pool and pgx.Tx.
// Repository methods that must run inside a caller's transaction accept TxQuerier.
type TxQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Open parses dsn, tags connections with the application name and waits for
// the database to answer a ping. Failed attempts back off exponentially
// (1s, 2s, 4s, ... capped at 16s) until attempts are used up or ctx ends.
func Open(ctx context.Context, dsn string, attempts int) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}
	if cfg.ConnConfig.RuntimeParams == nil {
		cfg.ConnConfig.RuntimeParams = map[string]string{}
	}
	cfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		var pool *pgxpool.Pool
		pool, err = connect(ctx, cfg)
		if err == nil {
			log.Info().
				Str("host", cfg.ConnConfig.Host).
				Str("database", cfg.ConnConfig.Database).
				Int32("max_conns", cfg.MaxConns).
				Msg("database connection established")
			return pool, nil
		}
		if attempt == attempts-1 {
			break
		}

		backoff := time.Duration(1<<attempt) * time.Second
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("attempts", attempts).
			Dur("next_retry_in", backoff).
			Msg("database connection failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", attempts, err)
}

func connect(ctx context.Context, cfg *pgxpool.Config) (*pgxpool.Pool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg.Copy())
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping failed: %w", err)
	}
	return pool, nil
}
