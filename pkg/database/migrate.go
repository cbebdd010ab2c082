package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

//go:embed schema.sql
var schema string

// Execer is the subset of pgxpool.Pool used to apply the schema.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Migrate applies the embedded schema. Every statement is idempotent,
// so it is safe to run on each startup.
func Migrate(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log.Info().Msg("database schema applied")
	return nil
}
