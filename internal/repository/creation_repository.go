package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/project-planner/internal/model"
	"github.com/fairyhunter13/project-planner/pkg/database"
)

// CreationRepository provides data access for named creations using pgx.
// Ideas are stored as a JSONB array so their order is preserved exactly.
type CreationRepository struct {
	pool QueryPoolInterface
}

// NewCreationRepository creates a new CreationRepository with the given pool.
func NewCreationRepository(pool *pgxpool.Pool) *CreationRepository {
	return &CreationRepository{pool: pool}
}

// NewCreationRepositoryWithPool creates a new CreationRepository with a custom pool interface.
// This is primarily used for testing.
func NewCreationRepositoryWithPool(pool QueryPoolInterface) *CreationRepository {
	return &CreationRepository{pool: pool}
}

// InsertIfAbsent stores the creation unless the user already has one with
// the same name. Reports whether a row was written; creations are never
// overwritten.
func (r *CreationRepository) InsertIfAbsent(ctx context.Context, tx database.TxQuerier, creation *model.Creation) (bool, error) {
	ideas, err := json.Marshal(creation.Ideas)
	if err != nil {
		return false, fmt.Errorf("encode ideas: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO creations (id, user_id, name, ideas) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, name) DO NOTHING`,
		creation.ID, creation.UserID, creation.Name, ideas)
	if err != nil {
		return false, fmt.Errorf("insert creation %s: %w", creation.Name, err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListByUser returns the user's creations ordered by creation time, ties
// broken by name. Returns an empty slice (not nil) when there are none.
func (r *CreationRepository) ListByUser(ctx context.Context, userID string) ([]model.Creation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, name, ideas, created_at FROM creations WHERE user_id = $1 ORDER BY created_at, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list creations for %s: %w", userID, err)
	}
	defer rows.Close()

	creations := []model.Creation{}
	for rows.Next() {
		var (
			c   model.Creation
			raw []byte
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &raw, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan creation: %w", err)
		}
		if err := json.Unmarshal(raw, &c.Ideas); err != nil {
			return nil, fmt.Errorf("decode ideas of %s: %w", c.Name, err)
		}
		if c.Ideas == nil {
			c.Ideas = []model.Idea{}
		}
		creations = append(creations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate creation rows: %w", err)
	}
	return creations, nil
}
