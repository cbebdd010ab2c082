package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/project-planner/internal/service"
	"github.com/fairyhunter13/project-planner/pkg/database"
)

// AccountRepository provides data access for token balances using pgx.
// Balances only change through Debit and Credit, both of which return the
// resulting value so callers never compute it themselves.
type AccountRepository struct {
	pool database.TxQuerier
}

// NewAccountRepository creates a new AccountRepository with the given pool.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// NewAccountRepositoryWithPool creates a new AccountRepository with a custom pool interface.
// This is primarily used for testing.
func NewAccountRepositoryWithPool(pool database.TxQuerier) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Ensure opens the account with initialGrant tokens if it does not exist and
// returns the current balance.
// The no-op DO UPDATE makes RETURNING yield the committed row when a
// concurrent first access inserted it, which DO NOTHING would not.
func (r *AccountRepository) Ensure(ctx context.Context, q database.TxQuerier, userID string, initialGrant int) (int, error) {
	query := `
		INSERT INTO accounts (user_id, tokens) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING tokens`

	var tokens int
	if err := q.QueryRow(ctx, query, userID, initialGrant).Scan(&tokens); err != nil {
		return 0, fmt.Errorf("ensure account %s: %w", userID, err)
	}
	return tokens, nil
}

// Balance returns the current balance outside of any transaction.
func (r *AccountRepository) Balance(ctx context.Context, userID string, initialGrant int) (int, error) {
	return r.Ensure(ctx, r.pool, userID, initialGrant)
}

// Debit removes one token and returns the remaining balance.
// Returns service.ErrInsufficientTokens when the balance is already zero or
// the account does not exist.
func (r *AccountRepository) Debit(ctx context.Context, tx database.TxQuerier, userID string) (int, error) {
	var tokens int
	err := tx.QueryRow(ctx,
		`UPDATE accounts SET tokens = tokens - 1, updated_at = NOW() WHERE user_id = $1 AND tokens > 0 RETURNING tokens`,
		userID).Scan(&tokens)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, service.ErrInsufficientTokens
		}
		return 0, fmt.Errorf("debit account %s: %w", userID, err)
	}
	return tokens, nil
}

// Credit adds amount tokens and returns the new balance.
func (r *AccountRepository) Credit(ctx context.Context, tx database.TxQuerier, userID string, amount int) (int, error) {
	var tokens int
	err := tx.QueryRow(ctx,
		`UPDATE accounts SET tokens = tokens + $2, updated_at = NOW() WHERE user_id = $1 RETURNING tokens`,
		userID, amount).Scan(&tokens)
	if err != nil {
		return 0, fmt.Errorf("credit account %s: %w", userID, err)
	}
	return tokens, nil
}
