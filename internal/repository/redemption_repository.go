package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/project-planner/internal/service"
	"github.com/fairyhunter13/project-planner/pkg/database"
)

// QueryPoolInterface defines the read operations needed by list queries.
type QueryPoolInterface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// RedemptionRepository provides data access for coupon redemptions using pgx.
type RedemptionRepository struct {
	pool QueryPoolInterface
}

// NewRedemptionRepository creates a new RedemptionRepository with the given pool.
func NewRedemptionRepository(pool *pgxpool.Pool) *RedemptionRepository {
	return &RedemptionRepository{pool: pool}
}

// NewRedemptionRepositoryWithPool creates a new RedemptionRepository with a custom pool interface.
// This is primarily used for testing.
func NewRedemptionRepositoryWithPool(pool QueryPoolInterface) *RedemptionRepository {
	return &RedemptionRepository{pool: pool}
}

// GetUsersByCoupon returns the users who redeemed a coupon, in redemption order.
// On success, returns an empty slice (not nil) when nobody redeemed it.
func (r *RedemptionRepository) GetUsersByCoupon(ctx context.Context, couponName string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM redemptions WHERE coupon_name = $1 ORDER BY created_at, user_id`, couponName)
	if err != nil {
		return nil, fmt.Errorf("get redemptions for coupon %s: %w", couponName, err)
	}
	defer rows.Close()

	users := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan redemption user_id: %w", err)
		}
		users = append(users, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate redemption rows: %w", err)
	}
	return users, nil
}

// Insert records a redemption within a transaction.
// Returns service.ErrAlreadyRedeemed if the user has already redeemed this coupon.
func (r *RedemptionRepository) Insert(ctx context.Context, tx database.TxQuerier, userID, couponName string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO redemptions (id, user_id, coupon_name) VALUES ($1, $2, $3)`,
		uuid.New(), userID, couponName)
	if err != nil {
		if isUniqueViolation(err) {
			return service.ErrAlreadyRedeemed
		}
		return fmt.Errorf("insert redemption: %w", err)
	}
	return nil
}
