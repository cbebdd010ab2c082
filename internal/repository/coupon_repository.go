package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/project-planner/internal/model"
	"github.com/fairyhunter13/project-planner/internal/service"
	"github.com/fairyhunter13/project-planner/pkg/database"
)

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const couponColumns = `name, amount, remaining_amount, credit, expires_at, created_at`

// CouponRepository provides data access for coupons using pgx.
type CouponRepository struct {
	pool PoolInterface
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a new CouponRepository with a custom pool interface.
// This is primarily used for testing.
func NewCouponRepositoryWithPool(pool PoolInterface) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// Insert inserts a new coupon into the database.
// Returns service.ErrCouponExists if a coupon with the same name already exists.
func (r *CouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO coupons (name, amount, remaining_amount, credit, expires_at) VALUES ($1, $2, $3, $4, $5)`,
		coupon.Name, coupon.Amount, coupon.Amount, coupon.Credit, coupon.ExpiresAt) // remaining_amount = amount
	if err != nil {
		if isUniqueViolation(err) {
			return service.ErrCouponExists
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

// GetByName retrieves a coupon by its name.
// Returns nil, nil if the coupon is not found (service layer handles this).
func (r *CouponRepository) GetByName(ctx context.Context, name string) (*model.Coupon, error) {
	coupon, err := scanCoupon(r.pool.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE name = $1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon by name %s: %w", name, err)
	}
	return coupon, nil
}

// GetCouponForUpdate retrieves a coupon with a row lock (SELECT FOR UPDATE).
// This locks the row until the transaction completes.
// Returns service.ErrCouponNotFound if the coupon doesn't exist.
func (r *CouponRepository) GetCouponForUpdate(ctx context.Context, tx database.TxQuerier, name string) (*model.Coupon, error) {
	coupon, err := scanCoupon(tx.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE name = $1 FOR UPDATE`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update %s: %w", name, err)
	}
	return coupon, nil
}

// DecrementStock decrements the remaining_amount of a coupon by 1.
// Must be called within a transaction after locking the row.
func (r *CouponRepository) DecrementStock(ctx context.Context, tx database.TxQuerier, name string) error {
	_, err := tx.Exec(ctx, `UPDATE coupons SET remaining_amount = remaining_amount - 1 WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("decrement stock for %s: %w", name, err)
	}
	return nil
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var coupon model.Coupon
	err := row.Scan(
		&coupon.Name,
		&coupon.Amount,
		&coupon.RemainingAmount,
		&coupon.Credit,
		&coupon.ExpiresAt,
		&coupon.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
