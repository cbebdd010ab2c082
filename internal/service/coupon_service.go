package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/project-planner/internal/metrics"
	"github.com/fairyhunter13/project-planner/internal/model"
	"github.com/fairyhunter13/project-planner/pkg/database"
)

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	Insert(ctx context.Context, coupon *model.Coupon) error
	GetByName(ctx context.Context, name string) (*model.Coupon, error)
	GetCouponForUpdate(ctx context.Context, tx database.TxQuerier, name string) (*model.Coupon, error)
	DecrementStock(ctx context.Context, tx database.TxQuerier, name string) error
}

// RedemptionRepositoryInterface defines the interface for redemption data access.
type RedemptionRepositoryInterface interface {
	GetUsersByCoupon(ctx context.Context, couponName string) ([]string, error)
	Insert(ctx context.Context, tx database.TxQuerier, userID, couponName string) error
}

// AccountRepositoryInterface defines the interface for token balance data access.
type AccountRepositoryInterface interface {
	Ensure(ctx context.Context, q database.TxQuerier, userID string, initialGrant int) (int, error)
	Balance(ctx context.Context, userID string, initialGrant int) (int, error)
	Debit(ctx context.Context, tx database.TxQuerier, userID string) (int, error)
	Credit(ctx context.Context, tx database.TxQuerier, userID string, amount int) (int, error)
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CouponService provides business logic for coupon operations.
type CouponService struct {
	pool           TxBeginner
	couponRepo     CouponRepositoryInterface
	redemptionRepo RedemptionRepositoryInterface
	accountRepo    AccountRepositoryInterface
	initialGrant   int
	metrics        *metrics.Metrics
	now            func() time.Time
}

// NewCouponService creates a new CouponService with the given pool and repositories.
func NewCouponService(pool *pgxpool.Pool, couponRepo CouponRepositoryInterface, redemptionRepo RedemptionRepositoryInterface,
	accountRepo AccountRepositoryInterface, initialGrant int, m *metrics.Metrics) *CouponService {
	return NewCouponServiceWithTxBeginner(pool, couponRepo, redemptionRepo, accountRepo, initialGrant, m)
}

// NewCouponServiceWithTxBeginner creates a CouponService with a custom TxBeginner.
// Primarily used for testing.
func NewCouponServiceWithTxBeginner(pool TxBeginner, couponRepo CouponRepositoryInterface, redemptionRepo RedemptionRepositoryInterface,
	accountRepo AccountRepositoryInterface, initialGrant int, m *metrics.Metrics) *CouponService {
	return &CouponService{
		pool:           pool,
		couponRepo:     couponRepo,
		redemptionRepo: redemptionRepo,
		accountRepo:    accountRepo,
		initialGrant:   initialGrant,
		metrics:        m,
		now:            time.Now,
	}
}

// Create creates a new coupon from the request.
// Returns ErrCouponExists if a coupon with the same name already exists.
// Returns ErrInvalidRequest if request data is nil or incomplete.
func (s *CouponService) Create(ctx context.Context, req *model.CreateCouponRequest) error {
	if req == nil || req.Amount == nil || req.Credit == nil {
		return ErrInvalidRequest
	}

	coupon := &model.Coupon{
		Name:            req.Name,
		Amount:          *req.Amount,
		RemainingAmount: *req.Amount,
		Credit:          *req.Credit,
		ExpiresAt:       req.ExpiresAt,
	}
	return s.couponRepo.Insert(ctx, coupon)
}

// GetByName retrieves a coupon by name with the users who redeemed it.
// Returns ErrCouponNotFound if the coupon doesn't exist.
func (s *CouponService) GetByName(ctx context.Context, name string) (*model.CouponResponse, error) {
	coupon, err := s.couponRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	redeemedBy, err := s.redemptionRepo.GetUsersByCoupon(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get redemptions: %w", err)
	}

	return &model.CouponResponse{
		Name:            coupon.Name,
		Amount:          coupon.Amount,
		RemainingAmount: coupon.RemainingAmount,
		Credit:          coupon.Credit,
		ExpiresAt:       coupon.ExpiresAt,
		RedeemedBy:      redeemedBy,
	}, nil
}

// Redeem atomically redeems a coupon for a user and returns the user's new
// authoritative token balance.
// The coupon row is locked (SELECT FOR UPDATE) for the whole transaction and
// the (user, coupon) pair is unique, so a code credits a user at most once.
// Returns:
//   - ErrCouponNotFound if the coupon doesn't exist
//   - ErrCouponExpired if the coupon is past its expiry
//   - ErrCouponExhausted if the coupon has no redemptions left
//   - ErrAlreadyRedeemed if the user has already redeemed this coupon
func (s *CouponService) Redeem(ctx context.Context, userID, couponName string) (int, error) {
	balance, err := s.redeem(ctx, userID, couponName)
	switch {
	case err == nil:
	case errors.Is(err, ErrCouponNotFound), errors.Is(err, ErrCouponExpired),
		errors.Is(err, ErrCouponExhausted), errors.Is(err, ErrAlreadyRedeemed):
		s.metrics.Redemption(metrics.OutcomeRejected, 0)
	default:
		s.metrics.Redemption(metrics.OutcomeError, 0)
	}
	return balance, err
}

func (s *CouponService) redeem(ctx context.Context, userID, couponName string) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// 1. Lock the coupon row
	coupon, err := s.couponRepo.GetCouponForUpdate(ctx, tx, couponName)
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			return 0, ErrCouponNotFound
		}
		return 0, fmt.Errorf("get coupon for update: %w", err)
	}

	// 2. Check expiry and stock
	if coupon.Expired(s.now()) {
		return 0, ErrCouponExpired
	}
	if coupon.RemainingAmount <= 0 {
		return 0, ErrCouponExhausted
	}

	// 3. Insert redemption (UNIQUE constraint catches repeats)
	if err := s.redemptionRepo.Insert(ctx, tx, userID, couponName); err != nil {
		if errors.Is(err, ErrAlreadyRedeemed) {
			return 0, ErrAlreadyRedeemed
		}
		return 0, fmt.Errorf("insert redemption: %w", err)
	}

	// 4. Decrement stock
	if err := s.couponRepo.DecrementStock(ctx, tx, couponName); err != nil {
		return 0, fmt.Errorf("decrement stock: %w", err)
	}

	// 5. Credit the account, creating it with the initial grant if needed
	if _, err := s.accountRepo.Ensure(ctx, tx, userID, s.initialGrant); err != nil {
		return 0, fmt.Errorf("ensure account: %w", err)
	}
	balance, err := s.accountRepo.Credit(ctx, tx, userID, coupon.Credit)
	if err != nil {
		return 0, fmt.Errorf("credit account: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit redemption: %w", err)
	}
	s.metrics.Redemption(metrics.OutcomeSuccess, coupon.Credit)
	return balance, nil
}
