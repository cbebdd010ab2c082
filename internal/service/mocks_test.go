package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairyhunter13/project-planner/internal/model"
	"github.com/fairyhunter13/project-planner/pkg/database"
)

// mockCouponRepository is a mock implementation of CouponRepositoryInterface.
type mockCouponRepository struct {
	insertFn             func(ctx context.Context, coupon *model.Coupon) error
	getByNameFn          func(ctx context.Context, name string) (*model.Coupon, error)
	getCouponForUpdateFn func(ctx context.Context, tx database.TxQuerier, name string) (*model.Coupon, error)
	decrementStockFn     func(ctx context.Context, tx database.TxQuerier, name string) error
}

func (m *mockCouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, coupon)
	}
	return nil
}

func (m *mockCouponRepository) GetByName(ctx context.Context, name string) (*model.Coupon, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(ctx, name)
	}
	return nil, nil
}

func (m *mockCouponRepository) GetCouponForUpdate(ctx context.Context, tx database.TxQuerier, name string) (*model.Coupon, error) {
	if m.getCouponForUpdateFn != nil {
		return m.getCouponForUpdateFn(ctx, tx, name)
	}
	return nil, ErrCouponNotFound
}

func (m *mockCouponRepository) DecrementStock(ctx context.Context, tx database.TxQuerier, name string) error {
	if m.decrementStockFn != nil {
		return m.decrementStockFn(ctx, tx, name)
	}
	return nil
}

// mockRedemptionRepository is a mock implementation of RedemptionRepositoryInterface.
type mockRedemptionRepository struct {
	getUsersByCouponFn func(ctx context.Context, couponName string) ([]string, error)
	insertFn           func(ctx context.Context, tx database.TxQuerier, userID, couponName string) error
}

func (m *mockRedemptionRepository) GetUsersByCoupon(ctx context.Context, couponName string) ([]string, error) {
	if m.getUsersByCouponFn != nil {
		return m.getUsersByCouponFn(ctx, couponName)
	}
	return []string{}, nil
}

func (m *mockRedemptionRepository) Insert(ctx context.Context, tx database.TxQuerier, userID, couponName string) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, userID, couponName)
	}
	return nil
}

// fakeAccounts is an in-memory AccountRepositoryInterface that mirrors the
// SQL semantics (debit guarded by tokens > 0, ensure is insert-if-absent).
type fakeAccounts struct {
	tokens     map[string]int
	balanceErr error
	debitErr   error
	creditErr  error
	debits     int
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{tokens: map[string]int{}}
}

func (f *fakeAccounts) Ensure(ctx context.Context, q database.TxQuerier, userID string, initialGrant int) (int, error) {
	if _, ok := f.tokens[userID]; !ok {
		f.tokens[userID] = initialGrant
	}
	return f.tokens[userID], nil
}

func (f *fakeAccounts) Balance(ctx context.Context, userID string, initialGrant int) (int, error) {
	if f.balanceErr != nil {
		return 0, f.balanceErr
	}
	return f.Ensure(ctx, nil, userID, initialGrant)
}

func (f *fakeAccounts) Debit(ctx context.Context, tx database.TxQuerier, userID string) (int, error) {
	if f.debitErr != nil {
		return 0, f.debitErr
	}
	if f.tokens[userID] <= 0 {
		return 0, ErrInsufficientTokens
	}
	f.tokens[userID]--
	f.debits++
	return f.tokens[userID], nil
}

func (f *fakeAccounts) Credit(ctx context.Context, tx database.TxQuerier, userID string, amount int) (int, error) {
	if f.creditErr != nil {
		return 0, f.creditErr
	}
	f.tokens[userID] += amount
	return f.tokens[userID], nil
}

// mockCreationRepository is a mock implementation of CreationRepositoryInterface.
type mockCreationRepository struct {
	insertIfAbsentFn func(ctx context.Context, tx database.TxQuerier, creation *model.Creation) (bool, error)
	listByUserFn     func(ctx context.Context, userID string) ([]model.Creation, error)
}

func (m *mockCreationRepository) InsertIfAbsent(ctx context.Context, tx database.TxQuerier, creation *model.Creation) (bool, error) {
	if m.insertIfAbsentFn != nil {
		return m.insertIfAbsentFn(ctx, tx, creation)
	}
	return true, nil
}

func (m *mockCreationRepository) ListByUser(ctx context.Context, userID string) ([]model.Creation, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return []model.Creation{}, nil
}

// mockGenerator is a mock implementation of IdeaGenerator.
type mockGenerator struct {
	generateFn func(ctx context.Context, req model.CreationRequest) ([]model.Idea, error)
	calls      int
}

func (m *mockGenerator) Generate(ctx context.Context, req model.CreationRequest) ([]model.Idea, error) {
	m.calls++
	if m.generateFn != nil {
		return m.generateFn(ctx, req)
	}
	return nil, nil
}

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn  func(ctx context.Context) error
	committed bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	m.committed = true
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error { return nil }

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (m *mockTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }

func (m *mockTx) Conn() *pgx.Conn { return nil }

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

func beginnerFor(tx *mockTx) *mockTxBeginner {
	return &mockTxBeginner{beginFn: func(ctx context.Context) (pgx.Tx, error) { return tx, nil }}
}

func intPtr(i int) *int {
	return &i
}
