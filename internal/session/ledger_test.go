package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_Refresh(t *testing.T) {
	b := newFakeBoundary(5)
	l := NewLedger(b, nopLogger())
	assert.False(t, l.Known())

	balance, err := l.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, balance)
	assert.Equal(t, 5, l.Balance())
	assert.True(t, l.Known())
}

func TestLedger_RefreshFailureKeepsValue(t *testing.T) {
	b := newFakeBoundary(5)
	l := NewLedger(b, nopLogger())
	_, err := l.Refresh(context.Background())
	require.NoError(t, err)

	b.setBalanceErr(errors.New("connection refused"))
	balance, err := l.Refresh(context.Background())

	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Equal(t, 5, balance)
	assert.Equal(t, 5, l.Balance())
}

func TestLedger_RejectsNegative(t *testing.T) {
	l := NewLedger(newFakeBoundary(-1), nopLogger())
	require.NoError(t, l.ApplyCouponResult(3))

	_, err := l.Refresh(context.Background())
	assert.Error(t, err)
	assert.Error(t, l.ApplyCouponResult(-4))

	assert.Equal(t, 3, l.Balance())
}

func TestLedger_ApplyCouponResultIsIdempotent(t *testing.T) {
	l := NewLedger(newFakeBoundary(5), nopLogger())

	require.NoError(t, l.ApplyCouponResult(10))
	require.NoError(t, l.ApplyCouponResult(10))

	assert.Equal(t, 10, l.Balance())
}

func TestLedger_SubscribersSeeEveryWrite(t *testing.T) {
	l := NewLedger(newFakeBoundary(5), nopLogger())
	var badge, panel []int
	l.Subscribe(func(b int) { badge = append(badge, b) })
	unsubscribe := l.Subscribe(func(b int) { panel = append(panel, b) })

	_, err := l.Refresh(context.Background())
	require.NoError(t, err)
	require.NoError(t, l.ApplyCouponResult(10))
	unsubscribe()
	unsubscribe()
	require.NoError(t, l.ApplyCouponResult(12))

	assert.Equal(t, []int{5, 10, 12}, badge)
	assert.Equal(t, []int{5, 10}, panel)
}

func TestLedger_SubscriberMayReadBalance(t *testing.T) {
	l := NewLedger(newFakeBoundary(5), nopLogger())
	var seen int
	l.Subscribe(func(int) { seen = l.Balance() })

	require.NoError(t, l.ApplyCouponResult(7))

	assert.Equal(t, 7, seen)
}

func TestLedger_Reset(t *testing.T) {
	l := NewLedger(newFakeBoundary(5), nopLogger())
	calls := 0
	l.Subscribe(func(int) { calls++ })
	require.NoError(t, l.ApplyCouponResult(9))

	l.Reset()
	require.NoError(t, l.ApplyCouponResult(3))

	assert.Equal(t, 1, calls, "subscriptions end at sign-out")
	assert.Equal(t, 3, l.Balance())

	l.Reset()
	assert.Equal(t, 0, l.Balance())
	assert.False(t, l.Known())
}
