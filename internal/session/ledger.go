package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Ledger mirrors the server's token balance for one session. It is the only
// copy every display surface reads; values come exclusively from server
// responses and are never adjusted by local arithmetic.
type Ledger struct {
	fetcher BalanceFetcher
	log     zerolog.Logger

	// writeMu orders a write with the notifications it triggers.
	writeMu sync.Mutex

	mu          sync.Mutex
	balance     int
	known       bool
	subscribers map[int]func(int)
	nextID      int
}

// NewLedger creates an empty ledger that refreshes from fetcher.
func NewLedger(fetcher BalanceFetcher, logger zerolog.Logger) *Ledger {
	return &Ledger{
		fetcher:     fetcher,
		log:         logger.With().Str("component", "ledger").Logger(),
		subscribers: make(map[int]func(int)),
	}
}

// Balance returns the last authoritative balance, 0 before the first refresh.
func (l *Ledger) Balance() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Known reports whether the ledger holds a server value.
func (l *Ledger) Known() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.known
}

// Refresh replaces the balance with the server's value. On failure the
// previous value is kept.
func (l *Ledger) Refresh(ctx context.Context) (int, error) {
	balance, err := l.fetcher.FetchBalance(ctx)
	if err != nil {
		return l.Balance(), classify(err)
	}
	if err := l.set(balance, "refresh"); err != nil {
		return l.Balance(), err
	}
	return balance, nil
}

// ApplyCouponResult sets the balance from a redemption response. Applying
// the same value twice leaves the same balance.
func (l *Ledger) ApplyCouponResult(newBalance int) error {
	return l.set(newBalance, "coupon")
}

// Subscribe registers fn to receive every authoritative write. The returned
// function removes the subscription.
func (l *Ledger) Subscribe(fn func(balance int)) (unsubscribe func()) {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subscribers[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subscribers, id)
			l.mu.Unlock()
		})
	}
}

// Reset discards the balance and all subscriptions at sign-out.
func (l *Ledger) Reset() {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	l.mu.Lock()
	l.balance = 0
	l.known = false
	l.subscribers = make(map[int]func(int))
	l.mu.Unlock()
	l.log.Debug().Msg("ledger reset")
}

func (l *Ledger) set(balance int, source string) error {
	if balance < 0 {
		l.log.Warn().Int("balance", balance).Str("source", source).Msg("rejected negative balance")
		return NewError(KindTransport, "the server returned an invalid balance", fmt.Errorf("negative balance %d", balance))
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	l.mu.Lock()
	l.balance = balance
	l.known = true
	subs := make([]func(int), 0, len(l.subscribers))
	for id := 0; id < l.nextID; id++ {
		if fn, ok := l.subscribers[id]; ok {
			subs = append(subs, fn)
		}
	}
	l.mu.Unlock()

	l.log.Debug().Int("balance", balance).Str("source", source).Msg("balance updated")
	for _, fn := range subs {
		fn(balance)
	}
	return nil
}
