package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fairyhunter13/project-planner/internal/model"
)

// fakeBoundary mimics the server: it owns the balance and debits one token
// per successful generation.
type fakeBoundary struct {
	mu sync.Mutex

	balance int

	generateFn  func(ctx context.Context, req model.CreationRequest) ([]model.Idea, error)
	redeemFn    func(ctx context.Context, code string) (Redemption, error)
	creationsFn func(ctx context.Context) ([]model.Creation, error)
	balanceErr  error

	// release, when set, blocks GenerateIdeas until it is closed.
	release chan struct{}
	started chan struct{}

	generateCalls int
	redeemCalls   int
	balanceCalls  int
	requests      []model.CreationRequest
}

func newFakeBoundary(balance int) *fakeBoundary {
	return &fakeBoundary{balance: balance}
}

func (f *fakeBoundary) FetchBalance(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balanceCalls++
	if f.balanceErr != nil {
		return 0, f.balanceErr
	}
	return f.balance, nil
}

func (f *fakeBoundary) GenerateIdeas(ctx context.Context, req model.CreationRequest) ([]model.Idea, error) {
	f.mu.Lock()
	f.generateCalls++
	f.requests = append(f.requests, req)
	release, started := f.release, f.started
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balance <= 0 {
		return nil, NewError(KindAuthorization, "not enough tokens", nil)
	}
	if f.generateFn == nil {
		return nil, NewError(KindTransport, "no generator configured", nil)
	}
	ideas, err := f.generateFn(ctx, req)
	if err != nil {
		return nil, err
	}
	f.balance--
	return ideas, nil
}

func (f *fakeBoundary) RedeemCoupon(ctx context.Context, code string) (Redemption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redeemCalls++
	if f.redeemFn == nil {
		return Redemption{}, NewError(KindInvalidCode, "invalid coupon code", nil)
	}
	r, err := f.redeemFn(ctx, code)
	if err == nil {
		f.balance = r.NewBalance
	}
	return r, err
}

func (f *fakeBoundary) FetchCreations(ctx context.Context) ([]model.Creation, error) {
	if f.creationsFn == nil {
		return nil, nil
	}
	return f.creationsFn(ctx)
}

func (f *fakeBoundary) setBalanceErr(err error) {
	f.mu.Lock()
	f.balanceErr = err
	f.mu.Unlock()
}

func (f *fakeBoundary) serverBalance() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance
}

func (f *fakeBoundary) calls() (generate, redeem, balance int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generateCalls, f.redeemCalls, f.balanceCalls
}

func nopLogger() zerolog.Logger { return zerolog.Nop() }

func threeIdeas() []model.Idea {
	return []model.Idea{
		{Name: "Habit Lens", Description: "Track habits with an AI coach."},
		{Name: "Model Watch", Description: "Compare model outputs over time."},
		{Name: "Prompt Diary", Description: "Version and annotate prompts."},
	}
}

func returning(ideas []model.Idea) func(ctx context.Context, req model.CreationRequest) ([]model.Idea, error) {
	return func(ctx context.Context, req model.CreationRequest) ([]model.Idea, error) {
		return ideas, nil
	}
}
