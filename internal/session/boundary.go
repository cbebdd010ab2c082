// Package session holds the client core of the planner: the token ledger,
// coupon redemption, the generation wizard and the creations dashboard.
// It talks to the planner API only through the Boundary interface.
package session

import (
	"context"

	"github.com/fairyhunter13/project-planner/internal/model"
)

// Redemption is the trusted result of a coupon redemption.
type Redemption struct {
	NewBalance int
	Message    string
}

// BalanceFetcher reads the authoritative token balance.
type BalanceFetcher interface {
	FetchBalance(ctx context.Context) (int, error)
}

// IdeaGenerator requests ideas for a creation. One call consumes at most one token.
type IdeaGenerator interface {
	GenerateIdeas(ctx context.Context, req model.CreationRequest) ([]model.Idea, error)
}

// CouponRedeemer exchanges a code for a new balance.
type CouponRedeemer interface {
	RedeemCoupon(ctx context.Context, code string) (Redemption, error)
}

// CreationsFetcher lists the signed-in user's creations.
type CreationsFetcher interface {
	FetchCreations(ctx context.Context) ([]model.Creation, error)
}

// Boundary is every remote capability the core consumes. The signed-in
// identity is attached by the implementation, not by the core.
type Boundary interface {
	BalanceFetcher
	IdeaGenerator
	CouponRedeemer
	CreationsFetcher
}
