package session

import (
	"context"

	"github.com/rs/zerolog"
)

// Session wires the client core for one signed-in user.
type Session struct {
	Ledger       *Ledger
	Redemption   *RedemptionService
	Orchestrator *Orchestrator
	Creations    *CreationsStore
	Dashboard    *Dashboard

	log zerolog.Logger
}

// Start builds the core on top of b and loads the initial balance.
func Start(ctx context.Context, b Boundary, logger zerolog.Logger) (*Session, error) {
	ledger := NewLedger(b, logger)
	if _, err := ledger.Refresh(ctx); err != nil {
		return nil, err
	}

	s := &Session{
		Ledger:       ledger,
		Redemption:   NewRedemptionService(b, ledger, logger),
		Orchestrator: NewOrchestrator(b, ledger, logger),
		Creations:    NewCreationsStore(b),
		log:          logger,
	}
	s.Dashboard = NewDashboard(s.Creations, ledger, s.NewWizard, logger)
	return s, nil
}

// NewWizard starts a new creation flow.
func (s *Session) NewWizard() *Wizard {
	return NewWizard(s.Orchestrator, s.log)
}

// SignOut discards the session's balance and subscriptions.
func (s *Session) SignOut() {
	s.Ledger.Reset()
}
