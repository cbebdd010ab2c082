package session

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/project-planner/internal/model"
)

// SourceKind tells whether a results view was just generated or replayed.
type SourceKind int

const (
	SourceFresh SourceKind = iota
	SourceReplayed
)

// CreationSource is where a ResultsView's ideas came from: a fresh request
// or a stored creation.
type CreationSource struct {
	Kind    SourceKind
	Request model.CreationRequest // set for SourceFresh
	Name    string                // set for SourceReplayed
}

// Fresh tags results produced by req.
func Fresh(req model.CreationRequest) CreationSource {
	return CreationSource{Kind: SourceFresh, Request: req, Name: req.Name}
}

// Replayed tags results loaded from the creation called name.
func Replayed(name string) CreationSource {
	return CreationSource{Kind: SourceReplayed, Name: name}
}

// CreationName is the name the results are filed under.
func (s CreationSource) CreationName() string {
	return s.Name
}

// ResultsView is what the results screen renders, for both sources.
type ResultsView struct {
	Source CreationSource
	Ideas  []model.Idea
}

// CreationsStore reads stored creations through the boundary. Ordering is
// the server's.
type CreationsStore struct {
	fetcher CreationsFetcher
}

// NewCreationsStore creates a CreationsStore.
func NewCreationsStore(fetcher CreationsFetcher) *CreationsStore {
	return &CreationsStore{fetcher: fetcher}
}

// ListCreations returns the user's creations in store order.
func (s *CreationsStore) ListCreations(ctx context.Context) ([]model.Creation, error) {
	creations, err := s.fetcher.FetchCreations(ctx)
	if err != nil {
		return nil, classify(err)
	}
	if creations == nil {
		creations = []model.Creation{}
	}
	return creations, nil
}

// GetIdeas returns the ideas of the creation called name.
func (s *CreationsStore) GetIdeas(ctx context.Context, name string) ([]model.Idea, error) {
	creations, err := s.ListCreations(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range creations {
		if c.Name == name {
			return c.Ideas, nil
		}
	}
	return nil, ErrCreationNotFound
}

// DashboardData is what the dashboard shows on load.
type DashboardData struct {
	Balance   int
	Creations []model.Creation
}

// Dashboard lists creations and replays them into wizard results.
type Dashboard struct {
	store     *CreationsStore
	ledger    *Ledger
	newWizard func() *Wizard
	log       zerolog.Logger
}

// NewDashboard creates a Dashboard. newWizard builds the wizard a replay opens in.
func NewDashboard(store *CreationsStore, ledger *Ledger, newWizard func() *Wizard, logger zerolog.Logger) *Dashboard {
	return &Dashboard{
		store:     store,
		ledger:    ledger,
		newWizard: newWizard,
		log:       logger.With().Str("component", "dashboard").Logger(),
	}
}

// Load refreshes the balance and lists creations concurrently.
func (d *Dashboard) Load(ctx context.Context) (DashboardData, error) {
	var data DashboardData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		balance, err := d.ledger.Refresh(gctx)
		data.Balance = balance
		return err
	})
	g.Go(func() error {
		creations, err := d.store.ListCreations(gctx)
		data.Creations = creations
		return err
	})
	if err := g.Wait(); err != nil {
		d.log.Warn().Err(err).Msg("dashboard load failed")
		return DashboardData{}, err
	}
	return data, nil
}

// Replay builds the results view of a stored creation.
func (d *Dashboard) Replay(ctx context.Context, name string) (ResultsView, error) {
	ideas, err := d.store.GetIdeas(ctx, name)
	if err != nil {
		return ResultsView{}, err
	}
	return ResultsView{Source: Replayed(name), Ideas: ideas}, nil
}

// Open replays a stored creation into a new wizard showing its results.
func (d *Dashboard) Open(ctx context.Context, name string) (*Wizard, error) {
	view, err := d.Replay(ctx, name)
	if err != nil {
		return nil, err
	}
	w := d.newWizard()
	if err := w.ShowReplay(view); err != nil {
		return nil, err
	}
	return w, nil
}
