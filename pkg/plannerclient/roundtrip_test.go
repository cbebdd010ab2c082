package plannerclient

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/project-planner/internal/auth"
	"github.com/fairyhunter13/project-planner/internal/handler"
	"github.com/fairyhunter13/project-planner/internal/model"
	"github.com/fairyhunter13/project-planner/internal/server"
	"github.com/fairyhunter13/project-planner/internal/service"
	"github.com/fairyhunter13/project-planner/internal/session"
	appvalidator "github.com/fairyhunter13/project-planner/internal/validator"
)

// memoryPlanner stands in for the database-backed services behind the real router.
type memoryPlanner struct {
	mu        sync.Mutex
	balances  map[string]int
	creations map[string][]model.Creation
	ideas     []model.Idea
	credits   map[string]int
	redeemed  map[string]bool
}

func newMemoryPlanner(ideas []model.Idea) *memoryPlanner {
	return &memoryPlanner{
		balances:  map[string]int{},
		creations: map[string][]model.Creation{},
		ideas:     ideas,
		credits:   map[string]int{"welcomeBonus": 5},
		redeemed:  map[string]bool{},
	}
}

func (m *memoryPlanner) balance(userID string) int {
	if b, ok := m.balances[userID]; ok {
		return b
	}
	m.balances[userID] = 5
	return 5
}

func (m *memoryPlanner) Generate(ctx context.Context, userID string, req *model.CreationRequest) ([]model.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balance(userID) <= 0 {
		return nil, service.ErrInsufficientTokens
	}
	m.balances[userID]--
	for _, c := range m.creations[userID] {
		if c.Name == req.Name {
			return m.ideas, nil
		}
	}
	m.creations[userID] = append(m.creations[userID], model.Creation{Name: req.Name, Ideas: m.ideas})
	return m.ideas, nil
}

func (m *memoryPlanner) Balance(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance(userID), nil
}

func (m *memoryPlanner) Creations(ctx context.Context, userID string) ([]model.Creation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Creation{}, m.creations[userID]...), nil
}

func (m *memoryPlanner) Create(ctx context.Context, req *model.CreateCouponRequest) error { return nil }

func (m *memoryPlanner) GetByName(ctx context.Context, name string) (*model.CouponResponse, error) {
	return nil, service.ErrCouponNotFound
}

func (m *memoryPlanner) Redeem(ctx context.Context, userID, couponName string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	credit, ok := m.credits[couponName]
	if !ok {
		return 0, service.ErrCouponNotFound
	}
	key := userID + "/" + couponName
	if m.redeemed[key] {
		return 0, service.ErrAlreadyRedeemed
	}
	m.redeemed[key] = true
	m.balances[userID] = m.balance(userID) + credit
	return m.balances[userID], nil
}

var roundTripSecret = []byte("roundtrip-secret")

func startPlanner(t *testing.T, backend *memoryPlanner) (*session.Session, *Client) {
	t.Helper()
	v := appvalidator.New()
	app := server.New(server.Deps{
		Health:    handler.NewHealthHandler(nil, nil),
		Coupons:   handler.NewCouponHandler(backend, v),
		Planner:   handler.NewPlannerHandler(backend, v),
		JWTSecret: roundTripSecret,
	})
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)

	token, err := auth.GenerateJWT("user_001", "", time.Hour, roundTripSecret)
	require.NoError(t, err)
	client := New(srv.URL, token, WithTimeout(5*time.Second))

	s, err := session.Start(context.Background(), client, zerolog.Nop())
	require.NoError(t, err)
	return s, client
}

func TestRoundTrip_AITrackerScenario(t *testing.T) {
	ideas := []model.Idea{
		{Name: "Habit Lens", Description: "d1"},
		{Name: "Model Watch", Description: "d2"},
		{Name: "Prompt Diary", Description: "d3"},
	}
	s, _ := startPlanner(t, newMemoryPlanner(ideas))
	require.Equal(t, 5, s.Ledger.Balance())

	w := s.NewWizard()
	require.NoError(t, w.SetName("AI Tracker"))
	require.NoError(t, w.Configure(session.Options{
		ProjectType:              model.ProjectTypeFrontend,
		IncludeScriptingLanguage: true,
		Complexity:               model.ComplexityMedium,
	}))
	out, err := w.Generate(context.Background())
	require.NoError(t, err)
	outcome := <-out

	require.NoError(t, outcome.Err)
	assert.Equal(t, ideas, outcome.View.Ideas)
	assert.Equal(t, session.StateResults, w.State())
	assert.Equal(t, 4, s.Ledger.Balance())

	replayed, err := s.Dashboard.Replay(context.Background(), "AI Tracker")
	require.NoError(t, err)
	assert.Equal(t, outcome.View.Ideas, replayed.Ideas)
}

func TestRoundTrip_WelcomeBonusScenario(t *testing.T) {
	s, _ := startPlanner(t, newMemoryPlanner(nil))
	var badge, panel int
	s.Ledger.Subscribe(func(v int) { badge = v })
	s.Ledger.Subscribe(func(v int) { panel = v })

	r, err := s.Redemption.Redeem(context.Background(), "welcomeBonus")

	require.NoError(t, err)
	assert.Equal(t, 10, r.NewBalance)
	assert.Equal(t, 10, s.Ledger.Balance())
	assert.Equal(t, 10, badge)
	assert.Equal(t, 10, panel)

	_, err = s.Redemption.Redeem(context.Background(), "welcomeBonus")
	assert.True(t, session.IsKind(err, session.KindAlreadyRedeemed))
	_, err = s.Redemption.Redeem(context.Background(), "bogus")
	assert.True(t, session.IsKind(err, session.KindInvalidCode))
	assert.Equal(t, 10, s.Ledger.Balance())
}

func TestRoundTrip_ZeroBalance(t *testing.T) {
	backend := newMemoryPlanner([]model.Idea{{Name: "A", Description: "a"}})
	backend.balances["user_001"] = 0
	s, _ := startPlanner(t, backend)

	w := s.NewWizard()
	require.NoError(t, w.SetName("Broke"))
	require.NoError(t, w.Configure(session.Options{ProjectType: model.ProjectTypeBackend, Complexity: model.ComplexityEasy}))
	out, err := w.Generate(context.Background())
	require.NoError(t, err)
	outcome := <-out

	assert.True(t, session.IsKind(outcome.Err, session.KindAuthorization))
	assert.Equal(t, "not enough tokens", session.Notice(outcome.Err))
	assert.Equal(t, session.StateConfiguring, w.State())
	assert.Equal(t, 0, s.Ledger.Balance())
}

func TestRoundTrip_BadToken(t *testing.T) {
	backend := newMemoryPlanner(nil)
	v := appvalidator.New()
	app := server.New(server.Deps{
		Health:    handler.NewHealthHandler(nil, nil),
		Coupons:   handler.NewCouponHandler(backend, v),
		Planner:   handler.NewPlannerHandler(backend, v),
		JWTSecret: roundTripSecret,
	})
	srv := httptest.NewServer(adaptor.FiberApp(app))
	defer srv.Close()

	_, err := session.Start(context.Background(), New(srv.URL, "forged"), zerolog.Nop())

	assert.True(t, session.IsKind(err, session.KindAuthorization))
}
