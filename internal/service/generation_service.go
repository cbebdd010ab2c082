package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/project-planner/internal/metrics"
	"github.com/fairyhunter13/project-planner/internal/model"
	"github.com/fairyhunter13/project-planner/pkg/database"
)

// IdeaGenerator produces project ideas for a request. It is the opaque
// remote capability behind POST /api/generate-ideas.
type IdeaGenerator interface {
	Generate(ctx context.Context, req model.CreationRequest) ([]model.Idea, error)
}

// CreationRepositoryInterface defines the interface for creation data access.
type CreationRepositoryInterface interface {
	InsertIfAbsent(ctx context.Context, tx database.TxQuerier, creation *model.Creation) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]model.Creation, error)
}

// GenerationService meters idea generation against the token ledger and
// persists named creations.
type GenerationService struct {
	pool         TxBeginner
	accountRepo  AccountRepositoryInterface
	creationRepo CreationRepositoryInterface
	generator    IdeaGenerator
	initialGrant int
	metrics      *metrics.Metrics
}

// NewGenerationService creates a GenerationService backed by the given pool.
func NewGenerationService(pool *pgxpool.Pool, accountRepo AccountRepositoryInterface, creationRepo CreationRepositoryInterface,
	generator IdeaGenerator, initialGrant int, m *metrics.Metrics) *GenerationService {
	return NewGenerationServiceWithTxBeginner(pool, accountRepo, creationRepo, generator, initialGrant, m)
}

// NewGenerationServiceWithTxBeginner creates a GenerationService with a custom TxBeginner.
// Primarily used for testing.
func NewGenerationServiceWithTxBeginner(pool TxBeginner, accountRepo AccountRepositoryInterface, creationRepo CreationRepositoryInterface,
	generator IdeaGenerator, initialGrant int, m *metrics.Metrics) *GenerationService {
	return &GenerationService{
		pool:         pool,
		accountRepo:  accountRepo,
		creationRepo: creationRepo,
		generator:    generator,
		initialGrant: initialGrant,
		metrics:      m,
	}
}

// Balance returns the user's authoritative token balance, opening the
// account with the initial grant on first access.
func (s *GenerationService) Balance(ctx context.Context, userID string) (int, error) {
	balance, err := s.accountRepo.Balance(ctx, userID, s.initialGrant)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

// Creations lists the user's creations, oldest first.
func (s *GenerationService) Creations(ctx context.Context, userID string) ([]model.Creation, error) {
	creations, err := s.creationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list creations: %w", err)
	}
	return creations, nil
}

// Generate produces ideas for req and debits exactly one token.
// The generator runs before the debit transaction so no row lock is held
// across the remote call; a generator failure debits nothing.
// The first successful generation under a name is persisted as a creation;
// later ones under the same name return fresh ideas but leave it untouched.
// Returns:
//   - ErrInvalidRequest if req is nil
//   - ErrInsufficientTokens if the balance is zero before or at debit time
//   - ErrGeneration if the generator fails
func (s *GenerationService) Generate(ctx context.Context, userID string, req *model.CreationRequest) ([]model.Idea, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	normalized := req.Normalized()

	balance, err := s.accountRepo.Balance(ctx, userID, s.initialGrant)
	if err != nil {
		s.metrics.Generation(metrics.OutcomeError)
		return nil, fmt.Errorf("get balance: %w", err)
	}
	if balance <= 0 {
		s.metrics.Generation(metrics.OutcomeInsufficient)
		return nil, ErrInsufficientTokens
	}

	start := time.Now()
	ideas, err := s.generator.Generate(ctx, normalized)
	s.metrics.GeneratorLatency(time.Since(start))
	if err != nil {
		s.metrics.Generation(metrics.OutcomeGenerator)
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if ideas == nil {
		ideas = []model.Idea{}
	}

	remaining, err := s.commit(ctx, userID, normalized.Name, ideas)
	if err != nil {
		if errors.Is(err, ErrInsufficientTokens) {
			s.metrics.Generation(metrics.OutcomeInsufficient)
		} else {
			s.metrics.Generation(metrics.OutcomeError)
		}
		return nil, err
	}

	s.metrics.Generation(metrics.OutcomeSuccess)
	log.Debug().
		Str("user_id", userID).
		Str("creation_name", normalized.Name).
		Int("ideas", len(ideas)).
		Int("remaining_tokens", remaining).
		Msg("ideas generated")
	return ideas, nil
}

func (s *GenerationService) commit(ctx context.Context, userID, name string, ideas []model.Idea) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// 1. Debit one token (guarded by tokens > 0 in the UPDATE)
	remaining, err := s.accountRepo.Debit(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, ErrInsufficientTokens) {
			return 0, ErrInsufficientTokens
		}
		return 0, fmt.Errorf("debit token: %w", err)
	}

	// 2. Persist the creation unless the name is already taken
	creation := &model.Creation{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   name,
		Ideas:  ideas,
	}
	inserted, err := s.creationRepo.InsertIfAbsent(ctx, tx, creation)
	if err != nil {
		return 0, fmt.Errorf("insert creation: %w", err)
	}
	if !inserted {
		log.Debug().Str("user_id", userID).Str("creation_name", name).Msg("creation already exists, keeping original")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit generation: %w", err)
	}
	return remaining, nil
}
