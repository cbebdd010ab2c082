package session

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/fairyhunter13/project-planner/internal/model"
)

// Orchestrator issues one generation request per Submit and reconciles the
// ledger afterwards.
type Orchestrator struct {
	generator IdeaGenerator
	ledger    *Ledger
	log       zerolog.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(generator IdeaGenerator, ledger *Ledger, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		generator: generator,
		ledger:    ledger,
		log:       logger.With().Str("component", "orchestrator").Logger(),
	}
}

// ValidateRequest checks a creation request locally. Failures are
// KindValidation errors.
func ValidateRequest(req model.CreationRequest) error {
	if model.NameChars(req.Name) < model.MinNameChars {
		return NewError(KindValidation, "project name must be at least 2 characters", nil)
	}
	if !req.ProjectType.Valid() {
		return NewError(KindValidation, "choose a project type: Frontend, Backend or FullStack", nil)
	}
	if !req.Complexity.Valid() {
		return NewError(KindValidation, "choose a complexity: Easy, Medium or Hard", nil)
	}
	return nil
}

// Submit sends req to the generator exactly once. On success the ledger is
// refreshed after the ideas are in hand; a refresh failure leaves the
// balance stale but never discards the ideas. An authorization failure also
// triggers a best-effort refresh. Nothing is retried.
func (o *Orchestrator) Submit(ctx context.Context, req model.CreationRequest) ([]model.Idea, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	ideas, err := o.generator.GenerateIdeas(ctx, req)
	if err != nil {
		err = classify(err)
		o.log.Warn().Err(err).Str("kind", KindOf(err).String()).Str("project_name", req.Name).Msg("generation failed")
		if IsKind(err, KindAuthorization) {
			o.refresh(ctx)
		}
		return nil, err
	}

	o.log.Debug().Str("project_name", req.Name).Int("idea_count", len(ideas)).Msg("ideas received")
	o.refresh(ctx)
	return ideas, nil
}

func (o *Orchestrator) refresh(ctx context.Context) {
	if _, err := o.ledger.Refresh(ctx); err != nil {
		o.log.Warn().Err(err).Msg("balance refresh failed; displayed balance is stale")
	}
}
