package session

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fairyhunter13/project-planner/internal/model"
)

// State is a wizard stage. None is terminal.
type State int

const (
	StateNaming State = iota
	StateConfiguring
	StateGenerating
	StateResults
)

func (s State) String() string {
	switch s {
	case StateNaming:
		return "naming"
	case StateConfiguring:
		return "configuring"
	case StateGenerating:
		return "generating"
	case StateResults:
		return "results"
	default:
		return "unknown"
	}
}

// Options is the configuration step's draft.
type Options struct {
	ProjectType              model.ProjectType
	IncludeScriptingLanguage bool
	Complexity               model.Complexity
	AdditionalTechnologies   string
}

// Outcome is delivered once a generation settles.
type Outcome struct {
	View ResultsView
	Err  error
}

// Submitter runs a generation request to completion.
type Submitter interface {
	Submit(ctx context.Context, req model.CreationRequest) ([]model.Idea, error)
}

// Wizard drives one creation session through Naming, Configuring,
// Generating and Results. At most one generation is in flight per wizard.
type Wizard struct {
	submitter Submitter
	log       zerolog.Logger

	mu         sync.Mutex
	state      State
	name       string
	opts       Options
	view       *ResultsView
	lastErr    error
	backQueued int
}

// NewWizard creates a wizard in the Naming state.
func NewWizard(submitter Submitter, logger zerolog.Logger) *Wizard {
	return &Wizard{
		submitter: submitter,
		log:       logger.With().Str("component", "wizard").Logger(),
		state:     StateNaming,
		opts: Options{
			ProjectType: model.ProjectTypeFrontend,
			Complexity:  model.ComplexityEasy,
		},
	}
}

// State returns the current stage.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Name returns the captured creation name.
func (w *Wizard) Name() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.name
}

// Options returns the configuration draft.
func (w *Wizard) Options() Options {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.opts
}

// Results returns the view shown in the Results state.
func (w *Wizard) Results() (ResultsView, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.view == nil {
		return ResultsView{}, false
	}
	return *w.view, true
}

// LastError returns the notice left by the most recent failed generation.
func (w *Wizard) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// SetName captures the creation name and moves to Configuring. Names with
// fewer than two non-whitespace characters fail with KindValidation and
// leave the wizard in Naming.
func (w *Wizard) SetName(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateNaming {
		return ErrWrongState
	}
	if model.NameChars(name) < model.MinNameChars {
		return NewError(KindValidation, "project name must be at least 2 characters", nil)
	}
	w.name = strings.TrimSpace(name)
	w.lastErr = nil
	w.transition(StateConfiguring)
	return nil
}

// Configure replaces the configuration draft. Only valid in Configuring.
func (w *Wizard) Configure(opts Options) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateConfiguring {
		return ErrWrongState
	}
	w.opts = opts
	w.lastErr = nil
	return nil
}

// Generate snapshots the request and submits it in the background. The
// returned channel yields exactly one Outcome and is then closed. While a
// request is outstanding further calls fail with ErrGenerationInFlight and
// send nothing.
func (w *Wizard) Generate(ctx context.Context) (<-chan Outcome, error) {
	w.mu.Lock()
	switch w.state {
	case StateGenerating:
		w.mu.Unlock()
		w.log.Debug().Msg("generate ignored: request in flight")
		return nil, ErrGenerationInFlight
	case StateConfiguring:
	default:
		w.mu.Unlock()
		return nil, ErrWrongState
	}

	req := w.request()
	if err := ValidateRequest(req); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.lastErr = nil
	w.view = nil
	w.transition(StateGenerating)
	w.mu.Unlock()

	out := make(chan Outcome, 1)
	go func() {
		ideas, err := w.submitter.Submit(ctx, req)
		out <- w.settle(req, ideas, err)
		close(out)
	}()
	return out, nil
}

// Back steps backwards. From Results it returns to Configuring, dropping the
// ideas but keeping the name and configuration. From Configuring it returns
// to Naming. While Generating each call is queued and they are applied in
// order once the request settles. Back clears the last error notice.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateGenerating {
		w.backQueued++
		w.log.Debug().Int("queued", w.backQueued).Msg("back queued until generation settles")
		return nil
	}
	return w.stepBack()
}

// stepBack applies one Back outside Generating. Caller holds mu.
func (w *Wizard) stepBack() error {
	switch w.state {
	case StateResults:
		w.view = nil
		w.transition(StateConfiguring)
	case StateConfiguring:
		w.transition(StateNaming)
	default:
		return ErrWrongState
	}
	w.lastErr = nil
	return nil
}

// ShowReplay shows a stored creation's results in this wizard. Going back
// from it lands in Configuring under the replayed name.
func (w *Wizard) ShowReplay(view ResultsView) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateGenerating {
		return ErrGenerationInFlight
	}
	w.name = view.Source.CreationName()
	if view.Source.Kind == SourceFresh {
		w.opts = optionsOf(view.Source.Request)
	}
	w.view = &view
	w.lastErr = nil
	w.transition(StateResults)
	return nil
}

func (w *Wizard) settle(req model.CreationRequest, ideas []model.Idea, err error) Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()

	var outcome Outcome
	if err != nil {
		w.lastErr = err
		w.transition(StateConfiguring)
		outcome = Outcome{Err: err}
	} else {
		view := ResultsView{Source: Fresh(req), Ideas: ideas}
		w.view = &view
		w.transition(StateResults)
		outcome = Outcome{View: view}
	}

	// A failure already lands in Configuring, which is where the first
	// queued Back would have led.
	queued := w.backQueued
	w.backQueued = 0
	if err != nil && queued > 0 {
		queued--
	}
	for ; queued > 0; queued-- {
		if w.stepBack() != nil {
			w.log.Debug().Int("unapplied", queued).Msg("queued back reached the first step")
			break
		}
	}
	return outcome
}

// request builds the immutable snapshot. Caller holds mu.
func (w *Wizard) request() model.CreationRequest {
	return model.CreationRequest{
		Name:                     w.name,
		ProjectType:              w.opts.ProjectType,
		IncludeScriptingLanguage: w.opts.IncludeScriptingLanguage,
		Complexity:               w.opts.Complexity,
		AdditionalTechnologies:   w.opts.AdditionalTechnologies,
	}.Normalized()
}

// transition records a state change. Caller holds mu.
func (w *Wizard) transition(to State) {
	w.log.Debug().Str("from", w.state.String()).Str("to", to.String()).Msg("wizard transition")
	w.state = to
}

func optionsOf(req model.CreationRequest) Options {
	return Options{
		ProjectType:              req.ProjectType,
		IncludeScriptingLanguage: req.IncludeScriptingLanguage,
		Complexity:               req.Complexity,
		AdditionalTechnologies:   req.AdditionalTechnologies,
	}
}
