// Package generator turns a creation request into project ideas using an
// OpenAI-compatible chat completions endpoint.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/project-planner/internal/config"
	"github.com/fairyhunter13/project-planner/internal/model"
)

var (
	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("generator temporarily unavailable")

	// ErrMalformedResponse is returned when the model reply is not a usable idea list.
	ErrMalformedResponse = errors.New("generator returned a malformed response")
)

// OpenAIGenerator calls /chat/completions and parses a JSON idea list from the reply.
// Calls go through a circuit breaker only; there is no retry policy, so a
// request is never sent to the model twice.
type OpenAIGenerator struct {
	client    *http.Client
	apiURL    string
	apiKey    string
	model     string
	ideaCount int
	breaker   circuitbreaker.CircuitBreaker[[]model.Idea]
}

// NewOpenAIGenerator creates a generator from configuration.
func NewOpenAIGenerator(cfg config.GeneratorConfig) *OpenAIGenerator {
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	count := cfg.IdeaCount
	if count <= 0 {
		count = 6
	}
	window := cfg.BreakerWindow
	if window == 0 {
		window = 10
	}
	delay := cfg.BreakerDelay
	if delay <= 0 {
		delay = 15 * time.Second
	}
	threshold := window / 2
	if threshold < 1 {
		threshold = 1
	}

	breaker := circuitbreaker.NewBuilder[[]model.Idea]().
		WithFailureThresholdRatio(threshold, window).
		WithDelay(delay).
		OnStateChanged(func(event circuitbreaker.StateChangedEvent) {
			log.Warn().
				Str("circuit_breaker", "generator").
				Str("from_state", stateName(event.OldState)).
				Str("to_state", stateName(event.NewState)).
				Msg("circuit breaker state change")
		}).
		Build()

	return &OpenAIGenerator{
		client:    &http.Client{Timeout: timeout},
		apiURL:    apiURL,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		ideaCount: count,
		breaker:   breaker,
	}
}

// Available reports whether the circuit breaker currently lets calls through.
func (g *OpenAIGenerator) Available() bool {
	return !g.breaker.IsOpen()
}

func stateName(state circuitbreaker.State) string {
	switch state {
	case circuitbreaker.ClosedState:
		return "closed"
	case circuitbreaker.HalfOpenState:
		return "half-open"
	case circuitbreaker.OpenState:
		return "open"
	default:
		return "unknown"
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type ideaList struct {
	Ideas []model.Idea `json:"ideas"`
}

// Generate asks the model for ideas matching req. The returned order is the
// model's order.
func (g *OpenAIGenerator) Generate(ctx context.Context, req model.CreationRequest) ([]model.Idea, error) {
	ideas, err := failsafe.With(g.breaker).WithContext(ctx).Get(func() ([]model.Idea, error) {
		return g.complete(ctx, req)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return nil, ErrUnavailable
	}
	return ideas, err
}

func (g *OpenAIGenerator) complete(ctx context.Context, req model.CreationRequest) ([]model.Idea, error) {
	if g.model == "" {
		return nil, errors.New("generator model is required")
	}
	payload, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: Prompt(req, g.ideaCount)},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("generator: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("generator: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generator: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("generator: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("generator: decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	return ParseIdeas(chat.Choices[0].Message.Content)
}

// ParseIdeas extracts the idea list from a model reply. It accepts either
// {"ideas": [...]} or a bare array, optionally wrapped in a markdown code fence.
// Ideas without a name are dropped.
func ParseIdeas(content string) ([]model.Idea, error) {
	content = stripFence(strings.TrimSpace(content))

	var raw []model.Idea
	if strings.HasPrefix(content, "[") {
		if err := json.Unmarshal([]byte(content), &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	} else {
		var list ideaList
		if err := json.Unmarshal([]byte(content), &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		raw = list.Ideas
	}

	ideas := make([]model.Idea, 0, len(raw))
	for _, idea := range raw {
		idea.Name = strings.TrimSpace(idea.Name)
		idea.Description = strings.TrimSpace(idea.Description)
		if idea.Name == "" {
			continue
		}
		ideas = append(ideas, idea)
	}
	if len(ideas) == 0 {
		return nil, fmt.Errorf("%w: no ideas", ErrMalformedResponse)
	}
	return ideas, nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
