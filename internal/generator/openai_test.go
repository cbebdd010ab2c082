package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/project-planner/internal/config"
	"github.com/fairyhunter13/project-planner/internal/model"
)

func testRequest() model.CreationRequest {
	return model.CreationRequest{
		Name:                     "AI Tracker",
		ProjectType:              model.ProjectTypeFrontend,
		IncludeScriptingLanguage: true,
		Complexity:               model.ComplexityMedium,
		AdditionalTechnologies:   "React",
	}
}

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}))
}

func newTestGenerator(url string) *OpenAIGenerator {
	return NewOpenAIGenerator(config.GeneratorConfig{
		APIURL:        url,
		APIKey:        "sk-test",
		Model:         "gpt-4o-mini",
		Timeout:       5 * time.Second,
		IdeaCount:     3,
		BreakerWindow: 1,
		BreakerDelay:  time.Minute,
	})
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		chatReply(t, w, `{"ideas":[{"name":"Habit Lens","description":"d1"},{"name":"Model Watch","description":"d2"},{"name":"Prompt Diary","description":"d3"}]}`)
	}))
	defer srv.Close()

	ideas, err := newTestGenerator(srv.URL).Generate(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, []model.Idea{
		{Name: "Habit Lens", Description: "d1"},
		{Name: "Model Watch", Description: "d2"},
		{Name: "Prompt Diary", Description: "d3"},
	}, ideas)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[1].Content, `"AI Tracker"`)
	assert.Contains(t, got.Messages[1].Content, "JavaScript")
	assert.Contains(t, got.Messages[1].Content, "React")
}

func TestOpenAIGenerator_UpstreamErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	gen := newTestGenerator(srv.URL)
	assert.True(t, gen.Available())
	_, err := gen.Generate(context.Background(), testRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
	assert.Equal(t, int32(1), hits.Load())

	_, err = gen.Generate(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1), hits.Load(), "open breaker short-circuits the call")
	assert.False(t, gen.Available())
}

func TestOpenAIGenerator_MalformedReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, "I cannot help with that")
	}))
	defer srv.Close()

	_, err := newTestGenerator(srv.URL).Generate(context.Background(), testRequest())

	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestOpenAIGenerator_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestGenerator(srv.URL).Generate(context.Background(), testRequest())

	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestOpenAIGenerator_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestGenerator(srv.URL).Generate(ctx, testRequest())

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestOpenAIGenerator_Defaults(t *testing.T) {
	gen := NewOpenAIGenerator(config.GeneratorConfig{Model: "m"})

	assert.Equal(t, "https://api.openai.com/v1", gen.apiURL)
	assert.Equal(t, 6, gen.ideaCount)
	assert.Equal(t, 60*time.Second, gen.client.Timeout)
}

func TestParseIdeas(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []model.Idea
		wantErr bool
	}{
		{
			name:    "object",
			content: `{"ideas":[{"name":"A","description":"a"}]}`,
			want:    []model.Idea{{Name: "A", Description: "a"}},
		},
		{
			name:    "bare array",
			content: `[{"name":"A","description":"a"},{"name":"B","description":"b"}]`,
			want:    []model.Idea{{Name: "A", Description: "a"}, {Name: "B", Description: "b"}},
		},
		{
			name:    "fenced",
			content: "```json\n{\"ideas\":[{\"name\":\" A \",\"description\":\" a \"}]}\n```",
			want:    []model.Idea{{Name: "A", Description: "a"}},
		},
		{
			name:    "nameless ideas dropped",
			content: `{"ideas":[{"name":"","description":"x"},{"name":"B","description":"b"}]}`,
			want:    []model.Idea{{Name: "B", Description: "b"}},
		},
		{name: "empty list", content: `{"ideas":[]}`, wantErr: true},
		{name: "prose", content: "sure, here you go", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIdeas(tt.content)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrompt(t *testing.T) {
	req := testRequest()
	req.IncludeScriptingLanguage = false
	assert.Contains(t, Prompt(req, 4), "TypeScript")
	assert.Contains(t, Prompt(req, 4), "Suggest 4 project ideas")

	req.ProjectType = model.ProjectTypeBackend
	req.AdditionalTechnologies = "  "
	p := Prompt(req, 4)
	assert.Contains(t, p, "backend service")
	assert.NotContains(t, p, "must use")
	assert.Contains(t, p, "Complexity: Medium")
}
