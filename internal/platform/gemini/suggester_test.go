package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/phrazzld/taskboard-api/internal/config"
)

// scriptedModels returns one scripted answer per call.
type scriptedModels struct {
	answers []scripted
	calls   int
	prompts []string
}

type scripted struct {
	resp *genai.GenerateContentResponse
	err  error
}

func (m *scriptedModels) GenerateContent(
	_ context.Context,
	_ string,
	contents []*genai.Content,
	_ *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	for _, c := range contents {
		for _, p := range c.Parts {
			m.prompts = append(m.prompts, p.Text)
		}
	}
	a := m.answers[min(m.calls, len(m.answers)-1)]
	m.calls++
	return a.resp, a.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func newTestSuggester(models contentGenerator, retries int) *Suggester {
	return newSuggester(models, "test-model", retries, time.Millisecond,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	models := &scriptedModels{answers: []scripted{{
		resp: textResponse(`{"subtasks": ["Draft outline", " draft outline ", "", "Collect sources", "Write intro"]}`),
	}}}
	s := newTestSuggester(models, 0)

	got, err := s.Suggest(context.Background(), "Write report", "quarterly numbers", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Draft outline", "Collect sources"}, got)

	require.Len(t, models.prompts, 1)
	assert.Contains(t, models.prompts[0], "Task title: Write report")
	assert.Contains(t, models.prompts[0], "quarterly numbers")
	assert.Contains(t, models.prompts[0], "at most 2")
}

func TestSuggestRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	models := &scriptedModels{answers: []scripted{
		{err: errors.New("503 unavailable")},
		{err: errors.New("503 unavailable")},
		{resp: textResponse(`{"subtasks": ["Step one"]}`)},
	}}
	s := newTestSuggester(models, 2)

	got, err := s.Suggest(context.Background(), "Plan trip", "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Step one"}, got)
	assert.Equal(t, 3, models.calls)
}

func TestSuggestErrors(t *testing.T) {
	t.Parallel()

	blocked := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	}

	testCases := []struct {
		name      string
		answers   []scripted
		retries   int
		wantErr   error
		wantCalls int
	}{
		{"exhausted retries", []scripted{{err: errors.New("timeout")}}, 1, ErrTransientFailure, 2},
		{"blocked", []scripted{{resp: blocked}}, 3, ErrContentBlocked, 1},
		{"not json", []scripted{{resp: textResponse("sure! here are some ideas")}}, 3, ErrInvalidResponse, 1},
		{"no candidates", []scripted{{resp: &genai.GenerateContentResponse{}}}, 3, ErrInvalidResponse, 1},
		{"empty list", []scripted{{resp: textResponse(`{"subtasks": []}`)}}, 3, ErrInvalidResponse, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			models := &scriptedModels{answers: tc.answers}
			_, err := newTestSuggester(models, tc.retries).Suggest(context.Background(), "title", "", 3)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, tc.wantCalls, models.calls)
		})
	}
}

func TestSuggestRejectsEmptyTitle(t *testing.T) {
	t.Parallel()

	models := &scriptedModels{answers: []scripted{{resp: textResponse(`{}`)}}}
	_, err := newTestSuggester(models, 0).Suggest(context.Background(), "  ", "", 3)
	assert.ErrorIs(t, err, ErrEmptyTitle)
	assert.Zero(t, models.calls)
}

func TestNormalizeTruncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", MaxSuggestionLength+10)
	got := normalize([]string{long}, 5)
	require.Len(t, got, 1)
	assert.Len(t, got[0], MaxSuggestionLength)
}

func TestNewSuggesterValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := NewSuggester(context.Background(), config.LLMConfig{ModelName: "m"}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewSuggester(context.Background(), config.LLMConfig{GeminiAPIKey: "k"}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
