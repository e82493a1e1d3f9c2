package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/sethvargo/go-retry"
	"google.golang.org/genai"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// Limits on suggestions.
const (
	DefaultMaxSuggestions = 5
	MaxSuggestionLength   = 200
)

const defaultRetryBaseDelay = time.Second

var promptTemplate = template.Must(template.New("subtasks").Parse(
	`Break the following task into at most {{.Max}} concrete, actionable subtasks.
Task title: {{.Title}}
{{- if .Description}}
Task description: {{.Description}}
{{- end}}
Answer with JSON only, in the form {"subtasks": ["first subtask", "second subtask"]}.
Each subtask must be a short imperative sentence of at most 200 characters.`))

type promptData struct {
	Title       string
	Description string
	Max         int
}

// responseSchema is the JSON shape the model is asked to produce.
type responseSchema struct {
	Subtasks []string `json:"subtasks"`
}

// contentGenerator is the part of *genai.Models the suggester needs.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Suggester proposes subtask titles for a task.
type Suggester struct {
	models     contentGenerator
	model      string
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewSuggester creates a Suggester backed by the Gemini API.
func NewSuggester(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Suggester, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create gemini client: %v", ErrInvalidConfig, err)
	}

	return newSuggester(client.Models, cfg.ModelName, cfg.MaxRetries, defaultRetryBaseDelay, logger), nil
}

func newSuggester(
	models contentGenerator,
	model string,
	maxRetries int,
	baseDelay time.Duration,
	logger *slog.Logger,
) *Suggester {
	if logger == nil {
		logger = slog.Default()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = defaultRetryBaseDelay
	}
	return &Suggester{
		models:     models,
		model:      model,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger.With(slog.String("component", "gemini_suggester")),
	}
}

// Suggest returns up to limit subtask titles for the task. Duplicate and
// blank suggestions are dropped; overlong ones are truncated.
func (s *Suggester) Suggest(ctx context.Context, title, description string, limit int) ([]string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if limit <= 0 {
		limit = DefaultMaxSuggestions
	}

	var prompt bytes.Buffer
	err := promptTemplate.Execute(&prompt, promptData{
		Title:       title,
		Description: strings.TrimSpace(description),
		Max:         limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	var parsed *responseSchema
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(s.maxRetries), retry.NewExponential(s.baseDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		resp, err := s.models.GenerateContent(ctx, s.model, genai.Text(prompt.String()),
			&genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("gemini call failed",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			return retry.RetryableError(err)
		}

		parsed, err = parseResponse(resp)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInvalidResponse) || errors.Is(err, ErrContentBlocked) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransientFailure, ctx.Err())
		}
		return nil, fmt.Errorf("%w: after %d attempts: %v", ErrTransientFailure, attempt, err)
	}

	suggestions := normalize(parsed.Subtasks, limit)
	if len(suggestions) == 0 {
		return nil, fmt.Errorf("%w: no subtasks in response", ErrInvalidResponse)
	}

	log.Info("subtasks suggested",
		slog.Int("count", len(suggestions)),
		slog.Int("attempts", attempt))
	return suggestions, nil
}

func parseResponse(resp *genai.GenerateContentResponse) (*responseSchema, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates", ErrInvalidResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, ErrContentBlocked
	}
	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: empty content", ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	var out responseSchema
	if err := json.Unmarshal([]byte(text.String()), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &out, nil
}

func normalize(raw []string, limit int) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if r := []rune(s); len(r) > MaxSuggestionLength {
			s = string(r[:MaxSuggestionLength])
		}
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}
