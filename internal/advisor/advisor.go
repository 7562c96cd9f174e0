// Package advisor asks a language model for a short narrative explaining the
// top predicted careers. It never changes the ranking.
package advisor

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/predictor"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/profile"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Note is the explanation for one career.
type Note struct {
	Career string `json:"career"`
	Text   string `json:"text"`
}

// Advice is the narrative returned for a prediction.
type Advice struct {
	Summary string `json:"summary"`
	Notes   []Note `json:"notes,omitempty"`
	Raw     string `json:"-"`
}

// Config controls the advisor.
type Config struct {
	Enabled      bool          `mapstructure:"enabled"`
	Model        string        `mapstructure:"model"`
	Tone         string        `mapstructure:"tone"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxLogLength int           `mapstructure:"max_log_length"`
}

const (
	defaultMaxLogLength = 200
	defaultTone         = "Friendly"
	defaultRetryDelay   = time.Second
	maxRetryDelay       = 10 * time.Second
)

//go:embed prompt.md
var promptTemplate string

// Advisor turns ranked predictions into advice.
type Advisor struct {
	generator contentGenerator
	logger    *zap.Logger
	cfg       Config
}

func New(generator contentGenerator, logger *zap.Logger, cfg Config) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = defaultMaxLogLength
	}
	if strings.TrimSpace(cfg.Tone) == "" {
		cfg.Tone = defaultTone
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Advisor{generator: generator, logger: logger, cfg: cfg}
}

// Advise explains top. Generation is retried up to MaxRetries times with a
// linearly growing delay.
func (a *Advisor) Advise(ctx context.Context, sp profile.StudentProfile, top []predictor.Prediction) (*Advice, error) {
	if len(top) == 0 {
		return nil, errors.New("at least one career is required")
	}
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	prompt, err := buildPrompt(sp, top, a.cfg.Tone)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.cfg.MaxLogLength)),
	)

	var lastErr error
	for attempt := 0; attempt <= a.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := utils.WaitFor(ctx, utils.Backoff(attempt, a.cfg.RetryDelay, maxRetryDelay)); err != nil {
				return nil, err
			}
		}

		raw, err := a.generator.GenerateContent(ctx, prompt)
		if err != nil {
			lastErr = err
			a.logger.Warn("advisor generation failed",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}

		a.logger.Debug("gemini generate content response",
			zap.Int("response_length", utf8.RuneCountInString(raw)),
			zap.String("response_preview", utils.TruncateForLog(raw, a.cfg.MaxLogLength)),
		)

		advice, err := parseResponse(raw, top)
		if err != nil {
			lastErr = err
			a.logger.Warn("advisor response rejected", zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}
		return advice, nil
	}

	return nil, fmt.Errorf("advisor failed after %d attempts: %w", a.cfg.MaxRetries+1, lastErr)
}

func buildPrompt(sp profile.StudentProfile, top []predictor.Prediction, tone string) (string, error) {
	profileJSON, err := json.MarshalIndent(sp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}

	type career struct {
		Rank        int    `json:"rank"`
		Name        string `json:"name"`
		Probability string `json:"probability"`
	}
	careers := make([]career, len(top))
	for i, p := range top {
		careers[i] = career{Rank: i + 1, Name: p.Label, Probability: fmt.Sprintf("%.2f%%", p.Probability*100)}
	}
	careersJSON, err := json.MarshalIndent(careers, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal careers: %w", err)
	}

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Profile:\n{{PROFILE_JSON}}\n\nCareers:\n{{CAREERS_JSON}}\n\nTone: {{TONE}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{PROFILE_JSON}}", string(profileJSON))
	prompt = strings.ReplaceAll(prompt, "{{CAREERS_JSON}}", string(careersJSON))
	prompt = strings.ReplaceAll(prompt, "{{TONE}}", tone)
	return prompt, nil
}

// parseResponse keeps only notes for careers that were actually ranked.
func parseResponse(raw string, top []predictor.Prediction) (*Advice, error) {
	cleaned := extractJSON(raw)
	if !gjson.Valid(cleaned) {
		return nil, errors.New("parse gemini response: invalid json")
	}

	summary := strings.TrimSpace(gjson.Get(cleaned, "summary").String())
	if summary == "" {
		return nil, errors.New("parse gemini response: summary is empty")
	}

	allowed := make(map[string]bool, len(top))
	for _, p := range top {
		allowed[strings.ToLower(p.Label)] = true
	}

	advice := &Advice{Summary: summary, Raw: raw}
	gjson.Get(cleaned, "careers").ForEach(func(_, value gjson.Result) bool {
		name := strings.TrimSpace(value.Get("name").String())
		note := strings.TrimSpace(value.Get("note").String())
		if name != "" && note != "" && allowed[strings.ToLower(name)] {
			advice.Notes = append(advice.Notes, Note{Career: name, Text: note})
		}
		return true
	})
	return advice, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
