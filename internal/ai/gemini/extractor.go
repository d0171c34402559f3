package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/profile"
	"github.com/spigell/resume-matcher/internal/utils"

	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
	Model() string
}

// Extractor asks Gemini for a candidate record and parses the answer.
type Extractor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var systemPrompt string

const defaultMaxLogLength = 200

var _ ai.Extractor = (*Extractor)(nil)

func NewExtractor(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Extractor{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (e *Extractor) Extract(ctx context.Context, resumeText string) (*ai.Extraction, error) {
	resumeText = strings.TrimSpace(resumeText)
	if resumeText == "" {
		return nil, ai.ErrEmptyResume
	}

	prompt := buildPrompt(resumeText)

	e.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("extracting profile: %w", err)
	}

	e.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	p := profile.Parse(stripFences(raw))
	if len(p.Skipped) > 0 {
		e.logger.Debug("skipped malformed response segments", zap.Strings("segments", p.Skipped))
	}
	if len(p.Skills) == 0 && len(p.Experience) == 0 {
		e.logger.Warn("model response has neither skills nor experience",
			zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
		)
	}

	return &ai.Extraction{
		Profile: p,
		Raw:     raw,
		Model:   e.generator.Model(),
	}, nil
}

func buildPrompt(resumeText string) string {
	return "Resume Text:\n" + resumeText + "\n\nExtract the candidate record."
}

// stripFences removes a markdown code fence the model sometimes wraps its answer in.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.Index(raw, "\n"); idx != -1 && !strings.Contains(raw[:idx], ":") {
			raw = raw[idx+1:]
		}
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}
