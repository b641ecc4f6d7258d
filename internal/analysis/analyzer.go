package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/llm"
)

// MaxResumeChars caps the resume text forwarded to the model.
const MaxResumeChars = 30000

// Analyzer scores resumes with an LLM.
type Analyzer struct {
	client llm.Client
	logger *zap.Logger
}

// NewAnalyzer creates an Analyzer. A nil logger disables logging.
func NewAnalyzer(client llm.Client, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{client: client, logger: logger}
}

// Analyze validates in, asks the model for an analysis and checks the response.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*Result, error) {
	if strings.TrimSpace(in.JobTitle) == "" {
		return nil, &InputError{Field: "jobTitle", Message: "is required"}
	}
	if strings.TrimSpace(in.JobDescription) == "" {
		return nil, &InputError{Field: "jobDescription", Message: "is required"}
	}
	if strings.TrimSpace(in.ResumeText) == "" {
		return nil, &InputError{Field: "resume", Message: ErrNoText.Error()}
	}
	in.ResumeText = truncate(in.ResumeText, MaxResumeChars)

	prompt, err := BuildPrompt(in)
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis prompt: %w", err)
	}

	start := time.Now()
	raw, err := a.client.GenerateJSON(ctx, prompt, ResponseSchema())
	if err != nil {
		return nil, &ModelError{Model: a.client.Model(), Err: err}
	}
	raw = llm.CleanJSONBlock(raw)

	if err := ValidateResponse(raw); err != nil {
		a.logger.Warn("analysis response rejected",
			zap.String("model", a.client.Model()),
			zap.Error(err))
		return nil, &ModelError{Model: a.client.Model(), Err: err}
	}

	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, &ModelError{Model: a.client.Model(), Err: fmt.Errorf("failed to decode analysis: %w", err)}
	}

	a.logger.Info("resume analyzed",
		zap.String("model", a.client.Model()),
		zap.Float64("ats_score", result.ATSScore),
		zap.Int("skills", len(result.ExtractedSkills)),
		zap.Duration("elapsed", time.Since(start)))
	return &result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
