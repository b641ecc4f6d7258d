package analysis

import (
	"strings"

	"github.com/jonathan/resume-screener/internal/prompts"
)

const (
	promptFile = "analysis.json"
	promptKey  = "analyze-resume"
)

// BuildPrompt renders the analysis prompt for one resume and job.
func BuildPrompt(in Input) (string, error) {
	tmpl, err := prompts.Get(promptFile, promptKey)
	if err != nil {
		return "", err
	}
	return prompts.Render(tmpl, map[string]string{
		"Verdicts":       `"` + strings.Join([]string{Eligible, PotentiallyEligible, NotEligible, CannotDetermine}, `", "`) + `"`,
		"JobTitle":       strings.TrimSpace(in.JobTitle),
		"JobDescription": strings.TrimSpace(in.JobDescription),
		"ResumeText":     strings.TrimSpace(in.ResumeText),
	})
}
