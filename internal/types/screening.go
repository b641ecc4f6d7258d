package types

import (
	"github.com/jonathan/resume-screener/internal/analysis"
	"github.com/jonathan/resume-screener/internal/profiles"
)

// AnalyzeResponse is returned after a resume has been analyzed and merged
// into the caller's skill profile.
type AnalyzeResponse struct {
	Success  bool                   `json:"success"`
	Message  string                 `json:"message"`
	Analysis *analysis.Result       `json:"analysis"`
	Profile  *profiles.SkillProfile `json:"profile"`
}

// CandidatesResponse is returned by the admin candidate search.
type CandidatesResponse struct {
	Success    bool                      `json:"success"`
	Message    string                    `json:"message"`
	Candidates []profiles.CandidateMatch `json:"candidates"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}
