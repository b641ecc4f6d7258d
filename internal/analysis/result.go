// Package analysis turns an uploaded resume and a target job into a scored
// LLM analysis.
package analysis

// Eligibility verdicts the model may return.
const (
	Eligible            = "Eligible"
	PotentiallyEligible = "Potentially Eligible"
	NotEligible         = "Not Eligible"
	CannotDetermine     = "Can Not Determine"
)

// Result is the structured analysis returned by the model.
type Result struct {
	IsEligible          string   `json:"is_eligible"`
	ATSScore            float64  `json:"ats_score"`
	Strengths           []string `json:"strengths"`
	Weaknesses          []string `json:"weaknesses"`
	SkillGaps           []string `json:"skill_gaps"`
	MissingKeywords     []string `json:"missing_keywords"`
	FiveStepsToStandOut []string `json:"five_steps_to_stand_out"`
	ExtractedSkills     []string `json:"extracted_skills"`
}

// Input is one analysis request.
type Input struct {
	ResumeText     string
	JobTitle       string
	JobDescription string
}
