package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeClient struct {
	response   string
	err        error
	lastPrompt string
	lastSchema *genai.Schema
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, schema *genai.Schema) (string, error) {
	f.lastPrompt = prompt
	f.lastSchema = schema
	return f.response, f.err
}

func (f *fakeClient) Model() string { return "fake-model" }
func (f *fakeClient) Close() error  { return nil }

const validResponse = `{
  "is_eligible": "Eligible",
  "ats_score": 82,
  "strengths": ["Strong React experience"],
  "weaknesses": ["No cloud certifications"],
  "skill_gaps": ["Kubernetes"],
  "missing_keywords": ["kubernetes", "terraform"],
  "five_steps_to_stand_out": ["a", "b", "c", "d", "e"],
  "extracted_skills": ["React", "Node", "SQL"]
}`

func validInput() Input {
	return Input{
		ResumeText:     "Jane Doe\nSenior engineer with React and Node",
		JobTitle:       "Frontend Engineer",
		JobDescription: "Build UIs with React",
	}
}

func TestAnalyze_Success(t *testing.T) {
	client := &fakeClient{response: "```json\n" + validResponse + "\n```"}
	a := NewAnalyzer(client, zaptest.NewLogger(t))

	result, err := a.Analyze(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, Eligible, result.IsEligible)
	assert.Equal(t, 82.0, result.ATSScore)
	assert.Equal(t, []string{"React", "Node", "SQL"}, result.ExtractedSkills)
	assert.Len(t, result.FiveStepsToStandOut, 5)

	assert.Contains(t, client.lastPrompt, "Job Title: Frontend Engineer")
	assert.Contains(t, client.lastPrompt, "Build UIs with React")
	assert.Contains(t, client.lastPrompt, "Senior engineer with React and Node")
	require.NotNil(t, client.lastSchema)
	assert.Contains(t, client.lastSchema.Properties, "extracted_skills")
}

func TestAnalyze_InputErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    Input
		field string
	}{
		{"missing title", Input{ResumeText: "x", JobDescription: "y"}, "jobTitle"},
		{"missing description", Input{ResumeText: "x", JobTitle: "y"}, "jobDescription"},
		{"blank resume", Input{ResumeText: "  \n", JobTitle: "t", JobDescription: "d"}, "resume"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{response: validResponse}
			_, err := NewAnalyzer(client, nil).Analyze(context.Background(), tt.in)

			var inErr *InputError
			require.ErrorAs(t, err, &inErr)
			assert.Equal(t, tt.field, inErr.Field)
			assert.Empty(t, client.lastPrompt, "model must not be called")
		})
	}
}

func TestAnalyze_ModelFailure(t *testing.T) {
	cause := errors.New("quota exceeded")
	_, err := NewAnalyzer(&fakeClient{err: cause}, nil).Analyze(context.Background(), validInput())

	var modelErr *ModelError
	require.ErrorAs(t, err, &modelErr)
	assert.Equal(t, "fake-model", modelErr.Model)
	assert.ErrorIs(t, err, cause)
}

func TestAnalyze_SchemaViolations(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "I cannot help with that"},
		{"score too high", `{"is_eligible":"Eligible","ats_score":150,"extracted_skills":[]}`},
		{"negative score", `{"is_eligible":"Eligible","ats_score":-3,"extracted_skills":[]}`},
		{"missing skills", `{"is_eligible":"Eligible","ats_score":50}`},
		{"bad verdict", `{"is_eligible":"Maybe","ats_score":50,"extracted_skills":[]}`},
		{"skills not strings", `{"is_eligible":"Eligible","ats_score":50,"extracted_skills":[1,2]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAnalyzer(&fakeClient{response: tt.response}, nil).Analyze(context.Background(), validInput())
			var modelErr *ModelError
			assert.ErrorAs(t, err, &modelErr)
		})
	}
}

func TestValidateResponse_FieldErrors(t *testing.T) {
	err := ValidateResponse(`{"is_eligible":"Eligible","ats_score":101,"extracted_skills":["go"]}`)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.NotEmpty(t, schemaErr.Errors)
	assert.Equal(t, "ats_score", schemaErr.Errors[0].Field)

	assert.NoError(t, ValidateResponse(validResponse))
}

func TestAnalyze_TruncatesLongResume(t *testing.T) {
	in := validInput()
	in.ResumeText = strings.Repeat("é", MaxResumeChars)
	client := &fakeClient{response: validResponse}

	_, err := NewAnalyzer(client, nil).Analyze(context.Background(), in)
	require.NoError(t, err)
	assert.Less(t, len(client.lastPrompt), 2*MaxResumeChars)
	assert.NotContains(t, client.lastPrompt, "�")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "a", truncate("aé", 2), "must not split a rune")
}
