package analysis

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed result.schema.json
var resultSchemaJSON string

var (
	compiledOnce   sync.Once
	compiledSchema *gojsonschema.Schema
	compileErr     error
)

func resultSchema() (*gojsonschema.Schema, error) {
	compiledOnce.Do(func() {
		compiledSchema, compileErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(resultSchemaJSON))
		if compileErr != nil {
			compileErr = fmt.Errorf("failed to load analysis schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// ValidateResponse checks a raw model response against the result schema.
func ValidateResponse(raw string) error {
	schema, err := resultSchema()
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("analysis response is not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	schemaErr := &SchemaError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		schemaErr.Errors = append(schemaErr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return schemaErr
}

func stringArray(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeArray,
		Items:       &genai.Schema{Type: genai.TypeString},
		Description: description,
	}
}

// ResponseSchema is the structured-output schema sent to Gemini.
func ResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"is_eligible": {
				Type:        genai.TypeString,
				Description: "Whether the candidate is eligible for the job.",
				Enum:        []string{Eligible, PotentiallyEligible, NotEligible, CannotDetermine},
			},
			"ats_score": {
				Type:        genai.TypeNumber,
				Description: "ATS score out of 100 for how well the resume matches the job description.",
			},
			"strengths":               stringArray("Resume strengths relevant to the job."),
			"weaknesses":              stringArray("Resume weaknesses or gaps compared to the job description."),
			"skill_gaps":              stringArray("Skills required by the job that the resume does not show."),
			"missing_keywords":        stringArray("Single-word keywords missing from the resume, at most 20."),
			"five_steps_to_stand_out": stringArray("Five actionable steps to make the resume stand out for this job."),
			"extracted_skills":        stringArray("Technical and soft skills stated or strongly implied in the resume, using common names."),
		},
		Required: []string{"is_eligible", "ats_score", "extracted_skills"},
	}
}
