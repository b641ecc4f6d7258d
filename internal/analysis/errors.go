package analysis

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned for uploads that are not PDF, DOCX or plain text.
var ErrUnsupportedFormat = errors.New("unsupported resume format")

// ErrNoText is returned when a document holds no extractable text, e.g. a scanned PDF.
var ErrNoText = errors.New("could not extract text from the resume; ensure it is not an image-only PDF")

// InputError reports a bad analysis request.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ModelError reports that the LLM call failed or returned an unusable document.
type ModelError struct {
	Model string
	Err   error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("analysis with %s failed: %v", e.Model, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// SchemaError lists the fields of a model response that violate the result schema.
type SchemaError struct {
	Errors []FieldError
}

// FieldError is one schema violation.
type FieldError struct {
	Field   string
	Message string
}

func (e *SchemaError) Error() string {
	msg := "analysis response failed schema validation"
	for _, fe := range e.Errors {
		msg += fmt.Sprintf("; %s: %s", fe.Field, fe.Message)
	}
	return msg
}
