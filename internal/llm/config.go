// Package llm wraps the Gemini API behind a small client interface used by
// the resume analyzer.
package llm

import (
	"fmt"
	"time"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// Config holds the model settings for a Client.
type Config struct {
	Model       string
	Temperature float32
	// Timeout bounds a single generation call. Zero means no extra deadline.
	Timeout time.Duration
	// RequestsPerMinute throttles outgoing calls. Zero disables throttling.
	RequestsPerMinute int
}

// DefaultConfig returns the default Gemini configuration.
func DefaultConfig() *Config {
	return &Config{
		Model:             DefaultModel,
		Temperature:       0.1, // low temperature for consistent scoring
		Timeout:           60 * time.Second,
		RequestsPerMinute: 60,
	}
}

// WithModel returns a copy of c using model. An empty model keeps the current one.
func (c *Config) WithModel(model string) *Config {
	cp := *c
	if model != "" {
		cp.Model = model
	}
	return &cp
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("llm model is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("llm temperature must be between 0 and 2, got %v", c.Temperature)
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("llm requests per minute must not be negative")
	}
	return nil
}
