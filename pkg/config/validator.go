package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.Inference.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "inference.base_url",
			Message: "inference base URL is required",
		})
	} else if _, err := url.Parse(c.Inference.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "inference.base_url",
			Message: "invalid inference base URL",
		})
	}

	if c.Inference.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "inference.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.Database.URL != "" {
		if _, err := url.Parse(c.Database.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	if c.Chunking.Overlap < 0 {
		errors = append(errors, ValidationError{
			Field:   "chunking.overlap",
			Message: "overlap must be non-negative",
		})
	}

	if c.Chunking.CharChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "chunking.char_chunk_size",
			Message: "char_chunk_size must be positive",
		})
	}

	seen := make(map[string]bool)
	for _, enc := range c.Encoders {
		if enc.Name == "" {
			errors = append(errors, ValidationError{
				Field:   "encoders",
				Message: "encoder name is required",
			})
			continue
		}
		if seen[enc.Name] {
			errors = append(errors, ValidationError{
				Field:   "encoders",
				Message: fmt.Sprintf("duplicate encoder name: %s", enc.Name),
			})
		}
		seen[enc.Name] = true

		if enc.Provider != "openai" && enc.Model == "" {
			errors = append(errors, ValidationError{
				Field:   "encoders",
				Message: fmt.Sprintf("encoder %s: model is required", enc.Name),
			})
		}
		if enc.MaxTokens < 0 {
			errors = append(errors, ValidationError{
				Field:   "encoders",
				Message: fmt.Sprintf("encoder %s: max_tokens must be non-negative", enc.Name),
			})
		}
		if enc.MaxTokens > 0 && c.Chunking.Overlap >= enc.MaxTokens {
			errors = append(errors, ValidationError{
				Field:   "chunking.overlap",
				Message: fmt.Sprintf("overlap must be less than encoder %s max_tokens", enc.Name),
			})
		}
	}

	return errors
}
