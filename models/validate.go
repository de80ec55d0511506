package models

import "github.com/go-playground/validator/v10"

// validate is the shared validator instance; it caches struct metadata and
// is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks an input struct against its validation tags. Callers
// should apply Defaults() first so zero-valued optional fields don't trip
// the range checks.
func Validate(in any) error {
	if err := validate.Struct(in); err != nil {
		return NewScrapeError(ErrCodeInvalidInput, "input validation failed", err)
	}
	return nil
}
