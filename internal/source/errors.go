package source

import (
	"errors"
	"fmt"
)

// LoadError reports a failed dataset load. The loader holds no state for a
// failed load; the next call retries.
type LoadError struct {
	// Source names the data source.
	Source string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load dataset %s: %v", e.Source, e.Err)
}

// Unwrap returns the cause.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError returns true if err is a dataset load failure.
// Uses errors.As to handle wrapped errors.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
