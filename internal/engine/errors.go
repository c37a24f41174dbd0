package engine

import (
	"errors"
	"fmt"
)

// LookupError reports a failed single-mapping lookup.
//
// The two codes are distinct caller-visible failures:
//   - ErrCodeInvalidMappingID: the id is not a number or is negative (400-class)
//   - ErrCodeMappingNotFound: the id is well formed but outside the payload (404-class)
type LookupError struct {
	// Code identifies the error category.
	Code LookupErrorCode

	// Input is the id as the caller supplied it.
	Input string

	// Total is the number of mappings in the payload, set for not-found errors.
	Total int
}

// LookupErrorCode categorizes lookup errors.
type LookupErrorCode string

const (
	// ErrCodeInvalidMappingID indicates a non-numeric or negative id.
	ErrCodeInvalidMappingID LookupErrorCode = "INVALID_MAPPING_ID"

	// ErrCodeMappingNotFound indicates an id outside [0, len(mappings)).
	ErrCodeMappingNotFound LookupErrorCode = "MAPPING_NOT_FOUND"
)

// Sentinels for errors.Is. Any *LookupError with the same code matches.
var (
	ErrInvalidMappingID = &LookupError{Code: ErrCodeInvalidMappingID}
	ErrMappingNotFound  = &LookupError{Code: ErrCodeMappingNotFound}
)

// Error implements the error interface.
func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message())
}

// Message describes the failure without the code prefix.
func (e *LookupError) Message() string {
	switch e.Code {
	case ErrCodeInvalidMappingID:
		return fmt.Sprintf("%q is not a mapping id", e.Input)
	case ErrCodeMappingNotFound:
		return fmt.Sprintf("mapping %s does not exist (%d mappings)", e.Input, e.Total)
	default:
		return e.Input
	}
}

// Is matches another *LookupError with the same code.
func (e *LookupError) Is(target error) bool {
	var le *LookupError
	if !errors.As(target, &le) {
		return false
	}
	return le.Code == e.Code
}

// IsInvalidID returns true if err is an invalid-id lookup error.
// Uses errors.As to handle wrapped errors.
func IsInvalidID(err error) bool {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Code == ErrCodeInvalidMappingID
	}
	return false
}

// IsNotFound returns true if err is a not-found lookup error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Code == ErrCodeMappingNotFound
	}
	return false
}
