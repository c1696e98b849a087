/*
errors.go - Centralized error types for the record engine

ERROR CATEGORIES:
  1. Format errors     - Import of a document that does not fit the schema
  2. Validation errors - Rejected mutation input (empty name, bad amount)
  3. Persistence       - Save failures are recovered locally, never raised:
                         the mutation still returns the new snapshot and the
                         failure is logged (in-memory state advances even
                         though the durable copy did not)

A missing id on update/delete is NOT an error: those operations are defined
as no-ops that return an unchanged-content snapshot.
*/
package record

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMalformedDocument is returned when an imported document is not
	// well-formed JSON, or not a JSON object at the top level.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrMissingSection is returned when an imported document lacks one of
	// the required collections (cars, washTypes, washes, expenses).
	ErrMissingSection = errors.New("missing required section")

	// ErrNotSequence is returned when a required section is present but is
	// not an array.
	ErrNotSequence = errors.New("section is not a sequence")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// FormatError reports why an imported document was rejected. The live
// snapshot is never touched when one of these is returned.
type FormatError struct {
	Section string // offending section, empty for document-level problems
	Err     error
}

func (e *FormatError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("import: %v: %s", e.Err, e.Section)
	}
	return fmt.Sprintf("import: %v", e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ValidationError reports rejected mutation input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsFormat returns true if the error came from import document validation.
func IsFormat(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsValidation returns true if the error came from mutation input validation.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
