package core

import "fmt"

// SchemaValidationError reports structured data that does not conform to a
// declared schema. Field names the offending field using a dotted/indexed
// path (e.g. "substitutions[1].reason"); it is empty when the payload as a
// whole is malformed.
type SchemaValidationError struct {
	Field   string `json:"field,omitempty"` // Offending field path
	Message string `json:"message"`         // Human-readable error message
}

// Error implements the error interface for SchemaValidationError.
func (e *SchemaValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("schema validation error: %s", e.Message)
}
