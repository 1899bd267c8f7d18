// Package client abstracts "ask a generative model a question, optionally
// forcing JSON output matching a schema" behind one interface. Live provider
// adapters live in the openai and anthropic subpackages; MockClient is the
// deterministic network-free variant selected when no credential is
// configured or live initialization fails.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/recipeflow/core"
	"github.com/hupe1980/recipeflow/internal/util"
)

// GenerateConfig carries the optional structured-output constraints of a request.
type GenerateConfig struct {
	// ResponseMIMEType requests a specific output encoding ("application/json"
	// when a schema is present).
	ResponseMIMEType string `json:"response_mime_type,omitempty"`
	// ResponseSchema is a JSON schema the provider output must conform to.
	// Nil selects free-text mode.
	ResponseSchema map[string]any `json:"response_schema,omitempty"`
}

// Request captures the normalized provider input produced by the invoker.
type Request struct {
	Model    string         `json:"model"`
	Contents []core.Content `json:"contents"`
	Config   GenerateConfig `json:"config"`
}

// Structured reports whether the request asked for schema-constrained output.
func (r Request) Structured() bool { return r.Config.ResponseSchema != nil }

// Response is the provider output. Parsed is populated only when the request
// carried a schema; it holds the decoded JSON payload already validated
// against that schema.
type Response struct {
	Text   string         `json:"text"`
	Parsed map[string]any `json:"parsed,omitempty"`
}

// Info contains metadata about a client implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock"
}

// Client is the single wire-level contract the pipeline depends on. A call
// either returns a complete response or an error; no retries happen here.
type Client interface {
	GenerateContent(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the client implementation.
	Info() Info
}

// InitError reports a provider credential that was present but rejected
// during client initialization. It is recovered locally by falling back to
// the mock variant and never surfaces to workflow callers.
type InitError struct {
	Provider string
	Err      error
}

// Error implements the error interface for InitError.
func (e *InitError) Error() string {
	return fmt.Sprintf("client init failed [%s]: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying cause.
func (e *InitError) Unwrap() error { return e.Err }

// CallError reports a transport or provider-side failure during generation.
// It aborts the workflow run at whichever stage it occurs.
type CallError struct {
	Provider string
	Err      error
}

// Error implements the error interface for CallError.
func (e *CallError) Error() string {
	return fmt.Sprintf("provider call failed [%s]: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CallError) Unwrap() error { return e.Err }

// ValidateParsed checks a decoded structured payload against the request
// schema, normalizing failures into *core.SchemaValidationError. Adapters
// call this before returning so callers always receive validated data.
func ValidateParsed(parsed map[string]any, schema map[string]any) error {
	if err := util.ValidateValue(parsed, schema); err != nil {
		var vErr *util.ValidationError
		if errors.As(err, &vErr) {
			return &core.SchemaValidationError{Field: vErr.Field, Message: vErr.Message}
		}
		return &core.SchemaValidationError{Message: err.Error()}
	}
	return nil
}
