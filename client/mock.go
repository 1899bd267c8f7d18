package client

import (
	"context"

	"github.com/hupe1980/recipeflow/internal/util"
)

// Fixed placeholder outputs so mock runs are recognizable in logs and tests.
const (
	MockStructuredText = "[MOCK OUTPUT: Structured Plan Generated]"
	MockText           = "[MOCK OUTPUT: Final Recipe Text]"
)

// MockOptions configure the deterministic mock client.
type MockOptions struct {
	// StructuredDefault is returned as the parsed payload for schema requests.
	// When nil a minimal value is synthesized from the request schema.
	StructuredDefault map[string]any
	// TextOutput is returned for free-text requests.
	TextOutput string
	// StructuredText is the raw-text companion of a structured response.
	StructuredText string
}

// MockClient is the behaviorally substitutable offline variant: schema
// requests yield a schema-conformant default plan, free-text requests a fixed
// placeholder. It exists so the whole pipeline runs without network access or
// credentials, not merely as a fallback of last resort.
type MockClient struct {
	opts MockOptions
}

// NewMockClient constructs a MockClient with deterministic canned outputs.
func NewMockClient(optFns ...func(o *MockOptions)) *MockClient {
	opts := MockOptions{
		TextOutput:     MockText,
		StructuredText: MockStructuredText,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &MockClient{opts: opts}
}

// GenerateContent implements Client. Structured defaults pass through the
// same schema validation live adapters apply, so the mock cannot silently
// diverge from the contract.
func (m *MockClient) GenerateContent(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, &CallError{Provider: "mock", Err: err}
	}

	if !req.Structured() {
		return &Response{Text: m.opts.TextOutput}, nil
	}

	parsed := m.opts.StructuredDefault
	if parsed == nil {
		parsed = synthesizeDefault(req.Config.ResponseSchema)
	}
	if err := ValidateParsed(parsed, req.Config.ResponseSchema); err != nil {
		return nil, err
	}

	return &Response{Text: m.opts.StructuredText, Parsed: parsed}, nil
}

// Info implements Client.
func (m *MockClient) Info() Info {
	return Info{Name: "mock-model", Provider: "mock"}
}

// synthesizeDefault produces the smallest value conforming to a schema:
// required object fields get zero values, arrays stay empty.
func synthesizeDefault(schema map[string]any) map[string]any {
	out := map[string]any{}
	properties, _ := schema["properties"].(map[string]any)
	for _, req := range util.RequiredFields(schema) {
		propSchema, _ := properties[req].(map[string]any)
		out[req] = zeroValue(propSchema)
	}
	return out
}

func zeroValue(schema map[string]any) any {
	t, _ := schema["type"].(string)
	switch t {
	case "string":
		return ""
	case "number", "integer":
		return 0.0
	case "boolean":
		return false
	case "array":
		return []any{}
	case "object":
		return synthesizeDefault(schema)
	default:
		return nil
	}
}
