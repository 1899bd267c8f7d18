package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/recipeflow/client"
	"github.com/hupe1980/recipeflow/core"
)

// stubClient records requests and returns canned responses or errors.
type stubClient struct {
	requests []client.Request
	response *client.Response
	err      error
}

func (s *stubClient) GenerateContent(_ context.Context, req client.Request) (*client.Response, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func (s *stubClient) Info() client.Info { return client.Info{Name: "stub-model", Provider: "stub"} }

func TestEnvelope_Content(t *testing.T) {
	env := Envelope{
		AgentName:    "Planner",
		SystemPrompt: "You plan recipes.",
		UserPrompt:   "ORIGINAL RECIPE: stew",
	}

	content := env.Content()
	assert.Equal(t, "user", content.Role)

	text := content.Text()
	assert.Contains(t, text, "SYSTEM ROLE (Planner): You plan recipes.")
	assert.Contains(t, text, "USER PROMPT:\nORIGINAL RECIPE: stew")
}

func TestInvoker_InvokeText(t *testing.T) {
	stub := &stubClient{response: &client.Response{Text: "final recipe"}}
	invoker := NewInvoker(stub)

	out, err := invoker.InvokeText(context.Background(), Envelope{
		AgentName:    "Stylist",
		SystemPrompt: "You restyle recipes.",
		UserPrompt:   "rewrite it",
	})
	require.NoError(t, err)
	assert.Equal(t, "final recipe", out)

	require.Len(t, stub.requests, 1)
	req := stub.requests[0]
	assert.False(t, req.Structured())
	assert.Empty(t, req.Config.ResponseMIMEType)
}

func TestInvoker_InvokeStructured(t *testing.T) {
	parsed := map[string]any{"substitutions": []any{}}
	stub := &stubClient{response: &client.Response{Text: "{}", Parsed: parsed}}
	invoker := NewInvoker(stub, func(o *Options) { o.Model = "test-model" })

	schema := map[string]any{"type": "object", "properties": map[string]any{}}
	out, err := invoker.InvokeStructured(context.Background(), Envelope{
		AgentName:    "Planner",
		SystemPrompt: "plan",
		UserPrompt:   "recipe",
	}, schema)
	require.NoError(t, err)
	assert.Equal(t, parsed, out)

	require.Len(t, stub.requests, 1)
	req := stub.requests[0]
	assert.True(t, req.Structured())
	assert.Equal(t, "application/json", req.Config.ResponseMIMEType)
	assert.Equal(t, schema, req.Config.ResponseSchema)
	assert.Equal(t, "test-model", req.Model)
}

func TestInvoker_InvokeStructured_RequiresSchema(t *testing.T) {
	invoker := NewInvoker(&stubClient{})

	_, err := invoker.InvokeStructured(context.Background(), Envelope{AgentName: "Planner"}, nil)
	require.Error(t, err)
	var iErr *InvocationError
	require.True(t, errors.As(err, &iErr))
	assert.Equal(t, "Planner", iErr.Agent)
	assert.Contains(t, iErr.Error(), "schema descriptor required")
}

func TestInvoker_EmptyAgentName(t *testing.T) {
	invoker := NewInvoker(&stubClient{})

	_, err := invoker.InvokeText(context.Background(), Envelope{SystemPrompt: "x", UserPrompt: "y"})
	require.Error(t, err)
	var iErr *InvocationError
	require.True(t, errors.As(err, &iErr))
	assert.Contains(t, iErr.Error(), "agent name must be non-empty")
}

func TestInvoker_ProviderErrorPropagatesUnchanged(t *testing.T) {
	callErr := &client.CallError{Provider: "stub", Err: errors.New("boom")}
	invoker := NewInvoker(&stubClient{err: callErr})

	_, err := invoker.InvokeText(context.Background(), Envelope{AgentName: "Stylist"})
	require.Error(t, err)
	// No wrapping, no retry: the exact error surfaces
	assert.Equal(t, callErr, err)
}

func TestInvoker_MissingStructuredPayload(t *testing.T) {
	// Response carries text but no parsed payload despite the schema request
	stub := &stubClient{response: &client.Response{Text: "not json"}}
	invoker := NewInvoker(stub)

	_, err := invoker.InvokeStructured(context.Background(), Envelope{AgentName: "Planner"},
		map[string]any{"type": "object"})
	require.Error(t, err)
	var sErr *core.SchemaValidationError
	assert.True(t, errors.As(err, &sErr))
}
