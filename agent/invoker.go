// Package agent composes the prompt envelope for one staged model call and
// delegates it to a client.Client. The union return of the underlying wire
// contract is modeled as two distinct operations: InvokeStructured for
// schema-constrained output and InvokeText for free text. Callers decide the
// mode ahead of time; no result inspection is needed.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/recipeflow/client"
	"github.com/hupe1980/recipeflow/core"
	"github.com/hupe1980/recipeflow/logging"
)

// InvocationError reports a malformed invocation rejected before any provider
// call is made.
type InvocationError struct {
	Agent   string
	Message string
}

// Error implements the error interface for InvocationError.
func (e *InvocationError) Error() string {
	if e.Agent != "" {
		return fmt.Sprintf("invocation error for agent '%s': %s", e.Agent, e.Message)
	}
	return fmt.Sprintf("invocation error: %s", e.Message)
}

// Envelope identifies one agent invocation: who is speaking (AgentName), the
// role instruction (SystemPrompt) and the task content (UserPrompt). Created
// per invocation and discarded after the response.
type Envelope struct {
	AgentName    string
	SystemPrompt string
	UserPrompt   string
}

// Content renders the envelope as a single user-role content in the provider
// wire format: the system role line prefixes the user prompt.
func (e Envelope) Content() core.Content {
	return core.NewUserContent(fmt.Sprintf(
		"SYSTEM ROLE (%s): %s\n\nUSER PROMPT:\n%s",
		e.AgentName, e.SystemPrompt, e.UserPrompt,
	))
}

// Options configure an Invoker.
type Options struct {
	// Model overrides the client's default model identifier.
	Model string
	// Logger receives per-invocation diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Invoker builds request envelopes and drives a client.Client. It carries no
// retry logic; provider errors propagate unchanged.
type Invoker struct {
	client client.Client
	opts   Options
}

// NewInvoker constructs an Invoker bound to the given client.
func NewInvoker(c client.Client, optFns ...func(o *Options)) *Invoker {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Invoker{client: c, opts: opts}
}

// InvokeText performs a free-text invocation and returns the raw model output.
func (i *Invoker) InvokeText(ctx context.Context, env Envelope) (string, error) {
	resp, err := i.generate(ctx, env, nil)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// InvokeStructured performs a schema-constrained invocation and returns the
// validated structured payload. The schema descriptor is required.
func (i *Invoker) InvokeStructured(ctx context.Context, env Envelope, schema map[string]any) (map[string]any, error) {
	if schema == nil {
		return nil, &InvocationError{Agent: env.AgentName, Message: "schema descriptor required for structured invocation"}
	}
	resp, err := i.generate(ctx, env, schema)
	if err != nil {
		return nil, err
	}
	if resp.Parsed == nil {
		return nil, &core.SchemaValidationError{Message: "provider returned no structured payload"}
	}
	return resp.Parsed, nil
}

func (i *Invoker) generate(ctx context.Context, env Envelope, schema map[string]any) (*client.Response, error) {
	if env.AgentName == "" {
		return nil, &InvocationError{Message: "agent name must be non-empty"}
	}

	req := client.Request{
		Model:    i.opts.Model,
		Contents: []core.Content{env.Content()},
	}
	if schema != nil {
		req.Config = client.GenerateConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		}
	}

	start := time.Now()
	info := i.client.Info()

	i.opts.Logger.Debug("agent.invoke.start", "agent", env.AgentName, "provider", info.Provider, "structured", schema != nil)

	resp, err := i.client.GenerateContent(ctx, req)
	if err != nil {
		i.opts.Logger.Error("agent.invoke.error", "agent", env.AgentName, "provider", info.Provider, "error", err.Error())
		return nil, err
	}

	i.opts.Logger.Info("agent.invoke.success", "agent", env.AgentName, "provider", info.Provider, "duration_ms", time.Since(start).Milliseconds())

	return resp, nil
}
