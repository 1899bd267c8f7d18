// Package recipeflow provides a high-level façade over the workflow engine
// and its collaborators (provider clients, the unit conversion tool, logging)
// for adapting a cooking recipe into a different culinary or dietary style.
// Most applications interact with this package by:
//  1. Creating a RecipeFlow via New() (optionally supplying a credential,
//     provider, model and logger)
//  2. Calling Adapt with the original recipe text and the target style
//
// Absence of a credential is not an error: the deterministic mock client is
// selected so the full pipeline stays exercisable offline. A credential that
// is present but rejected during live initialization falls back to the mock
// client the same way; the failure is logged, never surfaced.
package recipeflow

import (
	"context"
	"fmt"

	"github.com/hupe1980/recipeflow/agent"
	"github.com/hupe1980/recipeflow/client"
	"github.com/hupe1980/recipeflow/client/anthropic"
	"github.com/hupe1980/recipeflow/client/openai"
	"github.com/hupe1980/recipeflow/core"
	"github.com/hupe1980/recipeflow/logging"
	"github.com/hupe1980/recipeflow/plan"
	"github.com/hupe1980/recipeflow/workflow"
)

// Options configures the RecipeFlow instance.
type Options struct {
	// Credential is the provider API key. Empty selects the mock client.
	Credential string
	// Provider selects the live adapter: "openai" (default) or "anthropic".
	Provider string
	// Model overrides the provider's default model identifier.
	Model string
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
	// EventSink, when set, receives workflow observability events.
	EventSink func(core.Event)
	// LiveFactory constructs the live client variant. Overridable for tests;
	// defaults to the provider adapters in client/openai and client/anthropic.
	LiveFactory func(o Options) (client.Client, error)
}

// NewAgentClient selects the client variant for the given options. It never
// fails: a missing credential or a live initialization error both resolve to
// the deterministic mock client, which carries a schema-conformant default
// plan so the downstream stages behave identically to a live run.
func NewAgentClient(optFns ...func(o *Options)) client.Client {
	opts := applyOptions(optFns...)
	logger := opts.Logger

	if opts.Credential == "" {
		logger.Warn("client.init.no_credential", "provider", opts.Provider)
		return newMockClient()
	}

	c, err := opts.LiveFactory(opts)
	if err != nil {
		logger.Warn("client.init.fallback_to_mock", "provider", opts.Provider, "error", err.Error())
		return newMockClient()
	}

	logger.Info("client.init.live", "provider", opts.Provider, "model", c.Info().Name)

	return c
}

// RecipeFlow is the high-level façade aggregating the workflow and its collaborators.
type RecipeFlow struct {
	opts     Options
	workflow *workflow.Workflow
}

// New creates a new RecipeFlow instance with optional overrides. The client
// is chosen exactly once here and passed by reference into the orchestrator;
// no package-level state is involved.
func New(optFns ...func(o *Options)) *RecipeFlow {
	opts := applyOptions(optFns...)

	c := NewAgentClient(func(o *Options) { *o = opts })

	invoker := agent.NewInvoker(c, func(o *agent.Options) {
		o.Model = opts.Model
		o.Logger = opts.Logger
	})

	wf := workflow.New(invoker, func(o *workflow.Options) {
		o.Logger = opts.Logger
		o.EventSink = opts.EventSink
	})

	return &RecipeFlow{opts: opts, workflow: wf}
}

// Adapt rewrites the original recipe in the target style and returns the
// final recipe text, or the error that terminated the workflow.
func (r *RecipeFlow) Adapt(ctx context.Context, originalRecipe, targetStyle string) (string, error) {
	return r.workflow.Adapt(ctx, originalRecipe, targetStyle)
}

func applyOptions(optFns ...func(o *Options)) Options {
	opts := Options{
		Provider:    "openai",
		Logger:      logging.NoOpLogger{},
		LiveFactory: newLiveClient,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.LiveFactory == nil {
		opts.LiveFactory = newLiveClient
	}
	return opts
}

// newLiveClient is the default LiveFactory dispatching on the provider name.
func newLiveClient(o Options) (client.Client, error) {
	switch o.Provider {
	case "", "openai":
		return openai.New(func(oo *openai.Options) {
			oo.APIKey = o.Credential
			if o.Model != "" {
				oo.Model = o.Model
			}
		})
	case "anthropic":
		return anthropic.New(func(ao *anthropic.Options) {
			ao.APIKey = o.Credential
			if o.Model != "" {
				ao.Model = o.Model
			}
		})
	default:
		return nil, &client.InitError{Provider: o.Provider, Err: fmt.Errorf("unknown provider %q", o.Provider)}
	}
}

func newMockClient() client.Client {
	return client.NewMockClient(func(o *client.MockOptions) {
		o.StructuredDefault = plan.MockData()
	})
}
