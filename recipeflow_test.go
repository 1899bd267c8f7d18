package recipeflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/recipeflow/client"
	"github.com/hupe1980/recipeflow/core"
)

func TestNewAgentClient_NoCredentialSelectsMock(t *testing.T) {
	c := NewAgentClient()
	assert.Equal(t, "mock", c.Info().Provider)
}

func TestNewAgentClient_InitRejectionFallsBackToMock(t *testing.T) {
	liveCalled := false
	c := NewAgentClient(func(o *Options) {
		o.Credential = "sk-rejected"
		o.LiveFactory = func(o Options) (client.Client, error) {
			liveCalled = true
			return nil, &client.InitError{Provider: "openai", Err: errors.New("invalid api key")}
		}
	})

	assert.True(t, liveCalled)
	assert.Equal(t, "mock", c.Info().Provider)
}

func TestNewAgentClient_UnknownProviderFallsBackToMock(t *testing.T) {
	c := NewAgentClient(func(o *Options) {
		o.Credential = "some-key"
		o.Provider = "no-such-provider"
	})
	assert.Equal(t, "mock", c.Info().Provider)
}

func TestAdapt_MockEndToEnd(t *testing.T) {
	var events []core.Event
	flow := New(func(o *Options) {
		o.EventSink = func(e core.Event) { events = append(events, e) }
	})

	out, err := flow.Adapt(context.Background(), "2 cups sour cream, 1 cup beef broth", "Vegan")
	require.NoError(t, err)
	assert.Equal(t, client.MockText, out)

	// The run reached DONE and the planned conversion was standardized
	var sawDone bool
	var converted any
	for _, e := range events {
		if e.Stage == "DONE" {
			sawDone = true
		}
		if e.Content != nil && e.Content.Role == "tool" {
			if dp, ok := e.Content.Parts[0].(core.DataPart); ok {
				if result, ok := dp.Data["result"].(map[string]any); ok {
					converted = result["converted_amount"]
				}
			}
		}
	}
	assert.True(t, sawDone)
	assert.Equal(t, 240.0, converted)
}

func TestAdapt_InitRejectionStillCompletes(t *testing.T) {
	// Credential present but rejected at init: the run must transparently use
	// the mock variant and still terminate in DONE.
	flow := New(func(o *Options) {
		o.Credential = "sk-rejected"
		o.LiveFactory = func(o Options) (client.Client, error) {
			return nil, &client.InitError{Provider: "openai", Err: errors.New("401 unauthorized")}
		}
	})

	out, err := flow.Adapt(context.Background(), "2 cups sour cream", "Vegan")
	require.NoError(t, err)
	assert.Equal(t, client.MockText, out)
}
