// Package openai provides an implementation of client.Client using the OpenAI
// Chat Completions API. Schema-constrained requests are mapped onto the
// json_schema response format and the returned payload is validated before it
// reaches the caller.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/hupe1980/recipeflow/client"
	"github.com/hupe1980/recipeflow/core"
)

// Options configure the OpenAI client adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
}

// Client wraps the OpenAI Chat Completions API behind the generic client.Client interface.
type Client struct {
	api  *openai.Client
	opts Options
}

// New creates a new OpenAI client using the official SDK. The API key must be
// supplied explicitly; a missing key is an initialization failure so the
// factory can fall back to the mock variant.
func New(optFns ...func(o *Options)) (*Client, error) {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.APIKey == "" {
		return nil, &client.InitError{Provider: "openai", Err: errors.New("api key required")}
	}

	api := openai.NewClient(option.WithAPIKey(opts.APIKey))

	return &Client{api: &api, opts: opts}, nil
}

// NewFromClient creates a new adapter from an existing SDK client.
func NewFromClient(api *openai.Client, optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{api: api, opts: opts}
}

// GenerateContent implements client.Client.
func (c *Client) GenerateContent(ctx context.Context, req client.Request) (*client.Response, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req.Contents),
		Model:               c.model(req),
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxCompletionTokens),
	}

	if req.Structured() {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "structured_output",
					Schema: req.Config.ResponseSchema,
					Strict: openai.Bool(true),
				},
			},
		}
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, &client.CallError{Provider: "openai", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &client.CallError{Provider: "openai", Err: errors.New("no choices returned")}
	}

	text := resp.Choices[0].Message.Content
	out := &client.Response{Text: text}

	if req.Structured() {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(text), &parsed); err != nil {
			return nil, &core.SchemaValidationError{Message: fmt.Sprintf("provider output is not a JSON object: %v", err)}
		}
		if err := client.ValidateParsed(parsed, req.Config.ResponseSchema); err != nil {
			return nil, err
		}
		out.Parsed = parsed
	}

	return out, nil
}

// buildMessages converts normalized contents into OpenAI chat messages.
func buildMessages(contents []core.Content) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	for _, c := range contents {
		text := c.Text()
		if text == "" {
			continue
		}
		switch c.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(text))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(text))
		default:
			messages = append(messages, openai.UserMessage(text))
		}
	}
	return messages
}

func (c *Client) model(req client.Request) string {
	if req.Model != "" {
		return req.Model
	}
	return c.opts.Model
}

// Info returns metadata describing this OpenAI client implementation.
func (c *Client) Info() client.Info {
	return client.Info{Name: c.opts.Model, Provider: "openai"}
}
