// Package anthropic provides a client.Client adapter for the Anthropic
// Messages API. The API has no native json_schema response format, so
// schema-constrained requests append a JSON-only instruction carrying the
// schema to the system blocks and validate the returned payload before it
// reaches the caller.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/recipeflow/client"
	"github.com/hupe1980/recipeflow/core"
)

// Options configure the Anthropic client adapter (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Client wraps the Anthropic Messages API behind the generic client.Client interface.
type Client struct {
	api  *anthropic.Client
	opts Options
}

// New creates a new Anthropic client using the official SDK. The API key must
// be supplied explicitly; a missing key is an initialization failure so the
// factory can fall back to the mock variant.
func New(optFns ...func(o *Options)) (*Client, error) {
	opts := Options{
		Model:       string(anthropic.ModelClaude3_5Sonnet20241022),
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.APIKey == "" {
		return nil, &client.InitError{Provider: "anthropic", Err: errors.New("api key required")}
	}

	api := anthropic.NewClient(option.WithAPIKey(opts.APIKey))

	return &Client{api: &api, opts: opts}, nil
}

// NewFromClient creates a new adapter from an existing SDK client.
func NewFromClient(api *anthropic.Client, optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:       string(anthropic.ModelClaude3_5Sonnet20241022),
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{api: api, opts: opts}
}

// GenerateContent implements client.Client.
func (c *Client) GenerateContent(ctx context.Context, req client.Request) (*client.Response, error) {
	params := anthropic.MessageNewParams{
		Model:       c.model(req),
		Messages:    buildMessages(req.Contents),
		MaxTokens:   c.opts.MaxTokens,
		Temperature: anthropic.Float(c.opts.Temperature),
	}

	system := extractSystemBlocks(req.Contents)
	if req.Structured() {
		instruction, err := schemaInstruction(req.Config.ResponseSchema)
		if err != nil {
			return nil, err
		}
		system = append(system, anthropic.TextBlockParam{Text: instruction})
	}
	if len(system) > 0 {
		params.System = system
	}

	resp, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return nil, &client.CallError{Provider: "anthropic", Err: err}
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
		}
	}

	out := &client.Response{Text: text.String()}

	if req.Structured() {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(stripFences(out.Text)), &parsed); err != nil {
			return nil, &core.SchemaValidationError{Message: fmt.Sprintf("provider output is not a JSON object: %v", err)}
		}
		if err := client.ValidateParsed(parsed, req.Config.ResponseSchema); err != nil {
			return nil, err
		}
		out.Parsed = parsed
	}

	return out, nil
}

// buildMessages converts normalized contents to Anthropic message format.
// System contents are handled separately via extractSystemBlocks.
func buildMessages(contents []core.Content) []anthropic.MessageParam {
	var messages []anthropic.MessageParam
	for _, c := range contents {
		if c.Role == "system" {
			continue
		}
		text := c.Text()
		if text == "" {
			continue
		}
		switch c.Role {
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
		default:
			// Treat unknown roles as user
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
		}
	}
	return messages
}

// extractSystemBlocks collects system-role contents as system blocks.
func extractSystemBlocks(contents []core.Content) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, c := range contents {
		if c.Role != "system" {
			continue
		}
		if text := c.Text(); text != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: text})
		}
	}
	return blocks
}

func schemaInstruction(schema map[string]any) (string, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return "", &client.CallError{Provider: "anthropic", Err: fmt.Errorf("schema not serializable: %w", err)}
	}
	return fmt.Sprintf(
		"Respond with a single JSON object conforming to this JSON Schema and nothing else:\n%s",
		string(raw),
	), nil
}

// stripFences removes a surrounding markdown code fence if the model added one.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func (c *Client) model(req client.Request) anthropic.Model {
	if req.Model != "" {
		return anthropic.Model(req.Model)
	}
	return anthropic.Model(c.opts.Model)
}

// Info returns metadata describing this Anthropic client implementation.
func (c *Client) Info() client.Info {
	return client.Info{Name: c.opts.Model, Provider: "anthropic"}
}
