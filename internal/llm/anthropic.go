package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implementa LLMClient con la API de Messages; el modo estructurado usa tool use.
type AnthropicClient struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewAnthropicClient no reintenta: un fallo o timeout del oraculo se trata como fallo del caller.
func NewAnthropicClient(apiKey, model string, temperature float64, opts ...option.RequestOption) *AnthropicClient {
	if model == "" {
		model = string(anthropic.ModelClaude3_5Haiku20241022)
	}
	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	return &AnthropicClient{
		client:      anthropic.NewClient(reqOpts...),
		model:       model,
		maxTokens:   2000,
		temperature: temperature,
	}
}

func (c *AnthropicClient) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	resp, err := c.client.Messages.New(ctx, c.params(prompt, opts))
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (c *AnthropicClient) GenerateStructured(ctx context.Context, prompt string, schema Schema, opts Options) (json.RawMessage, error) {
	params := c.params(prompt, opts)
	params.Tools = []anthropic.ToolUnionParam{{
		OfTool: &anthropic.ToolParam{
			Name:        schema.Name,
			Description: anthropic.String(schema.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: schema.Properties,
				Required:   schema.Required,
			},
		},
	}}
	params.ToolChoice = anthropic.ToolChoiceParamOfTool(schema.Name)

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}
	for _, block := range resp.Content {
		if block.Type == "tool_use" && block.Name == schema.Name {
			if len(block.Input) == 0 {
				return nil, ErrEmptyResponse
			}
			return block.Input, nil
		}
	}
	return nil, ErrNoToolCall
}

func (c *AnthropicClient) params(prompt string, opts Options) anthropic.MessageNewParams {
	temperature := c.temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	return anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
}
