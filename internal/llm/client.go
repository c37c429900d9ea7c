package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LLMClient es el oraculo de texto: completado libre o respuesta restringida a un esquema.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
	GenerateStructured(ctx context.Context, prompt string, schema Schema, opts Options) (json.RawMessage, error)
}

// Options de una llamada. Temperature nil usa el default del cliente.
type Options struct {
	Temperature *float64
}

// Temperature es un helper para Options literales.
func Temperature(v float64) Options {
	return Options{Temperature: &v}
}

// Schema describe una funcion/herramienta cuya entrada JSON debe devolver el modelo.
type Schema struct {
	Name        string
	Description string
	Properties  map[string]any
	Required    []string
}

// JSONSchema arma el objeto JSON Schema usado por ambos proveedores.
func (s Schema) JSONSchema() map[string]any {
	out := map[string]any{
		"type":       "object",
		"properties": s.Properties,
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	return out
}

var (
	ErrEmptyResponse = errors.New("llm empty response")
	ErrNoToolCall    = errors.New("llm response without tool call")
)

type logger interface {
	Printf(format string, v ...interface{})
}

// HTTPClient implementa LLMClient contra una API de chat completions compatible con OpenAI.
type HTTPClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
	logger      logger
}

// NewHTTPClient construye un cliente HTTP apuntando a la API de chat completions.
func NewHTTPClient(baseURL, apiKey, model string, temperature float64, timeout time.Duration, log any) *HTTPClient {
	l, _ := log.(logger)
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		client:      &http.Client{Timeout: timeout},
		logger:      l,
	}
}

func (c *HTTPClient) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	cr, err := c.do(ctx, chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.resolveTemperature(opts),
	})
	if err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 || strings.TrimSpace(cr.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}

// GenerateStructured fuerza una llamada a funcion (tool_choice) y devuelve sus argumentos.
func (c *HTTPClient) GenerateStructured(ctx context.Context, prompt string, schema Schema, opts Options) (json.RawMessage, error) {
	cr, err := c.do(ctx, chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.resolveTemperature(opts),
		Tools: []chatTool{{
			Type: "function",
			Function: chatFunction{
				Name:        schema.Name,
				Description: schema.Description,
				Parameters:  schema.JSONSchema(),
			},
		}},
		ToolChoice: &chatToolChoice{
			Type:     "function",
			Function: chatToolChoiceFunction{Name: schema.Name},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(cr.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	for _, call := range cr.Choices[0].Message.ToolCalls {
		if call.Function.Name != schema.Name {
			continue
		}
		args := strings.TrimSpace(call.Function.Arguments)
		if args == "" {
			return nil, ErrEmptyResponse
		}
		return json.RawMessage(args), nil
	}
	return nil, ErrNoToolCall
}

func (c *HTTPClient) resolveTemperature(opts Options) float64 {
	if opts.Temperature != nil {
		return *opts.Temperature
	}
	return c.temperature
}

func (c *HTTPClient) do(ctx context.Context, reqBody chatRequest) (chatResponse, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return chatResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return chatResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return chatResponse{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return chatResponse{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if c.logger != nil {
			c.logger.Printf("llm error status %d: %s", resp.StatusCode, string(respBody))
		}
		return chatResponse{}, fmt.Errorf("llm http error: status=%d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return chatResponse{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if cr.Error != nil {
		return chatResponse{}, fmt.Errorf("llm api error: %s", cr.Error.Message)
	}
	return cr, nil
}

type chatRequest struct {
	Model       string          `json:"model"`
	Messages    []chatMessage   `json:"messages"`
	Temperature float64         `json:"temperature"`
	Tools       []chatTool      `json:"tools,omitempty"`
	ToolChoice  *chatToolChoice `json:"tool_choice,omitempty"`
}

type chatMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	ToolCalls []chatToolCall `json:"tool_calls,omitempty"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
}

type chatToolChoice struct {
	Type     string                 `json:"type"`
	Function chatToolChoiceFunction `json:"function"`
}

type chatToolChoiceFunction struct {
	Name string `json:"name"`
}

type chatToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
