package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockClient permite tests sin llamar a un LLM real.
// Si GenerateFunc/StructuredFunc estan definidos tienen prioridad sobre las respuestas fijas.
type MockClient struct {
	Response       string
	Structured     string
	Err            error
	GenerateFunc   func(prompt string) (string, error)
	StructuredFunc func(prompt string, schema Schema) (json.RawMessage, error)

	mu      sync.Mutex
	Prompts []string
}

func (m *MockClient) Generate(ctx context.Context, prompt string, _ Options) (string, error) {
	m.record(prompt)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(prompt)
	}
	return m.Response, m.Err
}

func (m *MockClient) GenerateStructured(ctx context.Context, prompt string, schema Schema, _ Options) (json.RawMessage, error) {
	m.record(prompt)
	if m.StructuredFunc != nil {
		return m.StructuredFunc(prompt, schema)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return json.RawMessage(m.Structured), nil
}

func (m *MockClient) record(prompt string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
}

// Calls devuelve cuantos prompts recibio el mock.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
