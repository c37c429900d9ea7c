package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"tone-drift/internal/domain"
)

var (
	fenceStartRe = regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	fenceEndRe   = regexp.MustCompile("(?is)\\s*```\\s*$")
)

// parseOracleJSON convierte la respuesta del oraculo en T.
// Nunca entra en panico: cualquier fallo vuelve como ErrMalformedOracleResponse con el motivo.
func parseOracleJSON[T any](raw string) (T, error) {
	var out T

	cleaned := cleanLLMJSONResponse(raw)
	if cleaned == "" {
		return out, fmt.Errorf("%w: empty response", domain.ErrMalformedOracleResponse)
	}

	candidates := make([]string, 0, 3)
	if obj := extractFirstJSONObject(cleaned); obj != "" {
		candidates = append(candidates, obj)
	}
	if obj := extractFirstJSONObject(raw); obj != "" && obj != cleaned {
		candidates = append(candidates, obj)
	}
	candidates = append(candidates, cleaned)

	var lastErr error
	for _, c := range candidates {
		var tmp T
		if err := json.Unmarshal([]byte(c), &tmp); err != nil {
			lastErr = err
			continue
		}
		return tmp, nil
	}
	return out, fmt.Errorf("%w: %v", domain.ErrMalformedOracleResponse, lastErr)
}

// decodeStructured decodifica la salida del modo con esquema (function calling).
func decodeStructured[T any](raw json.RawMessage) (T, error) {
	var out T
	if len(raw) == 0 {
		return out, fmt.Errorf("%w: empty structured response", domain.ErrMalformedOracleResponse)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		// algunos proveedores devuelven los argumentos como string JSON
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return parseOracleJSON[T](s)
		}
		return out, fmt.Errorf("%w: %v", domain.ErrMalformedOracleResponse, err)
	}
	return out, nil
}

// cleanLLMJSONResponse quita fences ```json ... ``` y BOM, dejando el contenido usable.
func cleanLLMJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "\uFEFF")
	s = fenceStartRe.ReplaceAllString(s, "")
	s = fenceEndRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// cleanRewrite quita comillas triples o fences que el modelo a veces agrega al texto reescrito.
func cleanRewrite(raw string) string {
	s := cleanLLMJSONResponse(raw)
	s = strings.TrimPrefix(s, `"""`)
	s = strings.TrimSuffix(s, `"""`)
	return strings.TrimSpace(s)
}

func extractFirstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}

	inString := false
	escape := false
	depth := 0

	for i := start; i < len(input); i++ {
		ch := input[i]

		if inString {
			if escape {
				escape = false
				continue
			}
			switch ch {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}
