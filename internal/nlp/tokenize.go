package nlp

import (
	"regexp"
	"strings"
	"unicode"
)

// Un token candidato puede venir prefijado por # o @; esos no cuentan como palabras.
var tokenRe = regexp.MustCompile(`[#@]?[\p{L}\p{N}_]+(?:['’][\p{L}]+)*`)

// wordTokens devuelve los tokens de tipo palabra: sin puntuacion, hashtags, menciones
// ni numeros puros.
func wordTokens(text string) []string {
	raw := tokenRe.FindAllString(text, -1)
	words := make([]string, 0, len(raw))
	for _, tok := range raw {
		if strings.HasPrefix(tok, "#") || strings.HasPrefix(tok, "@") {
			continue
		}
		if !hasLetter(tok) {
			continue
		}
		words = append(words, tok)
	}
	return words
}

// splitSentences corta en terminadores (. ! ?) seguidos de espacio o fin de texto,
// asi "3.5" o "v1.2" no parten la oracion.
func splitSentences(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}
		j := i
		for j+1 < len(runes) && isTerminator(runes[j+1]) {
			j++
		}
		if j+1 == len(runes) || unicode.IsSpace(runes[j+1]) {
			out = appendSentence(out, string(runes[start:j+1]))
			start = j + 1
		}
		i = j
	}
	if start < len(runes) {
		out = appendSentence(out, string(runes[start:]))
	}
	return out
}

func appendSentence(out []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || !hasLetterOrDigit(s) {
		return out
	}
	return append(out, s)
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
