package nlp

import (
	"strings"
)

const (
	maxValence     = 5.0
	negationWindow = 3
)

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "none": {}, "nobody": {}, "nothing": {},
	"neither": {}, "nor": {}, "without": {}, "hardly": {}, "barely": {},
}

// Polarity devuelve un puntaje continuo en [-1, 1]: la media de la polaridad de cada oracion.
// Cada oracion suma la valencia del lexico (negacion invierte el signo dentro de una ventana
// corta) y se normaliza por la valencia maxima posible de las palabras que puntuaron.
func Polarity(sentences []string) float64 {
	if len(sentences) == 0 {
		return 0
	}
	total := 0.0
	for _, s := range sentences {
		total += sentencePolarity(s)
	}
	return total / float64(len(sentences))
}

func sentencePolarity(sentence string) float64 {
	words := wordTokens(sentence)
	sum := 0.0
	hits := 0
	lastNegation := -negationWindow - 1
	for i, w := range words {
		lower := strings.ToLower(w)
		if isNegator(lower) {
			lastNegation = i
			continue
		}
		v, ok := valence[lower]
		if !ok {
			continue
		}
		if i-lastNegation <= negationWindow {
			v = -v
		}
		sum += v
		hits++
	}
	if hits == 0 {
		return 0
	}
	score := sum / (maxValence * float64(hits))
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}

func isNegator(w string) bool {
	if _, ok := negators[w]; ok {
		return true
	}
	return strings.HasSuffix(w, "n't") || strings.HasSuffix(w, "n’t")
}
