package service

import (
	"math"
	"strings"

	"tone-drift/internal/domain"
)

// Pesos por dimension. El maximo alcanzable es 3 puntos por dimension.
const (
	weightToneAlignment = 2.0
	weightFluency       = 1.5
	weightAuthenticity  = 1.0
	weightReadability   = 1.0

	suggestionPenalty    = 0.5
	maxSuggestionPenalty = 3.0

	maxRawScore = 3 * (weightToneAlignment + weightFluency + weightAuthenticity + weightReadability)
)

var levelPoints = map[string]int{
	strings.ToLower(domain.LevelHigh):   3,
	strings.ToLower(domain.LevelMedium): 2,
	strings.ToLower(domain.LevelLow):    1,
}

var readabilityPoints = map[string]int{
	strings.ToLower(domain.ReadabilityExcellent): 3,
	strings.ToLower(domain.ReadabilityGood):      2,
	strings.ToLower(domain.ReadabilityPoor):      1,
}

// ScoreNormalizer convierte una evaluacion cualitativa en un score reproducible en [0,1].
// Etiquetas desconocidas valen 0 puntos.
type ScoreNormalizer struct{}

var DefaultScoreNormalizer = ScoreNormalizer{}

func (ScoreNormalizer) Normalize(ev domain.QualitativeEvaluation) (float64, domain.AccuracyPoints) {
	points := domain.AccuracyPoints{
		Fluency:       lookupPoints(levelPoints, ev.Fluency),
		Authenticity:  lookupPoints(levelPoints, ev.Authenticity),
		ToneAlignment: lookupPoints(levelPoints, ev.ToneAlignment),
		Readability:   lookupPoints(readabilityPoints, ev.Readability),
	}

	raw := float64(points.ToneAlignment)*weightToneAlignment +
		float64(points.Fluency)*weightFluency +
		float64(points.Authenticity)*weightAuthenticity +
		float64(points.Readability)*weightReadability

	penalty := math.Min(suggestionPenalty*float64(len(ev.Suggestions)), maxSuggestionPenalty)
	score := math.Max(raw-penalty, 0) / maxRawScore
	return math.Round(score*100) / 100, points
}

func lookupPoints(table map[string]int, label string) int {
	return table[strings.ToLower(strings.TrimSpace(label))]
}

// IsDrifted indica si una evaluacion cuenta como drift (alineacion de tono Low).
func IsDrifted(ev domain.Evaluation) bool {
	return strings.EqualFold(strings.TrimSpace(ev.Qualitative.ToneAlignment), domain.LevelLow)
}
