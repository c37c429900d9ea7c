package main

import (
	"math"

	"tone-drift/internal/domain"
	"tone-drift/internal/service"
)

type scenarioResult struct {
	Name       string
	Evaluation domain.Evaluation
	Err        error
}

type checkSummary struct {
	Scored  int
	Failed  int
	Drifted int
	Average float64
}

// summarize promedia solo los escenarios evaluados; los errores se cuentan aparte.
func summarize(results []scenarioResult) checkSummary {
	var out checkSummary
	total := 0.0
	for _, r := range results {
		if r.Err != nil {
			out.Failed++
			continue
		}
		out.Scored++
		total += r.Evaluation.Score
		if service.IsDrifted(r.Evaluation) {
			out.Drifted++
		}
	}
	if out.Scored > 0 {
		out.Average = math.Round(total/float64(out.Scored)*100) / 100
	}
	return out
}

// Passes exige que no haya errores ni drift y que el promedio alcance el minimo.
func (s checkSummary) Passes(minScore float64) bool {
	return s.Scored > 0 && s.Failed == 0 && s.Drifted == 0 && s.Average >= minScore
}
