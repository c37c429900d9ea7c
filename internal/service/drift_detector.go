package service

import (
	"context"
	"fmt"

	"tone-drift/internal/domain"
	"tone-drift/internal/repository"
)

// DriftDetector filtra las evaluaciones de una marca cuya alineacion de tono es Low.
// Sin estado ni cache: cada llamada relee el historial completo.
type DriftDetector struct {
	evaluations repository.EvaluationRepository
}

func NewDriftDetector(evaluations repository.EvaluationRepository) *DriftDetector {
	return &DriftDetector{evaluations: evaluations}
}

func (d *DriftDetector) FindDrifted(ctx context.Context, brandID string) ([]domain.Evaluation, error) {
	all, err := d.evaluations.ListByBrand(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("list evaluations for brand %s: %w", brandID, err)
	}

	drifted := make([]domain.Evaluation, 0)
	for _, ev := range all {
		if IsDrifted(ev) {
			drifted = append(drifted, ev)
		}
	}
	return drifted, nil
}
