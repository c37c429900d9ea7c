package main

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"

	"tone-drift/internal/domain"
	"tone-drift/internal/repository"
)

// --- Repos en memoria para la corrida de prueba ---

type memorySignatureRepo struct {
	sigs map[string]domain.ToneSignature
}

func newMemorySignatureRepo() *memorySignatureRepo {
	return &memorySignatureRepo{sigs: map[string]domain.ToneSignature{}}
}

func (m *memorySignatureRepo) GetByBrand(_ context.Context, brandID string) (domain.ToneSignature, error) {
	sig, ok := m.sigs[brandID]
	if !ok {
		return domain.ToneSignature{}, pgx.ErrNoRows
	}
	return sig, nil
}

func (m *memorySignatureRepo) ListBrandIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.sigs))
	for id := range m.sigs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memorySignatureRepo) ListAll(_ context.Context) ([]domain.ToneSignature, error) {
	out := make([]domain.ToneSignature, 0, len(m.sigs))
	for _, s := range m.sigs {
		out = append(out, s)
	}
	return out, nil
}

func (m *memorySignatureRepo) Upsert(_ context.Context, sig domain.ToneSignature) (domain.ToneSignature, error) {
	m.sigs[sig.BrandID] = sig
	return sig, nil
}

func (m *memorySignatureRepo) NearestByMetrics(ctx context.Context, _ domain.TextMetrics, _ int) ([]domain.ToneSignature, error) {
	return m.ListAll(ctx)
}

type memoryEvaluationRepo struct {
	evals []domain.Evaluation
}

func (m *memoryEvaluationRepo) Append(_ context.Context, ev domain.Evaluation) (domain.Evaluation, error) {
	m.evals = append(m.evals, ev)
	return ev, nil
}

func (m *memoryEvaluationRepo) ListByBrand(_ context.Context, brandID string) ([]domain.Evaluation, error) {
	var out []domain.Evaluation
	for _, ev := range m.evals {
		if ev.BrandID == brandID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *memoryEvaluationRepo) GetByID(_ context.Context, id string) (domain.Evaluation, error) {
	for _, ev := range m.evals {
		if ev.ID == id {
			return ev, nil
		}
	}
	return domain.Evaluation{}, pgx.ErrNoRows
}

func (m *memoryEvaluationRepo) Search(ctx context.Context, f repository.EvaluationFilter) ([]domain.Evaluation, int, error) {
	out, err := m.ListByBrand(ctx, f.BrandID)
	return out, len(out), err
}
