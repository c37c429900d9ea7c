package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"tone-drift/internal/domain"
	"tone-drift/internal/repository"
)

type memSignatureRepo struct {
	mu      sync.Mutex
	items   map[string]domain.ToneSignature
	listErr error
	getErr  map[string]error
	nearest []domain.ToneSignature
	upserts int
}

func newMemSignatureRepo(sigs ...domain.ToneSignature) *memSignatureRepo {
	r := &memSignatureRepo{items: map[string]domain.ToneSignature{}, getErr: map[string]error{}}
	for _, s := range sigs {
		r.items[s.BrandID] = s
	}
	return r
}

func (r *memSignatureRepo) GetByBrand(_ context.Context, brandID string) (domain.ToneSignature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.getErr[brandID]; err != nil {
		return domain.ToneSignature{}, err
	}
	sig, ok := r.items[brandID]
	if !ok {
		return domain.ToneSignature{}, pgx.ErrNoRows
	}
	return sig, nil
}

func (r *memSignatureRepo) ListBrandIDs(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	ids := make([]string, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *memSignatureRepo) ListAll(context.Context) ([]domain.ToneSignature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ToneSignature, 0, len(r.items))
	for _, s := range r.items {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BrandID < out[j].BrandID })
	return out, nil
}

func (r *memSignatureRepo) Upsert(_ context.Context, sig domain.ToneSignature) (domain.ToneSignature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	r.items[sig.BrandID] = sig
	return sig, nil
}

func (r *memSignatureRepo) NearestByMetrics(context.Context, domain.TextMetrics, int) ([]domain.ToneSignature, error) {
	return r.nearest, nil
}

type memEvaluationRepo struct {
	mu        sync.Mutex
	items     []domain.Evaluation
	appendErr error
	listErr   map[string]error
}

func (r *memEvaluationRepo) Append(_ context.Context, ev domain.Evaluation) (domain.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return domain.Evaluation{}, r.appendErr
	}
	r.items = append(r.items, ev)
	return ev, nil
}

func (r *memEvaluationRepo) ListByBrand(_ context.Context, brandID string) ([]domain.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.listErr[brandID]; err != nil {
		return nil, err
	}
	var out []domain.Evaluation
	for _, ev := range r.items {
		if ev.BrandID == brandID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *memEvaluationRepo) GetByID(_ context.Context, id string) (domain.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.items {
		if ev.ID == id {
			return ev, nil
		}
	}
	return domain.Evaluation{}, pgx.ErrNoRows
}

func (r *memEvaluationRepo) Search(_ context.Context, f repository.EvaluationFilter) ([]domain.Evaluation, int, error) {
	f = f.Normalize()
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.Evaluation
	for _, ev := range r.items {
		if f.BrandID != "" && ev.BrandID != f.BrandID {
			continue
		}
		if ev.Score < f.MinScore || ev.Score > f.MaxScore {
			continue
		}
		matched = append(matched, ev)
	}
	start := (f.Page - 1) * f.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched), nil
}

type memRejectionRepo struct {
	mu    sync.Mutex
	items []domain.Rejection
	err   error
}

func (r *memRejectionRepo) Append(_ context.Context, rej domain.Rejection) (domain.Rejection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Rejection{}, r.err
	}
	r.items = append(r.items, rej)
	return rej, nil
}

func (r *memRejectionRepo) List(_ context.Context, brandID string) ([]domain.Rejection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Rejection
	for _, rej := range r.items {
		if brandID == "" || rej.BrandID == brandID {
			out = append(out, rej)
		}
	}
	return out, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	proposals []domain.CorrectionProposal
	failFor   map[string]error
}

func (n *recordingNotifier) ProposeCorrection(_ context.Context, p domain.CorrectionProposal) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.failFor[p.BrandID]; err != nil {
		return err
	}
	n.proposals = append(n.proposals, p)
	return nil
}

func (n *recordingNotifier) brands() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.proposals))
	for _, p := range n.proposals {
		out = append(out, p.BrandID)
	}
	sort.Strings(out)
	return out
}

var errBoom = errors.New("boom")

func evaluationWith(brandID, id, alignment string) domain.Evaluation {
	return domain.Evaluation{
		ID:            id,
		BrandID:       brandID,
		OriginalText:  "original " + id,
		RewrittenText: "rewritten " + id,
		Qualitative: domain.QualitativeEvaluation{
			Fluency:       "High",
			Authenticity:  "High",
			ToneAlignment: alignment,
			Readability:   "Good",
			Suggestions:   []string{"fix " + id},
		},
	}
}
