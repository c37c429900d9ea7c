package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"tone-drift/internal/domain"
	"tone-drift/internal/repository"
)

// signatureLister da acceso a las firmas para cruzarlas con el historial.
type signatureLister interface {
	GetByBrand(ctx context.Context, brandID string) (domain.ToneSignature, error)
	ListAll(ctx context.Context) ([]domain.ToneSignature, error)
}

// InsightsService expone consultas de solo lectura sobre el historial y el feedback de evaluaciones.
type InsightsService struct {
	evaluations repository.EvaluationRepository
	feedback    repository.FeedbackRepository
	signatures  signatureLister
	rejections  repository.RejectionRepository
	logger      *zap.Logger
}

func NewInsightsService(
	evaluations repository.EvaluationRepository,
	feedback repository.FeedbackRepository,
	signatures signatureLister,
	rejections repository.RejectionRepository,
	logger *zap.Logger,
) *InsightsService {
	return &InsightsService{
		evaluations: evaluations,
		feedback:    feedback,
		signatures:  signatures,
		rejections:  rejections,
		logger:      logger,
	}
}

type SearchResult struct {
	Items []domain.Evaluation `json:"items"`
	Total int                 `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

func (s *InsightsService) SearchEvaluations(ctx context.Context, filter repository.EvaluationFilter) (SearchResult, error) {
	f := filter.Normalize()
	if f.MinScore > f.MaxScore {
		return SearchResult{}, fmt.Errorf("search evaluations: %w (%.2f > %.2f)", ErrInvalidScoreRange, f.MinScore, f.MaxScore)
	}
	items, total, err := s.evaluations.Search(ctx, f)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search evaluations: %w", err)
	}
	if items == nil {
		items = []domain.Evaluation{}
	}
	return SearchResult{Items: items, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// ScoreStats agrega el historial de una marca. Sin evaluaciones devuelve ceros.
func (s *InsightsService) ScoreStats(ctx context.Context, brandID string) (domain.ScoreStats, error) {
	evals, err := s.evaluations.ListByBrand(ctx, brandID)
	if err != nil {
		return domain.ScoreStats{}, fmt.Errorf("score stats for brand %s: %w", brandID, err)
	}

	stats := domain.ScoreStats{BrandID: brandID, Count: len(evals)}
	if len(evals) == 0 {
		return stats, nil
	}

	stats.Min = math.Inf(1)
	stats.Max = math.Inf(-1)
	sum := 0.0
	for _, ev := range evals {
		sum += ev.Score
		stats.Min = math.Min(stats.Min, ev.Score)
		stats.Max = math.Max(stats.Max, ev.Score)
		if IsDrifted(ev) {
			stats.DriftedCount++
		}
	}
	stats.Average = math.Round(sum/float64(len(evals))*100) / 100
	return stats, nil
}

// ChartData devuelve la serie temporal de scores de la marca en orden cronologico.
func (s *InsightsService) ChartData(ctx context.Context, brandID string) ([]domain.ChartPoint, error) {
	evals, err := s.evaluations.ListByBrand(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("chart data for brand %s: %w", brandID, err)
	}
	points := make([]domain.ChartPoint, 0, len(evals))
	for _, ev := range evals {
		points = append(points, domain.ChartPoint{At: ev.CreatedAt, Score: ev.Score})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].At.Before(points[j].At) })
	return points, nil
}

func (s *InsightsService) SubmitFeedback(ctx context.Context, evaluationID, userID string, helpful bool) (domain.Feedback, error) {
	evaluationID = strings.TrimSpace(evaluationID)
	userID = strings.TrimSpace(userID)
	if evaluationID == "" || userID == "" {
		return domain.Feedback{}, errors.New("submit feedback: evaluation and user are required")
	}
	if _, err := s.evaluations.GetByID(ctx, evaluationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Feedback{}, fmt.Errorf("evaluation %s: %w", evaluationID, ErrEvaluationNotFound)
		}
		return domain.Feedback{}, fmt.Errorf("get evaluation %s: %w", evaluationID, err)
	}

	fb, err := s.feedback.Create(ctx, domain.Feedback{
		ID:           uuid.NewString(),
		EvaluationID: evaluationID,
		UserID:       userID,
		Helpful:      helpful,
		SubmittedAt:  time.Now().UTC(),
	})
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("create feedback: %w", err)
	}
	return fb, nil
}

func (s *InsightsService) FeedbackSummary(ctx context.Context, evaluationID string) (domain.FeedbackSummary, error) {
	summary, err := s.feedback.Summary(ctx, evaluationID)
	if err != nil {
		return domain.FeedbackSummary{}, fmt.Errorf("feedback summary %s: %w", evaluationID, err)
	}
	return summary, nil
}

const chartPreviewPoints = 10

// EvaluationMatrix lista todas las evaluaciones como filas, de la mas vieja a la mas nueva.
// brandID vacio recorre todas las marcas con firma.
func (s *InsightsService) EvaluationMatrix(ctx context.Context, brandID string) ([]domain.MatrixRow, error) {
	sigs, err := s.signaturesFor(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("evaluation matrix: %w", err)
	}

	rows := make([]domain.MatrixRow, 0)
	for _, sig := range sigs {
		evals, err := s.evaluations.ListByBrand(ctx, sig.BrandID)
		if err != nil {
			return nil, fmt.Errorf("evaluation matrix for brand %s: %w", sig.BrandID, err)
		}
		for _, ev := range evals {
			rows = append(rows, domain.MatrixRow{
				EvaluationID:  ev.ID,
				BrandID:       ev.BrandID,
				Fluency:       ev.Qualitative.Fluency,
				Authenticity:  ev.Qualitative.Authenticity,
				ToneAlignment: ev.Qualitative.ToneAlignment,
				Readability:   ev.Qualitative.Readability,
				Points:        ev.AccuracyPoints,
				Score:         ev.Score,
				Drifted:       IsDrifted(ev),
				CreatedAt:     ev.CreatedAt,
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].EvaluationID < rows[j].EvaluationID
		}
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})
	return rows, nil
}

// ToneTraitScores cruza el historial con la firma de cada marca y promedia el score por
// valor de rasgo. Cada rasgo queda ordenado del mejor promedio al peor.
func (s *InsightsService) ToneTraitScores(ctx context.Context, brandID string) ([]domain.TraitScore, error) {
	sigs, err := s.signaturesFor(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("tone trait scores: %w", err)
	}

	type key struct{ trait, value string }
	type acc struct {
		n   int
		sum float64
	}
	totals := make(map[key]*acc)
	for _, sig := range sigs {
		evals, err := s.evaluations.ListByBrand(ctx, sig.BrandID)
		if err != nil {
			return nil, fmt.Errorf("tone trait scores for brand %s: %w", sig.BrandID, err)
		}
		if len(evals) == 0 {
			continue
		}
		for trait, value := range traitValues(sig.Traits) {
			k := key{trait, value}
			a, ok := totals[k]
			if !ok {
				a = &acc{}
				totals[k] = a
			}
			for _, ev := range evals {
				a.n++
				a.sum += ev.Score
			}
		}
	}

	out := make([]domain.TraitScore, 0, len(totals))
	for k, a := range totals {
		out = append(out, domain.TraitScore{
			Trait:        k.trait,
			Value:        k.value,
			Evaluations:  a.n,
			AverageScore: math.Round(a.sum/float64(a.n)*100) / 100,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Trait != out[j].Trait {
			return out[i].Trait < out[j].Trait
		}
		if out[i].AverageScore != out[j].AverageScore {
			return out[i].AverageScore > out[j].AverageScore
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}

// ChartPreview devuelve los ultimos puntos de la serie con promedio y tendencia
// (ultimo score menos el primero del tramo).
func (s *InsightsService) ChartPreview(ctx context.Context, brandID string) (domain.ChartPreview, error) {
	points, err := s.ChartData(ctx, brandID)
	if err != nil {
		return domain.ChartPreview{}, err
	}
	preview := domain.ChartPreview{BrandID: brandID, Total: len(points), Points: points}
	if len(points) > chartPreviewPoints {
		preview.Points = points[len(points)-chartPreviewPoints:]
	}
	if len(preview.Points) == 0 {
		return preview, nil
	}

	sum := 0.0
	for _, p := range preview.Points {
		sum += p.Score
	}
	first, last := preview.Points[0].Score, preview.Points[len(preview.Points)-1].Score
	preview.Average = math.Round(sum/float64(len(preview.Points))*100) / 100
	preview.Latest = last
	preview.Trend = math.Round((last-first)*100) / 100
	return preview, nil
}

// RejectionsByReviewer cuenta los rechazos por revisor, de mayor a menor.
func (s *InsightsService) RejectionsByReviewer(ctx context.Context, brandID string) ([]domain.ReviewerRejections, error) {
	rejections, err := s.rejections.List(ctx, strings.TrimSpace(brandID))
	if err != nil {
		return nil, fmt.Errorf("rejections by reviewer: %w", err)
	}
	counts := make(map[string]int)
	for _, r := range rejections {
		counts[r.Reviewer]++
	}
	out := make([]domain.ReviewerRejections, 0, len(counts))
	for reviewer, n := range counts {
		out = append(out, domain.ReviewerRejections{Reviewer: reviewer, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reviewer < out[j].Reviewer
	})
	return out, nil
}

func (s *InsightsService) signaturesFor(ctx context.Context, brandID string) ([]domain.ToneSignature, error) {
	brandID = strings.TrimSpace(brandID)
	if brandID == "" {
		return s.signatures.ListAll(ctx)
	}
	sig, err := s.signatures.GetByBrand(ctx, brandID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("brand %s: %w", brandID, domain.ErrSignatureNotFound)
		}
		return nil, err
	}
	return []domain.ToneSignature{sig}, nil
}

func traitValues(t domain.ToneTraits) map[string]string {
	out := make(map[string]string, 6)
	for trait, v := range map[string]string{
		"tone":             t.Tone,
		"language_style":   t.LanguageStyle,
		"formality":        t.Formality,
		"forms_of_address": t.FormsOfAddress,
		"emotional_appeal": t.EmotionalAppeal,
		"classification":   t.Classification,
	} {
		if v = strings.TrimSpace(v); v != "" {
			out[trait] = v
		}
	}
	return out
}

var (
	ErrEvaluationNotFound = errors.New("evaluation not found")
	ErrInvalidScoreRange  = errors.New("min score above max score")
)
