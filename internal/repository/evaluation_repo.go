package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tone-drift/internal/domain"
)

// EvaluationRepository es el historial append-only de evaluaciones.
type EvaluationRepository interface {
	Append(ctx context.Context, ev domain.Evaluation) (domain.Evaluation, error)
	ListByBrand(ctx context.Context, brandID string) ([]domain.Evaluation, error)
	GetByID(ctx context.Context, id string) (domain.Evaluation, error)
	Search(ctx context.Context, filter EvaluationFilter) ([]domain.Evaluation, int, error)
}

// EvaluationFilter filtra y pagina busquedas. Campos cero no filtran.
type EvaluationFilter struct {
	BrandID  string
	MinScore float64
	MaxScore float64
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

// Normalize aplica los defaults de paginacion y rango de score.
func (f EvaluationFilter) Normalize() EvaluationFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.MaxScore <= 0 || f.MaxScore > 1 {
		f.MaxScore = 1
	}
	if f.MinScore < 0 {
		f.MinScore = 0
	}
	return f
}

type PgEvaluationRepository struct {
	pool *pgxpool.Pool
}

func NewPgEvaluationRepository(pool *pgxpool.Pool) *PgEvaluationRepository {
	return &PgEvaluationRepository{pool: pool}
}

const evaluationColumns = `id, brand_id, original_text, rewritten_text, fluency, authenticity, tone_alignment, readability, strengths, suggestions, accuracy_points, score, latency_ms, created_at`

func (r *PgEvaluationRepository) Append(ctx context.Context, ev domain.Evaluation) (domain.Evaluation, error) {
	query := `
		INSERT INTO tone_evaluations (` + evaluationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	strengths, err := json.Marshal(nonNil(ev.Qualitative.Strengths))
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("marshal strengths: %w", err)
	}
	suggestions, err := json.Marshal(nonNil(ev.Qualitative.Suggestions))
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("marshal suggestions: %w", err)
	}
	points, err := json.Marshal(ev.AccuracyPoints)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("marshal accuracy points: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		ev.ID,
		ev.BrandID,
		ev.OriginalText,
		ev.RewrittenText,
		ev.Qualitative.Fluency,
		ev.Qualitative.Authenticity,
		ev.Qualitative.ToneAlignment,
		ev.Qualitative.Readability,
		strengths,
		suggestions,
		points,
		ev.Score,
		ev.LatencyMs,
		ev.CreatedAt,
	)
	if err != nil {
		return domain.Evaluation{}, err
	}
	return ev, nil
}

func (r *PgEvaluationRepository) ListByBrand(ctx context.Context, brandID string) ([]domain.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM tone_evaluations WHERE brand_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, brandID)
	if err != nil {
		return nil, err
	}
	return collectEvaluations(rows)
}

func (r *PgEvaluationRepository) GetByID(ctx context.Context, id string) (domain.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM tone_evaluations WHERE id = $1`
	return scanEvaluation(r.pool.QueryRow(ctx, query, id))
}

func (r *PgEvaluationRepository) Search(ctx context.Context, filter EvaluationFilter) ([]domain.Evaluation, int, error) {
	f := filter.Normalize()

	conds := []string{"score >= $1", "score <= $2"}
	args := []interface{}{f.MinScore, f.MaxScore}
	if f.BrandID != "" {
		args = append(args, f.BrandID)
		conds = append(conds, fmt.Sprintf("brand_id = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tone_evaluations WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	query := fmt.Sprintf(`SELECT %s FROM tone_evaluations WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		evaluationColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	items, err := collectEvaluations(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func collectEvaluations(rows pgx.Rows) ([]domain.Evaluation, error) {
	defer rows.Close()

	var out []domain.Evaluation
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanEvaluation(row pgx.Row) (domain.Evaluation, error) {
	var ev domain.Evaluation
	var strengths, suggestions, points []byte

	if err := row.Scan(
		&ev.ID,
		&ev.BrandID,
		&ev.OriginalText,
		&ev.RewrittenText,
		&ev.Qualitative.Fluency,
		&ev.Qualitative.Authenticity,
		&ev.Qualitative.ToneAlignment,
		&ev.Qualitative.Readability,
		&strengths,
		&suggestions,
		&points,
		&ev.Score,
		&ev.LatencyMs,
		&ev.CreatedAt,
	); err != nil {
		return domain.Evaluation{}, err
	}
	if err := unmarshalIfPresent(strengths, &ev.Qualitative.Strengths); err != nil {
		return domain.Evaluation{}, fmt.Errorf("unmarshal strengths: %w", err)
	}
	if err := unmarshalIfPresent(suggestions, &ev.Qualitative.Suggestions); err != nil {
		return domain.Evaluation{}, fmt.Errorf("unmarshal suggestions: %w", err)
	}
	if err := unmarshalIfPresent(points, &ev.AccuracyPoints); err != nil {
		return domain.Evaluation{}, fmt.Errorf("unmarshal accuracy points: %w", err)
	}
	return ev, nil
}

func unmarshalIfPresent(raw []byte, out any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
