package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"tone-drift/internal/domain"
)

type FeedbackRepository interface {
	Create(ctx context.Context, f domain.Feedback) (domain.Feedback, error)
	Summary(ctx context.Context, evaluationID string) (domain.FeedbackSummary, error)
}

type PgFeedbackRepository struct {
	pool *pgxpool.Pool
}

func NewPgFeedbackRepository(pool *pgxpool.Pool) *PgFeedbackRepository {
	return &PgFeedbackRepository{pool: pool}
}

func (r *PgFeedbackRepository) Create(ctx context.Context, f domain.Feedback) (domain.Feedback, error) {
	const query = `
		INSERT INTO tone_feedback (id, evaluation_id, user_id, helpful, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.pool.Exec(ctx, query, f.ID, f.EvaluationID, f.UserID, f.Helpful, f.SubmittedAt); err != nil {
		return domain.Feedback{}, err
	}
	return f, nil
}

func (r *PgFeedbackRepository) Summary(ctx context.Context, evaluationID string) (domain.FeedbackSummary, error) {
	const query = `
		SELECT
			COUNT(*) FILTER (WHERE helpful),
			COUNT(*) FILTER (WHERE NOT helpful)
		FROM tone_feedback
		WHERE evaluation_id = $1
	`
	summary := domain.FeedbackSummary{EvaluationID: evaluationID}
	if err := r.pool.QueryRow(ctx, query, evaluationID).Scan(&summary.Helpful, &summary.NotHelpful); err != nil {
		return domain.FeedbackSummary{}, err
	}
	return summary, nil
}
