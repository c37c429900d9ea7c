package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"tone-drift/internal/domain"
)

// RejectionRepository es el log de auditoria de correcciones rechazadas.
type RejectionRepository interface {
	Append(ctx context.Context, r domain.Rejection) (domain.Rejection, error)
	List(ctx context.Context, brandID string) ([]domain.Rejection, error)
}

type PgRejectionRepository struct {
	pool *pgxpool.Pool
}

func NewPgRejectionRepository(pool *pgxpool.Pool) *PgRejectionRepository {
	return &PgRejectionRepository{pool: pool}
}

func (r *PgRejectionRepository) Append(ctx context.Context, rej domain.Rejection) (domain.Rejection, error) {
	const query = `
		INSERT INTO tone_rejections (id, brand_id, reviewer, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.pool.Exec(ctx, query, rej.ID, rej.BrandID, rej.Reviewer, rej.Comment, rej.CreatedAt); err != nil {
		return domain.Rejection{}, err
	}
	return rej, nil
}

// List devuelve los rechazos mas recientes primero; brandID vacio lista todas las marcas.
func (r *PgRejectionRepository) List(ctx context.Context, brandID string) ([]domain.Rejection, error) {
	const query = `
		SELECT id, brand_id, reviewer, comment, created_at
		FROM tone_rejections
		WHERE ($1 = '' OR brand_id = $1)
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Rejection
	for rows.Next() {
		var rej domain.Rejection
		if err := rows.Scan(&rej.ID, &rej.BrandID, &rej.Reviewer, &rej.Comment, &rej.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rej)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
