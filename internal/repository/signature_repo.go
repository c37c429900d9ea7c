package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tone-drift/internal/domain"
)

// SignatureRepository guarda una firma activa por marca.
type SignatureRepository interface {
	GetByBrand(ctx context.Context, brandID string) (domain.ToneSignature, error)
	ListBrandIDs(ctx context.Context) ([]string, error)
	ListAll(ctx context.Context) ([]domain.ToneSignature, error)
	Upsert(ctx context.Context, sig domain.ToneSignature) (domain.ToneSignature, error)
	NearestByMetrics(ctx context.Context, metrics domain.TextMetrics, k int) ([]domain.ToneSignature, error)
}

type PgSignatureRepository struct {
	pool *pgxpool.Pool
}

func NewPgSignatureRepository(pool *pgxpool.Pool) *PgSignatureRepository {
	return &PgSignatureRepository{pool: pool}
}

const signatureColumns = `id, brand_id, tone, language_style, formality, forms_of_address, emotional_appeal, classification, metrics, created_at, updated_at`

func (r *PgSignatureRepository) GetByBrand(ctx context.Context, brandID string) (domain.ToneSignature, error) {
	query := `SELECT ` + signatureColumns + ` FROM tone_signatures WHERE brand_id = $1`
	return scanSignature(r.pool.QueryRow(ctx, query, brandID))
}

func (r *PgSignatureRepository) ListBrandIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT brand_id FROM tone_signatures ORDER BY brand_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PgSignatureRepository) ListAll(ctx context.Context) ([]domain.ToneSignature, error) {
	query := `SELECT ` + signatureColumns + ` FROM tone_signatures ORDER BY brand_id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectSignatures(rows)
}

// Upsert reemplaza la firma completa de la marca (last-writer-wins).
func (r *PgSignatureRepository) Upsert(ctx context.Context, sig domain.ToneSignature) (domain.ToneSignature, error) {
	query := `
		INSERT INTO tone_signatures (
			id, brand_id, tone, language_style, formality, forms_of_address, emotional_appeal, classification, metrics, metrics_embedding, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (brand_id)
		DO UPDATE SET
			tone = EXCLUDED.tone,
			language_style = EXCLUDED.language_style,
			formality = EXCLUDED.formality,
			forms_of_address = EXCLUDED.forms_of_address,
			emotional_appeal = EXCLUDED.emotional_appeal,
			classification = EXCLUDED.classification,
			metrics = EXCLUDED.metrics,
			metrics_embedding = EXCLUDED.metrics_embedding,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + signatureColumns

	metrics, err := json.Marshal(sig.Metrics)
	if err != nil {
		return domain.ToneSignature{}, fmt.Errorf("marshal metrics: %w", err)
	}

	var classification interface{}
	if sig.Traits.Classification != "" {
		classification = sig.Traits.Classification
	}

	return scanSignature(r.pool.QueryRow(ctx, query,
		sig.ID,
		sig.BrandID,
		sig.Traits.Tone,
		sig.Traits.LanguageStyle,
		sig.Traits.Formality,
		sig.Traits.FormsOfAddress,
		sig.Traits.EmotionalAppeal,
		classification,
		metrics,
		sig.Metrics.Vector(),
		sig.CreatedAt,
		sig.UpdatedAt,
	))
}

// NearestByMetrics ordena las firmas por distancia L2 entre embeddings de metricas.
func (r *PgSignatureRepository) NearestByMetrics(ctx context.Context, metrics domain.TextMetrics, k int) ([]domain.ToneSignature, error) {
	if k <= 0 {
		k = 5
	}
	query := `
		SELECT ` + signatureColumns + `
		FROM tone_signatures
		WHERE metrics_embedding IS NOT NULL
		ORDER BY metrics_embedding <-> $1
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, metrics.Vector(), k)
	if err != nil {
		return nil, err
	}
	return collectSignatures(rows)
}

func collectSignatures(rows pgx.Rows) ([]domain.ToneSignature, error) {
	defer rows.Close()

	var out []domain.ToneSignature
	for rows.Next() {
		sig, err := scanSignature(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanSignature(row pgx.Row) (domain.ToneSignature, error) {
	var sig domain.ToneSignature
	var classification sql.NullString
	var metrics []byte

	if err := row.Scan(
		&sig.ID,
		&sig.BrandID,
		&sig.Traits.Tone,
		&sig.Traits.LanguageStyle,
		&sig.Traits.Formality,
		&sig.Traits.FormsOfAddress,
		&sig.Traits.EmotionalAppeal,
		&classification,
		&metrics,
		&sig.CreatedAt,
		&sig.UpdatedAt,
	); err != nil {
		return domain.ToneSignature{}, err
	}
	if classification.Valid {
		sig.Traits.Classification = classification.String
	}
	if len(metrics) > 0 {
		if err := json.Unmarshal(metrics, &sig.Metrics); err != nil {
			return domain.ToneSignature{}, fmt.Errorf("unmarshal metrics: %w", err)
		}
	}
	return sig, nil
}
