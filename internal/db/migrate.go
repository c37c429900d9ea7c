package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SchemaVersion es la version actual del esquema relacional.
const SchemaVersion = 1

var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS tone_signatures (
		id UUID PRIMARY KEY,
		brand_id TEXT NOT NULL UNIQUE,
		tone TEXT NOT NULL,
		language_style TEXT NOT NULL,
		formality TEXT NOT NULL,
		forms_of_address TEXT NOT NULL,
		emotional_appeal TEXT NOT NULL,
		classification TEXT,
		metrics JSONB NOT NULL,
		metrics_embedding vector(8),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tone_evaluations (
		id UUID PRIMARY KEY,
		brand_id TEXT NOT NULL,
		original_text TEXT NOT NULL,
		rewritten_text TEXT NOT NULL,
		fluency TEXT NOT NULL,
		authenticity TEXT NOT NULL,
		tone_alignment TEXT NOT NULL,
		readability TEXT NOT NULL,
		strengths JSONB NOT NULL DEFAULT '[]',
		suggestions JSONB NOT NULL DEFAULT '[]',
		accuracy_points JSONB NOT NULL,
		score DOUBLE PRECISION NOT NULL,
		latency_ms BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tone_evaluations_brand_created ON tone_evaluations (brand_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS tone_rejections (
		id UUID PRIMARY KEY,
		brand_id TEXT NOT NULL,
		reviewer TEXT NOT NULL,
		comment TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tone_feedback (
		id UUID PRIMARY KEY,
		evaluation_id UUID NOT NULL REFERENCES tone_evaluations(id),
		user_id TEXT NOT NULL,
		helpful BOOLEAN NOT NULL,
		submitted_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate asegura que el esquema exista y este en SchemaVersion.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("migrate: pool is nil")
	}

	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("migrate: create schema_migrations: %w", err)
	}

	var current int
	if err := pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("migrate: read current version: %w", err)
	}
	if current >= SchemaVersion {
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("migrate: begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, stmt := range schemaStatements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: statement %d: %w", i, err)
		}
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, SchemaVersion); err != nil {
		return fmt.Errorf("migrate: record version: %w", err)
	}
	return tx.Commit(ctx)
}
