package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cropadvisor/backend/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS recommendation_logs (
		id         UUID PRIMARY KEY,
		crop_type  TEXT NOT NULL,
		source     TEXT NOT NULL,
		input      JSONB NOT NULL,
		result     JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS recommendation_logs_created_at_idx
		ON recommendation_logs (created_at DESC);
`

// PostgresRepository implements domain.RecommendationRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the history table when it does not exist
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: failed to ensure schema: %w", err)
	}
	return nil
}

// SaveRecommendationLog persists one served recommendation to PostgreSQL
func (r *PostgresRepository) SaveRecommendationLog(ctx context.Context, entry domain.RecommendationLog) error {
	query := `
		INSERT INTO recommendation_logs (
			id, crop_type, source, input, result, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID.String(), entry.CropType, string(entry.Source), entry.Input, entry.Result, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save recommendation log: %w", err)
	}

	return nil
}

// GetRecentRecommendations retrieves the latest history entries from PostgreSQL
func (r *PostgresRepository) GetRecentRecommendations(ctx context.Context, limit int) ([]domain.RecommendationLog, error) {
	query := `
		SELECT id::text, crop_type, source, input, result, created_at
		FROM recommendation_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query recommendation logs: %w", err)
	}
	defer rows.Close()

	var results []domain.RecommendationLog
	for rows.Next() {
		var (
			e      domain.RecommendationLog
			id     string
			source string
		)
		if err := rows.Scan(&id, &e.CropType, &source, &e.Input, &e.Result, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan recommendation row: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("postgres: invalid recommendation id %q: %w", id, err)
		}
		e.Source = domain.Source(source)
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read recommendation logs: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
