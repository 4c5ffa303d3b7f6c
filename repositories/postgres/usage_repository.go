package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/juyterman1000/smartllm-router/models"
)

// UsageRepository persists usage records. It implements tracker.UsageStore.
type UsageRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUsageRepository creates a usage repository.
func NewUsageRepository(db *DB, logger *zap.Logger) *UsageRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UsageRepository{db: db, logger: logger}
}

// InitSchema creates the usage_records table if it does not exist.
func (r *UsageRepository) InitSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS usage_records (
			id UUID PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL,
			model TEXT NOT NULL,
			provider TEXT NOT NULL,
			input_tokens INTEGER NOT NULL,
			output_tokens INTEGER NOT NULL,
			cost DOUBLE PRECISION NOT NULL,
			savings DOUBLE PRECISION NOT NULL,
			latency_ms BIGINT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_usage_records_timestamp ON usage_records (timestamp);
	`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create usage schema: %w", err)
	}
	return nil
}

// Insert appends one usage record.
func (r *UsageRepository) Insert(ctx context.Context, rec models.UsageRecord) error {
	const query = `
		INSERT INTO usage_records (
			id, timestamp, model, provider, input_tokens, output_tokens,
			cost, savings, latency_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Timestamp,
		rec.Model,
		string(rec.Provider),
		rec.InputTokens,
		rec.OutputTokens,
		rec.Cost,
		rec.Savings,
		rec.Latency.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage record: %w", err)
	}

	r.logger.Debug("usage record inserted",
		zap.String("id", rec.ID.String()),
		zap.String("model", rec.Model),
	)
	return nil
}

// Recent returns the most recent records, newest first.
func (r *UsageRepository) Recent(ctx context.Context, limit int) ([]models.UsageRecord, error) {
	const query = `
		SELECT id, timestamp, model, provider, input_tokens, output_tokens,
		       cost, savings, latency_ms
		FROM usage_records
		ORDER BY timestamp DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage records: %w", err)
	}
	defer rows.Close()

	var out []models.UsageRecord
	for rows.Next() {
		var rec models.UsageRecord
		var provider string
		var latencyMs int64
		if err := rows.Scan(
			&rec.ID,
			&rec.Timestamp,
			&rec.Model,
			&provider,
			&rec.InputTokens,
			&rec.OutputTokens,
			&rec.Cost,
			&rec.Savings,
			&latencyMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan usage record: %w", err)
		}
		rec.Provider = models.Provider(provider)
		rec.Latency = time.Duration(latencyMs) * time.Millisecond
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate usage records: %w", err)
	}
	return out, nil
}
