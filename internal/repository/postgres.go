package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"callscreen/internal/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sql.DB) ScreeningRepository {
	return &postgresRepository{db: db}
}

// Create inserts a new run record
func (r *postgresRepository) Create(ctx context.Context, rec *model.ScreeningRecord) error {
	query := `
		INSERT INTO screenings (
			id, filename, audio_format, audio_size_bytes, stt_provider, model_tier,
			transcript, detected_keywords, fraud_detected, status,
			error_stage, error_message, processing_time_ms, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Filename,
		rec.AudioFormat,
		rec.AudioSizeBytes,
		rec.Provider,
		rec.ModelTier,
		rec.Transcript,
		pq.Array(keywordsOrEmpty(rec.Keywords)),
		rec.FraudDetected,
		rec.Status,
		rec.ErrorStage,
		rec.ErrorMessage,
		rec.ProcessingTimeMs,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create screening record: %w", err)
	}

	return nil
}

// UpdateResult stores the outcome of a run
func (r *postgresRepository) UpdateResult(ctx context.Context, rec *model.ScreeningRecord) error {
	query := `
		UPDATE screenings
		SET
			transcript = COALESCE($1, transcript),
			detected_keywords = $2,
			fraud_detected = COALESCE($3, fraud_detected),
			status = $4,
			error_stage = COALESCE($5, error_stage),
			error_message = COALESCE($6, error_message),
			processing_time_ms = COALESCE($7, processing_time_ms)
		WHERE id = $8
	`

	res, err := r.db.ExecContext(ctx, query,
		rec.Transcript,
		pq.Array(keywordsOrEmpty(rec.Keywords)),
		rec.FraudDetected,
		rec.Status,
		rec.ErrorStage,
		rec.ErrorMessage,
		rec.ProcessingTimeMs,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update screening record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", rec.ID, ErrNotFound)
	}

	return nil
}

// GetByID retrieves a run record by ID
func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ScreeningRecord, error) {
	query := `
		SELECT
			id, filename, audio_format, audio_size_bytes, stt_provider, model_tier,
			transcript, detected_keywords, fraud_detected, status,
			error_stage, error_message, processing_time_ms, created_at
		FROM screenings
		WHERE id = $1
	`

	var rec model.ScreeningRecord
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.Filename,
		&rec.AudioFormat,
		&rec.AudioSizeBytes,
		&rec.Provider,
		&rec.ModelTier,
		&rec.Transcript,
		pq.Array(&rec.Keywords),
		&rec.FraudDetected,
		&rec.Status,
		&rec.ErrorStage,
		&rec.ErrorMessage,
		&rec.ProcessingTimeMs,
		&rec.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get screening record: %w", err)
	}

	rec.Keywords = keywordsOrEmpty(rec.Keywords)
	return &rec, nil
}

func keywordsOrEmpty(k []string) []string {
	if k == nil {
		return []string{}
	}
	return k
}
