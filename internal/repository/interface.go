package repository

import (
	"context"
	"errors"

	"callscreen/internal/model"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no record has the requested ID.
var ErrNotFound = errors.New("screening record not found")

// ScreeningRepository defines the interface for screening history access
type ScreeningRepository interface {
	// Create inserts a new run record
	Create(ctx context.Context, rec *model.ScreeningRecord) error

	// UpdateResult stores the outcome (transcript, keywords, status, error) of a run
	UpdateResult(ctx context.Context, rec *model.ScreeningRecord) error

	// GetByID retrieves a run record by ID
	GetByID(ctx context.Context, id uuid.UUID) (*model.ScreeningRecord, error)
}
