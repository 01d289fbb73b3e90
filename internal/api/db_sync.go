package api

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"callscreen/internal/audio"
	"callscreen/internal/model"
	"callscreen/internal/pipeline"
	"callscreen/internal/stt"
)

const dbTimeout = 5 * time.Second

// syncCreate records a new run in the database if a repository is available.
// Database problems never fail the request.
func (s *Server) syncCreate(id uuid.UUID, filename string, tier stt.Tier, size int64) {
	if s.repo == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	rec := &model.ScreeningRecord{
		ID:             id,
		Filename:       filename,
		AudioFormat:    audio.Extension(filename),
		AudioSizeBytes: &size,
		Provider:       s.provider,
		ModelTier:      tier.String(),
		Keywords:       []string{},
		Status:         pipeline.AwaitingUpload.String(),
		CreatedAt:      time.Now(),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		s.logger.Warn("failed to create screening record", "id", id, "err", err)
		return
	}
	s.logger.Debug("screening record created", "id", id)
}

// syncResult stores the outcome of a run.
func (s *Server) syncResult(id uuid.UUID, res *pipeline.Result, runErr error, elapsed time.Duration) {
	if s.repo == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	ms := int(elapsed.Milliseconds())
	rec := &model.ScreeningRecord{
		ID:               id,
		Keywords:         []string{},
		ProcessingTimeMs: &ms,
	}

	if runErr != nil {
		rec.Status = pipeline.Failed.String()
		msg := runErr.Error()
		rec.ErrorMessage = &msg
		var perr *pipeline.Error
		if errors.As(runErr, &perr) {
			stage := perr.Stage.String()
			rec.ErrorStage = &stage
		}
	} else {
		rec.Status = pipeline.Complete.String()
		rec.Transcript = &res.Transcript
		rec.Keywords = res.Keywords
		rec.FraudDetected = &res.FraudDetected
	}

	if err := s.repo.UpdateResult(ctx, rec); err != nil {
		s.logger.Warn("failed to update screening record", "id", id, "err", err)
		return
	}
	s.logger.Debug("screening record updated", "id", id, "status", rec.Status)
}
