package model

import (
	"time"

	"github.com/google/uuid"
)

// ScreeningRecord is the stored history of one pipeline run
type ScreeningRecord struct {
	ID               uuid.UUID `json:"id"`
	Filename         string    `json:"filename"`
	AudioFormat      string    `json:"audio_format"`
	AudioSizeBytes   *int64    `json:"audio_size_bytes,omitempty"`
	Provider         string    `json:"stt_provider"`
	ModelTier        string    `json:"model"`
	Transcript       *string   `json:"transcript,omitempty"`
	Keywords         []string  `json:"detected_keywords"`
	FraudDetected    *bool     `json:"fraud_detected,omitempty"`
	Status           string    `json:"status"`
	ErrorStage       *string   `json:"error_stage,omitempty"`
	ErrorMessage     *string   `json:"error_message,omitempty"`
	ProcessingTimeMs *int      `json:"processing_time_ms,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
