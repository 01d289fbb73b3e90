//go:generate mockgen -source=interface.go -destination=mock_stt/mock_stt.go -package=mock_stt

package stt

import (
	"context"
	"errors"
)

var (
	// ErrModelUnavailable means the model for the requested tier could not
	// be loaded (missing weights, resource exhaustion, rejected by the API).
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrTranscriptionFailed means the model was loaded but decoding or
	// inference over the file failed.
	ErrTranscriptionFailed = errors.New("transcription failed")
)

// Provider defines the interface for speech-to-text providers
type Provider interface {
	// Transcribe runs the tier's model over the whole file at audioPath.
	// Failures wrap ErrModelUnavailable or ErrTranscriptionFailed.
	Transcribe(ctx context.Context, audioPath string, tier Tier) (*Result, error)

	// Name returns the name of the provider (e.g., "whisper", "openai")
	Name() string
}
