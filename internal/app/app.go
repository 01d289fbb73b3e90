// Package app assembles the screening pipeline from configuration.
package app

import (
	"fmt"

	"github.com/charmbracelet/log"

	"callscreen/internal/audio"
	"callscreen/internal/config"
	"callscreen/internal/fraud"
	"callscreen/internal/pipeline"
	"callscreen/internal/storage"
	"callscreen/internal/stt"
)

// NewPipeline builds the pipeline and returns it with the selected provider name.
func NewPipeline(cfg *config.Config, logger *log.Logger) (*pipeline.Pipeline, string, error) {
	provider, err := stt.CreateProvider(cfg.STTOptions(), logger.WithPrefix("stt"))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create STT provider: %w", err)
	}

	transcripts, err := storage.NewTranscriptStore(cfg.TranscriptDir)
	if err != nil {
		return nil, "", err
	}

	normalizer := audio.NewNormalizer(audio.NewFFmpeg(cfg.FFmpegPath, logger), cfg.AudioDir, logger)
	screener := fraud.NewScreener(fraud.DefaultKeywords())

	return pipeline.New(cfg.UploadDir, normalizer, provider, transcripts, screener, logger), provider.Name(), nil
}
