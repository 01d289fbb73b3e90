package stt

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// Options selects and configures a provider.
type Options struct {
	Provider      string // "whisper" (default), "openai" or "google"
	Whisper       WhisperConfig
	Google        GoogleConfig
	OpenAIKey     string
	OpenAIBaseURL string
}

// CreateProvider creates an STT provider from opts
func CreateProvider(opts Options, logger *log.Logger) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(opts.Provider))

	if name == "" {
		name = "whisper"
		logger.Info("STT provider not set, defaulting to whisper")
	}

	switch name {
	case "whisper":
		logger.Info("creating whisper STT provider", "python", opts.Whisper.Python, "model_dir", opts.Whisper.ModelDir)
		return NewWhisperProvider(opts.Whisper, logger), nil
	case "openai":
		if opts.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai STT provider")
		}
		logger.Info("creating openai STT provider")
		return NewOpenAIProvider(opts.OpenAIKey, opts.OpenAIBaseURL, logger), nil
	case "google":
		logger.Info("creating google STT provider", "project", opts.Google.ProjectID, "language", opts.Google.Language)
		return NewGoogleProvider(context.Background(), opts.Google, logger)
	default:
		return nil, fmt.Errorf("unsupported STT provider: %s. Supported: whisper, openai, google", name)
	}
}
