package stt

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// openAIModels maps tiers onto hosted transcription models of increasing accuracy.
var openAIModels = map[Tier]string{
	Tiny:   openai.Whisper1,
	Base:   openai.Whisper1,
	Small:  openai.Whisper1,
	Medium: "gpt-4o-mini-transcribe",
	Large:  "gpt-4o-transcribe",
}

// OpenAIProvider implements STT using the OpenAI audio transcription API
type OpenAIProvider struct {
	client *openai.Client
	models *resolutionCache[string]
	logger *log.Logger
}

// NewOpenAIProvider creates a new OpenAI STT provider. baseURL may be empty.
func NewOpenAIProvider(apiKey, baseURL string, logger *log.Logger) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: 60 * time.Minute}

	p := &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		logger: logger.WithPrefix("openai"),
	}
	p.models = newResolutionCache(p.resolve)
	return p
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) resolve(ctx context.Context, tier Tier) (string, error) {
	model, ok := openAIModels[tier]
	if !ok {
		return "", errors.Wrapf(ErrModelUnavailable, "%v", ErrUnknownTier)
	}
	return model, nil
}

// Transcribe uploads the file at audioPath to the tier's hosted model.
func (p *OpenAIProvider) Transcribe(ctx context.Context, audioPath string, tier Tier) (*Result, error) {
	startTime := time.Now()

	model, err := p.models.get(ctx, tier)
	if err != nil {
		return nil, err
	}

	p.logger.Info("transcribing", "file", audioPath, "tier", tier, "model", model)
	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    model,
		FilePath: audioPath,
	})
	if err != nil {
		return nil, classifyOpenAIError(model, err)
	}

	p.logger.Info("transcription done", "model", model, "length", len(resp.Text), "duration", time.Since(startTime))

	return &Result{
		Text:     resp.Text,
		Language: resp.Language,
		Provider: p.Name(),
		Model:    model,
	}, nil
}

// classifyOpenAIError separates model availability problems (unknown model,
// auth, quota, server overload) from failures on the file itself.
func classifyOpenAIError(model string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden,
			http.StatusTooManyRequests, http.StatusServiceUnavailable:
			return errors.Wrapf(ErrModelUnavailable, "openai %s: %s", model, apiErr.Message)
		}
		return errors.Wrapf(ErrTranscriptionFailed, "openai %s: %s", model, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode >= 500 {
		return errors.Wrapf(ErrModelUnavailable, "openai %s: %v", model, err)
	}
	return errors.Wrapf(ErrTranscriptionFailed, "openai %s: %v", model, err)
}
