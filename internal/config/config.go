package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"callscreen/internal/stt"
)

type Config struct {
	Port          string
	UploadDir     string
	AudioDir      string
	TranscriptDir string
	MaxUploadMB   int64

	STTProvider     string
	DefaultTier     stt.Tier
	WhisperPython   string
	WhisperModelDir string
	WhisperDevice   string
	OpenAIKey       string
	OpenAIBaseURL   string

	GoogleProjectID   string
	GoogleCredentials string
	GoogleLanguage    string

	FFmpegPath  string
	DatabaseURL string
	LogLevel    string
}

var defaults = map[string]any{
	"port":                "8080",
	"upload_dir":          "uploads",
	"audio_dir":           "downloads",
	"transcript_dir":      "transcripts",
	"max_upload_mb":       25,
	"stt_provider":        "whisper",
	"default_model":       "base",
	"whisper_python":      "python3",
	"ffmpeg_path":         "ffmpeg",
	"log_level":           "info",
	"google_stt_language": "en-US",
}

// Load reads configuration from environment variables and an optional
// callscreen.yaml in the working directory. v may be nil; pass a viper
// instance to layer command-line flags on top.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetConfigName("callscreen")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	tier, err := stt.ParseTier(v.GetString("default_model"))
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_MODEL: %w", err)
	}

	cfg := &Config{
		Port:            v.GetString("port"),
		UploadDir:       v.GetString("upload_dir"),
		AudioDir:        v.GetString("audio_dir"),
		TranscriptDir:   v.GetString("transcript_dir"),
		MaxUploadMB:     v.GetInt64("max_upload_mb"),
		STTProvider:     strings.ToLower(v.GetString("stt_provider")),
		DefaultTier:     tier,
		WhisperPython:   v.GetString("whisper_python"),
		WhisperModelDir: v.GetString("whisper_model_dir"),
		WhisperDevice:   v.GetString("whisper_device"),
		OpenAIKey:       v.GetString("openai_api_key"),
		OpenAIBaseURL:   v.GetString("openai_base_url"),
		FFmpegPath:      v.GetString("ffmpeg_path"),
		DatabaseURL:     v.GetString("database_url"),
		LogLevel:        v.GetString("log_level"),
	}
	cfg.GoogleProjectID = v.GetString("google_project_id")
	cfg.GoogleCredentials = v.GetString("google_stt_credentials")
	cfg.GoogleLanguage = v.GetString("google_stt_language")

	// Validate required environment variables
	if cfg.STTProvider == "openai" && cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required when STT_PROVIDER=openai")
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}

	return cfg, nil
}

// STTOptions returns the provider options for stt.CreateProvider.
func (c *Config) STTOptions() stt.Options {
	return stt.Options{
		Provider: c.STTProvider,
		Whisper: stt.WhisperConfig{
			Python:   c.WhisperPython,
			ModelDir: c.WhisperModelDir,
			Device:   c.WhisperDevice,
		},
		Google: stt.GoogleConfig{
			ProjectID:   c.GoogleProjectID,
			Credentials: c.GoogleCredentials,
			Language:    c.GoogleLanguage,
		},
		OpenAIKey:     c.OpenAIKey,
		OpenAIBaseURL: c.OpenAIBaseURL,
	}
}
