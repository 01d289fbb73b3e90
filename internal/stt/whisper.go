package stt

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

//go:embed assets/whisper_transcribe.py
var whisperScript []byte

// Exit codes of the helper script.
const (
	exitModelUnavailable    = 3
	exitTranscriptionFailed = 4
)

// weightFiles are the checkpoint names openai-whisper downloads per tier.
var weightFiles = map[Tier]string{
	Tiny:   "tiny.pt",
	Base:   "base.pt",
	Small:  "small.pt",
	Medium: "medium.pt",
	Large:  "large-v3.pt",
}

// WhisperConfig configures the local whisper provider.
type WhisperConfig struct {
	Python   string // interpreter, "python3" when empty
	ModelDir string // weights directory; when set each tier's weights must exist in it
	Device   string // cpu, cuda or empty for the library default
}

// WhisperProvider runs openai-whisper locally through an embedded helper script.
type WhisperProvider struct {
	cfg    WhisperConfig
	models *resolutionCache[string]
	logger *log.Logger
}

// NewWhisperProvider creates a local whisper provider.
func NewWhisperProvider(cfg WhisperConfig, logger *log.Logger) *WhisperProvider {
	if cfg.Python == "" {
		cfg.Python = "python3"
	}
	p := &WhisperProvider{cfg: cfg, logger: logger.WithPrefix("whisper")}
	p.models = newResolutionCache(p.resolve)
	return p
}

// Name returns the provider name
func (p *WhisperProvider) Name() string {
	return "whisper"
}

// resolve checks that the tier's weights are present and returns the model
// name understood by whisper.load_model.
func (p *WhisperProvider) resolve(ctx context.Context, tier Tier) (string, error) {
	if !tier.Valid() {
		return "", errors.Wrapf(ErrModelUnavailable, "%v", ErrUnknownTier)
	}
	if p.cfg.ModelDir == "" {
		return tier.String(), nil
	}

	weights := filepath.Join(p.cfg.ModelDir, weightFiles[tier])
	if _, err := os.Stat(weights); err != nil {
		return "", errors.Wrapf(ErrModelUnavailable, "%s weights: %v", tier, err)
	}
	p.logger.Debug("resolved weights", "tier", tier, "path", weights)
	return tier.String(), nil
}

// Transcribe runs the helper script for audioPath with the tier's model.
func (p *WhisperProvider) Transcribe(ctx context.Context, audioPath string, tier Tier) (*Result, error) {
	startTime := time.Now()

	model, err := p.models.get(ctx, tier)
	if err != nil {
		return nil, err
	}

	script, err := p.writeScript()
	if err != nil {
		return nil, errors.Wrap(ErrModelUnavailable, err.Error())
	}
	defer os.Remove(script)

	args := []string{script, "--audio", audioPath, "--model", model}
	if p.cfg.ModelDir != "" {
		args = append(args, "--model-dir", p.cfg.ModelDir)
	}
	if p.cfg.Device != "" {
		args = append(args, "--device", p.cfg.Device)
	}

	p.logger.Info("transcribing", "file", audioPath, "model", model)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.cfg.Python, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == exitModelUnavailable {
			return nil, errors.Wrapf(ErrModelUnavailable, "whisper %s: %s", model, msg)
		}
		if exitErr == nil {
			// the interpreter itself could not be started
			return nil, errors.Wrapf(ErrModelUnavailable, "run %s: %v", p.cfg.Python, err)
		}
		return nil, errors.Wrapf(ErrTranscriptionFailed, "whisper %s: %s", model, msg)
	}

	var out struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, errors.Wrapf(ErrTranscriptionFailed, "parse helper output: %v", err)
	}

	p.logger.Info("transcription done", "model", model, "length", len(out.Text), "duration", time.Since(startTime))

	return &Result{
		Text:     out.Text,
		Language: out.Language,
		Provider: p.Name(),
		Model:    model,
	}, nil
}

func (p *WhisperProvider) writeScript() (string, error) {
	f, err := os.CreateTemp("", "callscreen_whisper_*.py")
	if err != nil {
		return "", errors.Wrap(err, "create helper script")
	}
	defer f.Close()
	if _, err := f.Write(whisperScript); err != nil {
		os.Remove(f.Name())
		return "", errors.Wrap(err, "write helper script")
	}
	return f.Name(), nil
}
