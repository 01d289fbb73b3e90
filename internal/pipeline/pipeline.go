// Package pipeline runs one upload through normalization, transcription,
// transcript persistence and fraud screening.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"callscreen/internal/audio"
	"callscreen/internal/fraud"
	"callscreen/internal/storage"
	"callscreen/internal/stt"
)

// Upload is the caller's audio for one run.
type Upload struct {
	Filename string    // original name; its extension selects the decoder
	Data     io.Reader // raw file bytes
	Tier     stt.Tier
	// Namespace isolates the run's files in a subdirectory. Concurrent runs
	// with the same Filename must use distinct namespaces.
	Namespace string
}

// Result is the outcome of a completed run.
type Result struct {
	Filename       string   `json:"filename"`
	Transcript     string   `json:"transcript"`
	Keywords       []string `json:"detected_keywords"`
	FraudDetected  bool     `json:"fraud_detected"`
	Model          stt.Tier `json:"model"`
	TranscriptFile string   `json:"transcript_file"`
	TranscriptName string   `json:"-"`
	AudioPath      string   `json:"-"`
}

// Observer is told about every state change of a run.
type Observer func(from, to State)

// Pipeline wires the stages together. It is safe for concurrent use when
// concurrent runs use distinct namespaces.
type Pipeline struct {
	uploadDir   string
	normalizer  *audio.Normalizer
	provider    stt.Provider
	transcripts *storage.TranscriptStore
	screener    *fraud.Screener
	logger      *log.Logger
}

// New creates a pipeline. Uploads are copied into uploadDir before normalization.
func New(
	uploadDir string,
	normalizer *audio.Normalizer,
	provider stt.Provider,
	transcripts *storage.TranscriptStore,
	screener *fraud.Screener,
	logger *log.Logger,
) *Pipeline {
	return &Pipeline{
		uploadDir:   uploadDir,
		normalizer:  normalizer,
		provider:    provider,
		transcripts: transcripts,
		screener:    screener,
		logger:      logger.WithPrefix("pipeline"),
	}
}

// Screener returns the screener used for every run.
func (p *Pipeline) Screener() *fraud.Screener {
	return p.screener
}

type run struct {
	upload   Upload
	state    State
	observer Observer
	logger   *log.Logger
}

func (r *run) transition(to State) {
	if !canTransition(r.state, to) {
		// programming error: stages are sequenced by Run only
		panic(fmt.Sprintf("pipeline: invalid transition %s -> %s", r.state, to))
	}
	from := r.state
	r.state = to
	r.logger.Debug("state", "from", from, "to", to)
	if r.observer != nil {
		r.observer(from, to)
	}
}

func (r *run) fail(err error) error {
	stage := r.state
	r.transition(Failed)
	r.logger.Error("run failed", "stage", stage, "err", err)
	return &Error{Stage: stage, Filename: r.upload.Filename, Err: err}
}

// Run executes every stage of one upload. Any failure ends the run with an
// *Error and no partial result; nothing is retried.
func (p *Pipeline) Run(ctx context.Context, up Upload, observe Observer) (*Result, error) {
	startTime := time.Now()
	r := &run{
		upload:   up,
		state:    AwaitingUpload,
		observer: observe,
		logger:   p.logger.With("file", up.Filename, "tier", up.Tier),
	}

	if !up.Tier.Valid() {
		return nil, r.fail(fmt.Errorf("%w: %d", stt.ErrUnknownTier, int(up.Tier)))
	}

	source, _, err := storage.SaveUpload(filepath.Join(p.uploadDir, up.Namespace), filepath.Base(up.Filename), up.Data)
	if err != nil {
		return nil, r.fail(err)
	}
	audioName := filepath.Join(up.Namespace, audio.CanonicalName(up.Filename))
	transcriptFile := audio.BaseName(up.Filename) + ".txt"
	transcriptName := filepath.Join(up.Namespace, transcriptFile)

	r.transition(Normalizing)
	audioPath, err := p.normalizer.Normalize(ctx, source, audioName)
	if err != nil {
		return nil, r.fail(err)
	}
	if _, err := os.Stat(audioPath); err != nil {
		return nil, r.fail(fmt.Errorf("normalized file %s missing: %w", audioName, audio.ErrUnsupportedFormat))
	}
	absPath, err := filepath.Abs(audioPath)
	if err != nil {
		return nil, r.fail(err)
	}

	r.transition(Transcribing)
	res, err := p.provider.Transcribe(ctx, absPath, up.Tier)
	if err != nil {
		return nil, r.fail(err)
	}

	r.transition(Persisting)
	if err := p.transcripts.Write(transcriptName, res.Text); err != nil {
		return nil, r.fail(err)
	}
	// Screening only ever sees text that has made it to disk.
	text, err := p.transcripts.Read(transcriptName)
	if err != nil {
		return nil, r.fail(err)
	}

	r.transition(Screening)
	verdict := p.screener.Screen(text)

	r.transition(Complete)
	r.logger.Info("run complete",
		"provider", p.provider.Name(),
		"fraud", verdict.Flagged,
		"keywords", len(verdict.Matches),
		"duration", time.Since(startTime))

	return &Result{
		Filename:       up.Filename,
		Transcript:     text,
		Keywords:       verdict.Matches,
		FraudDetected:  verdict.Flagged,
		Model:          up.Tier,
		TranscriptFile: transcriptFile,
		TranscriptName: transcriptName,
		AudioPath:      audioPath,
	}, nil
}

// TranscriptPath resolves a result's transcript file on disk.
func (p *Pipeline) TranscriptPath(res *Result) (string, error) {
	return p.transcripts.Path(res.TranscriptName)
}
