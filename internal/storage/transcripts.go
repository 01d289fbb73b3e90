package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound is returned by Read for a name that was never written.
	ErrNotFound = errors.New("transcript not found")

	// ErrInvalidName is returned for names that are empty or leave the store directory.
	ErrInvalidName = errors.New("invalid transcript name")
)

// TranscriptStore keeps one plain-text file per derived transcript name.
type TranscriptStore struct {
	dir string
}

// NewTranscriptStore creates the store directory if needed.
func NewTranscriptStore(dir string) (*TranscriptStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create transcripts directory: %w", err)
	}
	return &TranscriptStore{dir: dir}, nil
}

// Dir returns the store directory.
func (s *TranscriptStore) Dir() string {
	return s.dir
}

// Path returns the file backing name.
func (s *TranscriptStore) Path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if name == "" || clean == "." || filepath.IsAbs(clean) ||
		clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, clean), nil
}

// Write creates or replaces the transcript and syncs it to disk before
// returning, so a following Read always observes it.
func (s *TranscriptStore) Write(name, text string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("failed to create transcript directory: %w", err)
	}

	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("failed to create transcript: %w", err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync transcript: %w", err)
	}
	return f.Close()
}

// Read returns the stored transcript.
func (s *TranscriptStore) Read(name string) (string, error) {
	p, err := s.Path(name)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}
	return string(b), nil
}
