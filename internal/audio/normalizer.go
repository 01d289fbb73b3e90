package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

var (
	// ErrUnsupportedFormat is returned for uploads whose extension is not
	// one of SupportedExtensions.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrConversionFailed is returned when the codec rejects a file with a
	// supported extension.
	ErrConversionFailed = errors.New("audio conversion failed")
)

// DefaultTags is the metadata written into every normalized file.
var DefaultTags = map[string]string{"comment": "Converted using ffmpeg"}

// Normalizer converts uploads into the canonical container.
type Normalizer struct {
	codec  Codec
	outDir string
	tags   map[string]string
	logger *log.Logger
}

// NewNormalizer creates a normalizer writing into outDir.
func NewNormalizer(codec Codec, outDir string, logger *log.Logger) *Normalizer {
	return &Normalizer{
		codec:  codec,
		outDir: outDir,
		tags:   DefaultTags,
		logger: logger.WithPrefix("normalize"),
	}
}

// Dir returns the output directory.
func (n *Normalizer) Dir() string {
	return n.outDir
}

// Normalize decodes sourcePath using its extension as the format hint and
// writes the canonical container to targetName inside the output directory.
// The source file is left in place. It returns the path of the written file.
func (n *Normalizer) Normalize(ctx context.Context, sourcePath, targetName string) (string, error) {
	hint, ok := FormatHint(sourcePath)
	if !ok {
		n.logger.Warn("rejecting upload", "source", sourcePath, "ext", Extension(sourcePath))
		return "", fmt.Errorf("%s: %w", filepath.Base(sourcePath), ErrUnsupportedFormat)
	}

	dst := filepath.Join(n.outDir, targetName)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	n.logger.Info("converting", "source", sourcePath, "format", hint, "target", dst)
	err := n.codec.Convert(ctx, ConvertRequest{
		Source:       sourcePath,
		InputFormat:  hint,
		Destination:  dst,
		OutputFormat: CanonicalExt,
		SampleRate:   CanonicalSampleRate,
		Channels:     CanonicalChannels,
		Bitrate:      CanonicalBitrate,
		Tags:         n.tags,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}

	return dst, nil
}
