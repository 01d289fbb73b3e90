package audio

import (
	"path/filepath"
	"strings"
)

// CanonicalExt is the extension of every normalized file.
const CanonicalExt = "mp3"

// Normalized files are mono speech-quality mp3 at a fixed rate so every
// transcription engine sees the same stream parameters.
const (
	CanonicalSampleRate = 16000
	CanonicalChannels   = 1
	CanonicalBitrate    = "32k"
)

// inputFormats maps a supported upload extension to the demuxer name handed
// to the codec as the format hint. The hint comes from the extension only,
// the file content is never sniffed.
var inputFormats = map[string]string{
	"wav":  "wav",
	"mp3":  "mp3",
	"ogg":  "ogg",
	"wma":  "asf",
	"aac":  "aac",
	"flac": "flac",
	"flv":  "flv",
	"mp4":  "mp4",
}

// SupportedExtensions lists the accepted upload extensions in display order.
var SupportedExtensions = []string{"wav", "mp3", "ogg", "wma", "aac", "flac", "flv", "mp4"}

// Extension returns the lowercase extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// IsSupported reports whether name carries a supported audio extension.
func IsSupported(name string) bool {
	_, ok := inputFormats[Extension(name)]
	return ok
}

// FormatHint returns the decoder hint for name's extension.
func FormatHint(name string) (string, bool) {
	hint, ok := inputFormats[Extension(name)]
	return hint, ok
}

// BaseName strips directories and the last extension from name.
func BaseName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CanonicalName returns the normalized audio file name for an upload.
func CanonicalName(name string) string {
	return BaseName(name) + "." + CanonicalExt
}
