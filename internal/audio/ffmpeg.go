package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// FFmpeg is a Codec backed by the ffmpeg binary.
type FFmpeg struct {
	path   string
	logger *log.Logger
}

// NewFFmpeg returns a codec running the ffmpeg binary at path ("ffmpeg" when empty).
func NewFFmpeg(path string, logger *log.Logger) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpeg{path: path, logger: logger.WithPrefix("ffmpeg")}
}

// Convert runs a single ffmpeg invocation for req.
func (f *FFmpeg) Convert(ctx context.Context, req ConvertRequest) error {
	args := ffmpegArgs(req)
	f.logger.Debug("running", "args", strings.Join(args, " "))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.path, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("ffmpeg: %w", err)
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, msg)
	}
	return nil
}

// ffmpegArgs builds the argument list for req:
//
//	ffmpeg -y -hide_banner -loglevel error -f <in> -i <src> -vn [-ar <rate>] [-ac <n>] [-b:a <rate>] -f <out> [-id3v2_version 4] -metadata k=v ... <dst>
func ffmpegArgs(req ConvertRequest) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	if req.InputFormat != "" {
		args = append(args, "-f", req.InputFormat)
	}
	args = append(args, "-i", req.Source, "-vn")
	if req.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(req.SampleRate))
	}
	if req.Channels > 0 {
		args = append(args, "-ac", strconv.Itoa(req.Channels))
	}
	if req.Bitrate != "" {
		args = append(args, "-b:a", req.Bitrate)
	}
	args = append(args, "-f", req.OutputFormat)
	if req.OutputFormat == "mp3" {
		args = append(args, "-id3v2_version", "4")
	}

	keys := make([]string, 0, len(req.Tags))
	for k := range req.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-metadata", k+"="+req.Tags[k])
	}

	return append(args, req.Destination)
}
