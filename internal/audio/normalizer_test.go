package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"callscreen/internal/logging"
)

type recordingCodec struct {
	requests []ConvertRequest
	err      error
}

func (c *recordingCodec) Convert(ctx context.Context, req ConvertRequest) error {
	c.requests = append(c.requests, req)
	if c.err != nil {
		return c.err
	}
	return os.WriteFile(req.Destination, []byte("ID3"), 0644)
}

func writeSource(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("audio"), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return p
}

func TestNormalizeSupportedExtensions(t *testing.T) {
	wantHints := map[string]string{
		"wav": "wav", "mp3": "mp3", "ogg": "ogg", "wma": "asf",
		"aac": "aac", "flac": "flac", "flv": "flv", "mp4": "mp4",
	}

	for _, ext := range SupportedExtensions {
		t.Run(ext, func(t *testing.T) {
			srcDir, outDir := t.TempDir(), t.TempDir()
			codec := &recordingCodec{}
			n := NewNormalizer(codec, outDir, logging.Discard())

			src := writeSource(t, srcDir, "call."+ext)
			out, err := n.Normalize(context.Background(), src, "call.mp3")
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if out != filepath.Join(outDir, "call.mp3") {
				t.Errorf("output = %q", out)
			}
			if _, err := os.Stat(out); err != nil {
				t.Errorf("output missing: %v", err)
			}
			if _, err := os.Stat(src); err != nil {
				t.Errorf("source removed: %v", err)
			}

			if len(codec.requests) != 1 {
				t.Fatalf("codec calls = %d, want 1", len(codec.requests))
			}
			req := codec.requests[0]
			if req.InputFormat != wantHints[ext] {
				t.Errorf("InputFormat = %q, want %q", req.InputFormat, wantHints[ext])
			}
			if req.OutputFormat != "mp3" {
				t.Errorf("OutputFormat = %q", req.OutputFormat)
			}
			if req.SampleRate != 16000 || req.Channels != 1 || req.Bitrate != "32k" {
				t.Errorf("stream params = %d Hz, %d ch, %s", req.SampleRate, req.Channels, req.Bitrate)
			}
			if !reflect.DeepEqual(req.Tags, DefaultTags) {
				t.Errorf("Tags = %v", req.Tags)
			}
		})
	}
}

func TestNormalizeUppercaseExtension(t *testing.T) {
	codec := &recordingCodec{}
	n := NewNormalizer(codec, t.TempDir(), logging.Discard())

	src := writeSource(t, t.TempDir(), "CALL.FLAC")
	if _, err := n.Normalize(context.Background(), src, "CALL.mp3"); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := codec.requests[0].InputFormat; got != "flac" {
		t.Errorf("InputFormat = %q, want flac", got)
	}
}

func TestNormalizeUnsupportedExtension(t *testing.T) {
	outDir := t.TempDir()
	codec := &recordingCodec{}
	n := NewNormalizer(codec, outDir, logging.Discard())

	src := writeSource(t, t.TempDir(), "call3.mid")
	out, err := n.Normalize(context.Background(), src, "call3.mp3")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
	if out != "" {
		t.Errorf("output = %q, want empty", out)
	}
	if len(codec.requests) != 0 {
		t.Errorf("codec called for unsupported format")
	}
	if _, err := os.Stat(filepath.Join(outDir, "call3.mp3")); !os.IsNotExist(err) {
		t.Errorf("unexpected output file, stat err = %v", err)
	}
}

func TestNormalizeCodecFailure(t *testing.T) {
	codec := &recordingCodec{err: errors.New("invalid data found when processing input")}
	n := NewNormalizer(codec, t.TempDir(), logging.Discard())

	src := writeSource(t, t.TempDir(), "broken.wav")
	_, err := n.Normalize(context.Background(), src, "broken.mp3")
	if !errors.Is(err, ErrConversionFailed) {
		t.Fatalf("err = %v, want ErrConversionFailed", err)
	}
}

func TestNames(t *testing.T) {
	tests := []struct {
		in        string
		base      string
		canonical string
		supported bool
	}{
		{"call1.wav", "call1", "call1.mp3", true},
		{"Call2.FLAC", "Call2", "Call2.mp3", true},
		{"dir/call.v2.ogg", "call.v2", "call.v2.mp3", true},
		{"call3.mid", "call3", "call3.mp3", false},
		{"noext", "noext", "noext.mp3", false},
	}
	for _, tt := range tests {
		if got := BaseName(tt.in); got != tt.base {
			t.Errorf("BaseName(%q) = %q, want %q", tt.in, got, tt.base)
		}
		if got := CanonicalName(tt.in); got != tt.canonical {
			t.Errorf("CanonicalName(%q) = %q, want %q", tt.in, got, tt.canonical)
		}
		if got := IsSupported(tt.in); got != tt.supported {
			t.Errorf("IsSupported(%q) = %v, want %v", tt.in, got, tt.supported)
		}
	}
}

func TestFFmpegArgs(t *testing.T) {
	got := ffmpegArgs(ConvertRequest{
		Source:       "in.wma",
		InputFormat:  "asf",
		Destination:  "out.mp3",
		OutputFormat: "mp3",
		SampleRate:   16000,
		Channels:     1,
		Bitrate:      "32k",
		Tags:         map[string]string{"title": "x", "comment": "Converted using ffmpeg"},
	})
	want := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "asf", "-i", "in.wma", "-vn", "-ar", "16000", "-ac", "1", "-b:a", "32k",
		"-f", "mp3", "-id3v2_version", "4",
		"-metadata", "comment=Converted using ffmpeg",
		"-metadata", "title=x",
		"out.mp3",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ffmpegArgs =\n%v\nwant\n%v", got, want)
	}
}
