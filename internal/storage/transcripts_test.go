package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTranscriptRoundTrip(t *testing.T) {
	s, err := NewTranscriptStore(filepath.Join(t.TempDir(), "transcripts"))
	if err != nil {
		t.Fatalf("NewTranscriptStore: %v", err)
	}

	texts := []string{
		"We offer a 100% placement guarantee and free classes",
		"",
		"line one\nline two\n",
		"ünïcödé ✓",
	}
	for _, text := range texts {
		if err := s.Write("call1.txt", text); err != nil {
			t.Fatalf("Write: %v", err)
		}
		got, err := s.Read("call1.txt")
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if got != text {
			t.Errorf("Read = %q, want %q", got, text)
		}
	}
}

func TestTranscriptOverwrite(t *testing.T) {
	s, _ := NewTranscriptStore(t.TempDir())
	if err := s.Write("a.txt", strings.Repeat("long ", 100)); err != nil {
		t.Fatal(err)
	}
	if err := s.Write("a.txt", "short"); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Read("a.txt"); got != "short" {
		t.Errorf("Read = %q, want short", got)
	}
}

func TestTranscriptNotFound(t *testing.T) {
	s, _ := NewTranscriptStore(t.TempDir())
	if _, err := s.Read("never.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestTranscriptNamespaced(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewTranscriptStore(dir)

	if err := s.Write("run-a/call.txt", "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Write("run-b/call.txt", "b"); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Read("run-a/call.txt"); got != "a" {
		t.Errorf("run-a = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "run-b", "call.txt")); err != nil {
		t.Errorf("namespaced file missing: %v", err)
	}
}

func TestTranscriptInvalidName(t *testing.T) {
	s, _ := NewTranscriptStore(t.TempDir())
	for _, name := range []string{"", ".", "..", "../escape.txt", "/abs.txt", "a/../../b.txt"} {
		if err := s.Write(name, "x"); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Write(%q) err = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestSaveUpload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads", "run")
	p, n, err := SaveUpload(dir, "call1.wav", strings.NewReader("RIFF...."))
	if err != nil {
		t.Fatalf("SaveUpload: %v", err)
	}
	if n != 8 || p != filepath.Join(dir, "call1.wav") {
		t.Errorf("SaveUpload = %q, %d", p, n)
	}
	if _, _, err := SaveUpload(dir, "../x.wav", strings.NewReader("")); err == nil {
		t.Errorf("path traversal accepted")
	}
}

func TestScreeningsRegistry(t *testing.T) {
	r := NewScreenings()
	r.Add("id1", "call1.wav", "base", 42)

	r.UpdateStatus("id1", "Transcribing")
	r.Update("id1", func(s *Screening) { s.Keywords = []string{"Refund"} })

	got, ok := r.Get("id1")
	if !ok {
		t.Fatal("Get: missing")
	}
	if got.Status != "Transcribing" || got.Filename != "call1.wav" || got.Size != 42 {
		t.Errorf("Get = %+v", got)
	}

	got.Keywords[0] = "mutated"
	again, _ := r.Get("id1")
	if again.Keywords[0] != "Refund" {
		t.Errorf("Get returned shared slice")
	}

	if _, ok := r.Get("missing"); ok {
		t.Errorf("Get(missing) ok")
	}
	r.UpdateStatus("missing", "x")
}
