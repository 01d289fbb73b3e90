package stt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"callscreen/internal/logging"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "call1.mp3")
	if err := os.WriteFile(p, []byte("ID3 fake audio"), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestOpenAITranscribe(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotModel = r.FormValue("model")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": " Refund is available ", "language": "english"}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", srv.URL+"/v1", logging.Discard())
	res, err := p.Transcribe(context.Background(), writeAudio(t), Large)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if gotModel != "gpt-4o-transcribe" {
		t.Errorf("model = %q", gotModel)
	}
	if res.Text != " Refund is available " || res.Provider != "openai" {
		t.Errorf("Result = %+v", res)
	}
}

func TestOpenAIErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unknown model", http.StatusNotFound, ErrModelUnavailable},
		{"rate limited", http.StatusTooManyRequests, ErrModelUnavailable},
		{"bad audio", http.StatusBadRequest, ErrTranscriptionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error": {"message": "rejected", "type": "invalid_request_error", "code": "x"}}`))
			}))
			defer srv.Close()

			p := NewOpenAIProvider("sk-test", srv.URL+"/v1", logging.Discard())
			_, err := p.Transcribe(context.Background(), writeAudio(t), Base)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreateProvider(t *testing.T) {
	log := logging.Discard()

	p, err := CreateProvider(Options{}, log)
	if err != nil || p.Name() != "whisper" {
		t.Fatalf("default provider = %v, %v", p, err)
	}
	if _, err := CreateProvider(Options{Provider: "openai"}, log); err == nil {
		t.Errorf("openai without key accepted")
	}
	p, err = CreateProvider(Options{Provider: "OpenAI", OpenAIKey: "sk"}, log)
	if err != nil || p.Name() != "openai" {
		t.Fatalf("openai provider = %v, %v", p, err)
	}
	p, err = CreateProvider(Options{Provider: "google", Google: GoogleConfig{Credentials: testGoogleKey}}, log)
	if err != nil || p.Name() != "google" {
		t.Fatalf("google provider = %v, %v", p, err)
	}
	if _, err := CreateProvider(Options{Provider: "fpt"}, log); err == nil {
		t.Errorf("unknown provider accepted")
	}
}
