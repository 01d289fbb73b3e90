package stt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"callscreen/internal/audio"
)

const (
	googleEndpoint = "https://speech.googleapis.com"
	googleScope    = "https://www.googleapis.com/auth/cloud-platform"

	// MP3 input is only accepted by the v1p1beta1 surface.
	googleAPIVersion = "v1p1beta1"

	// Inline audio content is capped at 10 MB; at the normalized 32 kbit/s
	// that is roughly 40 minutes of speech.
	googleInlineLimit = 10 << 20
)

// googleModels maps tiers onto Speech-to-Text recognition models.
var googleModels = map[Tier]string{
	Tiny:   "command_and_search",
	Base:   "default",
	Small:  "latest_short",
	Medium: "phone_call",
	Large:  "latest_long",
}

// GoogleConfig configures the Google Cloud Speech-to-Text provider.
type GoogleConfig struct {
	ProjectID string // quota project, defaults to the credentials' project
	// Credentials is an API key, a path to a service account JSON file, or
	// the JSON itself. Empty means application default credentials.
	Credentials string
	Language    string // BCP-47 code, defaults to en-US
	Endpoint    string // overrides googleEndpoint

	PollInterval time.Duration // operation polling period, defaults to 2s
}

// GoogleProvider implements STT using Google Cloud Speech-to-Text REST API
type GoogleProvider struct {
	cfg        GoogleConfig
	apiKey     string
	httpClient *http.Client
	models     *resolutionCache[string]
	logger     *log.Logger
}

// NewGoogleProvider creates a new Google STT provider, resolving credentials
// up front so a bad key fails at startup rather than on the first call.
func NewGoogleProvider(ctx context.Context, cfg GoogleConfig, logger *log.Logger) (*GoogleProvider, error) {
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = googleEndpoint
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}

	p := &GoogleProvider{
		cfg:    cfg,
		logger: logger.WithPrefix("google"),
	}
	p.models = newResolutionCache(p.resolve)

	key := strings.TrimSpace(cfg.Credentials)
	if len(key) == 39 && strings.HasPrefix(key, "AIza") {
		p.logger.Info("using API key authentication")
		p.apiKey = key
		p.httpClient = &http.Client{Timeout: 10 * time.Minute}
		return p, nil
	}

	var creds *google.Credentials
	var err error
	switch {
	case key == "":
		creds, err = google.FindDefaultCredentials(ctx, googleScope)
		if err != nil {
			return nil, fmt.Errorf("failed to find default credentials: %w. Please set GOOGLE_STT_CREDENTIALS", err)
		}
	default:
		jsonData := []byte(key)
		if !strings.HasPrefix(key, "{") {
			p.logger.Info("reading key file", "path", key)
			if jsonData, err = os.ReadFile(key); err != nil {
				return nil, fmt.Errorf("failed to read key file '%s': %w", key, err)
			}
		}
		creds, err = google.CredentialsFromJSON(ctx, jsonData, googleScope)
		if err != nil {
			return nil, fmt.Errorf("failed to create credentials from JSON: %w", err)
		}
	}

	if p.cfg.ProjectID == "" {
		p.cfg.ProjectID = creds.ProjectID
	}
	client := oauth2.NewClient(ctx, creds.TokenSource)
	client.Timeout = 10 * time.Minute
	p.httpClient = client
	return p, nil
}

// Name returns the provider name
func (p *GoogleProvider) Name() string {
	return "google"
}

func (p *GoogleProvider) resolve(ctx context.Context, tier Tier) (string, error) {
	model, ok := googleModels[tier]
	if !ok {
		return "", errors.Wrapf(ErrModelUnavailable, "%v", ErrUnknownTier)
	}
	return model, nil
}

type googleRequest struct {
	Config googleRecognitionConfig `json:"config"`
	Audio  googleAudio             `json:"audio"`
}

type googleRecognitionConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz,omitempty"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
	Model                      string `json:"model,omitempty"`
}

type googleAudio struct {
	Content string `json:"content"` // Base64 encoded
}

type googleResults struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
		LanguageCode string `json:"languageCode"`
	} `json:"results"`
}

// googleOperation is the long-running operation returned by
// longrunningrecognize and by operations.get.
type googleOperation struct {
	Name     string         `json:"name"`
	Done     bool           `json:"done"`
	Response *googleResults `json:"response,omitempty"`
	Error    *googleStatus  `json:"error,omitempty"`
}

// googleStatus is a google.rpc.Status; Code is a gRPC code.
type googleStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// googleErrorBody is the JSON error envelope of a non-2xx HTTP response;
// Code is the HTTP status.
type googleErrorBody struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Transcribe submits the whole file at audioPath to the tier's recognition
// model as a long-running operation and polls it until it completes.
// Audio with no recognisable speech yields an empty transcript.
func (p *GoogleProvider) Transcribe(ctx context.Context, audioPath string, tier Tier) (*Result, error) {
	startTime := time.Now()

	model, err := p.models.get(ctx, tier)
	if err != nil {
		return nil, err
	}

	audioBytes, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, errors.Wrapf(ErrTranscriptionFailed, "read %s: %v", audioPath, err)
	}
	if len(audioBytes) > googleInlineLimit {
		return nil, errors.Wrapf(ErrTranscriptionFailed, "google %s: %d bytes exceeds the %d byte inline audio limit",
			model, len(audioBytes), googleInlineLimit)
	}

	encoding, sampleRate := googleAudioConfig(filepath.Ext(audioPath))
	reqJSON, err := json.Marshal(googleRequest{
		Config: googleRecognitionConfig{
			Encoding:                   encoding,
			SampleRateHertz:            sampleRate,
			LanguageCode:               p.cfg.Language,
			EnableAutomaticPunctuation: true,
			Model:                      model,
		},
		Audio: googleAudio{Content: base64.StdEncoding.EncodeToString(audioBytes)},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}

	p.logger.Info("transcribing", "file", audioPath, "size", len(audioBytes), "tier", tier, "model", model)
	var op googleOperation
	if err := p.call(ctx, http.MethodPost, p.methodURL("speech:longrunningrecognize"), reqJSON, model, &op); err != nil {
		return nil, err
	}

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()
	for !op.Done {
		if op.Name == "" {
			return nil, errors.Wrapf(ErrTranscriptionFailed, "google %s: operation has no name", model)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
		name := op.Name
		p.logger.Debug("polling operation", "name", name)
		if err := p.call(ctx, http.MethodGet, p.methodURL("operations/"+url.PathEscape(name)), nil, model, &op); err != nil {
			return nil, err
		}
	}
	if op.Error != nil {
		return nil, classifyOperationError(model, op.Error)
	}

	var parts []string
	var language string
	if op.Response != nil {
		for _, r := range op.Response.Results {
			if len(r.Alternatives) == 0 {
				continue
			}
			if t := strings.TrimSpace(r.Alternatives[0].Transcript); t != "" {
				parts = append(parts, t)
			}
			if language == "" {
				language = r.LanguageCode
			}
		}
	}
	text := strings.Join(parts, " ")

	p.logger.Info("transcription done", "model", model, "segments", len(parts), "length", len(text), "duration", time.Since(startTime))
	return &Result{
		Text:     text,
		Language: language,
		Provider: p.Name(),
		Model:    model,
	}, nil
}

// methodURL builds a method URL. The bearer token of a service account
// already names the project, so only API-key mode adds a query parameter.
func (p *GoogleProvider) methodURL(method string) string {
	u := p.cfg.Endpoint + "/" + googleAPIVersion + "/" + method
	if p.apiKey != "" {
		u += "?key=" + url.QueryEscape(p.apiKey)
	}
	return u
}

// call performs one API request and decodes a 200 response into out.
func (p *GoogleProvider) call(ctx context.Context, method, u string, body []byte, model string, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.apiKey == "" && p.cfg.ProjectID != "" {
		// billing project for user credentials from ADC
		req.Header.Set("X-Goog-User-Project", p.cfg.ProjectID)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrapf(ErrModelUnavailable, "google %s: %v", model, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(ErrTranscriptionFailed, "google %s: read response: %v", model, err)
	}
	if resp.StatusCode != http.StatusOK {
		var eb googleErrorBody
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(data, &eb) == nil && eb.Error != nil && eb.Error.Message != "" {
			msg = eb.Error.Message
		}
		return classifyGoogleError(model, resp.StatusCode, msg)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(ErrTranscriptionFailed, "google %s: parse response: %v", model, err)
	}
	return nil
}

// classifyGoogleError treats auth, quota and availability errors as the
// model being unavailable; everything else is a failure on this file.
func classifyGoogleError(model string, status int, msg string) error {
	switch status {
	case http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return errors.Wrapf(ErrModelUnavailable, "google %s: %s", model, msg)
	}
	return errors.Wrapf(ErrTranscriptionFailed, "google %s: %s", model, msg)
}

// gRPC codes reported by a failed operation.
const (
	grpcNotFound          = 5
	grpcPermissionDenied  = 7
	grpcResourceExhausted = 8
	grpcUnavailable       = 14
	grpcUnauthenticated   = 16
)

func classifyOperationError(model string, st *googleStatus) error {
	switch st.Code {
	case grpcNotFound, grpcPermissionDenied, grpcResourceExhausted, grpcUnavailable, grpcUnauthenticated:
		return errors.Wrapf(ErrModelUnavailable, "google %s: %s", model, st.Message)
	}
	return errors.Wrapf(ErrTranscriptionFailed, "google %s: %s", model, st.Message)
}

// googleAudioConfig determines encoding and sample rate based on file extension
func googleAudioConfig(fileExt string) (string, int) {
	switch strings.ToLower(fileExt) {
	case ".mp3":
		return "MP3", audio.CanonicalSampleRate
	case ".wav":
		return "LINEAR16", 0
	case ".ogg":
		return "OGG_OPUS", 48000
	case ".flac":
		return "FLAC", 0
	default:
		return "ENCODING_UNSPECIFIED", 0
	}
}
