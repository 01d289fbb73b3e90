package storage

import (
	"sync"
	"time"
)

// Screening is the in-memory record of one run started by the API.
type Screening struct {
	ID             string
	Filename       string
	Model          string
	Status         string // pipeline state name
	Size           int64
	CreatedAt      string
	Transcript     string
	TranscriptFile string
	TranscriptPath string
	AudioPath      string
	Keywords       []string
	FraudDetected  bool
	ErrorStage     string
	Error          string
}

// Screenings is a concurrency-safe registry of runs keyed by ID.
type Screenings struct {
	mu    sync.Mutex
	items map[string]*Screening
}

// NewScreenings creates an empty registry.
func NewScreenings() *Screenings {
	return &Screenings{items: make(map[string]*Screening)}
}

// Add registers a new run.
func (s *Screenings) Add(id, filename, model string, size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = &Screening{
		ID:        id,
		Filename:  filename,
		Model:     model,
		Status:    "AwaitingUpload",
		Size:      size,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
}

// Get returns a copy of the run.
func (s *Screenings) Get(id string) (*Screening, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[id]
	if !ok {
		return nil, false
	}
	// Return a copy to avoid race conditions
	recCopy := *rec
	recCopy.Keywords = append([]string(nil), rec.Keywords...)
	return &recCopy, true
}

// Update applies fn to the stored run under the registry lock.
func (s *Screenings) Update(id string, fn func(*Screening)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.items[id]; ok {
		fn(rec)
	}
}

// UpdateStatus updates the status of a run
func (s *Screenings) UpdateStatus(id, status string) {
	s.Update(id, func(rec *Screening) { rec.Status = status })
}
