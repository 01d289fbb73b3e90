package api

import (
	"github.com/charmbracelet/log"

	"callscreen/internal/pipeline"
	"callscreen/internal/repository"
	"callscreen/internal/storage"
	"callscreen/internal/stt"
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	pipeline    *pipeline.Pipeline
	screenings  *storage.Screenings
	repo        repository.ScreeningRepository // nil when running without a database
	provider    string
	defaultTier stt.Tier
	maxUpload   int64
	logger      *log.Logger
}

// Options configures a Server.
type Options struct {
	Provider    string   // STT provider name recorded with each run
	DefaultTier stt.Tier // used when an upload names no model
	MaxUploadMB int64
}

// NewServer creates the API server. repo may be nil.
func NewServer(p *pipeline.Pipeline, repo repository.ScreeningRepository, opts Options, logger *log.Logger) *Server {
	if opts.MaxUploadMB <= 0 {
		opts.MaxUploadMB = 25
	}
	logger = logger.WithPrefix("api")
	if repo != nil {
		logger.Info("screening repository initialized")
	} else {
		logger.Warn("screening repository is nil, history is kept in memory only")
	}
	return &Server{
		pipeline:    p,
		screenings:  storage.NewScreenings(),
		repo:        repo,
		provider:    opts.Provider,
		defaultTier: opts.DefaultTier,
		maxUpload:   opts.MaxUploadMB << 20,
		logger:      logger,
	}
}
