package api

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"callscreen/internal/audio"
	"callscreen/internal/pipeline"
	"callscreen/internal/repository"
	"callscreen/internal/storage"
	"callscreen/internal/stt"
	"callscreen/internal/utils"
)

func (s *Server) RegisterRoutes(r *gin.Engine) {
	// Health check
	r.GET("/health", healthCheck)

	// API v1
	v1 := r.Group("/api/v1")
	{
		v1.GET("/models", s.listModels)
		v1.GET("/keywords", s.listKeywords)
		v1.POST("/screenings", s.createScreening)
		v1.GET("/screenings/:id", s.getScreening)
		v1.GET("/screenings/:id/transcript", s.downloadTranscript)
		v1.GET("/screenings/:id/audio", s.playAudio)
	}
}

// healthCheck returns server health status
func healthCheck(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":  "ok",
		"service": "callscreen",
	})
}

// listModels returns the model tiers from fastest to most accurate
func (s *Server) listModels(c *gin.Context) {
	tiers := stt.Tiers()
	names := make([]string, len(tiers))
	for i, t := range tiers {
		names[i] = t.String()
	}
	utils.Success(c, gin.H{
		"models":  names,
		"default": s.defaultTier.String(),
	})
}

// listKeywords returns the screening vocabulary in match order
func (s *Server) listKeywords(c *gin.Context) {
	utils.Success(c, gin.H{
		"keywords": s.pipeline.Screener().Keywords(),
	})
}

// uploadedFile finds the audio part under any of the accepted field names.
func uploadedFile(c *gin.Context) (*multipart.FileHeader, error) {
	var err error
	for _, field := range []string{"audio_file", "audio", "file"} {
		var file *multipart.FileHeader
		if file, err = c.FormFile(field); err == nil {
			return file, nil
		}
	}
	return nil, err
}

// createScreening uploads an audio file and runs it through the pipeline
func (s *Server) createScreening(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload+1<<20)

	file, err := uploadedFile(c)
	if err != nil {
		s.logger.Warn("upload without audio file", "err", err)
		utils.Error(c, http.StatusBadRequest, "audio_file is required. Error: "+err.Error())
		return
	}

	if !audio.IsSupported(file.Filename) {
		utils.Failure(c, http.StatusBadRequest, fmt.Sprintf("%s: %v. Supported: %s",
			file.Filename, audio.ErrUnsupportedFormat, strings.Join(audio.SupportedExtensions, ", ")), gin.H{
			"filename": file.Filename,
			"stage":    pipeline.Normalizing.String(),
		})
		return
	}

	if file.Size > s.maxUpload {
		utils.Error(c, http.StatusBadRequest, fmt.Sprintf("file size exceeds %dMB limit", s.maxUpload>>20))
		return
	}

	tier := s.defaultTier
	if name := c.PostForm("model"); name != "" {
		if tier, err = stt.ParseTier(name); err != nil {
			utils.Error(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	src, err := file.Open()
	if err != nil {
		s.logger.Error("failed to open upload", "err", err)
		utils.Error(c, http.StatusInternalServerError, "failed to read audio file")
		return
	}
	defer src.Close()

	id := uuid.New()
	s.screenings.Add(id.String(), file.Filename, tier.String(), file.Size)
	s.syncCreate(id, file.Filename, tier, file.Size)
	s.logger.Info("screening started", "id", id, "file", file.Filename, "size", file.Size, "model", tier)

	startTime := time.Now()
	res, runErr := s.pipeline.Run(c.Request.Context(), pipeline.Upload{
		Filename:  file.Filename,
		Data:      src,
		Tier:      tier,
		Namespace: id.String(),
	}, func(from, to pipeline.State) {
		s.screenings.UpdateStatus(id.String(), to.String())
	})
	s.syncResult(id, res, runErr, time.Since(startTime))

	if runErr != nil {
		stage := ""
		var perr *pipeline.Error
		if errors.As(runErr, &perr) {
			stage = perr.Stage.String()
		}
		s.screenings.Update(id.String(), func(rec *storage.Screening) {
			rec.ErrorStage = stage
			rec.Error = runErr.Error()
		})
		s.logger.Error("screening failed", "id", id, "stage", stage, "err", runErr)
		utils.Failure(c, statusFor(runErr), runErr.Error(), gin.H{
			"id":       id.String(),
			"filename": file.Filename,
			"stage":    stage,
		})
		return
	}

	transcriptPath, err := s.pipeline.TranscriptPath(res)
	if err != nil {
		s.logger.Warn("transcript path unavailable", "id", id, "name", res.TranscriptName, "err", err)
	}
	s.screenings.Update(id.String(), func(rec *storage.Screening) {
		rec.Transcript = res.Transcript
		rec.TranscriptFile = res.TranscriptFile
		rec.TranscriptPath = transcriptPath
		rec.AudioPath = res.AudioPath
		rec.Keywords = res.Keywords
		rec.FraudDetected = res.FraudDetected
	})

	rec, _ := s.screenings.Get(id.String())
	utils.Success(c, screeningResponse(rec))
}

// statusFor maps a pipeline failure to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, audio.ErrUnsupportedFormat),
		errors.Is(err, audio.ErrConversionFailed),
		errors.Is(err, stt.ErrUnknownTier):
		return http.StatusBadRequest
	case errors.Is(err, stt.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, stt.ErrTranscriptionFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func screeningResponse(rec *storage.Screening) gin.H {
	keywords := rec.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	response := gin.H{
		"id":                rec.ID,
		"filename":          rec.Filename,
		"model":             rec.Model,
		"status":            rec.Status,
		"created_at":        rec.CreatedAt,
		"detected_keywords": keywords,
		"fraud_detected":    rec.FraudDetected,
	}
	if rec.Status == pipeline.Complete.String() {
		response["transcript"] = rec.Transcript
		response["transcript_file"] = rec.TranscriptFile
	}
	if rec.Error != "" {
		response["error_stage"] = rec.ErrorStage
		response["error_message"] = rec.Error
	}
	return response
}

// findScreening looks in memory first, then in the database.
func (s *Server) findScreening(c *gin.Context) (*storage.Screening, bool) {
	idStr := c.Param("id")
	if rec, ok := s.screenings.Get(idStr); ok {
		return rec, true
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid id format")
		return nil, false
	}
	if s.repo == nil {
		utils.Error(c, http.StatusNotFound, "screening not found")
		return nil, false
	}

	stored, err := s.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		utils.Error(c, http.StatusNotFound, "screening not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error("failed to load screening", "id", id, "err", err)
		utils.Error(c, http.StatusInternalServerError, "failed to retrieve screening")
		return nil, false
	}

	rec := &storage.Screening{
		ID:        stored.ID.String(),
		Filename:  stored.Filename,
		Model:     stored.ModelTier,
		Status:    stored.Status,
		CreatedAt: stored.CreatedAt.Format(time.RFC3339),
		Keywords:  stored.Keywords,
	}
	if stored.AudioSizeBytes != nil {
		rec.Size = *stored.AudioSizeBytes
	}
	if stored.Transcript != nil {
		rec.Transcript = *stored.Transcript
		rec.TranscriptFile = audio.BaseName(stored.Filename) + ".txt"
	}
	if stored.FraudDetected != nil {
		rec.FraudDetected = *stored.FraudDetected
	}
	if stored.ErrorStage != nil {
		rec.ErrorStage = *stored.ErrorStage
	}
	if stored.ErrorMessage != nil {
		rec.Error = *stored.ErrorMessage
	}
	return rec, true
}

// getScreening handles GET /api/v1/screenings/:id
func (s *Server) getScreening(c *gin.Context) {
	rec, ok := s.findScreening(c)
	if !ok {
		return
	}
	utils.Success(c, screeningResponse(rec))
}

// downloadTranscript handles GET /api/v1/screenings/:id/transcript
func (s *Server) downloadTranscript(c *gin.Context) {
	rec, ok := s.findScreening(c)
	if !ok {
		return
	}
	if rec.Status != pipeline.Complete.String() {
		utils.Error(c, http.StatusConflict, "transcript not available, screening status: "+rec.Status)
		return
	}

	// runs of this process serve the persisted file, database records carry the text
	body := []byte(rec.Transcript)
	if rec.TranscriptPath != "" {
		data, err := os.ReadFile(rec.TranscriptPath)
		if err != nil {
			s.logger.Error("failed to read transcript", "id", rec.ID, "path", rec.TranscriptPath, "err", err)
			utils.Error(c, http.StatusInternalServerError, "failed to read transcript")
			return
		}
		body = data
	}

	c.Header("Content-Disposition", contentDisposition(rec.TranscriptFile))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", body)
}

// contentDisposition formats an RFC 6266 attachment header; non-ASCII names
// use the RFC 2231 filename* form.
func contentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

// playAudio handles GET /api/v1/screenings/:id/audio
func (s *Server) playAudio(c *gin.Context) {
	rec, ok := s.findScreening(c)
	if !ok {
		return
	}
	if rec.AudioPath == "" {
		utils.Error(c, http.StatusNotFound, "normalized audio not available")
		return
	}

	c.Header("Content-Type", "audio/mpeg")
	c.File(rec.AudioPath)
}
