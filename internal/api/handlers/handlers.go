// Package handlers implements the HTTP endpoints of the autoledger
// service.
package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/caassistant/autoledger/internal/api/middleware"
	"github.com/caassistant/autoledger/internal/jobs"
	"github.com/caassistant/autoledger/internal/logger"
	"github.com/caassistant/autoledger/internal/pipeline"
)

// maxUploadBytes caps statement uploads. Statements are a handful of
// pages; anything bigger is almost certainly the wrong file.
const maxUploadBytes = 25 << 20

// StatementsHandler handles statement processing endpoints.
type StatementsHandler struct {
	service   *pipeline.Service
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewStatementsHandler creates a new statements handler.
func NewStatementsHandler(service *pipeline.Service, publisher jobs.Publisher, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{
		service:   service,
		publisher: publisher,
		log:       log,
	}
}

// Process handles POST /api/autoledger/process. It runs the pipeline
// synchronously on the uploaded PDF and returns the full result.
func (h *StatementsHandler) Process(w http.ResponseWriter, r *http.Request) {
	doc, _, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	ctx := logger.WithContext(r.Context(), h.log)

	result, err := h.service.Process(ctx, doc)
	if err != nil {
		status, kind, message := classifyError(err)
		h.log.Error().Err(err).Str("kind", kind).Msg("Statement processing failed")
		middleware.WriteError(w, status, kind, message)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// Enqueue handles POST /api/autoledger/enqueue. It spools the upload to
// a temporary file and publishes an asynchronous processing job.
func (h *StatementsHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	doc, filename, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	tmp, err := os.CreateTemp("", "autoledger-*.pdf")
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create temp file")
		middleware.WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to store upload")
		return
	}
	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		h.log.Error().Err(err).Msg("Failed to write temp file")
		middleware.WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to store upload")
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		h.log.Error().Err(err).Msg("Failed to close temp file")
		middleware.WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to store upload")
		return
	}

	job := &jobs.ProcessStatementJob{
		Filename: filename,
		Path:     tmp.Name(),
	}

	if err := h.publisher.PublishProcessStatement(r.Context(), job); err != nil {
		os.Remove(tmp.Name())
		h.log.Error().Err(err).Msg("Failed to enqueue processing job")
		middleware.WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to enqueue processing job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("filename", filename).Msg("Processing job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":   job.JobID,
		"filename": filename,
		"status":   string(job.Status),
	})
}

// readUpload validates and reads the multipart "file" part. On failure
// it has already written the error response.
func (h *StatementsHandler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "bad_request", "A multipart 'file' field is required")
		return nil, "", false
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		middleware.WriteError(w, http.StatusBadRequest, "bad_request", "Only PDF files are supported")
		return nil, "", false
	}

	doc, err := io.ReadAll(file)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("Failed to read upload: %v", err))
		return nil, "", false
	}

	return doc, filename, true
}

// classifyError maps a pipeline failure onto an HTTP status, a stable
// error kind, and guidance for the caller.
func classifyError(err error) (int, string, string) {
	var extractionErr *pipeline.ExtractionError
	if errors.As(err, &extractionErr) {
		return http.StatusBadRequest, extractionErr.Kind(),
			"The document could not be read. Upload a text-based PDF statement; scanned images are not supported."
	}

	var noTxErr *pipeline.NoTransactionsError
	if errors.As(err, &noTxErr) {
		return http.StatusBadRequest, noTxErr.Kind(),
			"No transactions found in the document. Check that the statement uses the supported bank layout."
	}

	var timeoutErr *pipeline.TimeoutError
	if errors.As(err, &timeoutErr) {
		return http.StatusGatewayTimeout, timeoutErr.Kind(),
			"Processing timed out. Try again with a smaller statement."
	}

	return http.StatusInternalServerError, "processing_failed", "Error processing file"
}

// JobsHandler handles job status endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "not_found", "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

// HealthHandler reports service liveness and whether the classifier
// credential is present.
type HealthHandler struct {
	classifierConfigured bool
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(classifierConfigured bool) *HealthHandler {
	return &HealthHandler{classifierConfigured: classifierConfigured}
}

// Health handles GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":                "healthy",
		"classifier_configured": h.classifierConfigured,
		"timestamp":             time.Now().Format(time.RFC3339),
		"service":               "autoledger-api",
	})
}
