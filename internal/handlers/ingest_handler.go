package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/rodeoai/ingest/internal/analytics"
	"github.com/rodeoai/ingest/internal/httputil"
	"github.com/rodeoai/ingest/internal/logging"
	"github.com/rodeoai/ingest/internal/models"
	"github.com/rodeoai/ingest/internal/parser"
	"github.com/rodeoai/ingest/internal/pipeline"
	"github.com/rodeoai/ingest/internal/reviewqueue"
)

// IngestHandler exposes the pipeline over HTTP: single and batch file
// upload, review queue listing and ingestion stats.
type IngestHandler struct {
	orchestrator *pipeline.Orchestrator
	reviews      reviewqueue.Queue
	tracker      *analytics.Tracker
	log          *logging.Logger
	maxFileSize  int64
}

func NewIngestHandler(orchestrator *pipeline.Orchestrator, reviews reviewqueue.Queue, tracker *analytics.Tracker, log *logging.Logger, maxFileSize int64) *IngestHandler {
	if maxFileSize <= 0 {
		maxFileSize = 32 << 20
	}
	if log == nil {
		log = logging.New(slog.LevelInfo, "json")
	}
	return &IngestHandler{
		orchestrator: orchestrator,
		reviews:      reviews,
		tracker:      tracker,
		log:          log,
		maxFileSize:  maxFileSize,
	}
}

// HandleIngest processes one uploaded file through the pipeline.
func (h *IngestHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	sub, err := h.readSubmission(file, header)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	log := h.log.WithContext(r.Context())
	start := time.Now()

	opts := parseOptions(r)
	result, err := h.orchestrator.Process(r.Context(), sub, opts)
	if err != nil {
		h.tracker.RecordError()
		log.Error("ingest failed", logging.Filename(sub.Filename), logging.Error(err))
		writePipelineError(w, err)
		return
	}

	h.tracker.RecordFile(result)
	log.Info("file ingested",
		logging.Filename(result.Filename),
		logging.Status(string(result.Status)),
		slog.Int64(logging.FieldDuration, time.Since(start).Milliseconds()))
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleBatch processes multiple uploaded files independently.
func (h *IngestHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}

	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File["files"]
	}
	if len(headers) == 0 {
		httputil.WriteError(w, http.StatusBadRequest, "no files provided")
		return
	}

	subs := make([]models.Submission, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("open %s: %v", header.Filename, err))
			return
		}
		sub, err := h.readSubmission(file, header)
		file.Close()
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		subs = append(subs, sub)
	}

	log := h.log.WithContext(r.Context())
	start := time.Now()

	opts := parseOptions(r)
	batch, err := h.orchestrator.ProcessBatch(r.Context(), subs, opts)
	if err != nil {
		log.Error("batch ingest failed", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.tracker.RecordBatch(batch)
	log.Info("batch ingested",
		slog.Int("files", len(batch.FileResults)),
		slog.Int64(logging.FieldDuration, time.Since(start).Milliseconds()))
	httputil.WriteJSON(w, http.StatusOK, batch)
}

// HandleReviewList returns the full ordered review queue snapshot.
func (h *IngestHandler) HandleReviewList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries, err := h.reviews.List(r.Context())
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []models.ReviewEntry{}
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// HandleStats returns accumulated ingestion statistics.
func (h *IngestHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.tracker.Report())
}

// Health reports liveness.
func (h *IngestHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Ready reports readiness to accept submissions.
func (h *IngestHandler) Ready(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *IngestHandler) readSubmission(file multipart.File, header *multipart.FileHeader) (models.Submission, error) {
	if header.Size > h.maxFileSize {
		return models.Submission{}, fmt.Errorf("file %s exceeds size limit (%d bytes)", header.Filename, h.maxFileSize)
	}

	content, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		return models.Submission{}, fmt.Errorf("read %s: %v", header.Filename, err)
	}
	if int64(len(content)) > h.maxFileSize {
		return models.Submission{}, fmt.Errorf("file %s exceeds size limit (%d bytes)", header.Filename, h.maxFileSize)
	}

	return models.Submission{
		Content:      content,
		Filename:     header.Filename,
		DeclaredType: header.Header.Get("Content-Type"),
		ReceivedAt:   time.Now().UTC(),
	}, nil
}

// parseOptions reads the pipeline flags from query or form values.
// auto_push defaults to true, matching the historical importer.
func parseOptions(r *http.Request) models.ProcessOptions {
	return models.ProcessOptions{
		AutoPush:   boolValue(r, "auto_push", true),
		SkipDedup:  boolValue(r, "skip_dedup", false),
		SkipTriage: boolValue(r, "skip_triage", false),
	}
}

func boolValue(r *http.Request, name string, fallback bool) bool {
	value := r.URL.Query().Get(name)
	if value == "" {
		value = r.FormValue(name)
	}
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// writePipelineError maps the error taxonomy onto HTTP statuses.
func writePipelineError(w http.ResponseWriter, err error) {
	var extractionErr *parser.ExtractionError
	switch {
	case errors.Is(err, parser.ErrUnsupportedFormat):
		httputil.WriteError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.As(err, &extractionErr):
		httputil.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
