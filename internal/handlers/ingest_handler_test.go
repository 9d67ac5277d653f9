package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodeoai/ingest/internal/analytics"
	"github.com/rodeoai/ingest/internal/dedup"
	"github.com/rodeoai/ingest/internal/handlers"
	"github.com/rodeoai/ingest/internal/logging"
	"github.com/rodeoai/ingest/internal/middleware"
	"github.com/rodeoai/ingest/internal/models"
	"github.com/rodeoai/ingest/internal/parser"
	"github.com/rodeoai/ingest/internal/pipeline"
	"github.com/rodeoai/ingest/internal/reviewqueue"
	"github.com/rodeoai/ingest/internal/triage"
)

func newHandler(t *testing.T, maxFileSize int64) (*handlers.IngestHandler, *reviewqueue.MemoryQueue) {
	t.Helper()

	reviews := reviewqueue.NewMemoryQueue()
	orchestrator := pipeline.New(
		parser.NewDefaultRegistry(parser.StubExtractor{}),
		dedup.NewEngine(dedup.NewMemoryStore()),
		triage.NewEngine(triage.DefaultThresholds()),
		reviews,
		nil,
		nil,
	)
	return handlers.NewIngestHandler(orchestrator, reviews, analytics.NewTracker(), nil, maxFileSize), reviews
}

// multipartUpload builds a multipart body with one part per filename.
func multipartUpload(t *testing.T, field string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := writer.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestHandleIngest_Success(t *testing.T) {
	h, _ := newHandler(t, 0)

	body, contentType := multipartUpload(t, "file", map[string][]byte{
		"rodeo_results.csv": []byte("rider_name,score\nSage Kimzey,91.5\n"),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.HandleIngest(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result models.ProcessResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	// No pusher configured, so a clean file stops at processed.
	assert.Equal(t, models.StatusProcessed, result.Status)
	assert.Equal(t, 1, result.Counts.Results)
	assert.NotEmpty(t, result.SubmissionID)
	assert.Equal(t, "rodeo_results.csv", result.Filename)
}

func TestHandleIngest_LogsRequestScoped(t *testing.T) {
	var buf bytes.Buffer
	log := &logging.Logger{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	reviews := reviewqueue.NewMemoryQueue()
	orchestrator := pipeline.New(
		parser.NewDefaultRegistry(parser.StubExtractor{}),
		dedup.NewEngine(dedup.NewMemoryStore()),
		triage.NewEngine(triage.DefaultThresholds()),
		reviews,
		nil,
		nil,
	)
	h := handlers.NewIngestHandler(orchestrator, reviews, analytics.NewTracker(), log, 0)

	body, contentType := multipartUpload(t, "file", map[string][]byte{
		"rodeo_results.csv": []byte("rider_name,score\nJess Lockwood,87.25\n"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-42"))
	rec := httptest.NewRecorder()

	h.HandleIngest(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-42", line["request_id"])
	assert.Equal(t, "rodeo_results.csv", line["filename"])
	assert.Equal(t, string(models.StatusProcessed), line["status"])
	assert.Contains(t, line, "duration_ms")
}

func TestHandleIngest_OptionsFromQuery(t *testing.T) {
	h, _ := newHandler(t, 0)
	content := []byte("rider_name,score\nSage Kimzey,91.5\n")

	upload := func(target string) *httptest.ResponseRecorder {
		body, contentType := multipartUpload(t, "file", map[string][]byte{"rodeo.csv": content})
		req := httptest.NewRequest(http.MethodPost, target, body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		h.HandleIngest(rec, req)
		return rec
	}

	first := upload("/api/v1/ingest")
	require.Equal(t, http.StatusOK, first.Code)

	// A resubmission with dedup skipped processes again instead of
	// short-circuiting.
	second := upload("/api/v1/ingest?skip_dedup=true")
	require.Equal(t, http.StatusOK, second.Code)

	var result models.ProcessResult
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &result))
	assert.Equal(t, models.StatusProcessed, result.Status)
}

func TestHandleIngest_MissingFileField(t *testing.T) {
	h, _ := newHandler(t, 0)

	body, contentType := multipartUpload(t, "wrong_field", map[string][]byte{
		"rodeo.csv": []byte("rider_name,score\n"),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.HandleIngest(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleIngest_MethodNotAllowed(t *testing.T) {
	h, _ := newHandler(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ingest", nil)
	rec := httptest.NewRecorder()

	h.HandleIngest(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleIngest_UnsupportedFormat(t *testing.T) {
	h, _ := newHandler(t, 0)

	body, contentType := multipartUpload(t, "file", map[string][]byte{
		"rodeo_data.zip": []byte("rodeo rider score payload"),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.HandleIngest(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestHandleIngest_MalformedCSV(t *testing.T) {
	h, _ := newHandler(t, 0)

	body, contentType := multipartUpload(t, "file", map[string][]byte{
		"rodeo_scores.csv": []byte("a,b\n\"unterminated\n"),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.HandleIngest(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleIngest_SizeLimit(t *testing.T) {
	h, _ := newHandler(t, 64)

	body, contentType := multipartUpload(t, "file", map[string][]byte{
		"big.csv": bytes.Repeat([]byte("rodeo,rider,score\n"), 100),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.HandleIngest(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "size limit")
}

func TestHandleBatch(t *testing.T) {
	h, _ := newHandler(t, 0)

	body, contentType := multipartUpload(t, "files", map[string][]byte{
		"round1.csv": []byte("rider_name,score\nrodeo rider one,91.5\n"),
		"round2.csv": []byte("rider_name,score\nrodeo rider two,88.0\n"),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/batch", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.HandleBatch(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var batch models.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batch))
	require.Len(t, batch.FileResults, 2)
	assert.Equal(t, 2, batch.Totals.Results)
}

func TestHandleBatch_NoFiles(t *testing.T) {
	h, _ := newHandler(t, 0)

	body, contentType := multipartUpload(t, "files", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/batch", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.HandleBatch(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleReviewList(t *testing.T) {
	h, reviews := newHandler(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/review", nil)
	rec := httptest.NewRecorder()
	h.HandleReviewList(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Entries []models.ReviewEntry `json:"entries"`
		Count   int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Zero(t, payload.Count)
	assert.NotNil(t, payload.Entries)

	_, err := reviews.Add(req.Context(), "mystery.csv", "flagged for review", "hash", models.Assessment{})
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	h.HandleReviewList(rec, httptest.NewRequest(http.MethodGet, "/api/v1/review", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.Count)
	assert.Equal(t, "mystery.csv", payload.Entries[0].Filename)
}

func TestHandleStats_TracksOutcomes(t *testing.T) {
	h, _ := newHandler(t, 0)

	body, contentType := multipartUpload(t, "file", map[string][]byte{
		"rodeo_results.csv": []byte("rider_name,score\nSage Kimzey,91.5\n"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", body)
	req.Header.Set("Content-Type", contentType)
	h.HandleIngest(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	h.HandleStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var report analytics.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.FilesByStatus["processed"])
	assert.Equal(t, 1, report.Totals.Results)
}

func TestHealthEndpoints(t *testing.T) {
	h, _ := newHandler(t, 0)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
