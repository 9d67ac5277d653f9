package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rodeoai/ingest/internal/analytics"
	"github.com/rodeoai/ingest/internal/models"
)

// UploadOptions mirror the gateway's per-request processing knobs.
type UploadOptions struct {
	NoAutoPush bool
	SkipDedup  bool
	SkipTriage bool
}

func (o UploadOptions) query() string {
	v := url.Values{}
	if o.NoAutoPush {
		v.Set("auto_push", "false")
	}
	if o.SkipDedup {
		v.Set("skip_dedup", "true")
	}
	if o.SkipTriage {
		v.Set("skip_triage", "true")
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

type GatewayClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewGatewayClient(baseURL, apiKey string) *GatewayClient {
	return &GatewayClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Upload submits one local file for processing.
func (c *GatewayClient) Upload(path string, opts UploadOptions) (*models.ProcessResult, error) {
	body, contentType, err := multipartBody("file", []string{path})
	if err != nil {
		return nil, err
	}

	var result models.ProcessResult
	if err := c.post("/api/v1/ingest"+opts.query(), contentType, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UploadBatch submits several local files in a single request.
func (c *GatewayClient) UploadBatch(paths []string, opts UploadOptions) (*models.BatchResult, error) {
	body, contentType, err := multipartBody("files", paths)
	if err != nil {
		return nil, err
	}

	var result models.BatchResult
	if err := c.post("/api/v1/ingest/batch"+opts.query(), contentType, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ReviewList fetches the pending manual review entries.
func (c *GatewayClient) ReviewList() ([]models.ReviewEntry, error) {
	var payload struct {
		Entries []models.ReviewEntry `json:"entries"`
		Count   int                  `json:"count"`
	}
	if err := c.get("/api/v1/review", &payload); err != nil {
		return nil, err
	}
	return payload.Entries, nil
}

// Stats fetches the gateway's processing counters.
func (c *GatewayClient) Stats() (*analytics.Report, error) {
	var report analytics.Report
	if err := c.get("/api/v1/stats", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *GatewayClient) post(path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req, out)
}

func (c *GatewayClient) get(path string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *GatewayClient) do(req *http.Request, out interface{}) error {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("gateway returned %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func multipartBody(field string, paths []string) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, "", err
		}

		part, err := writer.CreateFormFile(field, filepath.Base(path))
		if err != nil {
			f.Close()
			return nil, "", err
		}
		if _, err := io.Copy(part, f); err != nil {
			f.Close()
			return nil, "", err
		}
		f.Close()
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}
