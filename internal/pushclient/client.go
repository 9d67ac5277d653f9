// Package pushclient talks to the downstream RodeoAI store that receives
// validated predictions and results.
package pushclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rodeoai/ingest/internal/models"
)

const apiKeyHeader = "x-gpu-api-key"

// Pusher is the downstream publish contract consumed by the pipeline.
type Pusher interface {
	PushPrediction(ctx context.Context, p models.Prediction) (*Receipt, error)
	PushResult(ctx context.Context, r models.Result) (*Receipt, error)
}

// Receipt carries the downstream-assigned identifier for one record.
type Receipt struct {
	PredictionID string `json:"prediction_id,omitempty"`
	ResultID     string `json:"result_id,omitempty"`
}

// ID returns whichever identifier the downstream assigned.
func (r *Receipt) ID() string {
	if r.PredictionID != "" {
		return r.PredictionID
	}
	return r.ResultID
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type predictionPayload struct {
	Event      models.Event `json:"event"`
	Rider      models.Rider `json:"rider"`
	Prediction struct {
		PredictionType string   `json:"prediction_type"`
		PredictedValue string   `json:"predicted_value"`
		Confidence     *float64 `json:"confidence,omitempty"`
		Odds           *float64 `json:"odds,omitempty"`
		ModelVersion   string   `json:"model_version"`
		Analysis       string   `json:"analysis,omitempty"`
	} `json:"prediction"`
}

// PushPrediction publishes one prediction record.
func (c *Client) PushPrediction(ctx context.Context, p models.Prediction) (*Receipt, error) {
	payload := predictionPayload{Event: p.Event, Rider: p.Rider}
	payload.Prediction.PredictionType = p.PredictionType
	payload.Prediction.PredictedValue = p.PredictedValue
	payload.Prediction.Confidence = p.Confidence
	payload.Prediction.Odds = p.Odds
	payload.Prediction.ModelVersion = p.ModelVersion
	payload.Prediction.Analysis = p.Analysis

	return c.post(ctx, "/ingest-prediction", payload)
}

// PushResult publishes one actual-outcome record.
func (c *Client) PushResult(ctx context.Context, r models.Result) (*Receipt, error) {
	return c.post(ctx, "/ingest-result", r)
}

func (c *Client) post(ctx context.Context, path string, payload any) (*Receipt, error) {
	if c == nil {
		return nil, fmt.Errorf("push client not configured")
	}

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		request.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return nil, fmt.Errorf("downstream response status %d: %s", resp.StatusCode, errBody["message"])
	}

	var receipt Receipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &receipt, nil
}
