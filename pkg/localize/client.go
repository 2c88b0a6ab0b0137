// Package localize is the HTTP client for the remote localization backend.
// It sends one processing request at a time (enforced upstream by the session
// controller), measures wall-clock latency, and classifies the outcome into
// the transport/application error taxonomy.
package localize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"uilocator/pkg/types"
)

// DefaultBaseURL matches the backend's default listen address.
const DefaultBaseURL = "http://localhost:5001"

// Advisory endpoints get a short deadline; the processing call itself carries
// no client-side timeout and either resolves or fails at the transport.
const probeTimeout = 5 * time.Second

// Client talks to the localization backend over its JSON HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a client for the given base URL. An empty URL falls back
// to DefaultBaseURL; a nil logger disables logging.
func NewClient(baseURL string, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		log:        log,
	}
}

type processRequest struct {
	Image    string `json:"image"`
	Task     string `json:"task"`
	TaskType string `json:"task_type"`
}

type processResponse struct {
	Success        bool                      `json:"success"`
	Result         *types.LocalizationResult `json:"result,omitempty"`
	Error          string                    `json:"error,omitempty"`
	ProcessingTime int                       `json:"processing_time,omitempty"`
}

// Process sends a single localization request for the given displayable image
// encoding and task. The returned result carries the measured latency. No
// retry is attempted for any outcome.
func (c *Client) Process(ctx context.Context, imageDataURI string, task types.Task) (*types.LocalizationResult, error) {
	kind := task.Kind
	if kind == "" {
		kind = types.TaskPoint
	}
	payload := processRequest{
		Image:    imageDataURI,
		Task:     task.Instruction,
		TaskType: string(kind),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/process", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("dispatching localization request",
		zap.String("task", task.Instruction),
		zap.String("task_type", string(kind)))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &types.TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		return nil, &types.TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &types.TransportError{StatusCode: resp.StatusCode}
	}

	var envelope processResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !envelope.Success {
		msg := envelope.Error
		if msg == "" {
			msg = "processing failed"
		}
		return nil, &types.ApplicationError{Message: msg}
	}
	if envelope.Result == nil {
		return nil, &types.ApplicationError{Message: "backend returned no result"}
	}

	result := envelope.Result
	result.Elapsed = elapsed
	result.ServerMillis = envelope.ProcessingTime

	c.log.Info("localization completed",
		zap.String("task", task.Instruction),
		zap.Duration("elapsed", elapsed),
		zap.Int("server_ms", envelope.ProcessingTime))

	return result, nil
}
