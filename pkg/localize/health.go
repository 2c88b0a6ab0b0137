package localize

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"uilocator/pkg/types"
)

// HealthStatus is the body of a successful liveness probe.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Model   string `json:"model"`
}

// ModelInfo describes the model the backend has loaded.
type ModelInfo struct {
	ModelName    string   `json:"model_name"`
	ModelType    string   `json:"model_type"`
	Capabilities []string `json:"capabilities"`
	Status       string   `json:"status"`
}

// Health issues the lightweight liveness request. A probe deadline is applied
// when the context has none. The outcome is advisory only and never gates a
// later Process call.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.getJSON(ctx, "/health", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ModelInfo fetches model metadata from the backend.
func (c *Client) ModelInfo(ctx context.Context) (*ModelInfo, error) {
	var info ModelInfo
	if err := c.getJSON(ctx, "/api/model-info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, probeTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &types.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &types.TransportError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", endpoint, err)
	}
	return nil
}
