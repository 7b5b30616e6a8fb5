// Package photo talks to the upstream photo-approval service.
package photo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"shift-signup-backend/config"
	"shift-signup-backend/internal/model"
)

// statusResponse models the upstream response body.
type statusResponse struct {
	Code int `json:"code"`
	Data struct {
		PersonID int64  `json:"person_id"`
		Status   string `json:"status"`
	} `json:"data"`
}

// Client retrieves photo approval states over HTTP. Failures are returned
// as-is; the client never retries.
type Client struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// NewClient creates a photo status client from the configuration.
func NewClient(cfg *config.PhotoConfig, log *zap.Logger) *Client {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Warn("invalid photo proxy URL, not using a proxy", zap.String("proxy", cfg.HTTPProxy), zap.Error(err))
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &Client{
		url:     cfg.URL,
		headers: cfg.Headers,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}
}

// RetrieveStatus asks the upstream service for the person's photo state.
func (c *Client) RetrieveStatus(ctx context.Context, personID int64) (model.PhotoStatus, error) {
	jsonBody, err := json.Marshal(map[string]any{"person_id": personID})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var apiResp statusResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal photo response: %w", err)
	}
	if apiResp.Code != 0 {
		return "", fmt.Errorf("photo service returned non-zero application code: %d", apiResp.Code)
	}

	return MapStatus(apiResp.Data.Status)
}

// MapStatus converts an upstream photo state into one of the four states the
// eligibility rules understand.
func MapStatus(raw string) (model.PhotoStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approved":
		return model.PhotoApproved, nil
	case "submitted", "pending", "in-review":
		return model.PhotoPending, nil
	case "rejected":
		return model.PhotoRejected, nil
	case "", "missing", "none":
		return model.PhotoMissing, nil
	}
	return "", fmt.Errorf("unrecognized photo status %q", raw)
}
