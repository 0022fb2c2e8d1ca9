// Package dispatcher provides the client for the dispatcher service, the
// backend executor that fires scheduled posts at their scheduled time. The
// scheduling API only needs two things from it: telling it a post should no
// longer fire, and telling it a new post exists.
package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"crossport/api_schedule/pkg/clients"
	"crossport/api_schedule/pkg/logging"
	"crossport/api_schedule/pkg/models"
)

// Client represents a dispatcher API client
type Client struct {
	baseURL      string
	httpClient   *http.Client
	serviceToken string
	logger       logging.Logger
	retryConfig  clients.RetryConfig
}

// Config represents the configuration for the dispatcher client
type Config struct {
	BaseURL      string
	ServiceToken string
	Timeout      time.Duration
	Logger       logging.Logger
	RetryConfig  *clients.RetryConfig
}

// NewClient creates a new dispatcher API client
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	retryConfig := clients.DefaultRetryConfig()
	if config.RetryConfig != nil {
		retryConfig = *config.RetryConfig
	}

	return &Client{
		baseURL:      config.BaseURL,
		httpClient:   &http.Client{Timeout: config.Timeout},
		serviceToken: config.ServiceToken,
		logger:       config.Logger,
		retryConfig:  retryConfig,
	}
}

// Enqueue registers a newly scheduled post with the dispatcher
func (c *Client) Enqueue(ctx context.Context, post models.ScheduledPost) error {
	body, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("failed to encode post: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/queue", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", c.serviceToken)

	resp, err := clients.DoWithRetry(ctx, c.httpClient, req, c.retryConfig)
	if err != nil {
		return fmt.Errorf("failed to call dispatcher: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("dispatcher error (%d): %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// Cancel tells the dispatcher a post must not fire. A 404 from the
// dispatcher is treated as success: the post is unknown there, so it
// cannot fire anyway.
func (c *Client) Cancel(ctx context.Context, postID string) error {
	endpoint := fmt.Sprintf("%s/api/queue/%s", c.baseURL, url.PathEscape(postID))
	req, err := http.NewRequestWithContext(ctx, "DELETE", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", c.serviceToken)

	resp, err := clients.DoWithRetry(ctx, c.httpClient, req, c.retryConfig)
	if err != nil {
		return fmt.Errorf("failed to call dispatcher: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("dispatcher error (%d): %s", resp.StatusCode, string(respBody))
	}
}
