package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/golang/snappy"
)

// RemoteWriteClient handles sending metrics to Prometheus Remote Write endpoint
type RemoteWriteClient struct {
	url        string
	client     *http.Client
	authConfig *AuthConfig
	retry      *RetryConfig
}

// AuthConfig holds authentication configuration (basic auth only)
type AuthConfig struct {
	Username string
	Password string
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// RemoteWriteStatusError is returned when the endpoint answers with a non-2xx status
type RemoteWriteStatusError struct {
	StatusCode int
	Body       string
}

func (e *RemoteWriteStatusError) Error() string {
	return fmt.Sprintf("remote write failed with status %d: %s", e.StatusCode, e.Body)
}

// NewRemoteWriteClient creates a new Remote Write client
func NewRemoteWriteClient(url string, timeout time.Duration, authConfig *AuthConfig) (*RemoteWriteClient, error) {
	if url == "" {
		return nil, fmt.Errorf("remote write URL is required")
	}
	if authConfig != nil && (authConfig.Username == "" || authConfig.Password == "") {
		return nil, fmt.Errorf("basic auth requires username and password")
	}

	return &RemoteWriteClient{
		url:        url,
		client:     &http.Client{Timeout: timeout},
		authConfig: authConfig,
		retry:      DefaultRetryConfig(),
	}, nil
}

// WithRetryConfig replaces the retry policy
func (c *RemoteWriteClient) WithRetryConfig(retry *RetryConfig) *RemoteWriteClient {
	if retry != nil {
		c.retry = retry
	}
	return c
}

// Send writes all series in a single request, retrying transient failures with exponential backoff
func (c *RemoteWriteClient) Send(ctx context.Context, series []TimeSeries) error {
	if len(series) == 0 {
		return nil
	}
	payload := snappy.Encode(nil, encodeWriteRequest(series))

	var lastErr error
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retry.BaseDelay << uint(attempt-1)
			if delay > c.retry.MaxDelay {
				delay = c.retry.MaxDelay
			}

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
			}
		}

		err := c.sendOnce(ctx, payload)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return err
		}
	}

	return fmt.Errorf("failed after %d retries: %w", c.retry.MaxRetries, lastErr)
}

// sendOnce posts an already compressed payload
func (c *RemoteWriteClient) sendOnce(ctx context.Context, payload []byte) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/x-protobuf")
	httpReq.Header.Set("Content-Encoding", "snappy")
	httpReq.Header.Set("X-Prometheus-Remote-Write-Version", "0.1.0")
	httpReq.Header.Set("User-Agent", "tokenmon")
	if c.authConfig != nil {
		httpReq.SetBasicAuth(c.authConfig.Username, c.authConfig.Password)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &RemoteWriteStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// isRetryableError retries 5xx, 429 and network timeouts
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *RemoteWriteStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
