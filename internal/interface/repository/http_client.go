package repository

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/littleironwaltz/quotesync/config"
)

// HTTPError holds error information for HTTP requests
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error (status %d): %s", e.StatusCode, e.Message)
}

// RetryPolicy defines the retry behavior for HTTP requests
type RetryPolicy struct {
	MaxRetries   int
	RetryBackoff time.Duration
}

// HTTPClient handles HTTP communication
type HTTPClient struct {
	client      *http.Client
	retryPolicy RetryPolicy
	bufferPool  *sync.Pool
	logger      logrus.FieldLogger
}

// NewHTTPClient creates a new HTTPClient instance
func NewHTTPClient(cfg *config.Config, logger logrus.FieldLogger) *HTTPClient {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		IdleConnTimeout:     DefaultIdleTimeout,
		MaxIdleConns:        MaxIdleConnections,
		MaxIdleConnsPerHost: MaxIdleConnsPerHost,
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout:   cfg.HTTPTimeout,
			Transport: transport,
		},
		retryPolicy: RetryPolicy{
			MaxRetries:   cfg.MaxRetries,
			RetryBackoff: cfg.RetryBackoff,
		},
		bufferPool: &sync.Pool{
			New: func() any {
				return new(bytes.Buffer)
			},
		},
		logger: logger,
	}
}

// DoRequest sends an HTTP request with retry logic.
// A non-2xx response is returned as *HTTPError with the body already closed.
func (c *HTTPClient) DoRequest(ctx context.Context, method string, url string, body any, headers map[string]string) (*http.Response, error) {
	var bodyBytes []byte
	if body != nil {
		buf := c.bufferPool.Get().(*bytes.Buffer)
		buf.Reset()
		defer c.bufferPool.Put(buf)

		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}

		// Save a copy for retries
		bodyBytes = make([]byte, buf.Len())
		copy(bodyBytes, buf.Bytes())
	}

	var err error
	for attempt := 0; attempt <= c.retryPolicy.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.calculateBackoff(attempt)):
			case <-ctx.Done():
				return nil, fmt.Errorf("context cancelled during backoff: %w", ctx.Err())
			}
		}

		var resp *http.Response
		resp, err = c.sendRequest(ctx, method, url, bodyBytes, headers)
		if err == nil {
			return resp, nil
		}

		if !c.shouldRetry(ctx, err, attempt) {
			return nil, err
		}

		c.logger.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"max":     c.retryPolicy.MaxRetries + 1,
			"url":     url,
		}).WithError(err).Warn("request failed, retrying")
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.retryPolicy.MaxRetries+1, err)
}

// calculateBackoff determines the backoff duration for a retry
func (c *HTTPClient) calculateBackoff(attempt int) time.Duration {
	backoff := c.retryPolicy.RetryBackoff * time.Duration(1<<uint(attempt-1))
	if backoff > MaxBackoffDuration || backoff < 0 {
		backoff = MaxBackoffDuration
	}
	return backoff
}

// shouldRetry determines if a request should be retried
func (c *HTTPClient) shouldRetry(ctx context.Context, err error, attempt int) bool {
	if attempt >= c.retryPolicy.MaxRetries {
		return false
	}
	if ctx.Err() != nil {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		// Don't retry on client errors (except 429 Too Many Requests)
		if httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 && httpErr.StatusCode != http.StatusTooManyRequests {
			return false
		}
		return true
	}

	// Retry on network errors
	return true
}

// sendRequest sends a single HTTP request without retrying
func (c *HTTPClient) sendRequest(ctx context.Context, method string, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, DefaultBufferSize))

		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s: %s", resp.Status, bytes.TrimSpace(errorBody)),
		}
	}

	return resp, nil
}

// DecodeJSONResponse decodes a JSON response into the provided target and closes the body
func (c *HTTPClient) DecodeJSONResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxResponseSize)).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// DiscardResponse drains and closes the body so the connection can be reused
func (c *HTTPClient) DiscardResponse(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseSize))
	resp.Body.Close()
}
