package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	commonhttp "career-recommender-workers/internal/common/http"
	"career-recommender-workers/internal/common/logger"
)

var (
	ErrServiceUnavailable = errors.New("ML_SERVICE_UNAVAILABLE")
	ErrEnhanceTimeout     = errors.New("ML_ENHANCEMENT_TIMEOUT")
	ErrMalformedResponse  = errors.New("ML_RESPONSE_MALFORMED")
)

// Client talks to the external enhancement service over HTTP.
type Client struct {
	baseURL    string
	healthPath string
	timeout    time.Duration
	maxRetries int
	client     *commonhttp.Client
	logger     logger.Logger
}

type ClientOption func(*Client)

func WithMaxRetries(n int) ClientOption {
	return func(c *Client) { c.maxRetries = n }
}

func WithHealthPath(path string) ClientOption {
	return func(c *Client) { c.healthPath = path }
}

func NewClient(baseURL string, timeout time.Duration, log logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		healthPath: "/health",
		timeout:    timeout,
		maxRetries: 1,
		// no client timeout, the per-call context bounds the request
		client: commonhttp.NewClient(0),
		logger: log.WithFields(map[string]interface{}{"component": "ml-client"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enhance posts the candidate list to the service. The context passed in
// caps total wall-clock time across retries.
func (c *Client) Enhance(ctx context.Context, req *EnhanceRequest) (*EnhanceResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrEnhanceTimeout
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/enhance", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, lastErr = c.client.Do(httpReq)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return nil, ErrEnhanceTimeout
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrEnhanceTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, lastErr)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: no successful response after retries", ErrServiceUnavailable)
	}
	defer resp.Body.Close()

	var result EnhanceResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrMalformedResponse, err)
	}

	if !result.Success {
		return nil, fmt.Errorf("%w: service reported failure", ErrServiceUnavailable)
	}

	c.logger.Info("enhancement completed", map[string]interface{}{
		"items":      len(result.EnhancedRecommendations),
		"mlEnhanced": result.MLEnhanced,
	})

	return &result, nil
}

// HealthCheck checks the service without triggering a scoring call.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.healthPath, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrServiceUnavailable, resp.StatusCode)
	}
	return nil
}
