// internal/sentiment/client.go
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"feedback-ranking/internal/common/logger"
	"feedback-ranking/internal/common/metrics"
)

var (
	ErrClassificationFailed = errors.New("CLASSIFICATION_FAILED")
	ErrClassifierTimeout    = errors.New("CLASSIFIER_TIMEOUT")
)

// ClientConfig configures the HTTP classifier client.
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// Client calls the external sentiment classification service over HTTP.
type Client struct {
	config ClientConfig
	client *http.Client
	logger logger.Logger
}

func NewClient(config ClientConfig, log logger.Logger) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: log.WithFields(map[string]interface{}{"component": "sentiment-client"}),
	}
}

// Classify sends one text fragment to the classifier. Retries transient
// failures with exponential backoff inside the caller's context deadline.
func (c *Client) Classify(ctx context.Context, text string) (Sentiment, error) {
	body, _ := json.Marshal(map[string]string{"text": text})

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ErrClassifierTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.config.BaseURL+"/api/sentiment/classify", bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrClassificationFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, lastErr = c.client.Do(req)

		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			metrics.ClassifierCalls.WithLabelValues("timeout").Inc()
			return "", ErrClassifierTimeout
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		metrics.ClassifierCalls.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %v", ErrClassificationFailed, lastErr)
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Sentiment string `json:"sentiment"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		metrics.ClassifierCalls.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: decode error: %v", ErrClassificationFailed, err)
	}

	switch s := Sentiment(apiResponse.Sentiment); s {
	case Positive, Neutral, Negative:
		metrics.ClassifierCalls.WithLabelValues("ok").Inc()
		return s, nil
	default:
		metrics.ClassifierCalls.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: unknown sentiment %q", ErrClassificationFailed, apiResponse.Sentiment)
	}
}
