package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/advisor-backtest/internal/logger"
	"github.com/yourusername/advisor-backtest/internal/models"
)

const maxErrorBody = 1 << 10

// HTTPAdvisor delegates the decision to a remote recommendation service. The
// Context is POSTed as JSON and the response must decode into
// {"action": ..., "confidence": ...}.
type HTTPAdvisor struct {
	client *retryablehttp.Client
	url    string
	logger *logrus.Entry
}

// NewHTTPAdvisor creates an advisor calling url with the given per-attempt
// timeout and retry budget.
func NewHTTPAdvisor(url string, timeout time.Duration, maxRetries int, log *logrus.Logger) *HTTPAdvisor {
	if log == nil {
		log = logger.Discard()
	}

	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = timeout
	client.RetryMax = maxRetries
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = nil

	return &HTTPAdvisor{
		client: client,
		url:    url,
		logger: log.WithFields(logrus.Fields{"component": "advisor", "advisor": "http"}),
	}
}

// Name returns "http".
func (a *HTTPAdvisor) Name() string {
	return "http"
}

// Recommend posts the context and decodes the raw answer. Transport failures
// and non-200 responses wrap ErrAdvisorUnavailable; undecodable bodies wrap
// models.ErrMalformedRecommendation.
func (a *HTTPAdvisor) Recommend(ctx context.Context, in Context) (RawRecommendation, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return RawRecommendation{}, fmt.Errorf("failed to marshal advisor context: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, a.url, payload)
	if err != nil {
		return RawRecommendation{}, fmt.Errorf("failed to build advisor request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return RawRecommendation{}, fmt.Errorf("%w: %v", ErrAdvisorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return RawRecommendation{}, fmt.Errorf("%w: status %d: %s", ErrAdvisorUnavailable, resp.StatusCode, string(body))
	}

	var raw RawRecommendation
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return RawRecommendation{}, fmt.Errorf("%w: %v", models.ErrMalformedRecommendation, err)
	}

	a.logger.WithFields(logrus.Fields{
		"instrument": in.Instrument,
		"as_of":      in.AsOf.Format(models.DateLayout),
		"action":     raw.Action,
		"duration":   time.Since(start),
	}).Debug("Advisor responded")

	return raw, nil
}
