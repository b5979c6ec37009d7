package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/advisor-backtest/internal/logger"
	"github.com/yourusername/advisor-backtest/internal/models"
)

const (
	polygonSourceName     = "polygon"
	defaultPolygonBaseURL = "https://api.polygon.io"
	polygonNewsLimit      = 1000
)

// PolygonClient implements DataSource for the Polygon.io REST API
type PolygonClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	logger     *logrus.Entry
}

type polygonAggregatesResponse struct {
	Status       string       `json:"status"`
	ResultsCount int          `json:"resultsCount"`
	Error        string       `json:"error"`
	Results      []polygonBar `json:"results"`
}

type polygonBar struct {
	Timestamp int64   `json:"t"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
}

type polygonNewsResponse struct {
	Status  string               `json:"status"`
	Error   string               `json:"error"`
	Results []polygonNewsArticle `json:"results"`
}

type polygonNewsArticle struct {
	Title        string `json:"title"`
	ArticleURL   string `json:"article_url"`
	PublishedUTC string `json:"published_utc"`
	Publisher    struct {
		Name string `json:"name"`
	} `json:"publisher"`
}

// NewPolygonClient creates a new Polygon.io client. An empty baseURL selects the public endpoint.
func NewPolygonClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, log *logrus.Logger) (*PolygonClient, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("HTTP client is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("polygon API key is required")
	}
	if baseURL == "" {
		baseURL = defaultPolygonBaseURL
	}
	if log == nil {
		log = logger.Discard()
	}
	return &PolygonClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     log.WithField("source", polygonSourceName),
	}, nil
}

// Name returns the data source name
func (c *PolygonClient) Name() string {
	return polygonSourceName
}

// FetchSeries retrieves split-adjusted daily aggregates. Polygon bars are
// already adjusted, so AdjustedClose mirrors Close.
func (c *PolygonClient) FetchSeries(ctx context.Context, instrument string, dr DateRange) (models.PriceSeries, error) {
	endpoint := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s",
		c.baseURL,
		url.PathEscape(strings.ToUpper(instrument)),
		dr.Start.Format(models.DateLayout),
		dr.End.Format(models.DateLayout),
	)
	params := url.Values{}
	params.Set("adjusted", "true")
	params.Set("sort", "asc")
	params.Set("limit", "50000")

	var payload polygonAggregatesResponse
	if err := c.getJSON(ctx, endpoint, params, &payload); err != nil {
		return models.PriceSeries{}, err
	}
	if payload.Status == "ERROR" {
		return models.PriceSeries{}, NewDataSourceError(polygonSourceName, ErrCodeServerError, payload.Error, nil)
	}
	if len(payload.Results) == 0 {
		return models.PriceSeries{}, NewDataSourceError(polygonSourceName, ErrCodeNotFound,
			fmt.Sprintf("no aggregates for %s between %s and %s", instrument,
				dr.Start.Format(models.DateLayout), dr.End.Format(models.DateLayout)), nil)
	}

	bars := make([]models.PriceBar, 0, len(payload.Results))
	for _, b := range payload.Results {
		ts := time.UnixMilli(b.Timestamp).UTC()
		bars = append(bars, models.PriceBar{
			Date:          time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
			Open:          b.Open,
			High:          b.High,
			Low:           b.Low,
			Close:         b.Close,
			Volume:        b.Volume,
			AdjustedClose: b.Close,
		})
	}

	series, err := models.NewPriceSeries(instrument, bars)
	if err != nil {
		return models.PriceSeries{}, NewDataSourceError(polygonSourceName, ErrCodeInvalidData, "invalid aggregates", err)
	}

	c.logger.WithFields(logrus.Fields{
		"instrument": instrument,
		"bars":       series.Len(),
	}).Debug("Fetched price series")
	return series, nil
}

// FetchNews retrieves articles tagged with the instrument
func (c *PolygonClient) FetchNews(ctx context.Context, instrument string, dr DateRange) ([]models.NewsArticle, error) {
	params := url.Values{}
	params.Set("ticker", strings.ToUpper(instrument))
	params.Set("published_utc.gte", dr.Start.Format(models.DateLayout))
	params.Set("published_utc.lte", dr.End.Format(models.DateLayout))
	params.Set("order", "asc")
	params.Set("limit", fmt.Sprint(polygonNewsLimit))

	var payload polygonNewsResponse
	if err := c.getJSON(ctx, c.baseURL+"/v2/reference/news", params, &payload); err != nil {
		return nil, err
	}
	if payload.Status == "ERROR" {
		return nil, NewDataSourceError(polygonSourceName, ErrCodeServerError, payload.Error, nil)
	}

	articles := make([]models.NewsArticle, 0, len(payload.Results))
	for _, a := range payload.Results {
		published, err := time.Parse(time.RFC3339, a.PublishedUTC)
		if err != nil {
			c.logger.WithField("title", a.Title).Debug("Skipping article with unparsable publish time")
			continue
		}
		articles = append(articles, models.NewsArticle{
			Title:       a.Title,
			Publisher:   a.Publisher.Name,
			URL:         a.ArticleURL,
			PublishedAt: published.UTC(),
		})
	}
	return articles, nil
}

func (c *PolygonClient) getJSON(ctx context.Context, endpoint string, params url.Values, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return NewDataSourceError(polygonSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	// The key stays out of the URL, which transport errors echo verbatim.
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return NewDataSourceError(polygonSourceName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return NewDataSourceError(polygonSourceName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewDataSourceError(polygonSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode == http.StatusNotFound:
		return NewDataSourceError(polygonSourceName, ErrCodeNotFound, "resource not found", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return NewDataSourceError(polygonSourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return NewDataSourceError(polygonSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}
	return nil
}
