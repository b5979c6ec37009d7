package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHTTPClient() *RateLimitedHTTPClient {
	return NewRateLimitedHTTPClient(HTTPClientConfig{
		Timeout:           5 * time.Second,
		MaxRetries:        0,
		CircuitBreakerMax: 2,
	}, nil)
}

func newTestPolygon(t *testing.T, handler http.HandlerFunc) *PolygonClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewPolygonClient(testHTTPClient(), srv.URL, "test-key", nil)
	require.NoError(t, err)
	return client
}

func TestPolygonFetchSeries(t *testing.T) {
	client := newTestPolygon(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/aggs/ticker/AAPL/range/1/day/2024-01-01/2024-01-10", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.Query().Get("apiKey"))
		assert.Equal(t, "true", r.URL.Query().Get("adjusted"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","resultsCount":2,"results":[
			{"t":1704171600000,"o":184.2,"h":186,"l":183.4,"c":185.6,"v":82488700},
			{"t":1704258000000,"o":183.1,"h":184.3,"l":182.1,"c":184.25,"v":58414500}
		]}`))
	})

	series, err := client.FetchSeries(context.Background(), "aapl", DateRange{Start: jan(1), End: jan(10)})
	require.NoError(t, err)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, jan(2), series.First().Date)
	assert.Equal(t, jan(3), series.Last().Date)
	assert.Equal(t, 185.6, series.First().Close)
	assert.Equal(t, 185.6, series.First().AdjustedClose)
}

func TestPolygonFetchSeriesEmpty(t *testing.T) {
	client := newTestPolygon(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","resultsCount":0}`))
	})

	_, err := client.FetchSeries(context.Background(), "AAPL", DateRange{Start: jan(1), End: jan(10)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPolygonStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrAuthenticationFailed},
		{http.StatusForbidden, ErrAuthenticationFailed},
		{http.StatusTooManyRequests, ErrRateLimitExceeded},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusBadGateway, ErrServerError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client := newTestPolygon(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := client.FetchSeries(context.Background(), "AAPL", DateRange{Start: jan(1), End: jan(10)})
			assert.ErrorIs(t, err, tt.want)

			var dsErr DataSourceError
			assert.ErrorAs(t, err, &dsErr)
			assert.Equal(t, "polygon", dsErr.Source)
		})
	}
}

func TestPolygonMalformedBody(t *testing.T) {
	client := newTestPolygon(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [`))
	})
	_, err := client.FetchSeries(context.Background(), "AAPL", DateRange{Start: jan(1), End: jan(10)})
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestPolygonFetchNews(t *testing.T) {
	client := newTestPolygon(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/reference/news", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("ticker"))
		_, _ = w.Write([]byte(`{"status":"OK","results":[
			{"title":"Earnings beat","article_url":"https://example.com/a","published_utc":"2024-01-04T13:00:00Z","publisher":{"name":"Wire"}},
			{"title":"Broken","published_utc":"yesterday"}
		]}`))
	})

	news, err := client.FetchNews(context.Background(), "aapl", DateRange{Start: jan(1), End: jan(10)})
	require.NoError(t, err)
	require.Len(t, news, 1)
	assert.Equal(t, "Earnings beat", news[0].Title)
	assert.Equal(t, "Wire", news[0].Publisher)
	assert.Equal(t, time.Date(2024, 1, 4, 13, 0, 0, 0, time.UTC), news[0].PublishedAt)
}

func TestPolygonErrorsDoNotExposeAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	client, err := NewPolygonClient(testHTTPClient(), baseURL, "SECRET-KEY-123", nil)
	require.NoError(t, err)

	_, err = client.FetchSeries(context.Background(), "AAPL", DateRange{Start: jan(1), End: jan(10)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNetworkError)
	assert.NotContains(t, err.Error(), "SECRET-KEY-123")
}

func TestNewPolygonClientValidation(t *testing.T) {
	_, err := NewPolygonClient(nil, "", "key", nil)
	assert.Error(t, err)
	_, err = NewPolygonClient(testHTTPClient(), "", "", nil)
	assert.Error(t, err)

	client, err := NewPolygonClient(testHTTPClient(), "", "key", nil)
	require.NoError(t, err)
	assert.Equal(t, defaultPolygonBaseURL, client.baseURL)
}

func TestCircuitBreakerOpensAfterServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := testHTTPClient()
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		resp, err := client.Get(ctx, srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.True(t, client.IsOpen())

	_, err := client.Get(ctx, srv.URL)
	assert.Error(t, err)

	client.Reset()
	assert.False(t, client.IsOpen())
}
