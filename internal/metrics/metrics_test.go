package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordPeriodAndTrade(t *testing.T) {
	InitRegistry()
	decided := testutil.ToFloat64(PeriodsTotal.WithLabelValues(PeriodDecided))
	buys := testutil.ToFloat64(TradesTotal.WithLabelValues("BUY"))

	RecordPeriod(PeriodDecided)
	RecordTrade("BUY")

	assert.Equal(t, decided+1, testutil.ToFloat64(PeriodsTotal.WithLabelValues(PeriodDecided)))
	assert.Equal(t, buys+1, testutil.ToFloat64(TradesTotal.WithLabelValues("BUY")))
}

func TestRecordAdvisorFallback(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(AdvisorFallbacksTotal.WithLabelValues("http", "malformed"))

	RecordAdvisorFallback("http", "malformed")

	assert.Equal(t, before+1, testutil.ToFloat64(AdvisorFallbacksTotal.WithLabelValues("http", "malformed")))
}

func TestRecordRunResult(t *testing.T) {
	InitRegistry()

	RecordRunResult("AAPL", 9000, -0.1, 0)

	assert.Equal(t, 9000.0, testutil.ToFloat64(FinalPortfolioValue.WithLabelValues("AAPL")))
	assert.Equal(t, -0.1, testutil.ToFloat64(TotalReturn.WithLabelValues("AAPL")))
	assert.Equal(t, 0.0, testutil.ToFloat64(Alpha.WithLabelValues("AAPL")))
}

func TestRecordObservationsDoNotPanic(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordRun("success", 1.5)
		RecordDataFetch("polygon", "series", 0.2)
		RecordAdvisorCall("rule", 0.001)
		RecordRecommendation("rule", "HOLD", 0.4)
		UpdateCacheHitRatio(0.9)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	InitRegistry()
	RecordRun("success", 2)

	server := httptest.NewServer(Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "advisor_backtest_runs_total"))
}
