package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveSolve(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.ObserveSolve("target", "SUCCESS", 20*time.Millisecond)
	c.ObserveSolve("target", "SUCCESS", 10*time.Millisecond)
	c.ObserveSolve("current", "ERROR", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Solves.WithLabelValues("target", "SUCCESS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Solves.WithLabelValues("current", "ERROR")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.SolveDurations))
}

func TestRegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewCollector(reg)
	require.NoError(t, err)
	b, err := NewCollector(reg)
	require.NoError(t, err)

	a.SetModelSize(10, 4)
	assert.Equal(t, 10.0, testutil.ToFloat64(b.ModelVariables))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.ObserveSolve("target", "SUCCESS", time.Second)
	c.ObserveRequest("GET", "/health", 200, time.Millisecond)
	c.SetCachedResults(3)
	assert.NotNil(t, c.Handler())
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	c.ObserveRequest("POST", "/api/v1/optimize", 200, 5*time.Millisecond)
	c.SetCachedResults(2)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `planner_http_requests_total{code="200",method="POST",route="/api/v1/optimize"} 1`)
	assert.Contains(t, rec.Body.String(), "planner_cached_results 2")
}
