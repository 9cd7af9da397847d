package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedCollectors(t *testing.T) {
	c := NewFeedCollectors(prometheus.NewRegistry())

	c.ObserveFetch("silent", "ok", 200*time.Millisecond)
	c.ObserveFetch("silent", "ok", time.Second)
	c.ObserveFetch("initial", "error", time.Second)
	c.SetOpportunities(12)
	c.ObserveExport("copied")
	c.WSOpened()
	c.WSOpened()
	c.WSClosed()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.FetchTotal.WithLabelValues("silent", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.FetchTotal.WithLabelValues("initial", "error")))
	assert.Equal(t, 12.0, testutil.ToFloat64(c.Opportunities))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Exports.WithLabelValues("copied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.WSConnections))
}

func TestHealthz(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	rec := httptest.NewRecorder()
	Handler(All(map[string]HealthFunc{"redis": ok, "postgres": ok})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	Handler(All(map[string]HealthFunc{"redis": down, "postgres": ok})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis: connection refused")
	assert.NotContains(t, rec.Body.String(), "postgres")
}
