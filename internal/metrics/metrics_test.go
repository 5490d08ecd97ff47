package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveUpstream(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.ObserveUpstream("openmeteo", 120*time.Millisecond, nil)
	m.ObserveUpstream("openmeteo", 80*time.Millisecond, errors.New("boom"))
	m.ObserveUpstream("openmeteo", 90*time.Millisecond, nil)

	assert.InDelta(t, 2, testutil.ToFloat64(m.upstreamRequestsTotal.WithLabelValues("openmeteo", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.upstreamRequestsTotal.WithLabelValues("openmeteo", "error")), 0)
}

func TestMiddleware_RecordsFinalStatus(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing/:id", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "nope") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing/7", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.InDelta(t, 1, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/ok", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/missing/:id", "404")), 0)
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	m.ObserveUpstream("openmeteo-geocoding", time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "weather_dashboard_upstream_requests_total")
}
