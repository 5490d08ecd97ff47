package providers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const forecastSuccess = `{
  "latitude": 51.5,
  "longitude": -0.12,
  "current_units": {"temperature_2m": "°C"},
  "current": {
    "time": "2026-10-16T12:00",
    "interval": 900,
    "temperature_2m": 14.3,
    "relative_humidity_2m": 72,
    "weather_code": 61,
    "wind_speed_10m": 11.5,
    "is_day": 1
  }
}`

const geocodingSuccess = `{
  "results": [
    {"id": 2988507, "name": "Paris", "latitude": 48.85341, "longitude": 2.3488, "country": "France", "admin1": "Île-de-France"},
    {"id": 4717560, "name": "Paris", "latitude": 33.66094, "longitude": -95.55551, "country": "United States", "admin1": "Texas"},
    {"id": 9999999, "name": "Paris Island", "latitude": 1.5, "longitude": 2.5}
  ],
  "generationtime_ms": 0.9
}`

// setupHTTPMock returns a client whose transport is replaced by httpmock.
func setupHTTPMock(t *testing.T) *http.Client {
	t.Helper()
	client := &http.Client{Timeout: 5 * time.Second}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

type recordingObserver struct {
	calls []error
}

func (o *recordingObserver) ObserveUpstream(_ string, _ time.Duration, err error) {
	o.calls = append(o.calls, err)
}

func TestOpenMeteoProvider_Fetch_Success(t *testing.T) {
	client := setupHTTPMock(t)
	httpmock.RegisterResponderWithQuery(http.MethodGet, DefaultForecastURL,
		"latitude=51.5074&longitude=-0.1278&current="+currentFields,
		httpmock.NewStringResponder(http.StatusOK, forecastSuccess))

	obs := &recordingObserver{}
	p := NewOpenMeteoProvider(Config{Client: client, Observer: obs})

	r, err := p.Fetch(context.Background(), 51.5074, -0.1278)
	require.NoError(t, err)

	assert.Equal(t, "openmeteo", r.ProviderName)
	assert.InDelta(t, 14.3, r.TemperatureC, 0.001)
	assert.Equal(t, 72, r.HumidityPct)
	require.NotNil(t, r.WeatherCode)
	assert.Equal(t, 61, *r.WeatherCode)
	assert.InDelta(t, 11.5, r.WindSpeedKmh, 0.001)
	assert.Equal(t, 1, r.IsDay)

	assert.Equal(t, 1, httpmock.GetTotalCallCount())
	require.Len(t, obs.calls, 1)
	assert.NoError(t, obs.calls[0])
}

func TestOpenMeteoProvider_Fetch_MissingCurrent(t *testing.T) {
	client := setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, DefaultForecastURL,
		httpmock.NewStringResponder(http.StatusOK, `{"latitude": 1, "longitude": 2}`))

	p := NewOpenMeteoProvider(Config{Client: client})

	_, err := p.Fetch(context.Background(), 1, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrUpstream)
	assert.Contains(t, err.Error(), "missing current")
}

func TestOpenMeteoProvider_Fetch_NullWeatherCode(t *testing.T) {
	client := setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, DefaultForecastURL,
		httpmock.NewStringResponder(http.StatusOK, `{"current": {"temperature_2m": 3.1, "relative_humidity_2m": 88, "weather_code": null, "wind_speed_10m": 20.4, "is_day": 0}}`))

	p := NewOpenMeteoProvider(Config{Client: client})

	r, err := p.Fetch(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Nil(t, r.WeatherCode)
	assert.InDelta(t, 3.1, r.TemperatureC, 0.001)
}

func TestOpenMeteoProvider_Fetch_InvalidJSON(t *testing.T) {
	client := setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, DefaultForecastURL,
		httpmock.NewStringResponder(http.StatusOK, `{invalid json`))

	p := NewOpenMeteoProvider(Config{Client: client})

	_, err := p.Fetch(context.Background(), 1, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrUpstream)
}

func TestOpenMeteoProvider_Fetch_HTTPErrorIsSingleAttempt(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"bad_request", http.StatusBadRequest},
		{"too_many_requests", http.StatusTooManyRequests},
		{"internal_server_error", http.StatusInternalServerError},
		{"service_unavailable", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := setupHTTPMock(t)
			httpmock.RegisterResponder(http.MethodGet, DefaultForecastURL,
				httpmock.NewStringResponder(tt.statusCode, `{"error": true, "reason": "nope"}`))

			p := NewOpenMeteoProvider(Config{Client: client})

			_, err := p.Fetch(context.Background(), 1, 2)
			require.Error(t, err)
			assert.ErrorIs(t, err, weather.ErrUpstream)
			assert.Equal(t, 1, httpmock.GetTotalCallCount(), "no retry expected")
		})
	}
}

// A location the upstream rejects must not open the breaker for the others.
func TestOpenMeteoProvider_Fetch_ClientErrorsDoNotTripBreaker(t *testing.T) {
	client := setupHTTPMock(t)
	httpmock.RegisterResponderWithQuery(http.MethodGet, DefaultForecastURL,
		"latitude=200&longitude=0&current="+currentFields,
		httpmock.NewStringResponder(http.StatusBadRequest, `{"error": true, "reason": "Latitude must be in range of -90 to 90°."}`))
	httpmock.RegisterResponderWithQuery(http.MethodGet, DefaultForecastURL,
		"latitude=51.5&longitude=-0.12&current="+currentFields,
		httpmock.NewStringResponder(http.StatusOK, forecastSuccess))

	p := NewOpenMeteoProvider(Config{Client: client})
	p.httpCfg.Backoff = BackoffConfig{MaxRetries: 3, InitialInterval: time.Millisecond}

	for i := 0; i < 10; i++ {
		_, err := p.Fetch(context.Background(), 200, 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, weather.ErrUpstream)
		assert.NotErrorIs(t, err, errCircuitOpen)
	}
	assert.Equal(t, 10, httpmock.GetTotalCallCount(), "a rejected request is not retried")
	assert.Equal(t, gobreaker.StateClosed, p.circuit.State())

	r, err := p.Fetch(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	assert.InDelta(t, 14.3, r.TemperatureC, 0.001)
	assert.Equal(t, 11, httpmock.GetTotalCallCount())
}

func TestOpenMeteoProvider_Fetch_ServerErrorsTripBreaker(t *testing.T) {
	client := setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, DefaultForecastURL,
		httpmock.NewStringResponder(http.StatusBadGateway, ``))

	p := NewOpenMeteoProvider(Config{Client: client})

	for i := 0; i < 6; i++ {
		_, _ = p.Fetch(context.Background(), 1, 2)
	}
	assert.Equal(t, gobreaker.StateOpen, p.circuit.State())

	_, err := p.Fetch(context.Background(), 1, 2)
	assert.ErrorIs(t, err, errCircuitOpen)
	assert.Equal(t, 6, httpmock.GetTotalCallCount())
}

func TestOpenMeteoGeocoder_Search_ClientErrorsDoNotTripBreaker(t *testing.T) {
	client := setupHTTPMock(t)
	httpmock.RegisterResponderWithQuery(http.MethodGet, DefaultGeocodingURL,
		"name=%3F%3F&count=5&language=en&format=json",
		httpmock.NewStringResponder(http.StatusBadRequest, `{"error": true}`))
	httpmock.RegisterResponderWithQuery(http.MethodGet, DefaultGeocodingURL,
		"name=Paris&count=5&language=en&format=json",
		httpmock.NewStringResponder(http.StatusOK, geocodingSuccess))

	g := NewOpenMeteoGeocoder(Config{Client: client})

	for i := 0; i < 10; i++ {
		_, err := g.Search(context.Background(), "??")
		require.Error(t, err)
		assert.ErrorIs(t, err, weather.ErrUpstream)
	}
	assert.Equal(t, gobreaker.StateClosed, g.circuit.State())

	results, err := g.Search(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestOpenMeteoProvider_Fetch_RetriesWhenConfigured(t *testing.T) {
	client := setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, DefaultForecastURL,
		httpmock.NewStringResponder(http.StatusServiceUnavailable, ``).
			Then(httpmock.NewStringResponder(http.StatusOK, forecastSuccess)))

	p := NewOpenMeteoProvider(Config{Client: client})
	p.httpCfg.Backoff = BackoffConfig{MaxRetries: 1, InitialInterval: time.Millisecond}

	r, err := p.Fetch(context.Background(), 1, 2)
	require.NoError(t, err)
	require.NotNil(t, r.WeatherCode)
	assert.Equal(t, 61, *r.WeatherCode)
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}

func TestOpenMeteoProvider_Fetch_NetworkError(t *testing.T) {
	client := setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, DefaultForecastURL,
		httpmock.NewErrorResponder(assert.AnError))

	p := NewOpenMeteoProvider(Config{Client: client})

	_, err := p.Fetch(context.Background(), 1, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrUpstream)
}

func TestOpenMeteoGeocoder_Search_Success(t *testing.T) {
	client := setupHTTPMock(t)
	httpmock.RegisterResponderWithQuery(http.MethodGet, DefaultGeocodingURL,
		"name=Paris&count=5&language=en&format=json",
		httpmock.NewStringResponder(http.StatusOK, geocodingSuccess))

	g := NewOpenMeteoGeocoder(Config{Client: client})

	results, err := g.Search(context.Background(), "Paris")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, weather.SearchResult{
		Name:      "Paris",
		Latitude:  48.85341,
		Longitude: 2.3488,
		Country:   "France",
		Admin1:    "Île-de-France",
	}, results[0])
	assert.Equal(t, "Texas", results[1].Admin1)
	assert.Empty(t, results[2].Country)
	assert.Empty(t, results[2].Admin1)
}

func TestOpenMeteoGeocoder_Search_NoResultsField(t *testing.T) {
	client := setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, DefaultGeocodingURL,
		httpmock.NewStringResponder(http.StatusOK, `{"generationtime_ms": 0.5}`))

	g := NewOpenMeteoGeocoder(Config{Client: client})

	results, err := g.Search(context.Background(), "Nowhereville")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestOpenMeteoGeocoder_Search_EncodesQuery(t *testing.T) {
	client := setupHTTPMock(t)
	httpmock.RegisterResponderWithQuery(http.MethodGet, DefaultGeocodingURL,
		"name=New+York&count=5&language=en&format=json",
		httpmock.NewStringResponder(http.StatusOK, `{"results": [{"name": "New York", "latitude": 40.71, "longitude": -74.01}]}`))

	g := NewOpenMeteoGeocoder(Config{Client: client})

	results, err := g.Search(context.Background(), "New York")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "New York", results[0].Name)
}

func TestOpenMeteoGeocoder_Search_Failure(t *testing.T) {
	client := setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, DefaultGeocodingURL,
		httpmock.NewStringResponder(http.StatusOK, `not json`))

	g := NewOpenMeteoGeocoder(Config{Client: client})

	_, err := g.Search(context.Background(), "Paris")
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrUpstream)
}

func TestDoRequestWithResilience_InvalidConfig(t *testing.T) {
	cb := newBreaker("test", time.Minute)
	build := func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, "http://example.invalid", http.NoBody)
	}

	_, err := doRequestWithResilience(context.Background(), "test", HTTPClientConfig{}, cb, build)
	assert.ErrorIs(t, err, errNoHTTPClient)
	assert.ErrorIs(t, err, weather.ErrUpstream)

	cfg := HTTPClientConfig{Client: http.DefaultClient, Backoff: BackoffConfig{MaxRetries: -1}}
	_, err = doRequestWithResilience(context.Background(), "test", cfg, cb, build)
	assert.ErrorIs(t, err, errInvalidConfig)
}
