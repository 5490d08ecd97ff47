package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultForecastURL is the Open-Meteo current-conditions endpoint.
const DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"

const currentFields = "temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m,is_day"

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(cfg Config) *OpenMeteoProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultForecastURL
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		httpCfg: cfg.httpConfig(),
		circuit: newBreaker("openmeteo", cfg.BreakerTimeout),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoResponse struct {
	Current *struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		WeatherCode *int    `json:"weather_code"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		IsDay       int     `json:"is_day"`
	} `json:"current"`
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, lat, lon float64) (weather.ProviderReading, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
		values.Set("current", currentFields)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	}

	resp, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.ProviderReading{}, err
	}
	defer resp.Body.Close()

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.ProviderReading{}, upstream(fmt.Errorf("decode forecast response: %w", err))
	}
	if payload.Current == nil {
		return weather.ProviderReading{}, upstream(fmt.Errorf("invalid weather data received: missing current"))
	}

	c := payload.Current
	return weather.ProviderReading{
		ProviderName: p.name,
		TemperatureC: c.Temperature,
		HumidityPct:  int(c.Humidity),
		WindSpeedKmh: c.WindSpeed,
		WeatherCode:  c.WeatherCode,
		IsDay:        c.IsDay,
	}, nil
}
