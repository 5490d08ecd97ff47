package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultGeocodingURL is the Open-Meteo place search endpoint.
const DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

const (
	geocodingCount    = 5
	geocodingLanguage = "en"
)

// OpenMeteoGeocoder implements weather.Geocoder using the Open-Meteo geocoding API.
type OpenMeteoGeocoder struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoGeocoder(cfg Config) *OpenMeteoGeocoder {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultGeocodingURL
	}
	return &OpenMeteoGeocoder{
		name:    "openmeteo-geocoding",
		baseURL: baseURL,
		httpCfg: cfg.httpConfig(),
		circuit: newBreaker("openmeteo-geocoding", cfg.BreakerTimeout),
	}
}

func (g *OpenMeteoGeocoder) Name() string {
	return g.name
}

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
		Admin1    string  `json:"admin1"`
	} `json:"results"`
}

// Search returns up to five matches for query. A response without a
// results field yields an empty list.
func (g *OpenMeteoGeocoder) Search(ctx context.Context, query string) ([]weather.SearchResult, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("name", query)
		values.Set("count", fmt.Sprintf("%d", geocodingCount))
		values.Set("language", geocodingLanguage)
		values.Set("format", "json")

		u := fmt.Sprintf("%s?%s", g.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	}

	resp, err := doRequestWithResilience(ctx, g.name, g.httpCfg, g.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload geocodingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, upstream(fmt.Errorf("decode geocoding response: %w", err))
	}

	results := make([]weather.SearchResult, 0, len(payload.Results))
	for _, r := range payload.Results {
		results = append(results, weather.SearchResult{
			Name:      r.Name,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Country:   r.Country,
			Admin1:    r.Admin1,
		})
	}
	return results, nil
}
