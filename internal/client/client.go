// Package client is a caching consumer of the weather dashboard API. It keys
// cached responses by request path and parameters and drops the location list
// whenever a create or delete succeeds. Callers always get their own copy of
// cached data.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	locationsPath = "/api/locations"
	searchPath    = "/api/locations/search"
	weatherPath   = "/api/weather/"

	// MinQueryLength is the shortest trimmed search query that reaches the API.
	MinQueryLength = 2

	searchTTL       = 5 * time.Minute
	defaultTTL      = time.Minute
	cleanupInterval = 10 * time.Minute
)

// Fallback messages used when an error response carries no message.
const (
	MsgListFailed    = "Failed to fetch locations"
	MsgCreateFailed  = "Failed to add location"
	MsgDeleteFailed  = "Failed to delete location"
	MsgSearchFailed  = "Search failed"
	MsgWeatherFailed = "Failed to fetch weather"
)

// APIError is returned for any failed call. Message is the server's message
// when it sent one, otherwise the operation's fallback.
type APIError struct {
	Status  int
	Message string
	Field   string
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Client talks to the API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *cache.Cache
	log     *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the client logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New returns a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		cache:   cache.New(defaultTTL, cleanupInterval),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("client")
	return c
}

// ListLocations returns every saved location.
func (c *Client) ListLocations(ctx context.Context) ([]weather.Location, error) {
	if v, ok := c.cache.Get(locationsPath); ok {
		return slices.Clone(v.([]weather.Location)), nil
	}

	var locs []weather.Location
	if err := c.do(ctx, http.MethodGet, locationsPath, nil, http.StatusOK, &locs, MsgListFailed); err != nil {
		return nil, err
	}
	if locs == nil {
		locs = []weather.Location{}
	}
	c.cache.SetDefault(locationsPath, slices.Clone(locs))
	return locs, nil
}

type createRequest struct {
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	IsFavorite bool    `json:"isFavorite"`
	Country    *string `json:"country,omitempty"`
	Admin1     *string `json:"admin1,omitempty"`
}

// CreateLocation saves a location and invalidates the cached list.
func (c *Client) CreateLocation(ctx context.Context, in weather.NewLocation) (weather.Location, error) {
	body, err := json.Marshal(createRequest{
		Name:       in.Name,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		IsFavorite: in.IsFavorite,
		Country:    in.Country,
		Admin1:     in.Admin1,
	})
	if err != nil {
		return weather.Location{}, &APIError{Message: MsgCreateFailed, Err: err}
	}

	var loc weather.Location
	if err := c.do(ctx, http.MethodPost, locationsPath, body, http.StatusCreated, &loc, MsgCreateFailed); err != nil {
		return weather.Location{}, err
	}
	c.cache.Delete(locationsPath)
	return loc, nil
}

// DeleteLocation removes a location and invalidates the cached list.
func (c *Client) DeleteLocation(ctx context.Context, id int64) error {
	path := locationsPath + "/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodDelete, path, nil, http.StatusNoContent, nil, MsgDeleteFailed); err != nil {
		return err
	}
	c.cache.Delete(locationsPath)
	c.cache.Delete(weatherKey(id))
	return nil
}

// SearchLocations geocodes query. Queries shorter than MinQueryLength after
// trimming return an empty slice without a request.
func (c *Client) SearchLocations(ctx context.Context, query string) ([]weather.SearchResult, error) {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return []weather.SearchResult{}, nil
	}

	path := searchPath + "?" + url.Values{"query": {q}}.Encode()
	if v, ok := c.cache.Get(path); ok {
		return slices.Clone(v.([]weather.SearchResult)), nil
	}

	var results []weather.SearchResult
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &results, MsgSearchFailed); err != nil {
		return nil, err
	}
	if results == nil {
		results = []weather.SearchResult{}
	}
	c.cache.Set(path, slices.Clone(results), searchTTL)
	return results, nil
}

// Weather returns current conditions for a saved location, served from cache
// while fresh.
func (c *Client) Weather(ctx context.Context, id int64) (weather.WeatherData, error) {
	if v, ok := c.cache.Get(weatherKey(id)); ok {
		return cloneWeather(v.(weather.WeatherData)), nil
	}
	return c.RefreshWeather(ctx, id)
}

// RefreshWeather always fetches and replaces the cached conditions.
func (c *Client) RefreshWeather(ctx context.Context, id int64) (weather.WeatherData, error) {
	var data weather.WeatherData
	if err := c.do(ctx, http.MethodGet, weatherKey(id), nil, http.StatusOK, &data, MsgWeatherFailed); err != nil {
		return weather.WeatherData{}, err
	}
	c.cache.SetDefault(weatherKey(id), cloneWeather(data))
	return data, nil
}

func cloneWeather(d weather.WeatherData) weather.WeatherData {
	if d.WeatherCode != nil {
		code := *d.WeatherCode
		d.WeatherCode = &code
	}
	return d
}

func weatherKey(id int64) string {
	return weatherPath + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, want int, out any, fallback string) error {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return &APIError{Message: fallback, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &APIError{Message: fallback, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return decodeError(resp, fallback)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: fallback, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func decodeError(resp *http.Response, fallback string) error {
	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: fallback,
		Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
	}

	var body struct {
		Message string `json:"message"`
		Field   string `json:"field"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
		apiErr.Field = body.Field
	}
	return apiErr
}

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
