package providers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const userAgent = "weather-dashboard/1.0"

// BackoffConfig controls exponential backoff behaviour. MaxRetries of zero
// means a single attempt.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Observer receives the outcome of every outbound attempt.
type Observer interface {
	ObserveUpstream(provider string, d time.Duration, err error)
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client   *http.Client
	Backoff  BackoffConfig
	Observer Observer
}

// Config is shared by all provider constructors. Zero values fall back to
// the provider defaults.
type Config struct {
	Client         *http.Client
	BaseURL        string
	MaxRetries     int
	BreakerTimeout time.Duration
	Observer       Observer
}

func (c Config) httpConfig() HTTPClientConfig {
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return HTTPClientConfig{
		Client: client,
		Backoff: BackoffConfig{
			MaxRetries:      c.MaxRetries,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		Observer: c.Observer,
	}
}

func newBreaker(name string, timeout time.Duration) *gobreaker.CircuitBreaker {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         name,
		MaxRequests:  5,
		Interval:     1 * time.Minute,
		Timeout:      timeout,
		IsSuccessful: countsAsHealthy,
	})
}

// countsAsHealthy keeps request-specific rejections (4xx other than 429) from
// tripping the breaker. The upstream answered, so other requests still get through.
func countsAsHealthy(err error) bool {
	return err == nil || errors.Is(err, errUnexpected)
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// doRequestWithResilience executes the HTTP request through a circuit breaker,
// retrying with exponential backoff when MaxRetries > 0. Every returned error
// wraps weather.ErrUpstream.
func doRequestWithResilience(
	ctx context.Context,
	provider string,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(ctx context.Context) (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, upstream(errNoHTTPClient)
	}
	if cfg.Backoff.MaxRetries < 0 || (cfg.Backoff.MaxRetries > 0 && cfg.Backoff.InitialInterval <= 0) {
		return nil, upstream(errInvalidConfig)
	}

	var attempt int

	for {
		if ctx.Err() != nil {
			return nil, upstream(ctx.Err())
		}

		req, err := buildRequest(ctx)
		if err != nil {
			return nil, upstream(err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			// Handle rate limiting and server errors explicitly.
			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}

			return resp, nil
		})
		if cfg.Observer != nil {
			cfg.Observer.ObserveUpstream(provider, time.Since(start), err)
		}

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, upstream(fmt.Errorf("unexpected result type from circuit breaker"))
			}
			return resp, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, upstream(fmt.Errorf("%w: %v", errCircuitOpen, err))
		}

		// A rejected request fails the same way on every attempt.
		if errors.Is(err, errUnexpected) || attempt >= cfg.Backoff.MaxRetries {
			return nil, upstream(err)
		}

		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, upstream(ctx.Err())
		case <-timer.C:
		}

		attempt++
	}
}

func upstream(err error) error {
	return fmt.Errorf("%w: %w", weather.ErrUpstream, err)
}
