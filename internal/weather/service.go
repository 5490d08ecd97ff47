package weather

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Service ties the location store to the geocoding and weather providers.
type Service struct {
	store    LocationStore
	geocoder Geocoder
	provider Provider
	log      *zap.Logger
}

// NewService creates a new Service. A nil logger disables logging.
func NewService(store LocationStore, geocoder Geocoder, provider Provider, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    store,
		geocoder: geocoder,
		provider: provider,
		log:      log.Named("weather"),
	}
}

// ListLocations delegates to the underlying store.
func (s *Service) ListLocations(ctx context.Context) ([]Location, error) {
	locs, err := s.store.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	if locs == nil {
		locs = []Location{}
	}
	return locs, nil
}

// CreateLocation delegates to the underlying store.
func (s *Service) CreateLocation(ctx context.Context, in NewLocation) (Location, error) {
	loc, err := s.store.CreateLocation(ctx, in)
	if err != nil {
		return Location{}, err
	}
	s.log.Info("location created", zap.Int64("id", loc.ID), zap.String("name", loc.Name))
	return loc, nil
}

// DeleteLocation removes a location. Unknown ids are not an error.
func (s *Service) DeleteLocation(ctx context.Context, id int64) error {
	return s.store.DeleteLocation(ctx, id)
}

// SearchLocations forwards a free-text query to the geocoder. An empty
// query yields an empty list without any outbound call.
func (s *Service) SearchLocations(ctx context.Context, query string) ([]SearchResult, error) {
	if query == "" {
		return []SearchResult{}, nil
	}
	if s.geocoder == nil {
		return nil, fmt.Errorf("%w: no geocoder configured", ErrUpstream)
	}

	results, err := s.geocoder.Search(ctx, query)
	if err != nil {
		s.log.Error("geocoding failed",
			zap.String("provider", s.geocoder.Name()),
			zap.String("query", query),
			zap.Error(err))
		return nil, asUpstream(err)
	}
	if results == nil {
		results = []SearchResult{}
	}
	return results, nil
}

// CurrentWeather fetches current conditions for a stored location. The store's
// not-found error is returned unchanged; provider failures wrap ErrUpstream.
// Nothing is cached: every call hits the provider once.
func (s *Service) CurrentWeather(ctx context.Context, id int64) (WeatherData, error) {
	loc, err := s.store.GetLocation(ctx, id)
	if err != nil {
		return WeatherData{}, err
	}
	if s.provider == nil {
		return WeatherData{}, fmt.Errorf("%w: no weather provider configured", ErrUpstream)
	}

	r, err := s.provider.Fetch(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		s.log.Error("weather fetch failed",
			zap.String("provider", s.provider.Name()),
			zap.Int64("location_id", loc.ID),
			zap.Error(err))
		return WeatherData{}, asUpstream(err)
	}

	return WeatherData{
		Temperature: r.TemperatureC,
		WeatherCode: r.WeatherCode,
		WindSpeed:   r.WindSpeedKmh,
		Humidity:    r.HumidityPct,
		Condition:   ConditionOf(r.WeatherCode),
		IsDay:       r.IsDay,
	}, nil
}

func asUpstream(err error) error {
	if errors.Is(err, ErrUpstream) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
