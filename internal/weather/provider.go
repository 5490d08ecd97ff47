package weather

import (
	"context"
)

// ProviderReading is a single provider's normalized current-conditions reading.
type ProviderReading struct {
	ProviderName string

	TemperatureC float64
	HumidityPct  int
	WindSpeedKmh float64
	WeatherCode  *int // nil when the provider omitted it
	IsDay        int
}

// Provider abstracts a current-conditions weather source (e.g. Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, lat, lon float64) (ProviderReading, error)
}

// Geocoder resolves free-text place names to coordinates.
type Geocoder interface {
	Name() string
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// LocationStore is the contract every location backend (memory, sqlite, mysql) satisfies.
type LocationStore interface {
	ListLocations(ctx context.Context) ([]Location, error)
	GetLocation(ctx context.Context, id int64) (Location, error)
	CreateLocation(ctx context.Context, in NewLocation) (Location, error)
	DeleteLocation(ctx context.Context, id int64) error
	CountLocations(ctx context.Context) (int64, error)
}
