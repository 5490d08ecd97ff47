package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// SeedLocations are inserted when the store is empty.
var SeedLocations = []weather.NewLocation{
	{
		Name:      "London",
		Latitude:  51.5074,
		Longitude: -0.1278,
		Country:   strPtr("United Kingdom"),
		Admin1:    strPtr("England"),
	},
	{
		Name:      "New York",
		Latitude:  40.7128,
		Longitude: -74.0060,
		Country:   strPtr("United States"),
		Admin1:    strPtr("New York"),
	},
}

// EnsureSeeded inserts SeedLocations if and only if the store holds no rows.
// The check is the row count, not a persisted flag: a store emptied by the
// user is seeded again on the next start. It reports whether rows were added.
func EnsureSeeded(ctx context.Context, st weather.LocationStore, log *zap.Logger) (bool, error) {
	if log == nil {
		log = zap.NewNop()
	}

	n, err := st.CountLocations(ctx)
	if err != nil {
		return false, fmt.Errorf("seed: %w", err)
	}
	if n > 0 {
		log.Debug("store already populated, skipping seed", zap.Int64("locations", n))
		return false, nil
	}

	for _, in := range SeedLocations {
		loc, err := st.CreateLocation(ctx, in)
		if err != nil {
			return false, fmt.Errorf("seed %s: %w", in.Name, err)
		}
		log.Info("seeded location", zap.Int64("id", loc.ID), zap.String("name", loc.Name))
	}
	return true, nil
}

func strPtr(s string) *string {
	return &s
}
