package client

import (
	"math"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// FeelsLike is a display heuristic, not a physical model: two degrees warmer
// when humidity is above 60%, two cooler otherwise. Halves round up.
func FeelsLike(w weather.WeatherData) int {
	adj := -2.0
	if w.Humidity > 60 {
		adj = 2.0
	}
	return int(math.Floor(w.Temperature + adj + 0.5))
}
