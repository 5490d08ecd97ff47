package weather

// Location is a saved place with coordinates.
// ID is assigned by the store on creation and never reused.
type Location struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	IsFavorite bool    `json:"isFavorite"`
	Country    *string `json:"country"`
	Admin1     *string `json:"admin1"` // state or region
}

// NewLocation is the validated input for creating a Location.
type NewLocation struct {
	Name       string
	Latitude   float64
	Longitude  float64
	IsFavorite bool
	Country    *string
	Admin1     *string
}

// SearchResult is a single geocoding match. It has no identity and is never stored.
type SearchResult struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country,omitempty"`
	Admin1    string  `json:"admin1,omitempty"`
}

// WeatherData is the normalized current-conditions view for a location.
type WeatherData struct {
	Temperature float64 `json:"temperature"` // °C
	WeatherCode *int    `json:"weatherCode"` // WMO code, null when unreported
	WindSpeed   float64 `json:"windSpeed"`   // km/h
	Humidity    int     `json:"humidity"`    // percent
	Condition   string  `json:"condition"`
	IsDay       int     `json:"isDay"` // 1 during daytime, 0 at night
}
