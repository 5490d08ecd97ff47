package weather

// Condition maps a WMO weather code to a human-readable condition.
// Ranges are checked in order and the first match wins. Codes that fall
// between the listed ranges (56-60, 66-70, 76-79, 83-94) are reported as
// "Unknown".
func Condition(code int) string {
	switch {
	case code == 0:
		return "Clear sky"
	case code == 1:
		return "Mainly clear"
	case code == 2:
		return "Partly cloudy"
	case code == 3:
		return "Overcast"
	case code >= 45 && code <= 48:
		return "Fog"
	case code >= 51 && code <= 55:
		return "Drizzle"
	case code >= 61 && code <= 65:
		return "Rain"
	case code >= 71 && code <= 75:
		return "Snow"
	case code >= 80 && code <= 82:
		return "Rain showers"
	case code >= 95:
		return "Thunderstorm"
	default:
		return "Unknown"
	}
}

// ConditionOf is Condition for a code that may be missing. A missing code is
// "Unknown", never "Clear sky".
func ConditionOf(code *int) string {
	if code == nil {
		return "Unknown"
	}
	return Condition(*code)
}
