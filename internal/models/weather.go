package models

// Location is the result of geocoding a free-text city name.
// Built from the first geocoding match; discarded after each query.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
}

// CurrentConditions is an immutable snapshot of instantaneous weather.
// Fields are pointers because a successful upstream response may omit any of them;
// the presenter degrades per-field instead of failing the view.
type CurrentConditions struct {
	Temperature              *float64 `json:"temperature_2m,omitempty"`
	WeatherCode              *int     `json:"weather_code,omitempty"`
	PrecipitationProbability *int     `json:"precipitation_probability,omitempty"`
	WindSpeed                *float64 `json:"wind_speed_10m,omitempty"`
}

// HourlySeries holds the 24-hour hourly breakdown as parallel arrays,
// mirroring the upstream wire format. Insertion order is chronological.
type HourlySeries struct {
	Time                     []string  `json:"time,omitempty"`
	Temperature              []float64 `json:"temperature_2m,omitempty"`
	PrecipitationProbability []int     `json:"precipitation_probability,omitempty"`
	WindSpeed                []float64 `json:"wind_speed_10m,omitempty"`
}

// DailyHistory holds daily aggregates for the 7 days preceding today,
// again as parallel arrays in chronological order.
type DailyHistory struct {
	Time           []string  `json:"time,omitempty"`
	TemperatureMax []float64 `json:"temperature_2m_max,omitempty"`
	TemperatureMin []float64 `json:"temperature_2m_min,omitempty"`
	WeatherCode    []int     `json:"weather_code,omitempty"`
}

// Payload is the raw structured weather data returned by a single forecast call.
// Current and Hourly are populated in current mode, Daily in historical mode.
// Any block may be nil when the upstream response lacks the corresponding key.
type Payload struct {
	Current *CurrentConditions `json:"current,omitempty"`
	Hourly  *HourlySeries      `json:"hourly,omitempty"`
	Daily   *DailyHistory      `json:"daily,omitempty"`
}
