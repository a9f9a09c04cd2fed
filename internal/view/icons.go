package view

// IconUnknown is the sentinel glyph for weather codes outside the known set.
const IconUnknown = "❓"

// weatherIcons maps the WMO weather-code subset reported by the forecast API
// to display glyphs. Fixed at build time; never mutated.
var weatherIcons = map[int]string{
	0: "☀️", 1: "🌤️", 2: "⛅️", 3: "☁️",
	45: "🌫️", 48: "🌫️",
	51: "🌦️", 53: "🌦️", 55: "🌦️",
	56: "🌨️", 57: "🌨️",
	61: "🌧️", 63: "🌧️", 65: "🌧️",
	66: "🌨️", 67: "🌨️",
	71: "❄️", 73: "❄️", 75: "❄️",
	77: "❄️",
	80: "🌧️", 81: "🌧️", 82: "🌧️",
	85: "❄️", 86: "❄️",
	95: "⛈️", 96: "⛈️", 99: "⛈️",
}

// IconFor returns the display glyph for a WMO weather code. Total over all
// integers: codes not in the table map to IconUnknown.
func IconFor(code int) string {
	if icon, ok := weatherIcons[code]; ok {
		return icon
	}
	return IconUnknown
}
