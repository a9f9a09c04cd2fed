package view

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/avelychko/weather-dashboard/internal/models"
)

// User-facing warnings for missing or partial upstream data. Each view degrades
// independently: a warning on one tab never fails the page.
const (
	WarnForecast   = "Could not retrieve forecast data."
	WarnCurrent    = "Could not retrieve current conditions."
	WarnHourly     = "Could not retrieve hourly forecast data."
	WarnHistorical = "Could not retrieve historical data."
)

// Metric is a single labeled value on the current-conditions tab.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Series is a named sequence of values aligned with a view's time axis.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Table is the raw tabular companion to a chart.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// CurrentView summarizes instantaneous conditions as metric cards.
type CurrentView struct {
	Metrics []Metric `json:"metrics,omitempty"`
	Warning string   `json:"warning,omitempty"`
}

// HourlyView is the 24-hour line chart plus its table.
type HourlyView struct {
	Time    []string `json:"time,omitempty"`
	Series  []Series `json:"series,omitempty"`
	Table   *Table   `json:"table,omitempty"`
	Warning string   `json:"warning,omitempty"`
}

// HistoricalView is the 7-day grouped temperature bar chart plus its table.
type HistoricalView struct {
	Time    []string `json:"time,omitempty"`
	Bars    []Series `json:"bars,omitempty"`
	Table   *Table   `json:"table,omitempty"`
	Warning string   `json:"warning,omitempty"`
}

// Dashboard is the full view model for one render cycle. It is a pure function
// of the pipeline's outputs and carries no state between interactions.
type Dashboard struct {
	City       string         `json:"city"`
	Country    string         `json:"country,omitempty"`
	Title      string         `json:"title"`
	Current    CurrentView    `json:"current"`
	Hourly     HourlyView     `json:"hourly"`
	Historical HistoricalView `json:"historical"`
}

var titleCaser = cases.Title(language.Und)

// BuildDashboard assembles the three tabs from the resolved location and the
// two fetch results. A nil payload means that fetch failed entirely; the
// affected tabs render warnings.
func BuildDashboard(loc models.Location, current, historical *models.Payload) Dashboard {
	city := titleCaser.String(strings.TrimSpace(loc.Name))
	title := "Weather for " + city
	if loc.Country != "" {
		title += ", " + loc.Country
	}
	return Dashboard{
		City:       city,
		Country:    loc.Country,
		Title:      title,
		Current:    BuildCurrent(current),
		Hourly:     BuildHourly(current),
		Historical: BuildHistorical(historical),
	}
}

// BuildCurrent renders the current-conditions tab. Requires a temperature
// value; other fields degrade individually.
func BuildCurrent(p *models.Payload) CurrentView {
	if p == nil {
		return CurrentView{Warning: WarnForecast}
	}
	cur := p.Current
	if cur == nil || cur.Temperature == nil {
		return CurrentView{Warning: WarnCurrent}
	}

	icon := IconUnknown
	if cur.WeatherCode != nil {
		icon = IconFor(*cur.WeatherCode)
	}
	return CurrentView{
		Metrics: []Metric{
			{Label: "Temperature " + icon, Value: formatFloat(*cur.Temperature) + "°C"},
			{Label: "Wind Speed 💨", Value: windValue(cur.WindSpeed)},
			{Label: "Precipitation Chance 💧", Value: precipValue(cur.PrecipitationProbability)},
		},
	}
}

// BuildHourly renders the 24-hour tab: one series per available variable over
// the shared time axis, plus the raw table.
func BuildHourly(p *models.Payload) HourlyView {
	if p == nil {
		return HourlyView{Warning: WarnForecast}
	}
	h := p.Hourly
	if h == nil || len(h.Time) == 0 {
		return HourlyView{Warning: WarnHourly}
	}

	n := len(h.Time)
	var series []Series
	if len(h.Temperature) > 0 {
		series = append(series, Series{Name: "Temperature (°C)", Values: clampFloats(h.Temperature, n)})
	}
	if len(h.PrecipitationProbability) > 0 {
		series = append(series, Series{Name: "Precipitation Probability (%)", Values: intsToFloats(clampInts(h.PrecipitationProbability, n))})
	}
	if len(h.WindSpeed) > 0 {
		series = append(series, Series{Name: "Wind Speed (km/h)", Values: clampFloats(h.WindSpeed, n)})
	}

	table := &Table{
		Columns: []string{"Time", "Temperature (°C)", "Precipitation Probability (%)", "Wind Speed (km/h)"},
	}
	for i := 0; i < n; i++ {
		table.Rows = append(table.Rows, []string{
			h.Time[i],
			floatCell(h.Temperature, i),
			intCell(h.PrecipitationProbability, i),
			floatCell(h.WindSpeed, i),
		})
	}

	return HourlyView{Time: h.Time, Series: series, Table: table}
}

// BuildHistorical renders the 7-day tab: max/min temperature bars relabeled
// for display, plus the raw table with weather icons.
func BuildHistorical(p *models.Payload) HistoricalView {
	if p == nil {
		return HistoricalView{Warning: WarnHistorical}
	}
	d := p.Daily
	if d == nil || len(d.Time) == 0 {
		return HistoricalView{Warning: WarnHistorical}
	}

	n := len(d.Time)
	bars := []Series{
		{Name: "Max Temp (°C)", Values: clampFloats(d.TemperatureMax, n)},
		{Name: "Min Temp (°C)", Values: clampFloats(d.TemperatureMin, n)},
	}

	table := &Table{
		Columns: []string{"Date", "Max Temp (°C)", "Min Temp (°C)", "Weather"},
	}
	for i := 0; i < n; i++ {
		weather := ""
		if i < len(d.WeatherCode) {
			weather = IconFor(d.WeatherCode[i])
		}
		table.Rows = append(table.Rows, []string{
			d.Time[i],
			floatCell(d.TemperatureMax, i),
			floatCell(d.TemperatureMin, i),
			weather,
		})
	}

	return HistoricalView{Time: d.Time, Bars: bars, Table: table}
}

// formatFloat renders a float with minimal digits: 21.5 -> "21.5", 12 -> "12".
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func windValue(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return formatFloat(*v) + " km/h"
}

func precipValue(v *int) string {
	if v == nil {
		return "n/a"
	}
	return strconv.Itoa(*v) + "%"
}

// clampFloats truncates values to at most n entries so a ragged upstream
// response cannot push a series past the time axis.
func clampFloats(values []float64, n int) []float64 {
	if len(values) > n {
		return values[:n]
	}
	return values
}

func clampInts(values []int, n int) []int {
	if len(values) > n {
		return values[:n]
	}
	return values
}

func intsToFloats(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

func floatCell(values []float64, i int) string {
	if i >= len(values) {
		return ""
	}
	return formatFloat(values[i])
}

func intCell(values []int, i int) string {
	if i >= len(values) {
		return ""
	}
	return strconv.Itoa(values[i])
}
