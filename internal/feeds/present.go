package feeds

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// Severity is an AQI band, from SeverityGood (lowest) to SeverityVeryUnhealthy.
type Severity int

const (
	SeverityGood Severity = iota
	SeverityModerate
	SeverityUnhealthySensitive
	SeverityUnhealthy
	SeverityVeryUnhealthy
)

// SeverityFor bands an AQI value. Upper bounds are inclusive, so 50, 100,
// 150 and 200 fall in the lower band.
func SeverityFor(aqi int) Severity {
	switch {
	case aqi <= 50:
		return SeverityGood
	case aqi <= 100:
		return SeverityModerate
	case aqi <= 150:
		return SeverityUnhealthySensitive
	case aqi <= 200:
		return SeverityUnhealthy
	default:
		return SeverityVeryUnhealthy
	}
}

// Label is the French display label of the band.
func (s Severity) Label() string {
	switch s {
	case SeverityGood:
		return "Bon"
	case SeverityModerate:
		return "Modéré"
	case SeverityUnhealthySensitive:
		return "Mauvais pour les groupes sensibles"
	case SeverityUnhealthy:
		return "Mauvais"
	default:
		return "Très mauvais"
	}
}

// ColorClass is the style class set used to render the band.
func (s Severity) ColorClass() string {
	switch s {
	case SeverityGood:
		return "bg-green-100 text-green-800 border-green-200"
	case SeverityModerate:
		return "bg-yellow-100 text-yellow-800 border-yellow-200"
	case SeverityUnhealthySensitive:
		return "bg-orange-100 text-orange-800 border-orange-200"
	case SeverityUnhealthy:
		return "bg-red-100 text-red-800 border-red-200"
	default:
		return "bg-purple-100 text-purple-800 border-purple-200"
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityGood:
		return "good"
	case SeverityModerate:
		return "moderate"
	case SeverityUnhealthySensitive:
		return "unhealthy-sensitive"
	case SeverityUnhealthy:
		return "unhealthy"
	default:
		return "very-unhealthy"
	}
}

var pollutantNames = map[string]string{
	"pm25": "PM2.5",
	"pm10": "PM10",
	"o3":   "Ozone",
	"no2":  "Dioxyde d'azote",
	"so2":  "Dioxyde de soufre",
	"co":   "Monoxyde de carbone",
}

// PollutantName returns the display name of a pollutant code; unknown codes
// are returned unchanged.
func PollutantName(code string) string {
	if name, ok := pollutantNames[code]; ok {
		return name
	}
	return code
}

// DelayMinutes rounds expected - aimed to whole minutes, half a minute up.
func DelayMinutes(expected, aimed time.Time) int {
	ms := expected.Sub(aimed).Milliseconds()
	return int(math.Floor(float64(ms)/60000 + 0.5))
}

// DelayLabel renders a delay; zero or negative delays are on time.
func DelayLabel(delay int) string {
	if delay > 0 {
		return fmt.Sprintf("+%d min", delay)
	}
	return "À l'heure"
}

// DelayColorClass grades a delay for display.
func DelayColorClass(delay int) string {
	switch {
	case delay <= 2:
		return "text-green-600"
	case delay <= 5:
		return "text-yellow-600"
	default:
		return "text-red-600"
	}
}

// AirQualityView is the display-ready form of an AirQualitySnapshot.
type AirQualityView struct {
	AirQualitySnapshot
	Severity              string             `json:"severity"`
	SeverityLabel         string             `json:"severityLabel"`
	ColorClass            string             `json:"colorClass"`
	DominantPollutantName string             `json:"dominantPollutantName"`
	Readings              []PollutantReading `json:"readings"`
}

// PollutantReading is one pollutant row of the air-quality view.
type PollutantReading struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// NewAirQualityView derives the presentation fields of a snapshot.
// Readings are sorted by code so the output is stable.
func NewAirQualityView(s AirQualitySnapshot) AirQualityView {
	sev := SeverityFor(s.AQI)

	codes := make([]string, 0, len(s.PollutantReadings))
	for code := range s.PollutantReadings {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	readings := make([]PollutantReading, 0, len(codes))
	for _, code := range codes {
		v := s.PollutantReadings[code]
		readings = append(readings, PollutantReading{
			Code:    code,
			Name:    PollutantName(code),
			Value:   v,
			Display: strconv.FormatFloat(v, 'f', 1, 64),
		})
	}

	return AirQualityView{
		AirQualitySnapshot:    s,
		Severity:              sev.String(),
		SeverityLabel:         sev.Label(),
		ColorClass:            sev.ColorClass(),
		DominantPollutantName: PollutantName(s.DominantPollutant),
		Readings:              readings,
	}
}

// ArrivalView is the display-ready form of an ArrivalRecord.
type ArrivalView struct {
	ArrivalRecord
	DelayLabel string `json:"delayLabel"`
	DelayClass string `json:"delayClass"`
}

// NewArrivalViews derives display fields, keeping feed order.
func NewArrivalViews(records []ArrivalRecord) []ArrivalView {
	out := make([]ArrivalView, 0, len(records))
	for _, r := range records {
		out = append(out, ArrivalView{
			ArrivalRecord: r,
			DelayLabel:    DelayLabel(r.DelayMinutes),
			DelayClass:    DelayColorClass(r.DelayMinutes),
		})
	}
	return out
}

// CoordinateView adds a four-decimal display string to a coordinate.
type CoordinateView struct {
	Coordinate
	Display string `json:"display"`
}

// NewCoordinateView formats a coordinate for display.
func NewCoordinateView(c Coordinate) CoordinateView {
	return CoordinateView{
		Coordinate: c,
		Display:    fmt.Sprintf("Latitude: %.4f, Longitude: %.4f", c.Latitude, c.Longitude),
	}
}
