package feeds

import (
	"time"
)

// Coordinate is a resolved geographic position.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ArrivalRecord is one upcoming vehicle visit at the monitored stop.
// DelayMinutes is positive when late, negative when early.
type ArrivalRecord struct {
	Line         string    `json:"line"`
	Destination  string    `json:"destination"`
	ExpectedTime time.Time `json:"expectedTime"`
	DelayMinutes int       `json:"delayMinutes"`
}

// AirQualitySnapshot is a city air-quality reading.
// PollutantReadings holds raw sensor values keyed by pollutant code.
type AirQualitySnapshot struct {
	AQI               int                `json:"aqi"`
	DominantPollutant string             `json:"dominantPollutant"`
	PollutantReadings map[string]float64 `json:"pollutantReadings"`
	StationName       string             `json:"stationName"`
	ObservedAt        time.Time          `json:"observedAt"`
}
