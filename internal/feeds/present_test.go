package feeds

import (
	"testing"
	"time"
)

func TestSeverityBands(t *testing.T) {
	tests := []struct {
		aqi   int
		want  Severity
		label string
	}{
		{0, SeverityGood, "Bon"},
		{42, SeverityGood, "Bon"},
		{50, SeverityGood, "Bon"},
		{51, SeverityModerate, "Modéré"},
		{100, SeverityModerate, "Modéré"},
		{101, SeverityUnhealthySensitive, "Mauvais pour les groupes sensibles"},
		{150, SeverityUnhealthySensitive, "Mauvais pour les groupes sensibles"},
		{151, SeverityUnhealthy, "Mauvais"},
		{175, SeverityUnhealthy, "Mauvais"},
		{200, SeverityUnhealthy, "Mauvais"},
		{201, SeverityVeryUnhealthy, "Très mauvais"},
		{250, SeverityVeryUnhealthy, "Très mauvais"},
		{-5, SeverityGood, "Bon"},
	}

	for _, tt := range tests {
		got := SeverityFor(tt.aqi)
		if got != tt.want {
			t.Fatalf("aqi %d: expected %s, got %s", tt.aqi, tt.want, got)
		}
		if got.Label() != tt.label {
			t.Fatalf("aqi %d: expected label %q, got %q", tt.aqi, tt.label, got.Label())
		}
	}
}

func TestSeverityColorClasses(t *testing.T) {
	if c := SeverityFor(42).ColorClass(); c != "bg-green-100 text-green-800 border-green-200" {
		t.Fatalf("unexpected low band class %q", c)
	}
	if c := SeverityFor(250).ColorClass(); c != "bg-purple-100 text-purple-800 border-purple-200" {
		t.Fatalf("unexpected max band class %q", c)
	}
}

func TestPollutantName(t *testing.T) {
	tests := map[string]string{
		"pm25": "PM2.5",
		"pm10": "PM10",
		"o3":   "Ozone",
		"no2":  "Dioxyde d'azote",
		"so2":  "Dioxyde de soufre",
		"co":   "Monoxyde de carbone",
		"t":    "t",
		"":     "",
		"PM25": "PM25",
	}
	for code, want := range tests {
		if got := PollutantName(code); got != want {
			t.Fatalf("code %q: expected %q, got %q", code, want, got)
		}
	}
}

func TestDelayMinutes(t *testing.T) {
	aimed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		offset time.Duration
		want   int
	}{
		{0, 0},
		{5 * time.Minute, 5},
		{-3 * time.Minute, -3},
		{89 * time.Second, 1},
		{90 * time.Second, 2},
		{-30 * time.Second, 0},
		{-31 * time.Second, -1},
		{29 * time.Second, 0},
	}
	for _, tt := range tests {
		if got := DelayMinutes(aimed.Add(tt.offset), aimed); got != tt.want {
			t.Fatalf("offset %s: expected %d, got %d", tt.offset, tt.want, got)
		}
	}
}

func TestDelayLabels(t *testing.T) {
	if got := DelayLabel(0); got != "À l'heure" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := DelayLabel(-2); got != "À l'heure" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := DelayLabel(4); got != "+4 min" {
		t.Fatalf("unexpected label %q", got)
	}
	if DelayColorClass(2) != "text-green-600" || DelayColorClass(5) != "text-yellow-600" || DelayColorClass(6) != "text-red-600" {
		t.Fatalf("unexpected delay classes")
	}
}

func TestNewAirQualityView(t *testing.T) {
	v := NewAirQualityView(AirQualitySnapshot{
		AQI:               175,
		DominantPollutant: "o3",
		PollutantReadings: map[string]float64{"pm25": 80.26, "o3": 175, "w": 3.4},
	})

	if v.SeverityLabel != "Mauvais" || v.Severity != "unhealthy" || v.DominantPollutantName != "Ozone" {
		t.Fatalf("unexpected derived fields: %+v", v)
	}
	if len(v.Readings) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(v.Readings))
	}
	if v.Readings[0].Code != "o3" || v.Readings[0].Display != "175.0" {
		t.Fatalf("unexpected first reading: %+v", v.Readings[0])
	}
	if v.Readings[1].Name != "PM2.5" || v.Readings[1].Display != "80.3" {
		t.Fatalf("unexpected second reading: %+v", v.Readings[1])
	}
	if v.Readings[2].Name != "w" {
		t.Fatalf("unknown code should pass through, got %+v", v.Readings[2])
	}
}
