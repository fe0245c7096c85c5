package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/dashboard-feeds/internal/feeds"
)

// WAQIAirQuality implements feeds.AirQualitySource for the World Air Quality Index feed.
type WAQIAirQuality struct {
	name    string
	token   string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWAQIAirQuality(cfg HTTPClientConfig, baseURL, token string) *WAQIAirQuality {
	return &WAQIAirQuality{
		name:    "waqi",
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: cfg,
		circuit: newCircuitBreaker("waqi"),
	}
}

func (w *WAQIAirQuality) Name() string {
	return w.name
}

func (w *WAQIAirQuality) Fetch(ctx context.Context, city string) (feeds.AirQualitySnapshot, error) {
	if w.token == "" {
		return feeds.AirQualitySnapshot{}, fmt.Errorf("waqi token is not configured")
	}

	values := url.Values{}
	values.Set("token", w.token)
	u := fmt.Sprintf("%s/%s/?%s", w.baseURL, url.PathEscape(city), values.Encode())

	resp, err := doRequest(ctx, w.httpCfg, w.circuit, u, nil)
	if err != nil {
		return feeds.AirQualitySnapshot{}, err
	}

	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := decodeJSON(resp, &envelope); err != nil {
		return feeds.AirQualitySnapshot{}, err
	}
	if envelope.Status != "ok" {
		// On failure data holds the reason as a string.
		return feeds.AirQualitySnapshot{}, fmt.Errorf("%w: status %q: %s", feeds.ErrDataValidity, envelope.Status, string(envelope.Data))
	}

	var payload struct {
		AQI         any    `json:"aqi"`
		Dominentpol string `json:"dominentpol"`
		IAQI        map[string]struct {
			V float64 `json:"v"`
		} `json:"iaqi"`
		City struct {
			Name string `json:"name"`
		} `json:"city"`
		Time struct {
			ISO string `json:"iso"`
		} `json:"time"`
	}
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		return feeds.AirQualitySnapshot{}, fmt.Errorf("%w: decode data: %v", feeds.ErrDataValidity, err)
	}

	aqi, err := parseAQI(payload.AQI)
	if err != nil {
		return feeds.AirQualitySnapshot{}, err
	}

	readings := make(map[string]float64, len(payload.IAQI))
	for code, r := range payload.IAQI {
		readings[code] = r.V
	}

	var observed time.Time
	if payload.Time.ISO != "" {
		observed, err = time.Parse(time.RFC3339, payload.Time.ISO)
		if err != nil {
			log.Printf("DEBUG: waqi: unparsable observation time %q for %s: %v", payload.Time.ISO, city, err)
			observed = time.Time{}
		}
	}

	return feeds.AirQualitySnapshot{
		AQI:               aqi,
		DominantPollutant: payload.Dominentpol,
		PollutantReadings: readings,
		StationName:       payload.City.Name,
		ObservedAt:        observed,
	}, nil
}

// parseAQI accepts a JSON number or a numeric string; stations without a
// reading report "-".
func parseAQI(v any) (int, error) {
	switch x := v.(type) {
	case float64:
		return int(math.Round(x)), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("%w: aqi %q", feeds.ErrDataValidity, x)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: aqi missing", feeds.ErrDataValidity)
	}
}
