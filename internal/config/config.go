package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Geocoder backends.
const (
	GeocoderNominatim = "nominatim"
	GeocoderGoogle    = "google"
)

type AppConfig struct {
	Port string

	// HTTPTimeout bounds each outbound request; FetchTimeout bounds a whole fetch cycle.
	HTTPTimeout  time.Duration
	FetchTimeout time.Duration
	UserAgent    string

	GeocoderProvider     string
	NominatimBaseURL     string
	GoogleGeocoderAPIKey string

	IDFMAPIKey           string
	IDFMBaseURL          string
	TransitMonitoringRef string
	TransitLineRef       string

	WAQIToken             string
	WAQIBaseURL           string
	AirQualityDefaultCity string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")

	httpTimeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = httpTimeout

	fetchTimeout, err := time.ParseDuration(getenvDefault("FETCH_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
	}
	cfg.FetchTimeout = fetchTimeout

	cfg.UserAgent = getenvDefault("USER_AGENT", "dashboard-feeds/1.0")

	cfg.GeocoderProvider = strings.ToLower(getenvDefault("GEOCODER_PROVIDER", GeocoderNominatim))
	switch cfg.GeocoderProvider {
	case GeocoderNominatim, GeocoderGoogle:
	default:
		return nil, fmt.Errorf("invalid GEOCODER_PROVIDER %q: want %q or %q", cfg.GeocoderProvider, GeocoderNominatim, GeocoderGoogle)
	}
	cfg.NominatimBaseURL = getenvDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org/search")
	cfg.GoogleGeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")
	if cfg.GeocoderProvider == GeocoderGoogle && cfg.GoogleGeocoderAPIKey == "" {
		return nil, fmt.Errorf("GOOGLE_GEOCODER_API_KEY is required when GEOCODER_PROVIDER=%s", GeocoderGoogle)
	}

	cfg.IDFMAPIKey = os.Getenv("IDFM_API_KEY")
	cfg.IDFMBaseURL = getenvDefault("IDFM_BASE_URL", "https://prim.iledefrance-mobilites.fr/marketplace/stop-monitoring")
	cfg.TransitMonitoringRef = getenvDefault("TRANSIT_MONITORING_REF", "STIF:StopPoint:Q:473921:")
	cfg.TransitLineRef = getenvDefault("TRANSIT_LINE_REF", "STIF:Line::C01742:")

	cfg.WAQIToken = os.Getenv("WAQI_TOKEN")
	cfg.WAQIBaseURL = getenvDefault("WAQI_BASE_URL", "https://api.waqi.info/feed")
	cfg.AirQualityDefaultCity = getenvDefault("AIR_QUALITY_DEFAULT_CITY", "paris")

	if cfg.IDFMAPIKey == "" {
		log.Printf("INFO: IDFM_API_KEY not set; transit feed will report errors")
	}
	if cfg.WAQIToken == "" {
		log.Printf("INFO: WAQI_TOKEN not set; air-quality feed will report errors")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
