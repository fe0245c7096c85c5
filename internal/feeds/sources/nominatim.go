package sources

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/dashboard-feeds/internal/feeds"
)

// NominatimGeocoder implements feeds.GeocodeSource against OpenStreetMap Nominatim.
type NominatimGeocoder struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewNominatimGeocoder(cfg HTTPClientConfig, baseURL string) *NominatimGeocoder {
	return &NominatimGeocoder{
		name:    "nominatim",
		baseURL: baseURL,
		httpCfg: cfg,
		circuit: newCircuitBreaker("nominatim"),
	}
}

func (g *NominatimGeocoder) Name() string {
	return g.name
}

func (g *NominatimGeocoder) Search(ctx context.Context, query string) ([]feeds.GeocodeCandidate, error) {
	values := url.Values{}
	values.Set("format", "json")
	values.Set("q", query)

	u := fmt.Sprintf("%s?%s", g.baseURL, values.Encode())
	resp, err := doRequest(ctx, g.httpCfg, g.circuit, u, nil)
	if err != nil {
		return nil, err
	}

	var payload []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}

	candidates := make([]feeds.GeocodeCandidate, 0, len(payload))
	for _, p := range payload {
		candidates = append(candidates, feeds.GeocodeCandidate{
			Lat:         p.Lat,
			Lon:         p.Lon,
			DisplayName: p.DisplayName,
		})
	}
	return candidates, nil
}
