package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/dashboard-feeds/internal/common"
	"github.com/i474232898/dashboard-feeds/internal/feeds"
)

var errNoGoogleResults = errors.New("no google geocoding results")

// GoogleGeocoder implements feeds.GeocodeSource with the Google Geocoding API.
// The geocoder package keeps its API key in a package variable, so only one
// key can be active per process. It also pastes the address into the request
// URL as is, so Search query-escapes it first.
type GoogleGeocoder struct {
	name    string
	apiKey  string
	circuit *gobreaker.CircuitBreaker
	geocode func(geocoder.Address) (geocoder.Location, error)
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{
		name:    "google",
		apiKey:  apiKey,
		circuit: newCircuitBreaker("google-geocoder"),
		geocode: geocoder.Geocoding,
	}
}

func (g *GoogleGeocoder) Name() string {
	return g.name
}

// Search returns at most one candidate; the API client only exposes the best match.
func (g *GoogleGeocoder) Search(ctx context.Context, query string) ([]feeds.GeocodeCandidate, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("google geocoder api key is not configured")
	}

	type outcome struct {
		loc geocoder.Location
		err error
	}
	// The client has no context support; run it aside and stop waiting on cancel.
	done := make(chan outcome, 1)
	go func() {
		// Geocoding indexes the first result without checking the status it
		// does not know about (OVER_DAILY_LIMIT and the like).
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: google geocoder panicked: %v", feeds.ErrNetwork, r)}
			}
		}()
		res, err := g.circuit.Execute(func() (interface{}, error) {
			loc, err := g.geocode(geocoder.Address{City: url.QueryEscape(query)})
			if err != nil {
				if common.HasAny(strings.ToLower(err.Error()), "no results", "zero_results", "not found") {
					return nil, nil
				}
				return nil, fmt.Errorf("%w: %v", feeds.ErrNetwork, err)
			}
			return loc, nil
		})
		if err != nil {
			done <- outcome{err: err}
			return
		}
		loc, ok := res.(geocoder.Location)
		if !ok {
			done <- outcome{err: errNoGoogleResults}
			return
		}
		done <- outcome{loc: loc}
	}()

	var o outcome
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", feeds.ErrNetwork, ctx.Err())
	case o = <-done:
	}

	if errors.Is(o.err, errNoGoogleResults) {
		return []feeds.GeocodeCandidate{}, nil
	}
	if o.err != nil {
		if errors.Is(o.err, gobreaker.ErrOpenState) || errors.Is(o.err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w: %v", feeds.ErrNetwork, errCircuitOpen, o.err)
		}
		return nil, o.err
	}

	return []feeds.GeocodeCandidate{{
		Lat: strconv.FormatFloat(o.loc.Latitude, 'f', -1, 64),
		Lon: strconv.FormatFloat(o.loc.Longitude, 'f', -1, 64),
	}}, nil
}
