package feeds

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/dashboard-feeds/internal/polling"
)

const (
	msgCityNotFound  = "Ville non trouvée"
	msgGeocodeFailed = "Impossible de trouver cette ville"
)

// GeocodeResolver turns a place name into a Coordinate on explicit request.
// It is not interval driven.
type GeocodeResolver struct {
	source GeocodeSource
	engine *polling.Engine[Coordinate]
}

// NewGeocodeResolver creates a resolver backed by source. A zero timeout
// leaves lookups unbounded.
func NewGeocodeResolver(source GeocodeSource, timeout time.Duration) *GeocodeResolver {
	return &GeocodeResolver{
		source: source,
		engine: polling.NewEngine[Coordinate]("geocode", nil,
			polling.WithTimeout(timeout),
			polling.WithErrorMessage(geocodeMessage),
		),
	}
}

// Resolve looks up query and returns the coordinate of the first candidate.
//
// An empty query returns ErrEmptyQuery without fetching or touching state.
// Failures are either ErrEmptyResult (no candidate) or ErrNetwork.
func (r *GeocodeResolver) Resolve(ctx context.Context, query string) (Coordinate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Coordinate{}, ErrEmptyQuery
	}

	return r.engine.Run(ctx, func(ctx context.Context) (Coordinate, error) {
		return r.lookup(ctx, query)
	})
}

// State returns the resolver's current state.
func (r *GeocodeResolver) State() polling.State[Coordinate] {
	return r.engine.State()
}

// View returns the display-ready view model.
func (r *GeocodeResolver) View() polling.View[CoordinateView] {
	return polling.MapView(r.engine.View(), NewCoordinateView)
}

func (r *GeocodeResolver) lookup(ctx context.Context, query string) (Coordinate, error) {
	candidates, err := r.source.Search(ctx, query)
	if err != nil {
		return Coordinate{}, collapseGeocodeError(r.source.Name(), err)
	}
	if len(candidates) == 0 {
		return Coordinate{}, fmt.Errorf("%w: no candidates for %q", ErrEmptyResult, query)
	}

	// Only the first candidate counts, whatever its ranking.
	coord, err := candidateCoordinate(candidates[0])
	if err != nil {
		return Coordinate{}, collapseGeocodeError(r.source.Name(), err)
	}
	return coord, nil
}

// candidateCoordinate parses the whole trimmed field. Trailing text such as
// "48.85N" is rejected rather than truncated to its numeric prefix.
func candidateCoordinate(c GeocodeCandidate) (Coordinate, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(c.Lat), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: latitude %q", ErrDataValidity, c.Lat)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(c.Lon), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: longitude %q", ErrDataValidity, c.Lon)
	}
	return Coordinate{Latitude: lat, Longitude: lon}, nil
}

// collapseGeocodeError reduces any failure other than an empty result to ErrNetwork.
func collapseGeocodeError(source string, err error) error {
	if errors.Is(err, ErrEmptyResult) || errors.Is(err, ErrNetwork) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrNetwork, source, err)
}

func geocodeMessage(err error) string {
	if errors.Is(err, ErrEmptyResult) {
		return msgCityNotFound
	}
	return msgGeocodeFailed
}
