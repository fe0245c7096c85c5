package feeds

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/dashboard-feeds/internal/polling"
)

// AirQualityRefreshInterval is how often the air-quality snapshot is refreshed.
const AirQualityRefreshInterval = 30 * time.Minute

const msgAirQualityFailed = "Impossible de récupérer les informations sur la qualité de l'air"

// AirQualityPoller keeps the air-quality snapshot of one city at a time.
type AirQualityPoller struct {
	source      AirQualitySource
	defaultCity string
	engine      *polling.Engine[AirQualitySnapshot]

	mu   sync.Mutex
	city string
}

// NewAirQualityPoller creates an idle poller. defaultCity is used whenever
// the requested city is empty.
func NewAirQualityPoller(source AirQualitySource, scheduler polling.Scheduler, defaultCity string, timeout time.Duration) *AirQualityPoller {
	return &AirQualityPoller{
		source:      source,
		defaultCity: defaultCity,
		engine: polling.NewEngine[AirQualitySnapshot]("air-quality", scheduler,
			polling.WithTimeout(timeout),
			polling.WithErrorMessage(func(error) string { return msgAirQualityFailed }),
		),
	}
}

// Start (re)starts polling for city. Any previous cycle is cancelled and its
// late results are dropped, so only the latest city is ever shown.
func (p *AirQualityPoller) Start(city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		city = p.defaultCity
	}

	// Held across the restart so concurrent city changes apply in order.
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.engine.Start(func(ctx context.Context) (AirQualitySnapshot, error) {
		return p.source.Fetch(ctx, city)
	}, AirQualityRefreshInterval)
	if err != nil {
		// The previous lifecycle is gone either way.
		p.city = ""
		return err
	}
	p.city = city
	return nil
}

// SetCity switches polling to a new city.
func (p *AirQualityPoller) SetCity(city string) error {
	return p.Start(city)
}

// City returns the city currently polled, or "" when the poller is stopped.
func (p *AirQualityPoller) City() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.city
}

// Stop tears the poller down.
func (p *AirQualityPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.engine.Stop()
	p.city = ""
}

// Refresh runs a user-triggered cycle for the current city.
func (p *AirQualityPoller) Refresh(ctx context.Context) error {
	return p.engine.Refresh(ctx)
}

// State returns the current state.
func (p *AirQualityPoller) State() polling.State[AirQualitySnapshot] {
	return p.engine.State()
}

// View returns the display-ready view model.
func (p *AirQualityPoller) View() polling.View[AirQualityView] {
	return polling.MapView(p.engine.View(), NewAirQualityView)
}
