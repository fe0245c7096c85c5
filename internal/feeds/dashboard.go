package feeds

import (
	"fmt"
	"log"

	"github.com/i474232898/dashboard-feeds/internal/polling"
)

// Dashboard owns the three feeds. No feed reads or writes another's state.
type Dashboard struct {
	Geocode    *GeocodeResolver
	Transit    *TransitArrivalsPoller
	AirQuality *AirQualityPoller
}

// NewDashboard creates a new Dashboard.
func NewDashboard(geocode *GeocodeResolver, transit *TransitArrivalsPoller, air *AirQualityPoller) *Dashboard {
	return &Dashboard{
		Geocode:    geocode,
		Transit:    transit,
		AirQuality: air,
	}
}

// Start activates the pollers; the air-quality poller starts on city.
func (d *Dashboard) Start(city string) error {
	if err := d.Transit.Start(); err != nil {
		return fmt.Errorf("start transit poller: %w", err)
	}
	if err := d.AirQuality.Start(city); err != nil {
		d.Transit.Stop()
		return fmt.Errorf("start air-quality poller: %w", err)
	}
	log.Printf("INFO: dashboard: pollers started city=%q", d.AirQuality.City())
	return nil
}

// Stop tears down both pollers.
func (d *Dashboard) Stop() {
	d.Transit.Stop()
	d.AirQuality.Stop()
}

// DashboardView bundles the view models of every feed.
type DashboardView struct {
	Geocode        polling.View[CoordinateView] `json:"geocode"`
	Transit        polling.View[[]ArrivalView]  `json:"transit"`
	AirQuality     polling.View[AirQualityView] `json:"airQuality"`
	AirQualityCity string                       `json:"airQualityCity"`
}

// View returns the current view models of all feeds.
func (d *Dashboard) View() DashboardView {
	return DashboardView{
		Geocode:        d.Geocode.View(),
		Transit:        d.Transit.View(),
		AirQuality:     d.AirQuality.View(),
		AirQualityCity: d.AirQuality.City(),
	}
}
