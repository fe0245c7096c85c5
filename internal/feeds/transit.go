package feeds

import (
	"context"
	"fmt"
	"time"

	"github.com/i474232898/dashboard-feeds/internal/polling"
)

// TransitRefreshInterval is how often stop arrivals are refreshed.
const TransitRefreshInterval = 60 * time.Second

const msgTransitFailed = "Impossible de récupérer les informations de transport"

// TransitArrivalsPoller keeps the upcoming arrivals of a fixed stop and line.
type TransitArrivalsPoller struct {
	source StopMonitoringSource
	engine *polling.Engine[[]ArrivalRecord]
}

// NewTransitArrivalsPoller creates an idle poller; call Start to activate it.
func NewTransitArrivalsPoller(source StopMonitoringSource, scheduler polling.Scheduler, timeout time.Duration) *TransitArrivalsPoller {
	return &TransitArrivalsPoller{
		source: source,
		engine: polling.NewEngine[[]ArrivalRecord]("transit", scheduler,
			polling.WithTimeout(timeout),
			polling.WithErrorMessage(func(error) string { return msgTransitFailed }),
		),
	}
}

// Start fetches now and then every TransitRefreshInterval until Stop.
func (p *TransitArrivalsPoller) Start() error {
	return p.engine.Start(p.fetch, TransitRefreshInterval)
}

// Stop tears the poller down.
func (p *TransitArrivalsPoller) Stop() {
	p.engine.Stop()
}

// Refresh runs a user-triggered cycle.
func (p *TransitArrivalsPoller) Refresh(ctx context.Context) error {
	return p.engine.Refresh(ctx)
}

// State returns the current state.
func (p *TransitArrivalsPoller) State() polling.State[[]ArrivalRecord] {
	return p.engine.State()
}

// View returns the display-ready view model.
func (p *TransitArrivalsPoller) View() polling.View[[]ArrivalView] {
	return polling.MapView(p.engine.View(), NewArrivalViews)
}

func (p *TransitArrivalsPoller) fetch(ctx context.Context) ([]ArrivalRecord, error) {
	visits, err := p.source.FetchVisits(ctx)
	if err != nil {
		return nil, err
	}
	return ToArrivals(visits)
}

// ToArrivals maps visits to arrival records in feed order. Only the first
// line name and first destination name of a visit are used. An empty visit
// list yields an empty, non-nil slice.
func ToArrivals(visits []MonitoredVisit) ([]ArrivalRecord, error) {
	records := make([]ArrivalRecord, 0, len(visits))
	for i, v := range visits {
		expected, err := time.Parse(time.RFC3339, v.ExpectedArrivalTime)
		if err != nil {
			return nil, fmt.Errorf("%w: visit %d expected arrival %q", ErrDataValidity, i, v.ExpectedArrivalTime)
		}
		aimed, err := time.Parse(time.RFC3339, v.AimedArrivalTime)
		if err != nil {
			return nil, fmt.Errorf("%w: visit %d aimed arrival %q", ErrDataValidity, i, v.AimedArrivalTime)
		}

		records = append(records, ArrivalRecord{
			Line:         first(v.PublishedLineNames),
			Destination:  first(v.DestinationNames),
			ExpectedTime: expected,
			DelayMinutes: DelayMinutes(expected, aimed),
		})
	}
	return records, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
