package feeds

import "context"

// GeocodeSource resolves free text to candidates, best match first.
type GeocodeSource interface {
	Name() string
	Search(ctx context.Context, query string) ([]GeocodeCandidate, error)
}

// GeocodeCandidate keeps latitude and longitude as the text the endpoint returned.
type GeocodeCandidate struct {
	Lat         string
	Lon         string
	DisplayName string
}

// StopMonitoringSource fetches the monitored visits for a fixed stop and line.
type StopMonitoringSource interface {
	Name() string
	FetchVisits(ctx context.Context) ([]MonitoredVisit, error)
}

// MonitoredVisit is a single visit entry as published by the stop-monitoring feed.
type MonitoredVisit struct {
	PublishedLineNames  []string
	DestinationNames    []string
	ExpectedArrivalTime string
	AimedArrivalTime    string
}

// AirQualitySource fetches the air-quality feed for a city.
type AirQualitySource interface {
	Name() string
	Fetch(ctx context.Context, city string) (AirQualitySnapshot, error)
}
