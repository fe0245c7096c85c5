package feeds

import (
	"context"
	"sync"
	"time"
)

// manualScheduler runs a task once on Every and then only when fire is called.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	interval time.Duration
	fn       func()
	cancels  int
}

func (s *manualScheduler) Every(interval time.Duration, fn func()) (func(), error) {
	t := &manualTask{interval: interval, fn: fn}
	s.mu.Lock()
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()

	fn()

	return func() {
		s.mu.Lock()
		t.cancels++
		s.mu.Unlock()
	}, nil
}

func (s *manualScheduler) fire() {
	s.mu.Lock()
	var due []func()
	for _, t := range s.tasks {
		if t.cancels == 0 {
			due = append(due, t.fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range due {
		fn()
	}
}

func (s *manualScheduler) active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if t.cancels == 0 {
			n++
		}
	}
	return n
}

type fakeGeocodeSource struct {
	mu         sync.Mutex
	calls      int
	candidates []GeocodeCandidate
	err        error
}

func (f *fakeGeocodeSource) Name() string { return "fake-geocoder" }

func (f *fakeGeocodeSource) Search(ctx context.Context, query string) ([]GeocodeCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.candidates, f.err
}

type fakeStopMonitoring struct {
	mu     sync.Mutex
	calls  int
	visits []MonitoredVisit
	err    error
}

func (f *fakeStopMonitoring) Name() string { return "fake-stop-monitoring" }

func (f *fakeStopMonitoring) FetchVisits(ctx context.Context) ([]MonitoredVisit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.visits, f.err
}

type fakeAirQuality struct {
	mu     sync.Mutex
	cities []string
	fetch  func(ctx context.Context, city string) (AirQualitySnapshot, error)
}

func (f *fakeAirQuality) Name() string { return "fake-air-quality" }

func (f *fakeAirQuality) Fetch(ctx context.Context, city string) (AirQualitySnapshot, error) {
	f.mu.Lock()
	f.cities = append(f.cities, city)
	fetch := f.fetch
	f.mu.Unlock()

	if fetch != nil {
		return fetch(ctx, city)
	}
	return AirQualitySnapshot{AQI: 42, DominantPollutant: "pm25", StationName: city}, nil
}

func (f *fakeAirQuality) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cities...)
}
