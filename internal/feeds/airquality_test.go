package feeds

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/i474232898/dashboard-feeds/internal/polling"
)

func TestAirQualityPollerDefaultCity(t *testing.T) {
	sched := &manualScheduler{}
	src := &fakeAirQuality{}
	p := NewAirQualityPoller(src, sched, "paris", time.Second)

	if err := p.Start(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Stop()

	if got := src.requested(); len(got) != 1 || got[0] != "paris" {
		t.Fatalf("expected default city fetch, got %v", got)
	}
	if p.City() != "paris" {
		t.Fatalf("unexpected city %q", p.City())
	}
	if sched.tasks[0].interval != 30*time.Minute {
		t.Fatalf("unexpected interval %s", sched.tasks[0].interval)
	}

	v := p.View()
	if v.Status != polling.StatusSuccess || v.Data.SeverityLabel != "Bon" || v.Data.DominantPollutantName != "PM2.5" {
		t.Fatalf("unexpected view: %+v", v)
	}
}

func TestAirQualityPollerCityChangeRestartsTimer(t *testing.T) {
	sched := &manualScheduler{}
	src := &fakeAirQuality{}
	p := NewAirQualityPoller(src, sched, "paris", time.Second)

	for _, city := range []string{"paris", "lyon", "lille"} {
		if err := p.SetCity(city); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sched.active() != 1 {
			t.Fatalf("expected one active timer after switching to %s, got %d", city, sched.active())
		}
	}

	sched.fire()
	got := src.requested()
	if last := got[len(got)-1]; last != "lille" {
		t.Fatalf("expected tick to fetch latest city, got %q", last)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 fetches, got %v", got)
	}

	p.Stop()
	for i, task := range sched.tasks {
		if task.cancels != 1 {
			t.Fatalf("task %d cancelled %d times, want 1", i, task.cancels)
		}
	}
}

func TestAirQualityPollerStaleCityResponseDiscarded(t *testing.T) {
	src := &fakeAirQuality{}
	sched := &manualScheduler{}
	p := NewAirQualityPoller(src, sched, "paris", time.Second)

	if err := p.Start("paris"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	started := make(chan struct{})
	release := make(chan struct{})
	src.mu.Lock()
	src.fetch = func(ctx context.Context, city string) (AirQualitySnapshot, error) {
		if city == "paris" {
			close(started)
			<-release
			return AirQualitySnapshot{AQI: 250, StationName: "paris"}, nil
		}
		return AirQualitySnapshot{AQI: 30, StationName: city}, nil
	}
	src.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- p.Refresh(context.Background()) }()
	<-started

	if err := p.SetCity("lyon"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(release)

	if err := <-done; !errors.Is(err, polling.ErrSuperseded) {
		t.Fatalf("expected stale refresh to be superseded, got %v", err)
	}

	st := p.State()
	if st.Status != polling.StatusSuccess || st.Data.StationName != "lyon" || st.Data.AQI != 30 {
		t.Fatalf("stale city leaked into state: %+v", st)
	}
	p.Stop()
}

func TestAirQualityPollerError(t *testing.T) {
	src := &fakeAirQuality{fetch: func(ctx context.Context, city string) (AirQualitySnapshot, error) {
		return AirQualitySnapshot{}, ErrDataValidity
	}}
	p := NewAirQualityPoller(src, &manualScheduler{}, "paris", time.Second)

	if err := p.Start("paris"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Stop()

	v := p.View()
	if v.Status != polling.StatusError || v.Data != nil || *v.ErrorMessage != msgAirQualityFailed {
		t.Fatalf("unexpected view: %+v", v)
	}
}

// failingScheduler refuses every task.
type failingScheduler struct{}

func (failingScheduler) Every(time.Duration, func()) (func(), error) {
	return nil, errors.New("scheduler is shut down")
}

func TestAirQualityPollerFailedStartReportsNoCity(t *testing.T) {
	src := &fakeAirQuality{}
	p := NewAirQualityPoller(src, failingScheduler{}, "paris", time.Second)

	if err := p.SetCity("lyon"); err == nil {
		t.Fatalf("expected scheduling error")
	}
	if got := p.City(); got != "" {
		t.Fatalf("expected no polled city after failed start, got %q", got)
	}
	if len(src.requested()) != 0 {
		t.Fatalf("expected no fetch, got %v", src.requested())
	}
}

func TestAirQualityPollerStopClearsCityAndData(t *testing.T) {
	p := NewAirQualityPoller(&fakeAirQuality{}, &manualScheduler{}, "paris", time.Second)
	if err := p.Start("lyon"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.City() != "lyon" || p.View().Status != polling.StatusSuccess {
		t.Fatalf("unexpected running poller: city=%q view=%+v", p.City(), p.View())
	}

	p.Stop()

	if p.City() != "" {
		t.Fatalf("expected city cleared after stop, got %q", p.City())
	}
	if v := p.View(); v.Status != polling.StatusIdle || v.Data != nil {
		t.Fatalf("expected idle view after stop, got %+v", v)
	}
}
