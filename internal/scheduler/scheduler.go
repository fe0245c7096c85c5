package scheduler

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

var errNilTask = errors.New("scheduler: nil task")

// Scheduler runs cancellable repeating tasks on top of gocron.
// It satisfies polling.Scheduler.
type Scheduler struct {
	scheduler *gocron.Scheduler
}

// New creates a new Scheduler. Call Start before relying on tasks to fire.
func New() *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
	}
}

// Start starts the underlying scheduler without blocking.
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Every registers task to run right away and then once per interval.
// The returned cancel func removes the task; calling it more than once is harmless.
func (s *Scheduler) Every(interval time.Duration, task func()) (func(), error) {
	if task == nil {
		return nil, errNilTask
	}
	if interval <= 0 {
		return nil, fmt.Errorf("scheduler: invalid interval %s", interval)
	}

	job, err := s.scheduler.Every(interval).Do(task)
	if err != nil {
		return nil, fmt.Errorf("scheduler: register task: %w", err)
	}
	log.Printf("DEBUG: scheduler: task registered interval=%s jobs=%d", interval, s.scheduler.Len())

	return func() {
		s.scheduler.RemoveByReference(job)
	}, nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
