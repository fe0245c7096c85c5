package polling

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSuperseded is returned to the caller of a fetch whose result was
	// discarded because a newer cycle started or the engine was stopped.
	ErrSuperseded = errors.New("fetch superseded by a newer cycle")

	// ErrNotRunning is returned by Refresh when the engine has no active lifecycle.
	ErrNotRunning = errors.New("polling engine is not running")
)

// FetchFunc performs one fetch of a feed.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Scheduler owns cancellable repeating tasks.
//
// Every must run task once right away and then once per interval until the
// returned cancel func is called. Cancel must not wait for a running task.
type Scheduler interface {
	Every(interval time.Duration, task func()) (cancel func(), err error)
}

type options struct {
	timeout time.Duration
	message func(error) string
}

// Option configures an Engine.
type Option func(*options)

// WithTimeout bounds every fetch cycle. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithErrorMessage sets how fetch errors are turned into the user-facing
// message stored in the Error state.
func WithErrorMessage(fn func(error) string) Option {
	return func(o *options) { o.message = fn }
}

// Engine is a fetch lifecycle state machine with timer-driven refresh.
//
// Each fetch cycle gets a generation id; a result is applied only if its
// generation is still current when it arrives. Starting a new cycle, a new
// lifecycle, or stopping the engine all advance the generation.
type Engine[T any] struct {
	name      string
	scheduler Scheduler
	opts      options

	mu          sync.Mutex
	state       State[T]
	run         uint64 // advanced by Start and Stop; ticks from older runs are ignored
	gen         uint64 // advanced by every cycle start and by Stop
	fetch       FetchFunc[T]
	cancelTask  func()
	cancelFetch context.CancelFunc
}

// NewEngine creates an idle engine.
func NewEngine[T any](name string, scheduler Scheduler, opts ...Option) *Engine[T] {
	o := options{
		message: func(err error) string { return err.Error() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine[T]{
		name:      name,
		scheduler: scheduler,
		opts:      o,
		state:     Idle[T](),
	}
}

// Start begins a lifecycle: fetch now, then every interval. A previous
// lifecycle is cancelled first and any of its in-flight results are discarded.
func (e *Engine[T]) Start(fetch FetchFunc[T], interval time.Duration) error {
	if fetch == nil {
		return fmt.Errorf("%s: nil fetch func", e.name)
	}
	if interval <= 0 {
		return fmt.Errorf("%s: invalid interval %s", e.name, interval)
	}
	if e.scheduler == nil {
		return fmt.Errorf("%s: no scheduler configured", e.name)
	}

	e.mu.Lock()
	e.haltLocked()
	e.run++
	run := e.run
	e.fetch = fetch
	e.mu.Unlock()

	cancel, err := e.scheduler.Every(interval, func() { e.tick(run) })
	if err != nil {
		e.mu.Lock()
		if e.run == run {
			// The previous lifecycle is already halted; nothing is polled now.
			e.fetch = nil
			e.state = Reduce(e.state, Event[T]{Kind: EventReset})
		}
		e.mu.Unlock()
		return fmt.Errorf("%s: schedule: %w", e.name, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.run != run {
		// Stopped or restarted while scheduling.
		cancel()
		return nil
	}
	e.cancelTask = cancel
	log.Printf("INFO: %s: polling every %s", e.name, interval)
	return nil
}

// Stop cancels the repeating task, makes any in-flight result inert and
// discards the current state. It is safe to call more than once.
func (e *Engine[T]) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.fetch != nil {
		log.Printf("INFO: %s: polling stopped", e.name)
	}
	e.haltLocked()
	e.run++
	e.fetch = nil
	e.state = Reduce(e.state, Event[T]{Kind: EventReset})
}

// Refresh runs one user-triggered cycle of the active lifecycle and waits for it.
func (e *Engine[T]) Refresh(ctx context.Context) error {
	e.mu.Lock()
	if e.fetch == nil {
		e.mu.Unlock()
		return ErrNotRunning
	}
	fetch := e.fetch
	c := e.beginLocked(ctx)
	e.mu.Unlock()

	_, err := e.finish(c, fetch)
	return err
}

// Run performs a single fetch cycle outside any repeating lifecycle. It is
// the one-shot primitive: the state goes through Loading and settles on the
// result unless a newer cycle superseded it, in which case ErrSuperseded is
// returned and the state is left to the newer cycle.
func (e *Engine[T]) Run(ctx context.Context, fetch FetchFunc[T]) (T, error) {
	e.mu.Lock()
	c := e.beginLocked(ctx)
	e.mu.Unlock()

	return e.finish(c, fetch)
}

// State returns the current state.
func (e *Engine[T]) State() State[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// View returns the current view model.
func (e *Engine[T]) View() View[T] {
	return e.State().View()
}

// Running reports whether a repeating lifecycle is active.
func (e *Engine[T]) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fetch != nil
}

func (e *Engine[T]) haltLocked() {
	if e.cancelTask != nil {
		e.cancelTask()
		e.cancelTask = nil
	}
	if e.cancelFetch != nil {
		e.cancelFetch()
		e.cancelFetch = nil
	}
	e.gen++
}

func (e *Engine[T]) tick(run uint64) {
	e.mu.Lock()
	if run != e.run || e.fetch == nil {
		e.mu.Unlock()
		return
	}
	fetch := e.fetch
	c := e.beginLocked(context.Background())
	e.mu.Unlock()

	_, _ = e.finish(c, fetch)
}

type cycle struct {
	id     string
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

func (e *Engine[T]) beginLocked(parent context.Context) cycle {
	// One in-flight slot per feed: the newer cycle wins.
	if e.cancelFetch != nil {
		e.cancelFetch()
	}
	e.gen++

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if e.opts.timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, e.opts.timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	e.cancelFetch = cancel
	e.state = Reduce(e.state, Event[T]{Kind: EventFetchStarted})

	c := cycle{id: uuid.NewString(), gen: e.gen, ctx: ctx, cancel: cancel}
	log.Printf("DEBUG: %s: fetch started cycle=%s gen=%d", e.name, c.id, c.gen)
	return c
}

func (e *Engine[T]) finish(c cycle, fetch FetchFunc[T]) (T, error) {
	defer c.cancel()

	start := time.Now()
	data, err := callFetch(c.ctx, fetch)
	dur := time.Since(start)

	e.mu.Lock()
	defer e.mu.Unlock()

	var zero T
	if c.gen != e.gen {
		log.Printf("DEBUG: %s: discarding stale result cycle=%s gen=%d current=%d", e.name, c.id, c.gen, e.gen)
		return zero, ErrSuperseded
	}
	e.cancelFetch = nil

	if err != nil {
		log.Printf("ERROR: %s: fetch failed cycle=%s gen=%d dur=%dms err=%v", e.name, c.id, c.gen, dur.Milliseconds(), err)
		e.state = Reduce(e.state, Event[T]{Kind: EventFetchFailed, Message: e.opts.message(err)})
		return zero, err
	}

	log.Printf("DEBUG: %s: fetch succeeded cycle=%s gen=%d dur=%dms", e.name, c.id, c.gen, dur.Milliseconds())
	e.state = Reduce(e.state, Event[T]{Kind: EventFetchSucceeded, Data: data})
	return data, nil
}

func callFetch[T any](ctx context.Context, fetch FetchFunc[T]) (data T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetch panicked: %v", r)
		}
	}()
	return fetch(ctx)
}
