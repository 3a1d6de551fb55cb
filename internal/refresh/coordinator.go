// Package refresh re-runs data fetches on mount, on key change, on a fixed
// cadence and on demand, exposing a loading/error/data state to consumers.
//
// Every fetch is numbered. Only the most recently issued fetch may settle the
// state; a slower, older fetch that completes later is discarded.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"

	"dca-dashboard/internal/logger"
	"dca-dashboard/internal/metrics"
	"dca-dashboard/internal/trace"
)

// State is a point-in-time view of a coordinator. Key is the key of the
// fetch that produced it.
type State[K comparable, T any] struct {
	Key       K
	Data      T
	HasData   bool
	Loading   bool
	Err       error
	UpdatedAt time.Time
}

// FetchFunc loads the data for a key.
type FetchFunc[K comparable, T any] func(ctx context.Context, key K) (T, error)

type options struct {
	interval time.Duration
	timeout  time.Duration
}

// Option configures a Coordinator
type Option func(*options)

// WithInterval re-fetches on a fixed cadence while started. Zero disables it.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		o.interval = d
	}
}

// WithTimeout bounds each fetch.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// Coordinator owns the state of one fetch function.
type Coordinator[K comparable, T any] struct {
	name  string
	fetch FetchFunc[K, T]
	opts  options

	mu      sync.Mutex
	key     K
	state   State[K, T]
	seq     uint64
	changed chan struct{}
	subs    map[int]func(State[K, T])
	nextSub int

	ctx     context.Context
	cancel  context.CancelFunc
	cron    *cron.Cron
	stopped bool
	wg      sync.WaitGroup
}

// New creates a coordinator. Nothing is fetched until Start.
func New[K comparable, T any](name string, fetch func(ctx context.Context, key K) (T, error), initialKey K, opts ...Option) *Coordinator[K, T] {
	c := &Coordinator[K, T]{
		name:    name,
		fetch:   fetch,
		key:     initialKey,
		state:   State[K, T]{Loading: true},
		changed: make(chan struct{}),
		subs:    map[int]func(State[K, T]){},
	}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return c
}

func (c *Coordinator[K, T]) Name() string { return c.name }

// Start issues the first fetch and, with an interval, schedules the rest.
func (c *Coordinator[K, T]) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.ctx != nil {
		c.mu.Unlock()
		return fmt.Errorf("refresh %s: already started", c.name)
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	if c.opts.interval > 0 {
		c.cron = cron.New()
		spec := fmt.Sprintf("@every %s", c.opts.interval)
		if _, err := c.cron.AddFunc(spec, c.Refetch); err != nil {
			c.cancel()
			return fmt.Errorf("refresh %s: schedule %q: %w", c.name, spec, err)
		}
		c.cron.Start()
		logger.Debug(ctx, "Refresh scheduled", "coordinator", c.name, "interval", c.opts.interval)
	}

	c.issue()
	return nil
}

// Stop tears down the schedule, cancels in-flight fetches and waits for them
// to return.
func (c *Coordinator[K, T]) Stop() {
	c.mu.Lock()
	if c.stopped || c.ctx == nil {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.cancel()
	c.mu.Unlock()

	if c.cron != nil {
		<-c.cron.Stop().Done()
	}
	c.wg.Wait()
}

// Key returns the current dependency key.
func (c *Coordinator[K, T]) Key() K {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.key
}

// SetKey changes the dependency key and fetches when it differs from the
// current one.
func (c *Coordinator[K, T]) SetKey(key K) {
	c.mu.Lock()
	if key == c.key {
		c.mu.Unlock()
		return
	}
	c.key = key
	c.mu.Unlock()
	c.issue()
}

// Refetch issues an immediate fetch with the current key.
func (c *Coordinator[K, T]) Refetch() {
	c.issue()
}

func (c *Coordinator[K, T]) State() State[K, T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator[K, T]) Loading() bool {
	return c.State().Loading
}

func (c *Coordinator[K, T]) Err() error {
	return c.State().Err
}

// Subscribe registers fn to be called after every state transition. The
// returned func removes it.
func (c *Coordinator[K, T]) Subscribe(fn func(State[K, T])) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// Wait blocks until no fetch is pending or ctx ends.
func (c *Coordinator[K, T]) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		loading, ch := c.state.Loading, c.changed
		c.mu.Unlock()
		if !loading {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Coordinator[K, T]) issue() {
	c.mu.Lock()
	if c.ctx == nil || c.stopped {
		c.mu.Unlock()
		return
	}
	c.seq++
	seq, key, parent := c.seq, c.key, c.ctx
	c.state.Key = key
	c.state.Loading = true
	c.state.Err = nil
	c.wg.Add(1)
	notify := c.transitionLocked()
	c.mu.Unlock()

	notify()
	go c.run(parent, seq, key)
}

func (c *Coordinator[K, T]) run(parent context.Context, seq uint64, key K) {
	defer c.wg.Done()

	refreshID := uuid.NewString()
	ctx, span := trace.StartSpan(parent, "refresh."+c.name)
	defer span.End()
	span.SetAttributes(
		attribute.String("coordinator", c.name),
		attribute.String("refresh_id", refreshID),
		attribute.Int64("seq", int64(seq)),
	)
	if c.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.timeout)
		defer cancel()
	}

	op := logger.StartOperation(ctx, "refresh",
		"coordinator", c.name,
		"refresh_id", refreshID,
		"seq", seq,
		"key", fmt.Sprint(key),
	)
	metrics.RefreshStarted(c.name)
	data, err := c.fetch(ctx, key)
	metrics.RefreshFinished(c.name)

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		op.End("stopped", true)
		return
	}
	if seq != c.seq {
		c.mu.Unlock()
		metrics.ObserveRefresh(c.name, metrics.RefreshSuperseded)
		logger.Debug(ctx, "Discarding superseded refresh",
			"coordinator", c.name,
			"refresh_id", refreshID,
			"seq", seq,
		)
		return
	}

	c.state.Key = key
	c.state.Loading = false
	if err != nil {
		var zero T
		c.state.Data = zero
		c.state.HasData = false
		c.state.Err = err
	} else {
		c.state.Data = data
		c.state.HasData = true
		c.state.Err = nil
		c.state.UpdatedAt = time.Now()
	}
	notify := c.transitionLocked()
	c.mu.Unlock()

	if err != nil {
		metrics.ObserveRefresh(c.name, metrics.RefreshError)
		op.EndWithError(err)
	} else {
		metrics.ObserveRefresh(c.name, metrics.RefreshOK)
		op.End()
	}
	notify()
}

// transitionLocked wakes waiters and returns a func that delivers the new
// state to subscribers outside the lock.
func (c *Coordinator[K, T]) transitionLocked() func() {
	close(c.changed)
	c.changed = make(chan struct{})

	st := c.state
	subs := make([]func(State[K, T]), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	return func() {
		for _, fn := range subs {
			fn(st)
		}
	}
}
