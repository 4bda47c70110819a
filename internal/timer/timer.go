// Package timer implements a single countdown that polls the clock once per
// tick and publishes tick and terminal events to subscribers.
package timer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrRunning is returned when Run is called on a timer that already ran.
var ErrRunning = errors.New("timer already started")

// Outcome is how a countdown ended.
type Outcome int

const (
	Completed Outcome = iota + 1
	Interrupted
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Interrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// EventKind distinguishes tick events from the terminal event.
type EventKind string

const (
	EventTick        EventKind = "tick"
	EventCompleted   EventKind = "completed"
	EventInterrupted EventKind = "interrupted"
)

// Event is published on every tick and once when the countdown ends.
type Event struct {
	Kind      EventKind     `json:"kind"`
	Label     string        `json:"label,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
	Remaining time.Duration `json:"remaining"`
	Duration  time.Duration `json:"duration"`
	Paused    bool          `json:"paused"`
}

// Terminal reports whether the event ends the stream.
func (e Event) Terminal() bool {
	return e.Kind == EventCompleted || e.Kind == EventInterrupted
}

// Result is returned by Run.
type Result struct {
	Outcome Outcome
	Elapsed time.Duration
}

const subscriberBuffer = 64

// Timer counts down a fixed duration. Run owns the loop; Stop, Pause and
// Resume may be called from other goroutines and take effect on the next tick.
type Timer struct {
	label    string
	duration time.Duration
	tick     time.Duration
	clock    Clock

	running atomic.Bool

	mu       sync.Mutex
	started  bool
	stopped  bool
	done     bool
	start    time.Time
	pausedAt time.Time
	subs     []chan Event
}

// Option configures a Timer
type Option func(*Timer)

// WithTick sets the polling interval (default one second).
func WithTick(d time.Duration) Option {
	return func(t *Timer) { t.tick = d }
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(t *Timer) { t.clock = c }
}

// WithLabel names the countdown in its events.
func WithLabel(label string) Option {
	return func(t *Timer) { t.label = label }
}

// New creates a timer for duration d.
func New(d time.Duration, opts ...Option) *Timer {
	t := &Timer{duration: d, tick: time.Second, clock: RealClock{}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Duration returns the planned duration.
func (t *Timer) Duration() time.Duration { return t.duration }

// Label returns the countdown's label.
func (t *Timer) Label() string { return t.label }

// Subscribe returns a channel receiving tick events and exactly one terminal
// event, after which it is closed. Ticks are dropped for slow readers.
func (t *Timer) Subscribe() <-chan Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := make(chan Event, subscriberBuffer)
	if t.done {
		close(ch)
		return ch
	}
	t.subs = append(t.subs, ch)
	return ch
}

// Run blocks until the countdown completes, Stop is observed, or ctx ends.
func (t *Timer) Run(ctx context.Context) (Result, error) {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return Result{}, ErrRunning
	}
	t.started = true
	t.start = t.clock.Now()
	t.running.Store(!t.stopped)
	stopped := t.stopped
	t.mu.Unlock()

	if stopped {
		return t.finish(Interrupted, 0), nil
	}
	if t.duration <= 0 {
		return t.finish(Completed, 0), nil
	}

	ticker := t.clock.NewTicker(t.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return t.finish(Interrupted, t.Elapsed()), nil
		case <-ticker.C():
			if !t.running.Load() {
				return t.finish(Interrupted, t.Elapsed()), nil
			}
			elapsed := t.Elapsed()
			remaining := max(0, t.duration-elapsed)
			t.publish(t.event(EventTick, elapsed, remaining))
			if remaining == 0 {
				return t.finish(Completed, t.duration), nil
			}
		}
	}
}

// Stop ends the countdown at the next tick as interrupted. A timer stopped
// before Run ends as soon as Run is called.
func (t *Timer) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
	t.running.Store(false)
}

// Running reports whether Run is active and Stop has not been called.
func (t *Timer) Running() bool {
	return t.running.Load()
}

// Pause freezes elapsed time until Resume.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pausedAt.IsZero() {
		t.pausedAt = t.clock.Now()
	}
}

// Resume shifts the start forward by the paused span.
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pausedAt.IsZero() {
		return
	}
	t.start = t.start.Add(t.clock.Now().Sub(t.pausedAt))
	t.pausedAt = time.Time{}
}

// Paused reports whether the countdown is paused.
func (t *Timer) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.pausedAt.IsZero()
}

// Elapsed returns the active time since start, excluding pauses.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		return 0
	}
	now := t.clock.Now()
	if !t.pausedAt.IsZero() {
		now = t.pausedAt
	}
	return min(t.duration, max(0, now.Sub(t.start)))
}

// Remaining returns the time left.
func (t *Timer) Remaining() time.Duration {
	return t.duration - t.Elapsed()
}

func (t *Timer) event(kind EventKind, elapsed, remaining time.Duration) Event {
	return Event{
		Kind:      kind,
		Label:     t.label,
		Elapsed:   elapsed,
		Remaining: remaining,
		Duration:  t.duration,
		Paused:    t.Paused(),
	}
}

func (t *Timer) publish(ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ch := range t.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (t *Timer) finish(outcome Outcome, elapsed time.Duration) Result {
	t.running.Store(false)

	kind := EventCompleted
	if outcome == Interrupted {
		kind = EventInterrupted
	}
	ev := t.event(kind, elapsed, t.duration-elapsed)

	t.mu.Lock()
	subs := t.subs
	t.subs = nil
	t.done = true
	t.mu.Unlock()

	// the terminal event must arrive, so drop the oldest tick if full
	for _, ch := range subs {
		for delivered := false; !delivered; {
			select {
			case ch <- ev:
				delivered = true
			default:
				select {
				case <-ch:
				default:
				}
			}
		}
		close(ch)
	}

	return Result{Outcome: outcome, Elapsed: elapsed}
}
