package game

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrDispatcherFull is returned by TrySubmit when the event queue is full.
var ErrDispatcherFull = errors.New("dispatcher queue full")

// Dispatcher serialises events from concurrent hosts onto one session and
// drives its clock from a wall-clock ticker.
type Dispatcher struct {
	session  *Session
	events   chan Event
	interval time.Duration

	// runs on the session goroutine before every Tick
	beforeTick func(dt time.Duration)
}

// NewDispatcher creates a dispatcher. interval is the tick period; queue is
// the event buffer size.
func NewDispatcher(session *Session, interval time.Duration, queue int) *Dispatcher {
	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	if queue <= 0 {
		queue = 256
	}
	return &Dispatcher{
		session:  session,
		events:   make(chan Event, queue),
		interval: interval,
	}
}

// OnTick registers fn to run before each session tick, on the session
// goroutine. Hosts use it to step their simulation. Call before Run.
func (d *Dispatcher) OnTick(fn func(dt time.Duration)) {
	d.beforeTick = fn
}

// Submit enqueues ev, blocking until there is room or ctx is done.
func (d *Dispatcher) Submit(ctx context.Context, ev Event) error {
	select {
	case d.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySubmit enqueues ev without blocking.
func (d *Dispatcher) TrySubmit(ev Event) error {
	select {
	case d.events <- ev:
		return nil
	default:
		return ErrDispatcherFull
	}
}

// Run applies queued events and ticks the session until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	slog.Info("session dispatcher started", "interval", d.interval)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("session dispatcher stopping")
			return ctx.Err()

		case ev := <-d.events:
			if err := d.session.Apply(ev); err != nil {
				slog.Warn("event rejected", "error", err)
			}

		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if d.beforeTick != nil {
				d.beforeTick(dt)
			}
			d.session.Tick(dt)
		}
	}
}
