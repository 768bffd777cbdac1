package db

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/udisondev/onigiri/internal/model"
	"github.com/udisondev/onigiri/internal/notify"
)

const (
	ledgerQueueSize    = 128
	ledgerDrainTimeout = 5 * time.Second
)

// ShipmentRecorder stores one shipment.
type ShipmentRecorder interface {
	Record(ctx context.Context, s Shipment) error
}

// Ledger turns score events into shipment rows. Score only enqueues; Run
// does the writes on its own goroutine, so a slow or failing database
// never stalls the session.
type Ledger struct {
	notify.Nop

	sessionID int64
	store     ShipmentRecorder
	queue     chan Shipment

	written atomic.Int64
	dropped atomic.Int64
	failed  atomic.Int64
}

// NewLedger creates a ledger for one session.
func NewLedger(store ShipmentRecorder, sessionID int64) *Ledger {
	return &Ledger{
		sessionID: sessionID,
		store:     store,
		queue:     make(chan Shipment, ledgerQueueSize),
	}
}

// Score enqueues a shipment for the match.
func (l *Ledger) Score(ev notify.ScoreEvent) {
	rarity := model.RarityCommon
	if ev.Filling != nil {
		rarity = ev.Filling.Rarity
	}
	s := Shipment{
		SessionID:  l.sessionID,
		Filling:    model.FillingName(ev.Filling),
		Rarity:     rarity.String(),
		MatchCount: ev.MatchCount,
		Earned:     ev.Earned,
		Combo:      ev.Combo,
		ShippedAt:  time.Now(),
	}

	select {
	case l.queue <- s:
	default:
		l.dropped.Add(1)
		slog.Warn("ledger queue full, shipment dropped", "filling", s.Filling)
	}
}

// Run writes queued shipments until ctx is cancelled, then drains what is
// left with a short deadline.
func (l *Ledger) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.drain()
			return ctx.Err()
		case s := <-l.queue:
			l.write(ctx, s)
		}
	}
}

func (l *Ledger) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), ledgerDrainTimeout)
	defer cancel()

	for {
		select {
		case s := <-l.queue:
			l.write(ctx, s)
		default:
			return
		}
	}
}

func (l *Ledger) write(ctx context.Context, s Shipment) {
	if err := l.store.Record(ctx, s); err != nil {
		l.failed.Add(1)
		slog.Error("recording shipment", "sessionID", s.SessionID, "filling", s.Filling, "error", err)
		return
	}
	l.written.Add(1)
}

// Written returns how many shipments were stored.
func (l *Ledger) Written() int64 { return l.written.Load() }

// Dropped returns how many shipments were lost to a full queue.
func (l *Ledger) Dropped() int64 { return l.dropped.Load() }

// Failed returns how many writes returned an error.
func (l *Ledger) Failed() int64 { return l.failed.Load() }
