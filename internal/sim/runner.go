package sim

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/udisondev/onigiri/internal/config"
	"github.com/udisondev/onigiri/internal/game"
)

const (
	// thinkTime is how long the autoplayer holds an item before dropping.
	thinkTime = 300 * time.Millisecond
	// settleTime lets the last drop land and resolve before stopping.
	settleTime = 3 * time.Second
)

// Result summarises an autoplay run.
type Result struct {
	Drops    int
	Clock    time.Duration
	GameOver bool
}

// Runner drops items at random positions until the drop budget is spent
// or the game is over.
type Runner struct {
	cfg     config.AutoplayConfig
	bounds  Bounds
	session *game.Session
	host    *Host
	rng     *rand.Rand

	holding  time.Duration
	finished time.Duration
}

// NewRunner creates a runner for a session built on host.
func NewRunner(cfg config.AutoplayConfig, bounds Bounds, session *game.Session, host *Host, rng *rand.Rand) *Runner {
	host.Bind(session)
	return &Runner{
		cfg:     cfg,
		bounds:  bounds,
		session: session,
		host:    host,
		rng:     rng,
	}
}

// Done reports whether the run is over.
func (r *Runner) Done() bool {
	if r.session.IsGameOver() {
		return true
	}
	return r.cfg.Drops > 0 && r.session.Drops() >= r.cfg.Drops && r.finished >= settleTime
}

// Result returns the current run summary.
func (r *Runner) Result() Result {
	return Result{
		Drops:    r.session.Drops(),
		Clock:    r.session.Clock(),
		GameOver: r.session.IsGameOver(),
	}
}

// Step plays one frame: maybe drop, then move the bodies. The caller
// ticks the session afterwards.
func (r *Runner) Step(dt time.Duration) {
	budgetSpent := r.cfg.Drops > 0 && r.session.Drops() >= r.cfg.Drops
	if budgetSpent {
		r.finished += dt
	} else if _, held := r.session.Held(); held {
		r.holding += dt
		if r.holding >= thinkTime {
			r.holding = 0
			x := r.bounds.MinX + r.rng.Float64()*(r.bounds.MaxX-r.bounds.MinX)
			r.session.Drop(x)
		}
	}
	r.host.Step(dt)
}

// Run plays the session as fast as possible in fixed steps.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	r.start()

	dt := r.tickRate()
	for !r.Done() {
		if err := ctx.Err(); err != nil {
			return r.Result(), err
		}
		r.Step(dt)
		r.session.Tick(dt)
	}

	res := r.Result()
	slog.Info("autoplay finished", "drops", res.Drops, "clock", res.Clock, "gameOver", res.GameOver)
	return res, nil
}

// RunRealTime plays the session through a dispatcher paced by the wall
// clock, so external hosts can still submit events.
func (r *Runner) RunRealTime(ctx context.Context, d *game.Dispatcher) (Result, error) {
	r.start()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.OnTick(func(dt time.Duration) {
		if r.Done() {
			cancel()
			return
		}
		r.Step(dt)
	})

	err := d.Run(ctx)
	res := r.Result()
	if r.Done() {
		slog.Info("autoplay finished", "drops", res.Drops, "clock", res.Clock, "gameOver", res.GameOver)
		return res, nil
	}
	return res, err
}

func (r *Runner) start() {
	r.session.SetFever(r.cfg.Fever)
	if !r.session.Start() {
		slog.Warn("first spawn refused")
	}
}

func (r *Runner) tickRate() time.Duration {
	if r.cfg.TickRate <= 0 {
		return 20 * time.Millisecond
	}
	return r.cfg.TickRate
}
