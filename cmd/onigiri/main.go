package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/onigiri/internal/config"
	"github.com/udisondev/onigiri/internal/db"
	"github.com/udisondev/onigiri/internal/game"
	"github.com/udisondev/onigiri/internal/journal"
	"github.com/udisondev/onigiri/internal/notify"
	"github.com/udisondev/onigiri/internal/sim"
)

const ConfigPath = "config/onigiri.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("ONIGIRI_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	slog.Info("onigiri starting", "config", cfgPath, "seed", seed, "log_level", cfg.LogLevel)

	scoreboard := notify.NewScoreboard()
	notifiers := notify.Multi{notify.Log{}, scoreboard}

	// Optional outputs
	var hub *notify.WebSocketHub
	if cfg.Server.Enabled {
		hub = notify.NewWebSocketHub()
		defer hub.Close()
		notifiers = append(notifiers, hub)
	}

	var jw *journal.Writer
	if cfg.Journal.Enabled {
		jw, err = journal.Create(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		defer jw.Close()
		notifiers = append(notifiers, jw)
		slog.Info("journal enabled", "path", jw.Path())
	}

	var (
		database  *db.DB
		ledger    *db.Ledger
		sessionID int64
	)
	if cfg.Database.Enabled {
		database, err = db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		sessionID, err = database.Sessions().Start(ctx, seed)
		if err != nil {
			return fmt.Errorf("starting session record: %w", err)
		}
		ledger = db.NewLedger(database.Shipments(), sessionID)
		notifiers = append(notifiers, ledger)
	}

	bounds := sim.Bounds{
		MinX:   cfg.Container.MinX,
		MaxX:   cfg.Container.MaxX,
		FloorY: cfg.Container.FloorY,
	}
	host := sim.NewHost(bounds, cfg.Autoplay.FallSpeed, 0)
	session := game.NewSession(cfg, host, notifiers, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
	runner := sim.NewRunner(cfg.Autoplay, bounds, session, host, rand.New(rand.NewPCG(seed+1, seed)))

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(runCtx)

	if hub != nil {
		mux := http.NewServeMux()
		mux.Handle("/events", hub)
		srv := &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			slog.Info("starting event stream", "addr", srv.Addr, "path", "/events")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("event stream server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if ledger != nil {
		g.Go(func() error {
			if err := ledger.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("shipment ledger: %w", err)
			}
			return nil
		})
	}

	if jw != nil {
		g.Go(func() error {
			if err := jw.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("journal: %w", err)
			}
			return nil
		})
	}

	var result sim.Result
	g.Go(func() error {
		defer stop()

		var err error
		if cfg.Autoplay.RealTime {
			d := game.NewDispatcher(session, cfg.Autoplay.TickRate, 256)
			result, err = runner.RunRealTime(gctx, d)
		} else {
			result, err = runner.Run(gctx)
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("autoplay: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("session error: %w", err)
	}

	if database != nil {
		finishCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.Sessions().Finish(finishCtx, sessionID, scoreboard.Total(), scoreboard.Matches(), scoreboard.BestCombo()); err != nil {
			slog.Error("recording session result", "sessionID", sessionID, "error", err)
		}
		slog.Info("shipments recorded", "written", ledger.Written(), "dropped", ledger.Dropped(), "failed", ledger.Failed())
		logHistory(finishCtx, database)
	}

	slog.Info("session over",
		"drops", result.Drops,
		"clock", result.Clock,
		"gameOver", result.GameOver,
		"score", scoreboard.Total(),
		"matches", scoreboard.Matches(),
		"completions", scoreboard.Completions(),
		"bestCombo", scoreboard.BestCombo())

	if jw != nil {
		if err := jw.Close(); err != nil {
			return fmt.Errorf("closing journal: %w", err)
		}
		events, err := journal.ReadAll(jw.Path())
		if err != nil {
			return fmt.Errorf("reading journal back: %w", err)
		}
		sum := journal.Summarize(events)
		slog.Info("journal summary",
			"dropped", jw.Dropped(),
			"events", sum.Events,
			"score", sum.Score,
			"matches", sum.Matches,
			"shipped", sum.Shipped)
	}

	return nil
}

// logHistory prints the collection book and the best sessions so far.
func logHistory(ctx context.Context, database *db.DB) {
	book, err := database.Shipments().Collection(ctx)
	if err != nil {
		slog.Error("loading collection", "error", err)
		return
	}
	for _, e := range book {
		slog.Info("collection",
			"filling", e.Filling,
			"rarity", e.Rarity,
			"shipped", e.Shipped,
			"earned", e.Earned,
			"first", e.FirstShipped.Format(time.DateOnly))
	}

	top, err := database.Sessions().TopSessions(ctx, 5)
	if err != nil {
		slog.Error("loading top sessions", "error", err)
		return
	}
	for i, row := range top {
		slog.Info("top session", "rank", i+1, "sessionID", row.ID, "score", row.Score, "bestCombo", row.BestCombo)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
