// Package journal appends session events to a zstd-compressed JSON-lines
// file and reads them back.
package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/udisondev/onigiri/internal/model"
	"github.com/udisondev/onigiri/internal/notify"
)

const (
	queueSize     = 1024
	flushInterval = time.Second
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("journal closed")

// Writer records every Notifier call as one JSON line. The Notifier
// methods only enqueue; Run does the encoding and file I/O on its own
// goroutine. Close writes whatever is still queued.
type Writer struct {
	path  string
	queue chan notify.Event

	dropped atomic.Int64

	mu      sync.Mutex
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
	written int
}

// Create opens (truncating) the journal at path, creating parent
// directories as needed.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	return &Writer{
		path:  path,
		queue: make(chan notify.Event, queueSize),
		f:     f,
		enc:   enc,
		w:     bufio.NewWriterSize(enc, 64*1024),
	}, nil
}

// Run writes queued events until ctx is cancelled, flushing the
// compressed stream every second. On cancel it writes what is left in the
// queue and flushes once more.
func (w *Writer) Run(ctx context.Context) error {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.drain()
			if err := w.Flush(); err != nil && !errors.Is(err, ErrClosed) {
				slog.Error("flushing journal", "path", w.path, "error", err)
			}
			return ctx.Err()
		case ev := <-w.queue:
			w.write(ev)
		case <-ticker.C:
			if err := w.Flush(); err != nil {
				slog.Error("flushing journal", "path", w.path, "error", err)
			}
		}
	}
}

func (w *Writer) drain() {
	for {
		select {
		case ev := <-w.queue:
			w.write(ev)
		default:
			return
		}
	}
}

func (w *Writer) write(ev notify.Event) {
	if err := w.Write(ev); err != nil {
		slog.Warn("journal write failed", "type", ev.Type, "error", err)
	}
}

// Path returns the journal file path.
func (w *Writer) Path() string {
	return w.path
}

// Written returns the number of events written.
func (w *Writer) Written() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Dropped returns how many events were lost to a full queue.
func (w *Writer) Dropped() int64 {
	return w.dropped.Load()
}

// Write appends one event synchronously.
func (w *Writer) Write(ev notify.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.w == nil {
		return ErrClosed
	}
	if _, err := w.w.Write(b); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	w.written++
	return nil
}

// Flush pushes buffered events into the compressed stream.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.w == nil {
		return ErrClosed
	}
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flushing journal: %w", err)
	}
	if err := w.enc.Flush(); err != nil {
		return fmt.Errorf("flushing zstd frame: %w", err)
	}
	return nil
}

// Close writes any queued events, flushes and closes the journal. Call it
// after Run has returned. Safe to call twice.
func (w *Writer) Close() error {
	w.drain()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.w == nil {
		return nil
	}

	var errs []error
	if err := w.w.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("flushing journal: %w", err))
	}
	if err := w.enc.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing zstd encoder: %w", err))
	}
	if err := w.f.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing journal file: %w", err))
	}
	w.w, w.enc, w.f = nil, nil, nil

	return errors.Join(errs...)
}

func (w *Writer) record(ev notify.Event) {
	select {
	case w.queue <- ev:
	default:
		w.dropped.Add(1)
		slog.Warn("journal queue full, event dropped", "type", ev.Type)
	}
}

func (w *Writer) Effect(tag model.EffectTag, pos model.Vec2) {
	w.record(notify.EffectEvent(tag, pos))
}

func (w *Writer) Score(ev notify.ScoreEvent) {
	w.record(notify.ScoreEventRecord(ev))
}

func (w *Writer) Completion(pos model.Vec2) {
	w.record(notify.CompletionEvent(pos))
}

func (w *Writer) GameOver() {
	w.record(notify.GameOverEvent())
}

func (w *Writer) Preview(kind model.Kind, filling *model.Filling) {
	w.record(notify.PreviewEvent(kind, filling))
}
