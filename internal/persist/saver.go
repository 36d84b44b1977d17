package persist

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/tgienger/todo/internal/models"
)

// DefaultSaveTimeout bounds a single background save
const DefaultSaveTimeout = 10 * time.Second

// Saver writes snapshots in the background. Notify never blocks; when
// snapshots arrive faster than they can be written only the latest one is
// saved. Save failures are logged and otherwise ignored.
type Saver struct {
	adapter Adapter
	log     *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending models.Collection
	dirty   bool
	closed  bool

	wake chan struct{}
	done chan struct{}
}

// SaverOption configures a Saver
type SaverOption func(*Saver)

// WithSaverLogger sets the logger for save failures
func WithSaverLogger(l *slog.Logger) SaverOption {
	return func(s *Saver) { s.log = l }
}

// WithSaveTimeout limits how long one save may take
func WithSaveTimeout(d time.Duration) SaverOption {
	return func(s *Saver) { s.timeout = d }
}

// NewSaver starts a background writer for adapter. Call Close to flush and
// stop it.
func NewSaver(adapter Adapter, opts ...SaverOption) *Saver {
	s := &Saver{
		adapter: adapter,
		timeout: DefaultSaveTimeout,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	go s.run()
	return s
}

// Notify queues c for saving. It has the shape of an engine listener.
func (s *Saver) Notify(c models.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = c
	s.dirty = true
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Close writes any queued snapshot and stops the worker. It returns early
// with ctx's error if ctx ends first; the worker keeps running until the
// last save finishes.
func (s *Saver) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.wake)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Saver) run() {
	defer close(s.done)
	for range s.wake {
		s.flush()
	}
	s.flush()
}

func (s *Saver) flush() {
	s.mu.Lock()
	c, dirty := s.pending, s.dirty
	s.pending, s.dirty = nil, false
	s.mu.Unlock()
	if !dirty {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	start := time.Now()
	if err := s.adapter.Save(ctx, c); err != nil {
		s.log.Error("save tasks", "tasks", len(c), "error", err)
		return
	}
	s.log.Debug("saved tasks", "tasks", len(c), "took", time.Since(start))
}
