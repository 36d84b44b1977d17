package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tgienger/todo/internal/models"
)

// Loader supplies a previously saved collection. present is false when
// nothing has been saved yet.
type Loader interface {
	Load(ctx context.Context) (c models.Collection, present bool, err error)
}

// Listener is called with the new snapshot after every change
type Listener func(models.Collection)

// Store owns the current task collection. Each mutation swaps in a new
// snapshot; snapshots already handed out are never modified. Operations that
// name a missing task or subtask leave the collection untouched and report
// false instead of failing.
//
// Store is not safe for concurrent use: it expects a single caller, such as a
// UI event loop.
type Store struct {
	tasks     models.Collection
	version   uint64
	ids       IDSource
	log       *slog.Logger
	listeners []Listener
}

// Option configures a Store
type Option func(*Store)

// WithIDs sets the id source. The default is a ClockIDs on time.Now.
func WithIDs(ids IDSource) Option {
	return func(s *Store) { s.ids = ids }
}

// WithLogger sets the logger used for no-op and load diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithListener registers a change listener. Listeners run synchronously and
// must not block.
func WithListener(l Listener) Option {
	return func(s *Store) { s.listeners = append(s.listeners, l) }
}

// New creates a store holding initial. The store takes ownership of initial.
func New(initial models.Collection, opts ...Option) *Store {
	s := &Store{tasks: initial}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = NewClockIDs(nil)
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.tasks == nil {
		s.tasks = models.Collection{}
	}
	s.ids.Advance(s.tasks.MaxID())
	return s
}

// Open loads the saved collection before returning a store, so no mutation
// can be accepted ahead of the load. When nothing was saved, or loading
// fails, the store starts from seed.
func Open(ctx context.Context, loader Loader, seed models.Collection, opts ...Option) *Store {
	s := New(nil, opts...)
	initial := seed
	if loader != nil {
		c, present, err := loader.Load(ctx)
		switch {
		case err != nil:
			s.log.Warn("load saved tasks failed, using defaults", "error", err)
		case present:
			initial = c
		}
	}
	if initial == nil {
		initial = models.Collection{}
	}
	s.tasks = initial
	s.ids.Advance(initial.MaxID())
	return s
}

// Snapshot returns the current collection. Callers must not modify it.
func (s *Store) Snapshot() models.Collection {
	return s.tasks
}

// Version increases by one on every change
func (s *Store) Version() uint64 {
	return s.version
}

// Len returns the number of tasks
func (s *Store) Len() int {
	return len(s.tasks)
}

// Get returns a task by id
func (s *Store) Get(id int64) (models.Task, bool) {
	t, _, ok := s.tasks.Find(id)
	return t, ok
}

// Create appends a new task and returns its id
func (s *Store) Create(in NewTask) int64 {
	id := s.ids.Next()
	s.commit(Create(s.tasks, id, in))
	return id
}

// Delete removes a task and its subtasks
func (s *Store) Delete(id int64) bool {
	return s.apply(Delete(s.tasks, id))
}

// ToggleCompleted flips a task's completed flag
func (s *Store) ToggleCompleted(id int64) bool {
	return s.apply(ToggleCompleted(s.tasks, id))
}

// AddSubtask appends a subtask. ok is false when the task does not exist.
func (s *Store) AddSubtask(taskID int64, text string) (id int64, ok bool) {
	if _, _, found := s.tasks.Find(taskID); !found {
		s.noop(fmt.Errorf("add subtask to %d: %w", taskID, ErrTaskNotFound))
		return 0, false
	}
	id = s.ids.Next()
	return id, s.apply(AddSubtask(s.tasks, taskID, id, text))
}

// ToggleSubtaskCompleted flips a subtask's completed flag
func (s *Store) ToggleSubtaskCompleted(taskID, subID int64) bool {
	return s.apply(ToggleSubtaskCompleted(s.tasks, taskID, subID))
}

// DeleteSubtask removes a subtask
func (s *Store) DeleteSubtask(taskID, subID int64) bool {
	return s.apply(DeleteSubtask(s.tasks, taskID, subID))
}

// Replace swaps in an entire collection, e.g. after an import
func (s *Store) Replace(c models.Collection) {
	if c == nil {
		c = models.Collection{}
	}
	s.ids.Advance(c.MaxID())
	s.commit(c)
}

func (s *Store) apply(next models.Collection, err error) bool {
	if err != nil {
		s.noop(err)
		return false
	}
	s.commit(next)
	return true
}

func (s *Store) noop(err error) {
	if errors.Is(err, ErrNotFound) {
		s.log.Debug("mutation ignored", "error", err)
		return
	}
	s.log.Warn("mutation failed", "error", err)
}

func (s *Store) commit(next models.Collection) {
	s.tasks = next
	s.version++
	for _, l := range s.listeners {
		l(next)
	}
}
