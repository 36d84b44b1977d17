// Package persist moves task collections between the engine and storage.
// Storage failures never reach the engine: loads fall back to defaults and
// saves are best effort.
package persist

import (
	"context"
	"sync"

	"github.com/tgienger/todo/internal/models"
)

// Adapter loads and saves whole task collections
type Adapter interface {
	// Load returns the saved collection. present is false when nothing has
	// been saved yet.
	Load(ctx context.Context) (c models.Collection, present bool, err error)
	Save(ctx context.Context, c models.Collection) error
}

// MemoryAdapter keeps the collection in memory
type MemoryAdapter struct {
	mu    sync.Mutex
	saved models.Collection
	ok    bool
	saves int
}

// NewMemoryAdapter returns an adapter that starts with nothing saved
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{}
}

func (m *MemoryAdapter) Load(context.Context) (models.Collection, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved.Clone(), m.ok, nil
}

func (m *MemoryAdapter) Save(_ context.Context, c models.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = c.Clone()
	m.ok = true
	m.saves++
	return nil
}

// Saves returns how many times Save has been called
func (m *MemoryAdapter) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
