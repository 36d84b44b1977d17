package ui

import (
	"context"
	"sync"
)

// Settings is a small key/value store for UI preferences. *db.DB
// implements it.
type Settings interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Setting keys
const (
	settingViewSpec = "view_spec"
	settingTheme    = "theme"
)

// MemorySettings keeps settings for the lifetime of the process
type MemorySettings struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemorySettings() *MemorySettings {
	return &MemorySettings{values: map[string]string{}}
}

func (m *MemorySettings) GetSetting(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *MemorySettings) SetSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
