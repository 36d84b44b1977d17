package persist

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// FileSettings keeps UI preferences in settings.yaml next to the task
// document
type FileSettings struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

func NewFileSettings(fs afero.Fs, dir string) *FileSettings {
	return &FileSettings{fs: fs, path: filepath.Join(dir, "settings.yaml")}
}

func (f *FileSettings) read() (map[string]string, error) {
	values := map[string]string{}
	b, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		if exists, _ := afero.Exists(f.fs, f.path); !exists {
			return values, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(b, &values); err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

func (f *FileSettings) GetSetting(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

func (f *FileSettings) SetSetting(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return err
	}
	values[key] = value
	b, err := yaml.Marshal(values)
	if err != nil {
		return err
	}
	if err := f.fs.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(f.fs, f.path, b, 0o644)
}
