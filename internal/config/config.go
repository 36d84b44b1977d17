// Package config reads settings from config.yaml and TODO_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

const (
	configName = "config"
	envPrefix  = "TODO"
	appDir     = "todo"
)

// Backend names
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Config holds the application settings
type Config struct {
	DataDir string  `mapstructure:"data_dir" validate:"required"`
	Seed    bool    `mapstructure:"seed"`
	Storage Storage `mapstructure:"storage"`
	Log     Log     `mapstructure:"log"`
	UI      UI      `mapstructure:"ui"`
	View    View    `mapstructure:"view"`
}

type Storage struct {
	Backend string `mapstructure:"backend" validate:"oneof=sqlite file memory"`
	Format  string `mapstructure:"format" validate:"oneof=json yaml"`
}

type Log struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	// File is relative to DataDir unless absolute
	File string `mapstructure:"file" validate:"required"`
}

type UI struct {
	Theme string `mapstructure:"theme" validate:"oneof=light dark"`
}

type View struct {
	// Locale is the BCP 47 tag used to order titles alphabetically
	Locale string `mapstructure:"locale" validate:"required,langtag"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("langtag", func(fl validator.FieldLevel) bool {
		_, err := language.Parse(fl.Field().String())
		return err == nil
	})
}

// New returns a viper instance with defaults and environment binding set
// up. TODO_STORAGE_BACKEND overrides storage.backend and so on.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// empty when there is no home directory; validation then asks for data_dir
	dataDir, _ := DefaultDataDir()
	v.SetDefault("data_dir", dataDir)
	v.SetDefault("seed", true)
	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.format", "json")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "todo.log")
	v.SetDefault("ui.theme", "dark")
	v.SetDefault("view.locale", "und")
	return v
}

// Load reads the config file into v and returns the validated settings.
// With file empty the usual locations are searched and a missing file is
// not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		for _, dir := range searchPaths() {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Storage.Backend = strings.ToLower(cfg.Storage.Backend)
	cfg.Storage.Format = strings.ToLower(cfg.Storage.Format)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// DefaultDataDir returns $XDG_DATA_HOME/todo, falling back to
// ~/.local/share/todo
func DefaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, appDir), nil
}

func searchPaths() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, appDir))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", appDir))
	}
	return append(dirs, ".")
}

// LogFile returns the log path, resolved against DataDir
func (c *Config) LogFile() string {
	if filepath.IsAbs(c.Log.File) {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, c.Log.File)
}

// LogLevel returns the slog level for Log.Level
func (c *Config) LogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Language returns the collation language
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.View.Locale)
	if err != nil {
		return language.Und
	}
	return tag
}
