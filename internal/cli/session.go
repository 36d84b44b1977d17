package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/tgienger/todo/internal/config"
	"github.com/tgienger/todo/internal/db"
	"github.com/tgienger/todo/internal/engine"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/persist"
	"github.com/tgienger/todo/internal/ui"
)

// defaultCloseTimeout bounds the final flush on exit
const defaultCloseTimeout = 5 * time.Second

// session is everything one command invocation works with: config, a
// loaded store, and the background saver fed by the store.
type session struct {
	cfg      *config.Config
	log      *slog.Logger
	store    *engine.Store
	adapter  persist.Adapter
	saver    *persist.Saver
	settings ui.Settings
	closers  []io.Closer

	closeTimeout time.Duration
}

// openSession loads config, sets up logging and storage, and loads the
// saved tasks before returning
func openSession(ctx context.Context, env *environment, opts *rootOptions) (*session, error) {
	v := config.New()
	v.SetFs(env.fs)
	cfg, err := config.Load(v, opts.cfgFile)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, closeTimeout: defaultCloseTimeout}
	log, logCloser, err := newLogger(env, cfg, opts.verbose)
	if err != nil {
		return nil, err
	}
	s.log = log
	if logCloser != nil {
		s.closers = append(s.closers, logCloser)
	}

	if err := s.openStorage(env); err != nil {
		s.closeAll()
		return nil, err
	}

	var seed models.Collection
	if cfg.Seed {
		seed = models.Seed()
	}
	s.saver = persist.NewSaver(s.adapter, persist.WithSaverLogger(log))
	s.store = engine.Open(ctx, s.adapter, seed,
		engine.WithIDs(engine.NewClockIDs(env.now)),
		engine.WithLogger(log),
		engine.WithListener(s.saver.Notify),
	)
	log.Debug("session opened", "backend", cfg.Storage.Backend, "tasks", s.store.Len())
	return s, nil
}

func (s *session) openStorage(env *environment) error {
	switch s.cfg.Storage.Backend {
	case config.BackendSQLite:
		database, err := db.Open(filepath.Join(s.cfg.DataDir, db.FileName))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		s.closers = append(s.closers, database)
		s.adapter = persist.NewSQLiteAdapter(database)
		s.settings = database

	case config.BackendFile:
		codec, err := persist.CodecFor(s.cfg.Storage.Format)
		if err != nil {
			return err
		}
		s.adapter = persist.NewFileAdapter(env.fs, s.cfg.DataDir, codec)
		s.settings = persist.NewFileSettings(env.fs, s.cfg.DataDir)

	default:
		s.adapter = persist.NewMemoryAdapter()
		s.settings = ui.NewMemorySettings()
	}
	return nil
}

// Close flushes pending saves and releases resources. When the flush does
// not finish in time the database and log file stay open, since the saver
// may still be writing to them; the process is about to exit anyway.
func (s *session) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.closeTimeout)
	defer cancel()
	if err := s.saver.Close(ctx); err != nil {
		s.log.Error("flush on exit did not finish, last changes may be lost", "error", err)
		return fmt.Errorf("save tasks: %w", err)
	}
	return s.closeAll()
}

func (s *session) closeAll() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i].Close())
	}
	s.closers = nil
	return errors.Join(errs...)
}

// environment is what the commands take from the outside world
type environment struct {
	fs     afero.Fs
	now    func() time.Time
	stdout io.Writer
	stderr io.Writer
}

func defaultEnvironment() *environment {
	return &environment{
		fs:     afero.NewOsFs(),
		now:    time.Now,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}
