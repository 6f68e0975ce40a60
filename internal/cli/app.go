package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/storage"
	"github.com/Makepad-fr/tada/internal/storage/jsonfile"
	"github.com/Makepad-fr/tada/internal/storage/sqlitekv"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Options tune behavior from root flags. Empty fields fall back to config.
type Options struct {
	ConfigPath string
	Storage    string
	Data       string
	LogLevel   string
	Theme      string
	Group      bool // list grouped by pending/done
}

// app carries what every subcommand needs. The store is opened lazily so
// help and usage errors never touch storage.
type app struct {
	opt    Options
	stdout io.Writer
	stderr io.Writer

	cfg     config.Config
	log     zerolog.Logger
	store   *store.TodoStore
	closers []io.Closer
}

// exitError carries an exit code (1 runtime, 2 usage) through cobra.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func usageErr(format string, args ...any) error {
	return &exitError{code: 2, msg: fmt.Sprintf(format, args...)}
}

func runtimeErr(format string, args ...any) error {
	return &exitError{code: 1, msg: fmt.Sprintf(format, args...)}
}

func (a *app) open(flagChanged func(string) bool) (*store.TodoStore, error) {
	if a.store != nil {
		return a.store, nil
	}

	cfg, err := config.Load(a.opt.ConfigPath)
	if err != nil && !errors.Is(err, config.ErrUnknownBackend) {
		return nil, runtimeErr("config: %v", err)
	}
	if flagChanged("storage") {
		cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(a.opt.Storage))
	}
	if flagChanged("data") {
		cfg.Storage.Path = a.opt.Data
	}
	if flagChanged("log-level") {
		cfg.Log.Level = a.opt.LogLevel
	}
	if flagChanged("theme") {
		cfg.Theme = a.opt.Theme
	}
	if flagChanged("group") {
		cfg.Group = a.opt.Group
	}
	if err := cfg.Validate(); err != nil {
		return nil, usageErr("config: %v", err)
	}
	a.cfg = cfg

	ui.SetTheme(cfg.Theme)
	a.log = logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: a.stderr,
	})

	adapter, err := a.openAdapter(cfg.Storage)
	if err != nil {
		return nil, runtimeErr("storage: %v", err)
	}
	// an unreadable container also rejects every save
	if adapter != nil {
		if _, _, err := adapter.Get(cfg.Storage.Key); err != nil {
			return nil, runtimeErr("storage: %v", err)
		}
	}
	a.store = store.New(adapter, store.WithLogger(a.log), store.WithKey(cfg.Storage.Key))
	return a.store, nil
}

func (a *app) openAdapter(sc config.StorageConfig) (storage.Adapter, error) {
	switch sc.Backend {
	case config.BackendSQLite:
		db, err := sqlitekv.Open(sc.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db)
		return db, nil
	case config.BackendMemory:
		return storage.NewMemory(), nil
	case config.BackendNone:
		return nil, nil
	default:
		fs, err := jsonfile.New(sc.Path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	}
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.Warn().Err(err).Msg("close storage")
		}
	}
	a.closers = nil
}
