package config

import (
	"fmt"
	"log/slog"
)

// Reloader re-reads a TOML file into a Store. It is the onReload callback
// handed to a Watcher.
type Reloader[T any] struct {
	store    *Store[T]
	filePath string
	defaults *T
	override func(*T)
	logger   *slog.Logger
}

// NewReloader creates a Reloader for the file at filePath. Each reload
// starts again from defaults, so values removed from the file fall back.
func NewReloader[T any](store *Store[T], filePath string, defaults *T, logger *slog.Logger) *Reloader[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reloader[T]{
		store:    store,
		filePath: filePath,
		defaults: defaults,
		logger:   logger,
	}
}

// WithOverride registers fn to run on every freshly loaded value before it
// is validated and swapped in. Command-line flags use it to keep
// precedence over the file across reloads.
func (r *Reloader[T]) WithOverride(fn func(*T)) *Reloader[T] {
	r.override = fn
	return r
}

// Reload loads the file and swaps the result into the store. On failure the
// store keeps its current value.
func (r *Reloader[T]) Reload() error {
	loaded, err := LoadTOML(r.filePath, r.defaults)
	if err != nil {
		return err
	}
	cfg := new(T)
	*cfg = *loaded
	if r.override != nil {
		r.override(cfg)
		if v, ok := any(cfg).(Validatable); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("validating config %s with overrides: %w", r.filePath, err)
			}
		}
	}
	r.store.Swap(cfg)
	return nil
}

// OnFileChange is Reload for use as a Watcher callback; errors are logged.
func (r *Reloader[T]) OnFileChange() {
	if err := r.Reload(); err != nil {
		r.logger.Warn("config reload failed, keeping previous settings", "path", r.filePath, "error", err)
	}
}
