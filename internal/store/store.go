// Package store provides the environment-variable stores wenv reads from
// and writes to. Every failure is returned as a coded error from
// wenv/internal/errors so the presentation layer can tell them apart.
package store

import (
	"wenv/internal/config"
	"wenv/internal/errors"
	"wenv/internal/model"
)

// Reader reads variables from a store.
type Reader interface {
	Get(name string) (string, error)
	Enumerate() ([]model.Variable, error)
}

// Writer persists a single variable.
type Writer interface {
	Set(name, value string) error
}

// Store is a readable and writable environment store.
type Store interface {
	Reader
	Writer
	Name() string
	Close() error
}

// Open returns the backend selected by cfg.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemory(nil), nil
	case config.BackendFile:
		f, err := OpenFile(cfg.Path)
		if err != nil {
			return nil, err
		}
		return f, nil
	case config.BackendRegistry:
		return OpenRegistry()
	}
	return nil, errors.Newf(errors.ErrStoreUnavailable, "unknown store backend %q", cfg.Backend)
}

func notFound(name string) error {
	return errors.Newf(errors.ErrKeyNotFound, "variable %s not found", name).WithDetail("name", name)
}
