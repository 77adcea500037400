//go:build !windows

package store

import "wenv/internal/errors"

// OpenRegistry is only available on Windows.
func OpenRegistry() (Store, error) {
	return nil, errors.New(errors.ErrStoreUnavailable, "the registry backend is only available on Windows")
}
