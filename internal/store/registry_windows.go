//go:build windows

package store

import (
	stderrors "errors"
	"sort"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"wenv/internal/errors"
	"wenv/internal/logging"
	"wenv/internal/model"
)

const environmentKey = `Environment`

// Registry is the per-user environment under HKEY_CURRENT_USER\Environment.
type Registry struct {
	key registry.Key
}

func OpenRegistry() (Store, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, environmentKey, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		// Fall back to read-only so listing still works without write access.
		k, err = registry.OpenKey(registry.CURRENT_USER, environmentKey, registry.QUERY_VALUE)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrStoreUnavailable, `cannot open HKCU\Environment`)
		}
	}
	return &Registry{key: k}, nil
}

func (r *Registry) Name() string { return `registry:HKCU\Environment` }

func (r *Registry) Close() error { return r.key.Close() }

func (r *Registry) Get(name string) (string, error) {
	v, kind, err := r.key.GetStringValue(name)
	switch {
	case stderrors.Is(err, registry.ErrNotExist):
		return "", notFound(name)
	case stderrors.Is(err, registry.ErrUnexpectedType):
		return "", errors.Newf(errors.ErrUnsupportedValueType, "variable %s has unsupported type %s", name, kindName(kind)).
			WithDetail("name", name).
			WithDetail("kind", kindName(kind))
	case err != nil:
		return "", registryErr(err, name)
	}
	return v, nil
}

func (r *Registry) Enumerate() ([]model.Variable, error) {
	names, err := r.key.ReadValueNames(-1)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStoreUnavailable, "cannot enumerate environment")
	}
	sort.Strings(names)

	vars := make([]model.Variable, 0, len(names))
	for _, name := range names {
		v, kind, err := r.key.GetStringValue(name)
		variable := model.Variable{Name: name, Value: v, Kind: kindName(kind)}
		if stderrors.Is(err, registry.ErrUnexpectedType) {
			variable.Value = ""
			variable.Unsupported = true
		} else if err != nil {
			return nil, registryErr(err, name)
		}
		vars = append(vars, variable)
	}
	return vars, nil
}

// Set keeps REG_EXPAND_SZ values expandable; new values are written as
// REG_EXPAND_SZ when they contain a %VAR% reference.
func (r *Registry) Set(name, value string) error {
	_, kind, err := r.key.GetStringValue(name)
	expand := kind == registry.EXPAND_SZ || (err != nil && containsPercentRef(value))

	if expand {
		err = r.key.SetExpandStringValue(name, value)
	} else {
		err = r.key.SetStringValue(name, value)
	}
	if err != nil {
		return registryErr(err, name)
	}

	logger := logging.GetLogger("store")
	logger.Info().Str("name", name).Bool("expand", expand).Msg("Registry value written")
	return nil
}

func registryErr(err error, name string) error {
	if stderrors.Is(err, windows.ERROR_ACCESS_DENIED) {
		return errors.Wrapf(err, errors.ErrPermissionDenied, "access denied for %s", name)
	}
	return errors.Wrapf(err, errors.ErrStore, "registry error for %s", name)
}

func kindName(kind uint32) string {
	switch kind {
	case registry.SZ:
		return "REG_SZ"
	case registry.EXPAND_SZ:
		return "REG_EXPAND_SZ"
	case registry.MULTI_SZ:
		return "REG_MULTI_SZ"
	case registry.DWORD:
		return "REG_DWORD"
	case registry.QWORD:
		return "REG_QWORD"
	case registry.BINARY:
		return "REG_BINARY"
	}
	return "REG_NONE"
}
