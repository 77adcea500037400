package store

import (
	"sort"
	"sync"

	"wenv/internal/errors"
	"wenv/internal/model"
)

// Memory is an in-process store. The zero value is not usable; call NewMemory.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
	closed bool

	// DenyWrites makes Set fail with PERMISSION_DENIED.
	DenyWrites bool
}

func NewMemory(initial map[string]string) *Memory {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &Memory{values: values}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Get(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", errors.New(errors.ErrStoreUnavailable, "memory store is closed")
	}
	v, ok := m.values[name]
	if !ok {
		return "", notFound(name)
	}
	return v, nil
}

// Enumerate returns variables sorted by name.
func (m *Memory) Enumerate() ([]model.Variable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, errors.New(errors.ErrStoreUnavailable, "memory store is closed")
	}
	vars := make([]model.Variable, 0, len(m.values))
	for k, v := range m.values {
		vars = append(vars, model.Variable{Name: k, Value: v, Kind: "string"})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars, nil
}

func (m *Memory) Set(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New(errors.ErrStoreUnavailable, "memory store is closed")
	}
	if m.DenyWrites {
		return errors.Newf(errors.ErrPermissionDenied, "writing %s is not allowed", name)
	}
	m.values[name] = value
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
