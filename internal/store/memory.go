package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Store, used by tests and the `memory` backend.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}

	return value, nil
}

func (m *Memory) Put(ctx context.Context, key, value string, overwrite bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.values[key]; ok && !overwrite {
		return ErrAlreadyExists
	}

	m.values[key] = value

	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.values[key]; !ok {
		return ErrNotFound
	}

	delete(m.values, key)

	return nil
}

func (m *Memory) List(ctx context.Context, prefix string) ([]KV, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	kvs := make([]KV, 0)
	for key, value := range m.values {
		if strings.HasPrefix(key, prefix) {
			kvs = append(kvs, KV{Key: key, Value: value})
		}
	}

	sort.Slice(kvs, func(i, j int) bool { return kvs[i].Key < kvs[j].Key })

	return kvs, nil
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}
