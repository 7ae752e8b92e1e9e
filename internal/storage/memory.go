// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"sync"
)

// memoryKV keeps values in process memory.
type memoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

func newMemory() *memoryKV {
	return &memoryKV{values: make(map[string]string)}
}

func (m *memoryKV) get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryKV) setAll(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

func (m *memoryKV) close() error { return nil }
