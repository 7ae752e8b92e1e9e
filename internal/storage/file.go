// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/util"
)

// =============================================================================
// FILE BACKEND
// =============================================================================

// fileKV stores all keys in one JSON object {"key": "<json>"}. The file is
// re-read on every get so changes by another process are picked up.
type fileKV struct {
	mu   sync.Mutex
	path string
}

func openFile(path string) (*fileKV, error) {
	if path == "" {
		return nil, errors.New("empty store path")
	}
	// SECURITY: Owner-only directory, the transcript may contain configs.
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &fileKV{path: path}, nil
}

func (f *fileKV) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, &CorruptError{Key: filepath.Base(f.path), Err: err}
	}
	return values, nil
}

func (f *fileKV) get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *fileKV) setAll(_ context.Context, updates map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		// RELIABILITY: Overwrite a corrupt file rather than refusing to save.
		if !errors.Is(err, ErrCorrupt) {
			return err
		}
		values = map[string]string{}
	}
	for k, v := range updates {
		values[k] = v
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	return util.AtomicWriteFile(f.path, data, 0600)
}

func (f *fileKV) close() error { return nil }
