// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/config"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrCorrupt is returned when a stored value is not valid JSON.
	ErrCorrupt = errors.New("corrupt stored value")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store is closed")

	// ErrUnknownBackend is returned by Open for an unsupported backend.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// CorruptError names the key whose value failed to decode.
type CorruptError struct {
	Key string
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrCorrupt, e.Key, e.Err)
}

// Is matches ErrCorrupt.
func (e *CorruptError) Is(target error) bool {
	return target == ErrCorrupt
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// =============================================================================
// SNAPSHOT AND STORE
// =============================================================================

// Snapshot is everything the client persists between runs.
type Snapshot struct {
	Messages    []model.ChatMessage `json:"messages"`
	Suggestions []string            `json:"suggestions"`
}

// IsEmpty reports whether the snapshot holds nothing.
func (s Snapshot) IsEmpty() bool {
	return len(s.Messages) == 0 && len(s.Suggestions) == 0
}

// HistoryStore persists the transcript and suggestions.
type HistoryStore interface {
	// Load returns the stored snapshot. Missing keys load as empty.
	Load(ctx context.Context) (Snapshot, error)

	// Save replaces the stored snapshot.
	Save(ctx context.Context, snap Snapshot) error

	// Close releases the backend.
	Close() error
}

// kv is a flat string key/value backend. Values are JSON documents.
type kv interface {
	get(ctx context.Context, key string) (string, bool, error)
	setAll(ctx context.Context, values map[string]string) error
	close() error
}

// Open creates the store selected by cfg.Backend.
func Open(cfg config.StorageConfig) (HistoryStore, error) {
	path := cfg.ResolvedPath()

	var (
		backend kv
		err     error
	)
	switch strings.ToLower(cfg.Backend) {
	case config.BackendFile, "":
		backend, err = openFile(path)
	case config.BackendSQLite:
		backend, err = openSQLite(path)
	case config.BackendBunt:
		backend, err = openBunt(path)
	case config.BackendMemory:
		backend = newMemory()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}

	if cfg.Passphrase != "" {
		backend = newSealed(backend, cfg.Passphrase)
	} else {
		backend = lockedKV{backend}
	}
	return &kvStore{backend: backend, maxMessages: cfg.MaxMessages}, nil
}

// NewMemoryStore returns an ephemeral store.
func NewMemoryStore() HistoryStore {
	return &kvStore{backend: newMemory()}
}

// kvStore maps a Snapshot onto the two storage keys.
type kvStore struct {
	mu          sync.Mutex
	backend     kv
	maxMessages int
	closed      bool
}

// Load implements HistoryStore.
func (s *kvStore) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Snapshot{}, ErrClosed
	}

	var snap Snapshot
	if err := s.decode(ctx, model.StorageKeyHistory, &snap.Messages); err != nil {
		return Snapshot{}, err
	}
	if err := s.decode(ctx, model.StorageKeySuggestions, &snap.Suggestions); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *kvStore) decode(ctx context.Context, key string, dst any) error {
	raw, ok, err := s.backend.get(ctx, key)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return &CorruptError{Key: key, Err: err}
	}
	return nil
}

// Save implements HistoryStore. The transcript is trimmed to the newest
// maxMessages entries.
func (s *kvStore) Save(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	messages := snap.Messages
	if messages == nil {
		messages = []model.ChatMessage{}
	}
	if s.maxMessages > 0 && len(messages) > s.maxMessages {
		messages = messages[len(messages)-s.maxMessages:]
	}
	suggestions := snap.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}

	history, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	sugg, err := json.Marshal(suggestions)
	if err != nil {
		return fmt.Errorf("encode suggestions: %w", err)
	}

	return s.backend.setAll(ctx, map[string]string{
		model.StorageKeyHistory:     string(history),
		model.StorageKeySuggestions: string(sugg),
	})
}

// Close implements HistoryStore. Closing twice is a no-op.
func (s *kvStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.backend.close()
}
