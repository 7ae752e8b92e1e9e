// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/buntdb"
)

// =============================================================================
// BUNTDB BACKEND
// =============================================================================

type buntKV struct {
	db *buntdb.DB
}

func openBunt(path string) (*buntKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, err
	}
	return &buntKV{db: db}, nil
}

func (b *buntKV) get(_ context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := b.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(key)
		if errors.Is(err, buntdb.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		value, found = v, true
		return nil
	})
	return value, found, err
}

func (b *buntKV) setAll(_ context.Context, values map[string]string) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		for k, v := range values {
			if _, _, err := tx.Set(k, v, nil); err != nil {
				return fmt.Errorf("write %s: %w", k, err)
			}
		}
		return nil
	})
}

func (b *buntKV) close() error {
	return b.db.Close()
}
