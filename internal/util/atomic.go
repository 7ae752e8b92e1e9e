// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// AppDirName is the per-user state directory under the home directory.
const AppDirName = ".ciscocli"

// HomeEnv overrides the state directory, mainly for tests and portable
// installs.
const HomeEnv = "CISCOCLI_HOME"

// RELIABILITY: Atomic write with fsync prevents a torn transcript on crash.
//
// AtomicWriteFile writes data to a temp file in the target directory, syncs
// it, sets perm and renames it over path. The parent directory is created
// with 0700 when missing. Readers see either the old or the new content.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	return AtomicWriteFileWithDir(path, data, perm, 0700)
}

// AtomicWriteFileWithDir is AtomicWriteFile with an explicit permission for
// a newly created parent directory.
func AtomicWriteFileWithDir(path string, data []byte, filePerm, dirPerm os.FileMode) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	// Same directory keeps the rename on one filesystem.
	f, err := os.CreateTemp(dir, "."+filepath.Base(absPath)+".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := f.Name()

	committed := false
	defer func() {
		if !committed {
			f.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync data to disk: %w", err)
	}
	// Windows refuses to rename an open file.
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, filePerm); err != nil {
		return fmt.Errorf("failed to set file permissions: %w", err)
	}
	if err := os.Rename(tempPath, absPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	committed = true
	return nil
}

// =============================================================================
// PATHS
// =============================================================================

// ExpandPath expands a leading "~" to the user's home directory and cleans
// the result. Empty input stays empty.
func ExpandPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", path, err)
	}
	return filepath.Clean(expanded), nil
}

// AppDir returns ~/.ciscocli, or $CISCOCLI_HOME when set.
func AppDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return ExpandPath(dir)
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, AppDirName), nil
}

// AppPath joins elems under AppDir. When the home directory cannot be
// determined it falls back to the working directory.
func AppPath(elems ...string) string {
	dir, err := AppDir()
	if err != nil {
		dir = AppDirName
	}
	return filepath.Join(append([]string{dir}, elems...)...)
}
