// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows

package setup

import "golang.org/x/sys/unix"

// getFreeDiskSpace returns the bytes available to unprivileged users.
func getFreeDiskSpace(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	// Bavail, not Bfree: root-reserved blocks are not usable.
	return uint64(stat.Bavail) * uint64(stat.Bsize), nil
}
