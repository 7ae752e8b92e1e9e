// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloudsync keeps the transcript in the Google Drive app data
// folder so several machines share one history.
//
// The document is cisco_expert_sync.json with the layout
// {"messages": [...], "suggestions": [...]}. Authentication is an opaque
// bearer token supplied by the user; no OAuth flow is performed.
//
// # Key Types
//
//   - CloudSync: Pull/Push contract
//   - DriveSync: Drive v3 implementation
//   - AutoSync: debounced background pusher
//
// # Usage
//
//	remote := cloudsync.NewDriveSync(cfg.Sync.Token)
//	snap, found, err := remote.Pull(ctx)
//	if found {
//	    local = cloudsync.Merge(local, snap)
//	}
//
//	auto := cloudsync.NewAutoSync(remote, 5*time.Second)
//	auto.Notify(local)
//	defer auto.Close()
package cloudsync
