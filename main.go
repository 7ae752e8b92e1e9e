// ciscocli - Cisco IOS, IOS XE and IOS XR command reference in the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import "github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/cli"

func main() {
	cli.Main()
}
