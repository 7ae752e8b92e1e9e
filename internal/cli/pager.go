// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/noborus/ov/oviewer"
)

// page shows content in the ov pager when out is a terminal and writes it
// directly otherwise.
func page(out io.Writer, content string) error {
	if !isTerminalWriter(out) || !IsTTY() {
		_, err := io.WriteString(out, content)
		return err
	}

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("start pager: %w", err)
	}

	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}
