// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter reads answers. *liner.State implements it.
type Prompter interface {
	Prompt(prompt string) (string, error)
	PasswordPrompt(prompt string) (string, error)
}

// ErrAborted is returned when the user quits the text flow.
var ErrAborted = errors.New("setup aborted")

// RunText is the line-based setup flow for terminals without full-screen
// support and for copy/paste friendly output.
func RunText(p Prompter, out io.Writer, path string, checker *Checker) (Result, error) {
	result := Result{Path: path}

	fmt.Fprintln(out, "ciscocli setup")
	fmt.Fprintln(out, strings.Repeat("=", 40))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "[1/4] Checking environment...")
	for _, c := range checker.RunAll() {
		fmt.Fprintf(out, "  %-6s %s - %s\n", textIcon(c.Status), c.Name, c.Message)
		if c.Fix != "" {
			fmt.Fprintf(out, "         -> %s\n", c.Fix)
		}
	}
	fmt.Fprintln(out)

	existing, err := LoadExisting(path)
	if err != nil {
		return result, err
	}

	models := ModelOptions()
	fmt.Fprintln(out, "[2/4] Default model")
	modelIdx, err := choose(p, out, models, indexOf(models, existing.DefaultModel))
	if err != nil {
		return result, err
	}

	backends := BackendOptions()
	fmt.Fprintln(out, "[3/4] History storage")
	backendIdx, err := choose(p, out, backends, indexOf(backends, existing.Storage.Backend))
	if err != nil {
		return result, err
	}

	fmt.Fprintln(out, "[4/4] Gemini API key")
	if _, name := checker.EnvKey(); name != "" {
		fmt.Fprintf(out, "  $%s is set; leave blank to keep using it.\n", name)
	}
	key, err := p.PasswordPrompt("  API key (blank to skip): ")
	if err != nil {
		return result, ErrAborted
	}

	choices := Choices{Model: models[modelIdx].Value, Backend: backends[backendIdx].Value, Key: key}
	if err := WriteConfig(path, choices); err != nil {
		return result, err
	}
	result.Written = true

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Wrote %s\n", path)
	fmt.Fprintln(out, "Run 'ciscocli' to start chatting.")
	return result, nil
}

// choose prints opts and reads a 1-based selection. Blank keeps def.
func choose(p Prompter, out io.Writer, opts []Option, def int) (int, error) {
	for i, o := range opts {
		marker := " "
		if i == def {
			marker = "*"
		}
		fmt.Fprintf(out, "  %s %d. %s\n", marker, i+1, o.Label)
	}
	for {
		answer, err := p.Prompt(fmt.Sprintf("  Choice [%d]: ", def+1))
		if err != nil {
			return 0, ErrAborted
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			fmt.Fprintln(out)
			return def, nil
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(opts) {
			fmt.Fprintln(out)
			return n - 1, nil
		}
		fmt.Fprintf(out, "  Enter a number from 1 to %d.\n", len(opts))
	}
}

func textIcon(s Status) string {
	switch s {
	case StatusPass:
		return "[OK]"
	case StatusWarn:
		return "[!!]"
	case StatusFail:
		return "[FAIL]"
	}
	return "[ ]"
}
