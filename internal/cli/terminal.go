// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// fileOf returns the *os.File behind a reader or writer, if any.
func fileOf(v any) (*os.File, bool) {
	f, ok := v.(*os.File)
	return f, ok && f != nil
}

// isTerminal reports whether fd is an interactive terminal. Cygwin and
// MSYS ptys count.
func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsTTY reports whether stdin is a terminal.
func IsTTY() bool { return isTerminal(os.Stdin.Fd()) }

// IsStdoutTTY reports whether stdout is a terminal.
func IsStdoutTTY() bool { return isTerminal(os.Stdout.Fd()) }

func isTerminalWriter(w io.Writer) bool {
	f, ok := fileOf(w)
	return ok && isTerminal(f.Fd())
}

func isTerminalReader(r io.Reader) bool {
	f, ok := fileOf(r)
	return ok && isTerminal(f.Fd())
}

// =============================================================================
// WIDTH
// =============================================================================

const (
	// DefaultTerminalWidth applies when stdout is not a terminal and
	// COLUMNS is unset.
	DefaultTerminalWidth = 80

	// MinTerminalWidth keeps cards legible in narrow panes.
	MinTerminalWidth = 40

	// MaxCardWidth caps answers on wide terminals.
	MaxCardWidth = 120
)

// GetTerminalWidth returns the stdout width, then $COLUMNS, then
// DefaultTerminalWidth, never less than MinTerminalWidth.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = DefaultTerminalWidth
		if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 0 {
			width = n
		}
	}
	return max(width, MinTerminalWidth)
}

// cardWidth is the width answers are rendered at.
func cardWidth() int {
	return min(GetTerminalWidth()-2, MaxCardWidth)
}

// =============================================================================
// COLOR
// =============================================================================

var colorsEnabled = sync.OnceValue(func() bool {
	switch {
	case os.Getenv("NO_COLOR") != "":
		return false
	case os.Getenv("FORCE_COLOR") != "", os.Getenv("CLICOLOR_FORCE") != "":
		return true
	default:
		return IsStdoutTTY()
	}
})

// ColorsEnabled reports whether styled output should be written.
// NO_COLOR wins over FORCE_COLOR; otherwise stdout must be a terminal.
// See https://no-color.org/.
func ColorsEnabled() bool { return colorsEnabled() }

// colorProfile is the lipgloss profile for CLI output.
func colorProfile() termenv.Profile {
	if !ColorsEnabled() {
		return termenv.Ascii
	}
	if p := termenv.NewOutput(os.Stdout).EnvColorProfile(); p != termenv.Ascii {
		return p
	}
	// Forced colors on a pipe.
	return termenv.ANSI256
}

// =============================================================================
// INTERACTIVE INPUT
// =============================================================================

// TTYRequiredError is returned when an operation needs an interactive
// terminal.
type TTYRequiredError struct {
	Operation string
}

func (e *TTYRequiredError) Error() string {
	if e.Operation == "" {
		return "stdin is not a terminal; interactive input not available"
	}
	return "stdin is not a terminal; cannot " + e.Operation + " interactively"
}

// RequiresTTY returns a *TTYRequiredError unless stdin is a terminal.
func RequiresTTY(operation string) error {
	if IsTTY() {
		return nil
	}
	return &TTYRequiredError{Operation: operation}
}
