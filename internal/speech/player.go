// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Player is an audio command that plays a WAV file given as its last
// argument.
type Player struct {
	Command string
	Args    []string
}

// String returns the command line without the file argument.
func (p Player) String() string {
	return strings.TrimSpace(p.Command + " " + strings.Join(p.Args, " "))
}

// args builds the argument list for path. Creates a new slice so the base
// arguments are never shared between goroutines.
func (p Player) args(path string) []string {
	// Windows PowerShell needs the path inside the script
	if p.isPowerShell() {
		return []string{"-NoProfile", "-c", fmt.Sprintf("(New-Object System.Media.SoundPlayer '%s').PlaySync()", strings.ReplaceAll(path, "'", "''"))}
	}
	out := make([]string, len(p.Args)+1)
	copy(out, p.Args)
	out[len(out)-1] = path
	return out
}

func (p Player) isPowerShell() bool {
	base := strings.ToLower(p.Command)
	return strings.HasSuffix(base, "powershell.exe") || strings.HasSuffix(base, "powershell") || strings.HasSuffix(base, "pwsh")
}

// DetectPlayer finds an audio player. A non-empty override is split on
// spaces and used as-is when its command is on PATH.
func DetectPlayer(override string) (Player, bool) {
	if fields := strings.Fields(override); len(fields) > 0 {
		path, err := exec.LookPath(fields[0])
		if err != nil {
			return Player{}, false
		}
		return Player{Command: path, Args: fields[1:]}, true
	}

	switch runtime.GOOS {
	case "darwin":
		if path, err := exec.LookPath("afplay"); err == nil {
			return Player{Command: path}, true
		}
	case "linux", "freebsd", "openbsd":
		// Prefer PulseAudio, fall back to ALSA
		if path, err := exec.LookPath("paplay"); err == nil {
			return Player{Command: path}, true
		}
		if path, err := exec.LookPath("aplay"); err == nil {
			return Player{Command: path, Args: []string{"-q"}}, true
		}
	case "windows":
		if path, err := exec.LookPath("powershell.exe"); err == nil {
			return Player{Command: path}, true
		}
	}
	return Player{}, false
}
