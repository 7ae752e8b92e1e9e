// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/util"
)

// =============================================================================
// CHECK RESULTS
// =============================================================================

// Status is the outcome of one environment check.
type Status string

const (
	StatusChecking Status = "checking"
	StatusPass     Status = "pass"
	StatusWarn     Status = "warn"
	StatusFail     Status = "fail"
)

// CheckResult is one row of the requirements screen.
type CheckResult struct {
	Name    string
	Status  Status
	Message string
	Fix     string
}

// APIHost is dialled by the network check.
const APIHost = "generativelanguage.googleapis.com:443"

// minFreeBytes is the free space below which the disk check warns.
const minFreeBytes = 50 << 20

// Checker runs the environment checks. Fields are replaceable in tests.
type Checker struct {
	// Dir is the directory the config and history are written to.
	Dir string

	// Dial opens a connection for the network check.
	Dial func(ctx context.Context, network, addr string) (net.Conn, error)

	// FreeSpace reports available bytes under a path.
	FreeSpace func(path string) (uint64, error)

	// Getenv reads environment variables.
	Getenv func(string) string

	Timeout time.Duration
}

// NewChecker returns a checker for dir using the real network and disk.
func NewChecker(dir string) *Checker {
	d := &net.Dialer{}
	return &Checker{
		Dir:       dir,
		Dial:      d.DialContext,
		FreeSpace: getFreeDiskSpace,
		Getenv:    os.Getenv,
		Timeout:   3 * time.Second,
	}
}

// Names lists the checks in run order.
func (c *Checker) Names() []string {
	return []string{"Operating System", "Config Directory", "API Key", "Network Access", "Disk Space"}
}

// Run executes check index.
func (c *Checker) Run(index int) CheckResult {
	switch index {
	case 0:
		return c.checkOS()
	case 1:
		return c.checkDir()
	case 2:
		return c.checkKey()
	case 3:
		return c.checkNetwork()
	case 4:
		return c.checkDisk()
	}
	return CheckResult{Name: "unknown", Status: StatusFail}
}

// RunAll executes every check in order.
func (c *Checker) RunAll() []CheckResult {
	out := make([]CheckResult, len(c.Names()))
	for i := range out {
		out[i] = c.Run(i)
	}
	return out
}

func (c *Checker) checkOS() CheckResult {
	return CheckResult{
		Name:    "Operating System",
		Status:  StatusPass,
		Message: fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// checkDir verifies the directory exists (or can be created) and is
// writable.
func (c *Checker) checkDir() CheckResult {
	r := CheckResult{Name: "Config Directory"}
	if err := os.MkdirAll(c.Dir, 0700); err != nil {
		r.Status = StatusFail
		r.Message = err.Error()
		r.Fix = "Set " + util.HomeEnv + " to a writable directory"
		return r
	}
	probe := filepath.Join(c.Dir, ".write-test")
	if err := os.WriteFile(probe, nil, 0600); err != nil {
		r.Status = StatusFail
		r.Message = "not writable"
		r.Fix = "Check permissions on " + c.Dir
		return r
	}
	os.Remove(probe)
	r.Status = StatusPass
	r.Message = c.Dir
	return r
}

// keyEnvVars are read in order; the first non-empty one wins.
var keyEnvVars = []string{"CISCOCLI_API_KEY", "GEMINI_API_KEY", "API_KEY"}

// EnvKey returns the API key found in the environment and its variable.
func (c *Checker) EnvKey() (key, name string) {
	for _, n := range keyEnvVars {
		if v := strings.TrimSpace(c.Getenv(n)); v != "" {
			return v, n
		}
	}
	return "", ""
}

func (c *Checker) checkKey() CheckResult {
	r := CheckResult{Name: "API Key"}
	if _, name := c.EnvKey(); name != "" {
		r.Status = StatusPass
		r.Message = "found in $" + name
		return r
	}
	r.Status = StatusWarn
	r.Message = "not set in the environment"
	r.Fix = "You can enter it in the next steps"
	return r
}

func (c *Checker) checkNetwork() CheckResult {
	r := CheckResult{Name: "Network Access"}
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	conn, err := c.Dial(ctx, "tcp", APIHost)
	if err != nil {
		r.Status = StatusWarn
		r.Message = "cannot reach the model API"
		r.Fix = "Check your proxy or firewall; api.base_url can point at a relay"
		return r
	}
	conn.Close()
	r.Status = StatusPass
	r.Message = "Connected"
	return r
}

func (c *Checker) checkDisk() CheckResult {
	r := CheckResult{Name: "Disk Space"}
	dir := c.Dir
	if _, err := os.Stat(dir); err != nil {
		dir = filepath.Dir(dir)
	}
	free, err := c.FreeSpace(dir)
	if err != nil {
		r.Status = StatusWarn
		r.Message = "could not determine free space"
		return r
	}
	r.Message = fmt.Sprintf("%s free", formatBytes(free))
	if free < minFreeBytes {
		r.Status = StatusWarn
		r.Fix = "History files may fail to save"
		return r
	}
	r.Status = StatusPass
	return r
}

// formatBytes renders n with a binary unit, e.g. "1.5 GiB".
func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
