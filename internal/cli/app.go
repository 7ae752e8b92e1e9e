// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/cloud"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/config"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/speech"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/storage"
	cloudsync "github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/sync"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/util"
)

// ErrNoAPIKey is returned by commands that need the model API.
var ErrNoAPIKey = errors.New("no API key configured (set GEMINI_API_KEY or run: ciscocli config set api.key <key>)")

// ErrSyncDisabled is returned by sync commands without a token.
var ErrSyncDisabled = errors.New("cloud sync is not configured (set sync.token or CISCOCLI_SYNC_TOKEN)")

// =============================================================================
// GLOBAL OPTIONS
// =============================================================================

// Options holds the persistent flags shared by every command.
type Options struct {
	ConfigPath string
	Store      string
	Ephemeral  bool
	Debug      bool
}

// App is the wired application for one CLI invocation.
type App struct {
	opts Options
	cfg  *config.Config

	out    io.Writer
	errOut io.Writer
	in     io.Reader

	// logFile is closed on exit when --debug is set.
	logFile *os.File
}

// newApp loads the configuration and applies the global flags.
func newApp(opts Options, in io.Reader, out, errOut io.Writer) (*App, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.LoadFromPath(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return nil, err
		}
		if err != nil {
			fmt.Fprintf(errOut, "Warning: %v (using defaults)\n", err)
		}
	}

	if opts.Store != "" {
		cfg.Storage.Backend = opts.Store
		cfg.Storage.Path = ""
	}
	if opts.Ephemeral {
		cfg.Storage.Backend = config.BackendMemory
	}

	app := &App{opts: opts, cfg: cfg, in: in, out: out, errOut: errOut}
	if err := app.setupLogging(); err != nil {
		return nil, err
	}
	return app, nil
}

// setupLogging sends log output to ~/.ciscocli/debug.log with --debug and
// discards it otherwise.
func (a *App) setupLogging() error {
	if !a.opts.Debug {
		log.SetOutput(io.Discard)
		return nil
	}
	path := util.AppPath("debug.log")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}
	a.logFile = f
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Printf("DEBUG_START | store=%s model=%s", a.cfg.Storage.Backend, a.cfg.DefaultModel)
	return nil
}

// Close releases app resources.
func (a *App) Close() {
	if a.logFile != nil {
		log.SetOutput(io.Discard)
		_ = a.logFile.Close()
	}
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// Client builds the model client from the API section.
func (a *App) Client() *cloud.Client {
	api := a.cfg.API
	c := cloud.NewClient(api.Key).
		WithBaseURL(api.BaseURL).
		WithMaxRetries(api.MaxRetries).
		WithVoice(a.cfg.Speech.Voice)
	if api.TimeoutSecs > 0 {
		c = c.WithTimeout(time.Duration(api.TimeoutSecs) * time.Second)
	}
	if api.RequestsPerMinute > 0 {
		c = c.WithRateLimit(cloud.PerMinute(api.RequestsPerMinute), 1)
	}
	return c
}

// configuredClient returns the client or ErrNoAPIKey.
func (a *App) configuredClient() (*cloud.Client, error) {
	c := a.Client()
	if !c.IsConfigured() {
		return nil, ErrNoAPIKey
	}
	return c, nil
}

// Store opens the configured history store.
func (a *App) Store() (storage.HistoryStore, error) {
	return storage.Open(a.cfg.Storage)
}

// loadSnapshot opens the store and reads it.
func (a *App) loadSnapshot(ctx context.Context) (storage.HistoryStore, storage.Snapshot, error) {
	store, err := a.Store()
	if err != nil {
		return nil, storage.Snapshot{}, err
	}
	snap, err := store.Load(ctx)
	if err != nil {
		store.Close()
		return nil, storage.Snapshot{}, err
	}
	return store, snap, nil
}

// Speech returns the synthesizer, or a no-op when speech is unavailable.
func (a *App) Speech(client *cloud.Client) speech.SpeechSynth {
	return speech.New(client, a.cfg.Speech)
}

// Remote returns the Drive sync target, or nil when sync is off.
func (a *App) Remote() cloudsync.CloudSync {
	s := a.cfg.Sync
	if !s.Enabled || s.Token == "" {
		return nil
	}
	return cloudsync.NewDriveSync(s.Token).WithBaseURL(s.BaseURL)
}

// AutoSync wraps remote in a debounced pusher, or returns nil.
func (a *App) AutoSync(remote cloudsync.CloudSync) *cloudsync.AutoSync {
	if remote == nil {
		return nil
	}
	debounce := time.Duration(a.cfg.Sync.DebounceSecs) * time.Second
	return cloudsync.NewAutoSync(remote, debounce).OnError(func(err error) {
		log.Printf("AUTOSYNC_FAILED | error=%v", err)
	})
}

// watchPath is the store file to watch, or "" for backends other
// processes cannot share.
func (a *App) watchPath() string {
	switch a.cfg.Storage.Backend {
	case config.BackendMemory:
		return ""
	default:
		return a.cfg.Storage.ResolvedPath()
	}
}
