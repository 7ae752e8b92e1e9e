// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/util"
)

// isolate points the state directory at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(util.HomeEnv, dir)
	for _, name := range []string{
		"CISCOCLI_API_KEY", "GEMINI_API_KEY", "API_KEY", "CISCOCLI_MODEL",
		"CISCOCLI_BASE_URL", "CISCOCLI_STORE", "CISCOCLI_STORE_PATH",
		"CISCOCLI_SYNC_TOKEN", "CISCOCLI_THEME", "CISCOCLI_SERVER_ADDR", "CISCOCLI_STORE_PASSPHRASE",
	} {
		t.Setenv(name, "")
	}
	return dir
}

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, model.DefaultModelID, cfg.DefaultModel)
	require.Equal(t, BackendFile, cfg.Storage.Backend)
	require.Equal(t, 5, cfg.Sync.DebounceSecs)
	require.Equal(t, "Kore", cfg.Speech.Voice)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.DefaultModel = "gpt-4"
	cfg.API.TimeoutSecs = 0
	cfg.API.BaseURL = "ftp://example.com"
	cfg.Storage.Backend = "redis"
	cfg.UI.Theme = "neon"
	cfg.Server.MaxBodyBytes = 10

	err := cfg.Validate()
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))

	fields := map[string]bool{}
	for _, e := range verrs {
		fields[e.Field] = true
	}
	for _, want := range []string{"default_model", "api.timeout_secs", "api.base_url", "storage.backend", "ui.theme", "server.max_body_bytes"} {
		if !fields[want] {
			t.Errorf("Validate() did not report %s; got %v", want, err)
		}
	}
}

func TestMigrate(t *testing.T) {
	cfg := Default()
	cfg.DefaultModel = "flash"
	cfg.Storage.Backend = "JSON"
	cfg.UI.Theme = "System"
	cfg.Version = "1"

	require.NoError(t, cfg.Migrate())
	require.Equal(t, model.ModelFlash, cfg.DefaultModel)
	require.Equal(t, BackendFile, cfg.Storage.Backend)
	require.Equal(t, "auto", cfg.UI.Theme)
	require.Equal(t, CurrentVersion, cfg.Version)
}

func TestSetDefaults_FillsPartialConfig(t *testing.T) {
	cfg := &Config{API: APIConfig{Key: "k"}}
	cfg.SetDefaults()
	require.Equal(t, "k", cfg.API.Key)
	require.Equal(t, Default().API.BaseURL, cfg.API.BaseURL)
	require.Equal(t, BackendFile, cfg.Storage.Backend)
	require.Equal(t, "auto", cfg.UI.Theme)
	require.NoError(t, cfg.Validate())
}

// =============================================================================
// LOADING
// =============================================================================

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default().Server.Addr, cfg.Server.Addr)
}

func TestLoad_TOMLFile(t *testing.T) {
	dir := isolate(t)
	content := `
default_model = "gemini-3-flash-preview"

[api]
timeout_secs = 30

[storage]
backend = "sqlite"
path = "~/cisco.db"

[ui]
theme = "dark"
show_reasoning = true
`
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, model.ModelFlash, cfg.DefaultModel)
	require.Equal(t, 30, cfg.API.TimeoutSecs)
	require.Equal(t, 3, cfg.API.MaxRetries)
	require.Equal(t, BackendSQLite, cfg.Storage.Backend)
	require.Equal(t, "dark", cfg.UI.Theme)
	require.True(t, cfg.UI.ShowReasoning)
	require.False(t, strings.HasPrefix(cfg.Storage.ResolvedPath(), "~"))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0600), info.Mode().Perm(), "config permissions should be tightened")
	}
}

func TestLoad_JSONFallback(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"ui":{"theme":"light"}}`), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "light", cfg.UI.Theme)
}

func TestLoad_BrokenFileReturnsDefaults(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0600))

	cfg, err := Load()
	require.Error(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, Default().DefaultModel, cfg.DefaultModel)
}

func TestLoadFromPath_InvalidConfig(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[storage]\nbackend = \"redis\"\n"), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "storage.backend")
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("API_KEY", "fallback-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("CISCOCLI_STORE", "buntdb")
	t.Setenv("CISCOCLI_SYNC_TOKEN", "tok")
	t.Setenv("CISCOCLI_SERVER_ADDR", ":9999")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	require.Equal(t, "gemini-key", cfg.API.Key, "GEMINI_API_KEY wins over API_KEY")
	require.Equal(t, BackendBunt, cfg.Storage.Backend)
	require.True(t, cfg.Sync.Enabled)
	require.Equal(t, "tok", cfg.Sync.Token)
	require.Equal(t, ":9999", cfg.Server.Addr)

	t.Setenv("CISCOCLI_API_KEY", "primary")
	cfg.ApplyEnvOverrides()
	require.Equal(t, "primary", cfg.API.Key)
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	const fresh = "CISCOCLI_TEST_DOTENV_FRESH"
	const preset = "CISCOCLI_TEST_DOTENV_PRESET"
	os.Unsetenv(fresh)
	t.Cleanup(func() { os.Unsetenv(fresh) })
	t.Setenv(preset, "from-env")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(fresh+"=from-file\n"+preset+"=from-file\n"), 0600))

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	require.Equal(t, "from-file", os.Getenv(fresh))
	require.Equal(t, "from-env", os.Getenv(preset))
}

// =============================================================================
// SAVE, GET, SET
// =============================================================================

func TestSaveAndReload(t *testing.T) {
	dir := isolate(t)

	cfg := Default()
	cfg.API.Key = "secret"
	cfg.Storage.Backend = BackendBunt
	require.NoError(t, Save(cfg))

	data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	require.Contains(t, string(data), "# ciscocli configuration file")

	loaded, err := Load()
	require.NoError(t, err)
	require.Equal(t, "secret", loaded.API.Key)
	require.Equal(t, BackendBunt, loaded.Storage.Backend)
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("ui.theme", "dark"))
	require.NoError(t, cfg.Set("api.timeout_secs", "45"))
	require.NoError(t, cfg.Set("sync.enabled", "yes"))
	require.NoError(t, cfg.Set("server.max_body_bytes", 2048))
	require.NoError(t, cfg.Set("storage.max_messages", 50))

	v, err := cfg.Get("ui.theme")
	require.NoError(t, err)
	require.Equal(t, "dark", v)

	v, err = cfg.Get("api.timeout_secs")
	require.NoError(t, err)
	require.Equal(t, 45, v)

	require.True(t, cfg.Sync.Enabled)
	require.Equal(t, int64(2048), cfg.Server.MaxBodyBytes)
	require.Equal(t, 50, cfg.Storage.MaxMessages)

	for _, key := range GetAllKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) failed: %v", key, err)
		}
	}
}

func TestGetSet_Errors(t *testing.T) {
	cfg := Default()
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{"unknown field", "api.nope", "x"},
		{"section as value", "api", "x"},
		{"value as section", "version.x", "x"},
		{"bad integer", "api.max_retries", "many"},
		{"bad bool", "ui.compact", "maybe"},
		{"int into string", "ui.theme", 5},
		{"empty key", "", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := cfg.Set(tt.key, tt.value); err == nil {
				t.Errorf("Set(%q, %v) succeeded, want error", tt.key, tt.value)
			}
		})
	}
}

func TestString_RedactsSecrets(t *testing.T) {
	cfg := Default()
	cfg.API.Key = "AIza-super-secret"
	cfg.Sync.Token = "ya29.token"
	cfg.Storage.Passphrase = "hunter2"

	s := cfg.String()
	require.NotContains(t, s, "AIza-super-secret")
	require.NotContains(t, s, "ya29.token")
	require.NotContains(t, s, "hunter2")
	require.Contains(t, s, "[REDACTED]")
	require.Equal(t, "AIza-super-secret", cfg.API.Key, "String must not mutate the config")

	require.True(t, IsSecretKey("api.key"))
	require.True(t, IsSecretKey("storage.passphrase"))
	require.False(t, IsSecretKey("ui.theme"))
}

func TestResolvedPath(t *testing.T) {
	dir := isolate(t)
	require.Equal(t, filepath.Join(dir, "history.json"), StorageConfig{Backend: BackendFile}.ResolvedPath())
	require.Equal(t, filepath.Join(dir, "history.db"), StorageConfig{Backend: BackendSQLite}.ResolvedPath())
	require.Equal(t, filepath.Join(dir, "history.buntdb"), StorageConfig{Backend: BackendBunt}.ResolvedPath())

	custom := filepath.Join(dir, "x", "..", "store.json")
	require.Equal(t, filepath.Join(dir, "store.json"), StorageConfig{Path: custom}.ResolvedPath())
}

// =============================================================================
// GLOBAL CONFIG
// =============================================================================

// TestConfig_ConcurrentAccess checks Global and SetGlobal under -race.
func TestConfig_ConcurrentAccess(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

func TestConfig_ConcurrentReload(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)
	_ = Global()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ReloadGlobal()
		}()
	}
	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

func TestSetGlobal_BeforeFirstUse(t *testing.T) {
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)

	cfg := Default()
	cfg.UI.Theme = "light"
	SetGlobal(cfg)
	require.Same(t, cfg, Global())
}
