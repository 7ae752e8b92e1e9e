// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/util"
)

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = "2"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ciscocli configuration.
type Config struct {
	// General settings
	Version      string `toml:"version" json:"version"`
	DefaultModel string `toml:"default_model" json:"default_model"`

	API     APIConfig     `toml:"api" json:"api"`
	Storage StorageConfig `toml:"storage" json:"storage"`
	Sync    SyncConfig    `toml:"sync" json:"sync"`
	Speech  SpeechConfig  `toml:"speech" json:"speech"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Server  ServerConfig  `toml:"server" json:"server"`
}

// APIConfig configures the model API client.
type APIConfig struct {
	// Key is the Gemini API key. Never logged.
	Key string `toml:"key" json:"key"`

	// BaseURL overrides the generateContent endpoint root (tests, proxies).
	BaseURL string `toml:"base_url" json:"base_url"`

	TimeoutSecs       int `toml:"timeout_secs" json:"timeout_secs"`
	MaxRetries        int `toml:"max_retries" json:"max_retries"`
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
}

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBunt   = "buntdb"
	BackendMemory = "memory"
)

// StorageConfig selects where the transcript and suggestions are kept.
type StorageConfig struct {
	// Backend is one of file, sqlite, buntdb, memory.
	Backend string `toml:"backend" json:"backend"`

	// Path of the store. Empty means a backend specific file under ~/.ciscocli.
	Path string `toml:"path" json:"path"`

	// MaxMessages caps the persisted transcript.
	MaxMessages int `toml:"max_messages" json:"max_messages"`

	// Passphrase encrypts stored values at rest when set. Never logged.
	Passphrase string `toml:"passphrase" json:"passphrase"`
}

// SyncConfig configures transcript sync to the Drive app data folder.
type SyncConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`

	// Token is an OAuth bearer token with the drive.appdata scope. Never logged.
	Token string `toml:"token" json:"token"`

	BaseURL      string `toml:"base_url" json:"base_url"`
	DebounceSecs int    `toml:"debounce_secs" json:"debounce_secs"`
}

// SpeechConfig configures spoken answers.
type SpeechConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`

	// Player overrides the detected audio command, e.g. "mpv --really-quiet".
	Player string `toml:"player" json:"player"`

	Voice string `toml:"voice" json:"voice"`
}

// UIConfig contains terminal UI preferences.
type UIConfig struct {
	Theme         string `toml:"theme" json:"theme"`
	ShowReasoning bool   `toml:"show_reasoning" json:"show_reasoning"`
	ResearchMode  bool   `toml:"research_mode" json:"research_mode"`
	Compact       bool   `toml:"compact" json:"compact"`
}

// ServerConfig configures the HTTP proxy started by "ciscocli serve".
type ServerConfig struct {
	Addr              string `toml:"addr" json:"addr"`
	AllowedOrigin     string `toml:"allowed_origin" json:"allowed_origin"`
	MaxBodyBytes      int64  `toml:"max_body_bytes" json:"max_body_bytes"`
	RequestsPerMinute int    `toml:"requests_per_minute" json:"requests_per_minute"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a new Config with default values.
func Default() *Config {
	return &Config{
		Version:      CurrentVersion,
		DefaultModel: model.DefaultModelID,
		API: APIConfig{
			BaseURL:           "https://generativelanguage.googleapis.com/v1beta",
			TimeoutSecs:       120,
			MaxRetries:        3,
			RequestsPerMinute: 30,
		},
		Storage: StorageConfig{
			Backend:     BackendFile,
			MaxMessages: model.MaxMessages,
		},
		Sync: SyncConfig{
			BaseURL:      "https://www.googleapis.com",
			DebounceSecs: 5,
		},
		Speech: SpeechConfig{
			Enabled: true,
			Voice:   "Kore",
		},
		UI: UIConfig{
			Theme: "auto",
		},
		Server: ServerConfig{
			Addr:              "127.0.0.1:8787",
			AllowedOrigin:     "*",
			MaxBodyBytes:      10 * 1024 * 1024,
			RequestsPerMinute: 60,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the ciscocli configuration directory path.
func ConfigDir() (string, error) {
	return util.AppDir()
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultStorePath returns the store file used when storage.path is empty.
func DefaultStorePath(backend string) string {
	switch backend {
	case BackendSQLite:
		return util.AppPath("history.db")
	case BackendBunt:
		return util.AppPath("history.buntdb")
	default:
		return util.AppPath("history.json")
	}
}

// ResolvedPath returns the expanded store path, defaulting per backend.
func (s StorageConfig) ResolvedPath() string {
	if strings.TrimSpace(s.Path) == "" {
		return DefaultStorePath(s.Backend)
	}
	p, err := util.ExpandPath(s.Path)
	if err != nil {
		return s.Path
	}
	return p
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only) to protect API keys.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// LoadDotEnv loads KEY=value files into the process environment. Variables
// already set are never overridden and missing files are skipped. With no
// arguments it loads ./.env and ~/.ciscocli/.env.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env", util.AppPath(".env")}
	}

	var existing []string
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load loads configuration from ~/.ciscocli.
// Tries TOML first, then JSON, and falls back to defaults. .env files and
// environment overrides are applied last. A broken config file is reported
// together with the defaults so callers can warn and continue.
func Load() (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			cfg := Default()
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			cfg := Default()
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = errors.Join(loadErr, fmt.Errorf("failed to load JSON config: %w", err))
			} else {
				return finish(cfg)
			}
		}
	}

	cfg, err := finish(Default())
	if err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Files ending in .json are decoded as JSON, anything else as TOML.
func LoadFromPath(path string) (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	expanded, err := util.ExpandPath(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if strings.HasSuffix(strings.ToLower(expanded), ".json") {
		if err := LoadJSON(cfg, expanded); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", expanded, err)
		}
	} else {
		if err := LoadTOML(cfg, expanded); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", expanded, err)
		}
	}
	return finish(cfg)
}

// finish runs the shared post-load pipeline.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Migrate(); err != nil {
		return nil, fmt.Errorf("config migration failed: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		fmt.Fprintf(os.Stderr, "Warning: unknown config keys in %s: %s\n", path, strings.Join(keys, ", "))
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
// SECURITY: Checks and fixes file permissions on load.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Written with 0600 permissions (owner read/write only).
// RELIABILITY: Atomic write with fsync prevents data loss on crash.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# ciscocli configuration file\n")
	buf.WriteString("# Generated by ciscocli - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns ValidateErrors listing
// every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if _, ok := model.LookupModel(c.DefaultModel); !ok {
		add("default_model", "unknown model '%s', must be one of: %s", c.DefaultModel, strings.Join(model.ModelIDs(), ", "))
	}

	// API
	if err := validateURL(c.API.BaseURL); err != nil {
		add("api.base_url", "%v", err)
	}
	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 600 {
		add("api.timeout_secs", "must be between 1 and 600, got %d", c.API.TimeoutSecs)
	}
	if c.API.MaxRetries < 0 || c.API.MaxRetries > 10 {
		add("api.max_retries", "must be between 0 and 10, got %d", c.API.MaxRetries)
	}
	if c.API.RequestsPerMinute < 0 {
		add("api.requests_per_minute", "cannot be negative")
	}

	// Storage
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendBunt, BackendMemory:
	default:
		add("storage.backend", "invalid backend '%s', must be one of: file, sqlite, buntdb, memory", c.Storage.Backend)
	}
	if c.Storage.MaxMessages < 1 || c.Storage.MaxMessages > 100000 {
		add("storage.max_messages", "must be between 1 and 100000, got %d", c.Storage.MaxMessages)
	}

	// Sync
	if err := validateURL(c.Sync.BaseURL); err != nil {
		add("sync.base_url", "%v", err)
	}
	if c.Sync.DebounceSecs < 0 || c.Sync.DebounceSecs > 3600 {
		add("sync.debounce_secs", "must be between 0 and 3600, got %d", c.Sync.DebounceSecs)
	}

	// UI
	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light":
	default:
		add("ui.theme", "invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme)
	}

	// Server
	if strings.TrimSpace(c.Server.Addr) == "" {
		add("server.addr", "cannot be empty")
	}
	if c.Server.MaxBodyBytes < 1024 {
		add("server.max_body_bytes", "must be at least 1024, got %d", c.Server.MaxBodyBytes)
	}
	if c.Server.RequestsPerMinute < 0 {
		add("server.requests_per_minute", "cannot be negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateURL accepts empty strings and absolute http(s) URLs.
func validateURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme '%s', must be http or https", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("URL has no host")
	}
	return nil
}

// SetDefaults fills zero values left by a partial config file.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.DefaultModel == "" {
		c.DefaultModel = d.DefaultModel
	}

	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = d.API.TimeoutSecs
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = d.Storage.Backend
	}
	if c.Storage.MaxMessages == 0 {
		c.Storage.MaxMessages = d.Storage.MaxMessages
	}

	if c.Sync.BaseURL == "" {
		c.Sync.BaseURL = d.Sync.BaseURL
	}

	if c.Speech.Voice == "" {
		c.Speech.Voice = d.Speech.Voice
	}

	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}

	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.AllowedOrigin == "" {
		c.Server.AllowedOrigin = d.Server.AllowedOrigin
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = d.Server.MaxBodyBytes
	}
}

// Migrate rewrites values written by older versions.
func (c *Config) Migrate() error {
	// Model aliases ("pro", "Gemini 3 Flash") become catalogue IDs.
	if info, ok := model.LookupModel(c.DefaultModel); ok {
		c.DefaultModel = info.ID
	}

	switch strings.ToLower(strings.TrimSpace(c.Storage.Backend)) {
	case "json", "localstorage":
		c.Storage.Backend = BackendFile
	case "sqlite3":
		c.Storage.Backend = BackendSQLite
	case "bunt":
		c.Storage.Backend = BackendBunt
	case "mem", "ephemeral":
		c.Storage.Backend = BackendMemory
	default:
		c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	}

	if strings.EqualFold(c.UI.Theme, "system") {
		c.UI.Theme = "auto"
	}
	c.UI.Theme = strings.ToLower(c.UI.Theme)

	if c.Version != "" && c.Version != CurrentVersion {
		c.Version = CurrentVersion
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - CISCOCLI_API_KEY, GEMINI_API_KEY, API_KEY: api.key (first one set wins)
//   - CISCOCLI_MODEL: default_model
//   - CISCOCLI_BASE_URL: api.base_url
//   - CISCOCLI_STORE: storage.backend
//   - CISCOCLI_STORE_PATH: storage.path
//   - CISCOCLI_STORE_PASSPHRASE: storage.passphrase
//   - CISCOCLI_SYNC_TOKEN: sync.token (and enables sync)
//   - CISCOCLI_THEME: ui.theme
//   - CISCOCLI_SERVER_ADDR: server.addr
func (c *Config) ApplyEnvOverrides() {
	for _, name := range []string{"CISCOCLI_API_KEY", "GEMINI_API_KEY", "API_KEY"} {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			c.API.Key = key
			break
		}
	}

	if v := os.Getenv("CISCOCLI_MODEL"); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv("CISCOCLI_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("CISCOCLI_STORE"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("CISCOCLI_STORE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("CISCOCLI_STORE_PASSPHRASE"); v != "" {
		c.Storage.Passphrase = v
	}
	if v := os.Getenv("CISCOCLI_SYNC_TOKEN"); v != "" {
		c.Sync.Token = v
		c.Sync.Enabled = true
	}
	if v := os.Getenv("CISCOCLI_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("CISCOCLI_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "api.timeout_secs").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup walks the struct along a dot separated key.
func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("'%s' is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strings.TrimSpace(strVal), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal, err := parseBool(strVal)
			if err != nil {
				return err
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String && field.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value: %q", s)
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"default_model",
		"api.key",
		"api.base_url",
		"api.timeout_secs",
		"api.max_retries",
		"api.requests_per_minute",
		"storage.backend",
		"storage.path",
		"storage.max_messages",
		"storage.passphrase",
		"sync.enabled",
		"sync.token",
		"sync.base_url",
		"sync.debounce_secs",
		"speech.enabled",
		"speech.player",
		"speech.voice",
		"ui.theme",
		"ui.show_reasoning",
		"ui.research_mode",
		"ui.compact",
		"server.addr",
		"server.allowed_origin",
		"server.max_body_bytes",
		"server.requests_per_minute",
	}
}

// IsSecretKey reports whether a dot-notation key holds a credential.
func IsSecretKey(key string) bool {
	switch strings.ToLower(key) {
	case "api.key", "sync.token", "storage.passphrase":
		return true
	}
	return false
}

// Clone creates a copy of the configuration. Config holds no reference
// types, so a value copy is deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Redacted returns a copy with credentials masked.
// SECURITY: Use for anything that may be printed or logged.
func (c *Config) Redacted() *Config {
	safe := c.Clone()
	if safe.API.Key != "" {
		safe.API.Key = "[REDACTED]"
	}
	if safe.Sync.Token != "" {
		safe.Sync.Token = "[REDACTED]"
	}
	if safe.Storage.Passphrase != "" {
		safe.Storage.Passphrase = "[REDACTED]"
	}
	return safe
}

// String returns a JSON representation with credentials redacted.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c.Redacted(), "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access unless SetGlobal ran first. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
