// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/config"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
)

// Choices are the answers collected by the wizard.
type Choices struct {
	Model   string
	Backend string

	// Key is written only when non-empty so an existing key survives.
	Key string
}

// Option is one selectable row.
type Option struct {
	Value string
	Label string
}

// ModelOptions lists the catalogue for the model step.
func ModelOptions() []Option {
	opts := make([]Option, 0, len(model.Models))
	for _, m := range model.Models {
		opts = append(opts, Option{Value: m.ID, Label: fmt.Sprintf("%s (%s)", m.Name, m.Description)})
	}
	return opts
}

// BackendOptions lists the history backends.
func BackendOptions() []Option {
	return []Option{
		{Value: config.BackendFile, Label: "JSON file (Recommended)"},
		{Value: config.BackendSQLite, Label: "SQLite database"},
		{Value: config.BackendBunt, Label: "BuntDB key/value file"},
		{Value: config.BackendMemory, Label: "Memory only (nothing saved)"},
	}
}

// indexOf returns the position of value in opts, or 0.
func indexOf(opts []Option, value string) int {
	for i, o := range opts {
		if o.Value == value {
			return i
		}
	}
	return 0
}

// LoadExisting reads the config file at path over the defaults. A missing
// file yields the defaults.
func LoadExisting(path string) (*config.Config, error) {
	cfg := config.Default()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := config.LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteConfig applies ch to the file at path and saves it.
func WriteConfig(path string, ch Choices) error {
	cfg, err := LoadExisting(path)
	if err != nil {
		return err
	}
	if ch.Model != "" {
		cfg.DefaultModel = ch.Model
	}
	if ch.Backend != "" {
		cfg.Storage.Backend = ch.Backend
	}
	if key := strings.TrimSpace(ch.Key); key != "" {
		cfg.API.Key = key
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	return config.SaveTOML(cfg, path)
}
