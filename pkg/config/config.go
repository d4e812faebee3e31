// Zaparoo MediaLib
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo MediaLib.
//
// Zaparoo MediaLib is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo MediaLib is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo MediaLib.  If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers/syncutil"
	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1
	CfgEnv        = "MEDIALIB_CFG"
	AppName       = "medialib"
	AppVersion    = "0.1.0"
	CfgFile       = "config.toml"
	LogFile       = "medialib.log"
)

type Values struct {
	Database     Database   `toml:"database"`
	Scan         Scan       `toml:"scan"`
	Playback     Playback   `toml:"playback"`
	Cast         Cast       `toml:"cast,omitempty"`
	Extractors   Extractors `toml:"extractors,omitempty"`
	Blocklist    Blocklist  `toml:"blocklist,omitempty"`
	Print        Print      `toml:"print,omitempty"`
	ConfigSchema int        `toml:"config_schema"`
	DebugLogging bool       `toml:"debug_logging"`
}

// clone copies v without sharing any slice backing arrays.
//
//nolint:gocritic // Values is copied on purpose
func (v Values) clone() Values {
	v.Scan.Include = slices.Clone(v.Scan.Include)
	v.Scan.Exclude = slices.Clone(v.Scan.Exclude)
	v.Scan.VideoExtensions = slices.Clone(v.Scan.VideoExtensions)
	v.Scan.AudioExtensions = slices.Clone(v.Scan.AudioExtensions)
	v.Scan.ImageExtensions = slices.Clone(v.Scan.ImageExtensions)
	v.Scan.TextExtensions = slices.Clone(v.Scan.TextExtensions)
	v.Playback.PlayerArgs = slices.Clone(v.Playback.PlayerArgs)
	v.Blocklist.Keys = slices.Clone(v.Blocklist.Keys)
	v.Print.Columns = slices.Clone(v.Print.Columns)
	return v
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Playback: Playback{
		Player:     "mpv",
		PostAction: PostActionKeep,
	},
	Blocklist: Blocklist{
		Keys: []string{"path", "webpath", "uploader", "extractor_id", "title", "playlist_path"},
	},
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type Instance struct {
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// DefaultDir is the directory holding config and logs when no override is set.
func DefaultDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// NewConfig loads the config file from configDir, writing defaults first if
// it doesn't exist. $MEDIALIB_CFG overrides the file path.
//
//nolint:gocritic // defaults copied on purpose
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}
	log.Debug().Str("path", cfgPath).Msg("using config file")

	cfg := Instance{
		cfgPath:  cfgPath,
		vals:     defaults.clone(),
		defaults: defaults.clone(),
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")
		if err := os.MkdirAll(filepath.Dir(cfgPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := cfg.Save(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Load(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// NewInMemory returns an Instance that is never read from or written to disk.
//
//nolint:gocritic // defaults copied on purpose
func NewInMemory(vals Values) *Instance {
	return &Instance{vals: vals.clone(), defaults: vals.clone()}
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// unset keys keep their defaults
	newVals := c.defaults.clone()
	if err := toml.Unmarshal(data, &newVals); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return errors.New("schema version mismatch")
	}

	if err := validate.Struct(newVals); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Dir is the directory containing the config file.
func (c *Instance) Dir() string {
	return filepath.Dir(c.cfgPath)
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
}

// Validate checks any struct carrying validate tags with the shared validator.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
