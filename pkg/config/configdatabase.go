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
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	DefaultRandomRowidLimit = 60000
	DefaultLockRetries      = 8
)

// default catalog file names per action family
var defaultDBFiles = map[string]string{
	"video": "video.db",
	"audio": "audio.db",
	"fs":    "fs.db",
	"tube":  "tube.db",
	"tabs":  "tabs.db",
}

type Database struct {
	RandomRowidLimit *int   `toml:"random_rowid_limit,omitempty" validate:"omitempty,min=0"`
	LockRetries      *int   `toml:"lock_retries,omitempty" validate:"omitempty,min=1,max=100"`
	Dir              string `toml:"dir,omitempty"`
}

// DatabaseDir is where default catalog files are created.
func (c *Instance) DatabaseDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Database.Dir == "" {
		return filepath.Join(xdg.DataHome, AppName)
	}
	return c.vals.Database.Dir
}

// DefaultDatabasePath returns the catalog path for an action family such as
// "video" or "audio". Unknown families fall back to the video catalog.
func (c *Instance) DefaultDatabasePath(family string) string {
	name, ok := defaultDBFiles[family]
	if !ok {
		name = defaultDBFiles["video"]
	}
	return filepath.Join(c.DatabaseDir(), name)
}

// RandomRowidLimit bounds the random pre-selection applied to default sorts.
// Zero disables the constraint.
func (c *Instance) RandomRowidLimit() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Database.RandomRowidLimit == nil {
		return DefaultRandomRowidLimit
	}
	return *c.vals.Database.RandomRowidLimit
}

func (c *Instance) SetRandomRowidLimit(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Database.RandomRowidLimit = &n
}

func (c *Instance) LockRetries() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Database.LockRetries == nil {
		return DefaultLockRetries
	}
	return *c.vals.Database.LockRetries
}
