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

import "slices"

// BlocklistKeyChoices are the columns blocklist.keys accepts.
var BlocklistKeyChoices = []string{
	"path", "webpath", "uploader", "extractor_id", "title", "playlist_path", "artist", "album", "genre",
}

type Blocklist struct {
	Keys []string `toml:"keys,omitempty,multiline" validate:"dive,oneof=path webpath uploader extractor_id title playlist_path artist album genre"` //nolint:lll
}

type Print struct {
	Columns []string `toml:"columns,omitempty,multiline"`
}

// BlocklistKeys are the blocklist columns applied to every selection.
func (c *Instance) BlocklistKeys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.vals.Blocklist.Keys) == 0 {
		return slices.Clone(BaseDefaults.Blocklist.Keys)
	}
	return slices.Clone(c.vals.Blocklist.Keys)
}

func (c *Instance) PrintColumns() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.vals.Print.Columns)
}
