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

type Cast struct {
	KodiURL   string `toml:"kodi_url,omitempty" validate:"omitempty,url"`
	Discover  bool   `toml:"discover"`
	WithLocal bool   `toml:"with_local"`
}

// KodiURL is the JSON-RPC endpoint of the cast device, empty when unset.
func (c *Instance) KodiURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Cast.KodiURL
}

func (c *Instance) SetKodiURL(u string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Cast.KodiURL = u
}

func (c *Instance) CastDiscovery() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Cast.Discover
}

func (c *Instance) CastWithLocal() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Cast.WithLocal
}
