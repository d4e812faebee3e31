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

const (
	DefaultStopPagesNoNew   = 10
	DefaultStopPagesNoMatch = 4
	DefaultPageKey          = "page"
)

type Extractors struct {
	YtDlp            string `toml:"ytdlp,omitempty"`
	PageKey          string `toml:"page_key,omitempty"`
	StopPagesNoNew   int    `toml:"stop_pages_no_new,omitempty" validate:"omitempty,min=1"`
	StopPagesNoMatch int    `toml:"stop_pages_no_match,omitempty" validate:"omitempty,min=1"`
	Threads          int    `toml:"threads,omitempty" validate:"omitempty,min=1,max=32"`
	NoSleep          bool   `toml:"no_sleep"`
}

func (c *Instance) YtDlpBinary() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Extractors.YtDlp == "" {
		return "yt-dlp"
	}
	return c.vals.Extractors.YtDlp
}

func (c *Instance) PageKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Extractors.PageKey == "" {
		return DefaultPageKey
	}
	return c.vals.Extractors.PageKey
}

func (c *Instance) StopPagesNoNew() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Extractors.StopPagesNoNew > 0 {
		return c.vals.Extractors.StopPagesNoNew
	}
	return DefaultStopPagesNoNew
}

func (c *Instance) StopPagesNoMatch() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Extractors.StopPagesNoMatch > 0 {
		return c.vals.Extractors.StopPagesNoMatch
	}
	return DefaultStopPagesNoMatch
}

// ExtractorThreads is the online extraction pool size.
func (c *Instance) ExtractorThreads() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Extractors.Threads > 0 {
		return c.vals.Extractors.Threads
	}
	return 5
}

// PolitenessSleep reports whether extractors sleep between requests.
func (c *Instance) PolitenessSleep() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.vals.Extractors.NoSleep
}

func (c *Instance) SetPolitenessSleep(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Extractors.NoSleep = !enabled
}
