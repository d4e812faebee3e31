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
	"slices"

	"github.com/adrg/xdg"
)

const (
	PostActionKeep             = "keep"
	PostActionSoftDelete       = "softdelete"
	PostActionDelete           = "delete"
	PostActionAskKeep          = "askkeep"
	PostActionAskDelete        = "askdelete"
	PostActionMove             = "move"
	PostActionAskMove          = "askmove"
	PostActionAskMoveOrDelete  = "ask_move_or_delete"
	DefaultCableSegmentSeconds = 20

	// subtitles present, normal speed; otherwise compensate for silence
	SubtitleSpeed   = 1.0
	NoSubtitleSpeed = 1.46
)

type Playback struct {
	Speed          *float64 `toml:"speed,omitempty" validate:"omitempty,gt=0,lte=10"`
	Player         string   `toml:"player"`
	WatchLaterDir  string   `toml:"watch_later_dir,omitempty"`
	PostAction     string   `toml:"post_action" validate:"omitempty,oneof=keep softdelete delete askkeep askdelete move askmove ask_move_or_delete"` //nolint:lll
	KeepDir        string   `toml:"keep_dir,omitempty"`
	IPCSocket      string   `toml:"ipc_socket,omitempty"`
	TrashCommand   string   `toml:"trash_command,omitempty"`
	PlayerArgs     []string `toml:"player_args,omitempty,multiline"`
	CableSegment   int      `toml:"cable_segment,omitempty" validate:"omitempty,min=1"`
	Fullscreen     bool     `toml:"fullscreen"`
	IgnoreErrors   bool     `toml:"ignore_errors"`
}

func (c *Instance) Player() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Playback.Player == "" {
		return "mpv"
	}
	return c.vals.Playback.Player
}

func (c *Instance) PlayerArgs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.vals.Playback.PlayerArgs)
}

// WatchLaterDir is the mpv watch-later directory.
func (c *Instance) WatchLaterDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Playback.WatchLaterDir == "" {
		return filepath.Join(xdg.StateHome, "mpv", "watch_later")
	}
	return c.vals.Playback.WatchLaterDir
}

func (c *Instance) PostAction() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Playback.PostAction == "" {
		return PostActionKeep
	}
	return c.vals.Playback.PostAction
}

func (c *Instance) SetPostAction(action string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Playback.PostAction = action
}

func (c *Instance) KeepDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Playback.KeepDir
}

func (c *Instance) SetKeepDir(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Playback.KeepDir = dir
}

// PlaybackSpeed returns the configured speed, or the subtitle-dependent
// default when unset.
func (c *Instance) PlaybackSpeed(hasSubtitles bool) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Playback.Speed != nil {
		return *c.vals.Playback.Speed
	}
	if hasSubtitles {
		return SubtitleSpeed
	}
	return NoSubtitleSpeed
}

func (c *Instance) Fullscreen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Playback.Fullscreen
}

func (c *Instance) IgnoreErrors() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Playback.IgnoreErrors
}

// IPCSocket is the player control socket (a named pipe on Windows).
func (c *Instance) IPCSocket() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Playback.IPCSocket
}

func (c *Instance) CableSegmentSeconds() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Playback.CableSegment > 0 {
		return c.vals.Playback.CableSegment
	}
	return DefaultCableSegmentSeconds
}

// TrashCommand is the OS trash binary, "trash-put" when unset.
func (c *Instance) TrashCommand() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Playback.TrashCommand == "" {
		return "trash-put"
	}
	return c.vals.Playback.TrashCommand
}
