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

// Package player drives external playback: a local mpv process, a
// long-lived mpv fed over its IPC socket, or a Kodi device over JSON-RPC.
package player

import (
	"errors"
	"fmt"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/playback"
)

var (
	// ErrPlayerFailed means the player could not run or exited non-zero.
	ErrPlayerFailed = errors.New("player failed")
	// ErrPlaybackError means the player ran but could not play the file.
	ErrPlaybackError = errors.New("playback error")
	ErrNoCastDevice  = errors.New("no cast device found")
)

var (
	_ playback.Player = (*Mpv)(nil)
	_ playback.Player = (*Cable)(nil)
	_ playback.Player = (*Cast)(nil)
)

// mpv exit statuses for files that could not be played.
const (
	exitNothingPlayed = 2
	exitSomePlayed    = 3
)

func exitError(path string, err error) error {
	if err == nil {
		return nil
	}
	switch code := command.ExitCode(err); code {
	case exitNothingPlayed, exitSomePlayed:
		return fmt.Errorf("%w: %s (exit %d)", ErrPlaybackError, path, code)
	default:
		return fmt.Errorf("%w: %s: %w", ErrPlayerFailed, path, err)
	}
}
