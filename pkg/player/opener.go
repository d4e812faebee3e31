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

package player

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/playback"
	"github.com/rs/zerolog/log"
)

// Opener hands items to the desktop's default application and waits for
// the opener command to return.
type Opener struct {
	exec   command.Executor
	binary string
	args   []string
}

var _ playback.Player = (*Opener)(nil)

// DefaultOpener is the command that opens a file with its default
// application on this OS.
func DefaultOpener() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open", "-W"}
	case "windows":
		return []string{"cmd", "/c", "start", "/wait", ""}
	default:
		return []string{"xdg-open"}
	}
}

// NewOpener runs cmdline with the item path appended. An empty cmdline
// uses DefaultOpener.
func NewOpener(exec command.Executor, cmdline []string) *Opener {
	if len(cmdline) == 0 {
		cmdline = DefaultOpener()
	}
	return &Opener{exec: exec, binary: cmdline[0], args: cmdline[1:]}
}

func (o *Opener) Play(ctx context.Context, it *playback.Item) error {
	args := append(append([]string{}, o.args...), it.Path)
	log.Debug().Str("opener", o.binary).Strs("args", args).Msg("opening")
	if err := o.exec.Run(ctx, o.binary, args...); err != nil {
		if command.IsNotFound(err) {
			return fmt.Errorf("%w: %s is not installed", ErrPlayerFailed, o.binary)
		}
		if ctx.Err() != nil {
			return ctx.Err() //nolint:wrapcheck // session checks the context itself
		}
		return fmt.Errorf("%w: %s: %w", ErrPlayerFailed, it.Path, err)
	}
	return nil
}
