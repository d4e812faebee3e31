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

package helpers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers/command"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Trasher moves files to the OS trash through an external command,
// unlinking in place when no trash binary is available.
type Trasher struct {
	Fs      afero.Fs
	Exec    command.Executor
	Command string
}

func NewTrasher(fs afero.Fs, exec command.Executor, cmd string) *Trasher {
	return &Trasher{Fs: fs, Exec: exec, Command: cmd}
}

// Trash removes path. Files under /net/ are always unlinked. A path that is
// already gone is not an error.
func (t *Trasher) Trash(ctx context.Context, path string) error {
	if _, err := t.Fs.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if !IsNetworkPath(path) && t.Command != "" && t.Exec != nil {
		err := t.Exec.Run(ctx, t.Command, path)
		if err == nil {
			log.Debug().Str("path", path).Msg("moved to trash")
			return nil
		}
		log.Warn().Err(err).Str("path", path).Msg("trash command failed, unlinking instead")
	}

	if err := t.Fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to unlink %s: %w", path, err)
	}
	return nil
}
