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

package cli

import (
	"fmt"
	"io"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/config"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/rs/zerolog"
)

// Setup starts logging into the config directory and loads the config
// file. Debug logging is on when verbose is set or the config asks for it.
//
//nolint:gocritic // defaults copied on purpose
func Setup(defaults config.Values, verbose bool, writers ...io.Writer) (*config.Instance, error) {
	dir := config.DefaultDir()
	if err := helpers.InitLogging(dir, verbose, writers...); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	cfg, err := config.NewConfig(dir, defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if verbose || cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	return cfg, nil
}
