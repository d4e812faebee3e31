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

package dedupe

import (
	"context"
	"fmt"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/rs/zerolog/log"
)

// Result counts what Remove did.
type Result struct {
	Removed int
	Skipped int
	Saved   int64
}

// Remove trashes the duplicate of every accepted pair and soft-deletes its
// row. Each pair is confirmed through prompt; a nil prompt accepts all.
func Remove(
	ctx context.Context,
	db database.CatalogDBI,
	trasher *helpers.Trasher,
	prompt helpers.Prompter,
	pairs []Pair,
) (Result, error) {
	var res Result
	for i := range pairs {
		p := &pairs[i]
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("dedupe cancelled: %w", err)
		}

		if prompt != nil {
			label := fmt.Sprintf("Keep %s, remove %s (%s)?", p.Keep.Path, p.Duplicate.Path,
				helpers.FormatSize(p.Savings()))
			ok, err := prompt.Confirm(label, true)
			if err != nil {
				return res, fmt.Errorf("failed to confirm removal: %w", err)
			}
			if !ok {
				res.Skipped++
				continue
			}
		}

		if !database.IsURL(p.Duplicate.Path) && trasher != nil {
			if err := trasher.Trash(ctx, p.Duplicate.Path); err != nil {
				return res, fmt.Errorf("failed to trash duplicate: %w", err)
			}
		}
		if _, err := db.SoftDeleteMedia(ctx, []string{p.Duplicate.Path}); err != nil {
			return res, fmt.Errorf("failed to mark duplicate deleted: %w", err)
		}
		log.Info().Str("keep", p.Keep.Path).Str("duplicate", p.Duplicate.Path).
			Str("strategy", string(p.Strategy)).Msg("removed duplicate")
		res.Removed++
		res.Saved += p.Savings()
	}
	return res, nil
}
