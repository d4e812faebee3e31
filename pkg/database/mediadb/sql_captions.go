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

package mediadb

import (
	"context"
	"fmt"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
)

// SearchCaptions full-text matches caption lines of live media, ordered by
// path then time.
func (db *MediaDB) SearchCaptions(ctx context.Context, match string, limit int) ([]database.CaptionHit, error) {
	match = database.QuoteFTSTerm(match)
	if match == "" {
		return nil, fmt.Errorf("%w: empty caption search", database.ErrInvalidQuery)
	}
	q := `SELECT m.path, c.time, c.text
		FROM captions c JOIN media m ON m.id = c.media_id
		WHERE c.id IN (SELECT docid FROM captions_fts WHERE captions_fts MATCH ?)
			AND m.time_deleted = 0
		ORDER BY m.path, c.time`
	args := []any{match}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	var hits []database.CaptionHit
	if err := db.sqlx.SelectContext(ctx, &hits, q, args...); err != nil {
		return nil, fmt.Errorf("%w: %w", database.ErrInvalidQuery, err)
	}
	return hits, nil
}
