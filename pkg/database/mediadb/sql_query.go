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
	"github.com/rs/zerolog/log"
)

// Query runs a compiled SELECT with :name parameters bound from params and
// returns each row keyed by column name.
func (db *MediaDB) Query(ctx context.Context, query string, params map[string]any) ([]database.Row, error) {
	if db.sqlx == nil {
		return nil, database.ErrNullSQL
	}
	if params == nil {
		params = map[string]any{}
	}

	rows, err := db.sqlx.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", database.ErrInvalidQuery, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close query rows")
		}
	}()

	var out []database.Row
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		out = append(out, database.Row(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", database.ErrInvalidQuery, err)
	}
	return out, nil
}
