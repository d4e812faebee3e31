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

package query

import (
	"context"
	"fmt"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
)

// Querier runs a compiled statement. database.CatalogDBI satisfies it.
type Querier interface {
	Query(ctx context.Context, query string, params map[string]any) ([]database.Row, error)
}

// Select compiles spec, runs it and applies the sibling bounds and paging
// that could not be expressed in SQL. An empty result is ErrNoMediaFound.
func Select(ctx context.Context, db Querier, spec *SelectionSpec) ([]database.Row, error) {
	compiled, err := Compile(spec)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, compiled.SQL, compiled.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to run selection: %w", err)
	}

	if compiled.Lower > 0 || compiled.Upper > 0 {
		rows = FilterSiblings(rows, compiled.Lower, compiled.Upper)
		rows = page(rows, compiled.Offset, compiled.Limit)
	}
	if len(rows) == 0 {
		return nil, database.ErrNoMediaFound
	}
	return rows, nil
}

// FilterSiblings keeps rows whose parent directory holds between lower and
// upper rows of the input. A zero upper bound is open.
func FilterSiblings(rows []database.Row, lower, upper int) []database.Row {
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Parent()]++
	}
	out := make([]database.Row, 0, len(rows))
	for _, r := range rows {
		n := counts[r.Parent()]
		if n < lower {
			continue
		}
		if upper > 0 && n > upper {
			continue
		}
		out = append(out, r)
	}
	return out
}

func page(rows []database.Row, offset, limit int) []database.Row {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
