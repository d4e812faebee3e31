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
	"database/sql"
	"fmt"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
)

func (db *MediaDB) Blocklist(ctx context.Context) ([]database.BlocklistEntry, error) {
	var entries []database.BlocklistEntry
	err := db.sqlx.SelectContext(ctx, &entries, "SELECT key, value FROM blocklist ORDER BY key, value")
	if err != nil {
		return nil, fmt.Errorf("failed to query blocklist: %w", err)
	}
	return entries, nil
}

// AddBlocklist stores entries, ignoring ones already present.
func (db *MediaDB) AddBlocklist(ctx context.Context, entries ...database.BlocklistEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return db.WithTx(ctx, func(tx *sql.Tx) error {
		bi, err := NewBatchInserter(tx, "blocklist", []string{"key", "value"}, true)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.Key == "" || e.Value == "" {
				continue
			}
			if err := bi.Add(e.Key, e.Value); err != nil {
				return err
			}
		}
		return bi.Flush(ctx)
	})
}
