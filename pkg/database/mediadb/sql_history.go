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

// RecordPlayback stores the outcome of one play. play_count only moves when
// the play finished, and a finished play clears the resume position.
func (db *MediaDB) RecordPlayback(ctx context.Context, res database.PlaybackResult) error {
	now := db.Now()
	playhead := res.Playhead
	if res.Done {
		playhead = 0
	}
	done := 0
	if res.Done {
		done = 1
	}

	return db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE media SET
				time_played = ?,
				playhead = ?,
				play_count = play_count + ?
			WHERE id = ?`,
			now, playhead, done, res.MediaID,
		)
		if err != nil {
			return fmt.Errorf("failed to update play state: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: id %d", database.ErrNoMediaFound, res.MediaID)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO history (media_id, time_played, playhead, done) VALUES (?, ?, ?, ?)",
			res.MediaID, now, res.Playhead, done,
		); err != nil {
			return fmt.Errorf("failed to insert history: %w", err)
		}
		return nil
	})
}

// History returns the most recent plays, newest first. limit <= 0 means all.
func (db *MediaDB) History(ctx context.Context, limit int, onlyDone bool) ([]database.HistoryEntry, error) {
	q := `SELECT h.id, h.media_id, h.time_played, h.playhead, h.done, m.path
		FROM history h JOIN media m ON m.id = h.media_id`
	var args []any
	if onlyDone {
		q += " WHERE h.done = 1"
	}
	q += " ORDER BY h.time_played DESC, h.id DESC"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	var entries []database.HistoryEntry
	if err := db.sqlx.SelectContext(ctx, &entries, q, args...); err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return entries, nil
}
