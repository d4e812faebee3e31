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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
)

// UpsertPlaylist inserts or updates a playlist by path. Known fields
// overwrite, empty ones keep what is stored.
func (db *MediaDB) UpsertPlaylist(ctx context.Context, pl *database.Playlist) (int64, error) {
	if pl.Path == "" {
		return 0, errors.New("playlist path is empty")
	}
	category := pl.Category
	if category == "" {
		category = database.DefaultCategory
	}
	extractorConfig := "{}"
	if len(pl.ExtractorConfig) > 0 {
		b, err := json.Marshal(pl.ExtractorConfig)
		if err != nil {
			return 0, fmt.Errorf("failed to encode extractor config: %w", err)
		}
		extractorConfig = string(b)
	}
	now := db.Now()

	var id int64
	err := db.retry(ctx, func() error {
		return db.sql.QueryRowContext(ctx, `
			INSERT INTO playlists (
				path, extractor_key, extractor_playlist_id, title, uploader, category,
				extractor_config, time_created, time_modified, time_deleted
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
			ON CONFLICT (path) DO UPDATE SET
				extractor_key = CASE WHEN excluded.extractor_key != '' THEN excluded.extractor_key ELSE extractor_key END,
				extractor_playlist_id = CASE WHEN excluded.extractor_playlist_id != ''
					THEN excluded.extractor_playlist_id ELSE extractor_playlist_id END,
				title = CASE WHEN excluded.title != '' THEN excluded.title ELSE title END,
				uploader = CASE WHEN excluded.uploader != '' THEN excluded.uploader ELSE uploader END,
				category = CASE WHEN ? != '' THEN excluded.category ELSE category END,
				extractor_config = CASE WHEN excluded.extractor_config != '{}'
					THEN excluded.extractor_config ELSE extractor_config END,
				time_modified = excluded.time_modified,
				time_deleted = 0
			RETURNING id`,
			pl.Path, pl.ExtractorKey, pl.ExtractorPlaylistID, pl.Title, pl.Uploader, category,
			extractorConfig, now, now, pl.Category,
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert playlist %s: %w", pl.Path, err)
	}
	pl.ID = id
	return id, nil
}

// FindPlaylist returns the playlist stored at path, deleted or not.
func (db *MediaDB) FindPlaylist(ctx context.Context, path string) (database.Playlist, error) {
	var row struct {
		database.Playlist
		ExtractorConfig string `db:"extractor_config"`
	}
	err := db.sqlx.GetContext(ctx, &row, `
		SELECT id, path, extractor_key, extractor_playlist_id, title, uploader, category,
			extractor_config, time_created, time_modified, time_deleted
		FROM playlists WHERE path = ?`, path)
	if errors.Is(err, sql.ErrNoRows) {
		return database.Playlist{}, fmt.Errorf("%w: playlist %s", database.ErrNoMediaFound, path)
	}
	if err != nil {
		return database.Playlist{}, fmt.Errorf("failed to find playlist %s: %w", path, err)
	}

	pl := row.Playlist
	if row.ExtractorConfig != "" && row.ExtractorConfig != "{}" {
		if err := json.Unmarshal([]byte(row.ExtractorConfig), &pl.ExtractorConfig); err != nil {
			return pl, fmt.Errorf("failed to decode extractor config for %s: %w", path, err)
		}
	}
	return pl, nil
}

// SoftDeletePlaylist tombstones a playlist and every live item in it.
func (db *MediaDB) SoftDeletePlaylist(ctx context.Context, path string) error {
	now := db.Now()
	return db.WithTx(ctx, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM playlists WHERE path = ?", path).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: playlist %s", database.ErrNoMediaFound, path)
		}
		if err != nil {
			return fmt.Errorf("failed to find playlist %s: %w", path, err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE playlists SET time_deleted = ? WHERE id = ?", now, id,
		); err != nil {
			return fmt.Errorf("failed to delete playlist %s: %w", path, err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE media SET time_deleted = ? WHERE playlist_id = ? AND time_deleted = 0", now, id,
		); err != nil {
			return fmt.Errorf("failed to delete playlist media %s: %w", path, err)
		}
		return nil
	})
}
