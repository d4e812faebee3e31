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
	"errors"
	"fmt"
	"strings"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/rs/zerolog/log"
)

type columnValue struct {
	value any
	name  string
	set   bool
}

// mediaColumnValues lists every writable media column. Stat and probe
// derived columns are always written so a rescan can lower them; the rest
// are only written when known. Play state columns are owned by
// RecordPlayback and never written here.
func mediaColumnValues(m *database.Media) []columnValue {
	var playlistID any
	if m.PlaylistID != 0 {
		playlistID = m.PlaylistID
	}
	return []columnValue{
		{name: "path", value: m.Path, set: true},
		{name: "webpath", value: m.Webpath, set: m.Webpath != ""},
		{name: "playlist_id", value: playlistID, set: m.PlaylistID != 0},
		{name: "extractor_id", value: m.ExtractorID, set: m.ExtractorID != ""},
		{name: "title", value: m.Title, set: m.Title != ""},
		{name: "size", value: m.Size, set: true},
		{name: "duration", value: m.Duration, set: true},
		{name: "fps", value: m.FPS, set: m.FPS != 0},
		{name: "width", value: m.Width, set: m.Width != 0},
		{name: "height", value: m.Height, set: m.Height != 0},
		{name: "video_count", value: m.VideoCount, set: true},
		{name: "audio_count", value: m.AudioCount, set: true},
		{name: "subtitle_count", value: m.SubtitleCount, set: true},
		{name: "chapter_count", value: m.ChapterCount, set: true},
		{name: "attachment_count", value: m.AttachmentCount, set: true},
		{name: "language", value: m.Language, set: m.Language != ""},
		{name: "uploader", value: m.Uploader, set: m.Uploader != ""},
		{name: "view_count", value: m.ViewCount, set: m.ViewCount != 0},
		{name: "favorite_count", value: m.FavoriteCount, set: m.FavoriteCount != 0},
		{name: "score", value: m.Score, set: m.Score != 0},
		{name: "upvote_ratio", value: m.UpvoteRatio, set: m.UpvoteRatio != 0},
		{name: "age_limit", value: m.AgeLimit, set: m.AgeLimit != 0},
		{name: "live_status", value: m.LiveStatus, set: m.LiveStatus != ""},
		{name: "time_created", value: m.TimeCreated, set: m.TimeCreated != 0},
		{name: "time_modified", value: m.TimeModified, set: true},
		{name: "time_uploaded", value: m.TimeUploaded, set: m.TimeUploaded != 0},
		{name: "time_downloaded", value: m.TimeDownloaded, set: m.TimeDownloaded != 0},
		{name: "time_deleted", value: m.TimeDeleted, set: true},
		{name: "error", value: m.Error, set: true},
		{name: "sparseness", value: m.Sparseness, set: true},
		{name: "is_dir", value: m.IsDir, set: true},
		{name: "info_hash", value: m.InfoHash, set: m.InfoHash != ""},
		{name: "tracker", value: m.Tracker, set: m.Tracker != ""},
		{name: "latitude", value: m.Latitude, set: m.Latitude != 0},
		{name: "longitude", value: m.Longitude, set: m.Longitude != 0},
		{name: "artist", value: m.Artist, set: m.Artist != ""},
		{name: "album", value: m.Album, set: m.Album != ""},
		{name: "genre", value: m.Genre, set: m.Genre != ""},
		{name: "mood", value: m.Mood, set: m.Mood != ""},
		{name: "year", value: m.Year, set: m.Year != 0},
		{name: "bpm", value: m.BPM, set: m.BPM != 0},
		{name: "key", value: m.Key, set: m.Key != ""},
		{name: "description", value: m.Description, set: m.Description != ""},
		{name: "tags", value: m.Tags, set: m.Tags != ""},
		{name: "extra", value: m.Extra, set: m.Extra != ""},
	}
}

// mediaSelectColumns is the column list scanned into database.Media.
var mediaSelectColumns = []string{
	"id", "path", "webpath", "COALESCE(playlist_id, 0) AS playlist_id", "extractor_id", "title",
	"size", "duration", "fps", "width", "height", "video_count", "audio_count", "subtitle_count",
	"chapter_count", "attachment_count", "language", "uploader", "view_count", "favorite_count",
	"score", "upvote_ratio", "age_limit", "live_status", "time_created", "time_modified",
	"time_uploaded", "time_downloaded", "time_deleted", "time_played", "play_count", "playhead",
	"error", "sparseness", "is_dir", "info_hash", "tracker", "latitude", "longitude", "artist",
	"album", "genre", "mood", "year", "bpm", "key", "description", "tags", "extra",
}

func upsertMediaStatement(cols []string) string {
	placeholders := prepareVariadic("?", ", ", len(cols))
	updates := make([]string, 0, len(cols))
	for _, c := range cols {
		if c == "path" {
			continue
		}
		updates = append(updates, c+" = excluded."+c)
	}
	return fmt.Sprintf(
		"INSERT INTO media (%s) VALUES (%s) ON CONFLICT (path) DO UPDATE SET %s RETURNING id",
		strings.Join(cols, ", "), placeholders, strings.Join(updates, ", "),
	)
}

func splitColumns(m *database.Media) (cols []string, args []any) {
	for _, cv := range mediaColumnValues(m) {
		if !cv.set {
			continue
		}
		cols = append(cols, cv.name)
		args = append(args, cv.value)
	}
	return cols, args
}

func sqlUpsertMedia(ctx context.Context, db querier, m *database.Media) (int64, error) {
	if m.Path == "" {
		return 0, errors.New("media path is empty")
	}
	cols, args := splitColumns(m)

	var id int64
	if err := db.QueryRowContext(ctx, upsertMediaStatement(cols), args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to upsert media %s: %w", m.Path, err)
	}

	if m.Captions != nil {
		if err := sqlReplaceCaptions(ctx, db, id, m.Captions); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// UpsertMedia inserts or updates a media row by path and returns its id.
func (db *MediaDB) UpsertMedia(ctx context.Context, m *database.Media) (int64, error) {
	var id int64
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = sqlUpsertMedia(ctx, tx, m)
		return err
	})
	if err != nil {
		return 0, err
	}
	m.ID = id
	return id, nil
}

func sqlFindMedia(ctx context.Context, db *MediaDB, path string) (database.Media, error) {
	var m database.Media
	q := "SELECT " + strings.Join(mediaSelectColumns, ", ") + " FROM media WHERE path = ?"
	err := db.sqlx.GetContext(ctx, &m, q, path)
	if errors.Is(err, sql.ErrNoRows) {
		return m, fmt.Errorf("%w: %s", database.ErrNoMediaFound, path)
	}
	if err != nil {
		return m, fmt.Errorf("failed to find media %s: %w", path, err)
	}
	return m, nil
}

// FindMedia returns the row for path, live or deleted.
func (db *MediaDB) FindMedia(ctx context.Context, path string) (database.Media, error) {
	if db.sql == nil {
		return database.Media{}, database.ErrNullSQL
	}
	return sqlFindMedia(ctx, db, path)
}

// MediaExists reports whether any row, including tombstones, has path or
// webpath equal to path.
func (db *MediaDB) MediaExists(ctx context.Context, path string) (bool, error) {
	var one int
	err := db.sql.QueryRowContext(ctx,
		"SELECT 1 FROM media WHERE path = ? OR (webpath != '' AND webpath = ?) LIMIT 1", path, path,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check media %s: %w", path, err)
	}
	return true, nil
}

// StoredFiles returns every row under root, live or deleted.
func (db *MediaDB) StoredFiles(ctx context.Context, root string) ([]database.StoredFile, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, path, size, time_modified, time_deleted FROM media
		WHERE substr(path, 1, length(?)) = ?`,
		root, root,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stored files: %w", err)
	}
	defer closeRows(rows)

	var files []database.StoredFile
	for rows.Next() {
		var f database.StoredFile
		if err := rows.Scan(&f.ID, &f.Path, &f.Size, &f.TimeModified, &f.TimeDeleted); err != nil {
			return nil, fmt.Errorf("failed to scan stored file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stored files: %w", err)
	}
	return files, nil
}

// execPaths runs stmt once per path inside one transaction and sums the
// affected rows.
func (db *MediaDB) execPaths(ctx context.Context, stmt string, paths []string, args func(string) []any) (int64, error) {
	if len(paths) == 0 {
		return 0, nil
	}
	var total int64
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		total = 0
		prepared, err := tx.PrepareContext(ctx, stmt)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer closeStmt(prepared)

		for _, p := range paths {
			res, err := prepared.ExecContext(ctx, args(p)...)
			if err != nil {
				return fmt.Errorf("failed to update %s: %w", p, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get affected rows: %w", err)
			}
			total += n
		}
		return nil
	})
	return total, err
}

// SoftDeleteMedia tombstones live rows with the given paths.
func (db *MediaDB) SoftDeleteMedia(ctx context.Context, paths []string) (int64, error) {
	now := db.Now()
	return db.execPaths(ctx,
		"UPDATE media SET time_deleted = ? WHERE path = ? AND time_deleted = 0",
		paths, func(p string) []any { return []any{now, p} },
	)
}

// ResurrectMedia clears the tombstone of rows with the given paths.
func (db *MediaDB) ResurrectMedia(ctx context.Context, paths []string) (int64, error) {
	return db.execPaths(ctx,
		"UPDATE media SET time_deleted = 0 WHERE path = ? AND time_deleted != 0",
		paths, func(p string) []any { return []any{p} },
	)
}

// HardDeleteMedia removes rows; captions and history cascade.
func (db *MediaDB) HardDeleteMedia(ctx context.Context, paths []string) (int64, error) {
	return db.execPaths(ctx,
		"DELETE FROM media WHERE path = ?",
		paths, func(p string) []any { return []any{p} },
	)
}

// PurgeTombstones hard-deletes rows soft-deleted before olderThan.
func (db *MediaDB) PurgeTombstones(ctx context.Context, olderThan int64) (int64, error) {
	var n int64
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM media WHERE time_deleted != 0 AND time_deleted < ?", olderThan,
		)
		if err != nil {
			return fmt.Errorf("failed to purge tombstones: %w", err)
		}
		n, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		return nil
	})
	if err == nil && n > 0 {
		log.Info().Int64("rows", n).Msg("purged deleted media")
	}
	return n, err
}

// MoveMedia rewrites a row's path after its file was relocated. A stale row
// already at newPath is replaced.
func (db *MediaDB) MoveMedia(ctx context.Context, oldPath, newPath string) error {
	return db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM media WHERE path = ? AND path != ?", newPath, oldPath,
		); err != nil {
			return fmt.Errorf("failed to clear destination row: %w", err)
		}
		res, err := tx.ExecContext(ctx, "UPDATE media SET path = ? WHERE path = ?", newPath, oldPath)
		if err != nil {
			return fmt.Errorf("failed to move media %s: %w", oldPath, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", database.ErrNoMediaFound, oldPath)
		}
		return nil
	})
}

// MarkDownloaded points a remote row at its local copy, keeping the URL in
// webpath.
func (db *MediaDB) MarkDownloaded(ctx context.Context, webpath, localPath string) error {
	now := db.Now()
	return db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE media SET path = ?, webpath = ?, time_downloaded = ?, time_deleted = 0
			WHERE path = ?`,
			localPath, webpath, now, webpath,
		)
		if err != nil {
			return fmt.Errorf("failed to mark %s downloaded: %w", webpath, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", database.ErrNoMediaFound, webpath)
		}
		return nil
	})
}

// knownPathsChunk keeps IN lists under sqlite's bound parameter limit.
const knownPathsChunk = 500

// KnownPaths returns the subset of paths already stored as a media path or
// webpath, tombstones included.
func (db *MediaDB) KnownPaths(ctx context.Context, paths []string) (map[string]bool, error) {
	known := make(map[string]bool)
	for start := 0; start < len(paths); start += knownPathsChunk {
		chunk := paths[start:min(start+knownPathsChunk, len(paths))]
		in := prepareVariadic("?", ", ", len(chunk))
		args := stringsToArgs(chunk)
		rows, err := db.sql.QueryContext(ctx,
			"SELECT path, webpath FROM media WHERE path IN ("+in+") OR webpath IN ("+in+")",
			append(args, args...)...,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to query known paths: %w", err)
		}
		for rows.Next() {
			var path, webpath string
			if err := rows.Scan(&path, &webpath); err != nil {
				closeRows(rows)
				return nil, fmt.Errorf("failed to scan known path: %w", err)
			}
			known[path] = true
			if webpath != "" {
				known[webpath] = true
			}
		}
		err = rows.Err()
		closeRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to iterate known paths: %w", err)
		}
	}
	return known, nil
}
