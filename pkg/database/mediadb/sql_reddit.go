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

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
)

// UpsertRedditPost stores a self post. Link posts go through UpsertMedia.
func (db *MediaDB) UpsertRedditPost(ctx context.Context, post *database.RedditPost) error {
	if post.Path == "" {
		return errors.New("reddit post path is empty")
	}
	var playlistID any
	if post.PlaylistID != 0 {
		playlistID = post.PlaylistID
	}
	return db.retry(ctx, func() error {
		err := db.sql.QueryRowContext(ctx, `
			INSERT INTO reddit_posts (
				path, playlist_id, title, selftext, author, subreddit, score, num_comments, time_created
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (path) DO UPDATE SET
				playlist_id = COALESCE(excluded.playlist_id, playlist_id),
				title = excluded.title,
				selftext = excluded.selftext,
				author = excluded.author,
				subreddit = excluded.subreddit,
				score = excluded.score,
				num_comments = excluded.num_comments,
				time_created = excluded.time_created
			RETURNING id`,
			post.Path, playlistID, post.Title, post.Selftext, post.Author, post.Subreddit,
			post.Score, post.NumComments, post.TimeCreated,
		).Scan(&post.ID)
		if err != nil {
			return fmt.Errorf("failed to upsert reddit post %s: %w", post.Path, err)
		}
		return nil
	})
}

func (db *MediaDB) RedditPostExists(ctx context.Context, path string) (bool, error) {
	var one int
	err := db.sql.QueryRowContext(ctx, "SELECT 1 FROM reddit_posts WHERE path = ? LIMIT 1", path).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check reddit post %s: %w", path, err)
	}
	return true, nil
}
