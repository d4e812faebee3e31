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

package database

import (
	"context"
	"errors"
	"slices"
	"strings"
)

/*
 * Shared catalog types live here so scanner, query, playback and dedupe
 * packages can depend on them without importing the concrete store.
 * The implementation lives in mediadb.
 */

var (
	ErrNullSQL        = errors.New("catalog is not connected")
	ErrPathMissing    = errors.New("path missing")
	ErrDatabaseLocked = errors.New("database locked")
	ErrInvalidQuery   = errors.New("invalid query")
	ErrNoMediaFound   = errors.New("no media found")
)

const (
	// DefaultCategory is assigned to playlists without a user label.
	DefaultCategory = "Uncategorized"

	ExtractorLocal   = "Local"
	ExtractorLinksDB = "LinksDB"
	ExtractorReddit  = "Reddit"
	ExtractorYtDlp   = "YtDlp"
)

// MediaColumns are the physical columns of the media table.
var MediaColumns = []string{
	"id", "path", "webpath", "playlist_id", "extractor_id", "title", "size", "duration", "fps",
	"width", "height", "video_count", "audio_count", "subtitle_count", "chapter_count",
	"attachment_count", "language", "uploader", "view_count", "favorite_count", "score",
	"upvote_ratio", "age_limit", "live_status", "time_created", "time_modified", "time_uploaded",
	"time_downloaded", "time_deleted", "time_played", "play_count", "playhead", "error",
	"sparseness", "is_dir", "info_hash", "tracker", "latitude", "longitude", "artist", "album",
	"genre", "mood", "year", "bpm", "key", "description", "tags", "extra",
}

// Text columns indexed for full-text search, per base table.
var (
	MediaFTSColumns   = []string{"path", "title", "tags", "mood", "genre", "description", "artist", "album"}
	CaptionFTSColumns = []string{"text"}
	RedditFTSColumns  = []string{"title", "selftext"}
)

// IsMediaColumn reports whether name is a physical media column.
func IsMediaColumn(name string) bool {
	return slices.Contains(MediaColumns, name)
}

// Playlist is a source collection: a scanned directory or an online feed.
type Playlist struct {
	ExtractorConfig     map[string]any `db:"-" json:"extractorConfig,omitempty"`
	Path                string         `db:"path" json:"path"`
	ExtractorKey        string         `db:"extractor_key" json:"extractorKey"`
	ExtractorPlaylistID string         `db:"extractor_playlist_id" json:"extractorPlaylistId,omitempty"`
	Title               string         `db:"title" json:"title,omitempty"`
	Uploader            string         `db:"uploader" json:"uploader,omitempty"`
	Category            string         `db:"category" json:"category"`
	ID                  int64          `db:"id" json:"id"`
	TimeCreated         int64          `db:"time_created" json:"timeCreated"`
	TimeModified        int64          `db:"time_modified" json:"timeModified"`
	TimeDeleted         int64          `db:"time_deleted" json:"timeDeleted"`
}

// Media is a single catalog item. Zero values mean "not known" for every
// field except TimeDeleted and TimeDownloaded, where zero is meaningful.
type Media struct {
	Path            string  `db:"path" mapstructure:"path"`
	Webpath         string  `db:"webpath" mapstructure:"webpath"`
	ExtractorID     string  `db:"extractor_id" mapstructure:"extractor_id"`
	Title           string  `db:"title" mapstructure:"title"`
	Language        string  `db:"language" mapstructure:"language"`
	Uploader        string  `db:"uploader" mapstructure:"uploader"`
	LiveStatus      string  `db:"live_status" mapstructure:"live_status"`
	Error           string  `db:"error" mapstructure:"error"`
	InfoHash        string  `db:"info_hash" mapstructure:"info_hash"`
	Tracker         string  `db:"tracker" mapstructure:"tracker"`
	Artist          string  `db:"artist" mapstructure:"artist"`
	Album           string  `db:"album" mapstructure:"album"`
	Genre           string  `db:"genre" mapstructure:"genre"`
	Mood            string  `db:"mood" mapstructure:"mood"`
	Key             string  `db:"key" mapstructure:"key"`
	Description     string  `db:"description" mapstructure:"description"`
	Tags            string  `db:"tags" mapstructure:"tags"`
	Extra           string  `db:"extra" mapstructure:"-"`
	ID              int64   `db:"id" mapstructure:"-"`
	PlaylistID      int64   `db:"playlist_id" mapstructure:"-"`
	Size            int64   `db:"size" mapstructure:"size"`
	Duration        int64   `db:"duration" mapstructure:"duration"`
	Width           int64   `db:"width" mapstructure:"width"`
	Height          int64   `db:"height" mapstructure:"height"`
	VideoCount      int64   `db:"video_count" mapstructure:"video_count"`
	AudioCount      int64   `db:"audio_count" mapstructure:"audio_count"`
	SubtitleCount   int64   `db:"subtitle_count" mapstructure:"subtitle_count"`
	ChapterCount    int64   `db:"chapter_count" mapstructure:"chapter_count"`
	AttachmentCount int64   `db:"attachment_count" mapstructure:"attachment_count"`
	ViewCount       int64   `db:"view_count" mapstructure:"view_count"`
	FavoriteCount   int64   `db:"favorite_count" mapstructure:"favorite_count"`
	AgeLimit        int64   `db:"age_limit" mapstructure:"age_limit"`
	TimeCreated     int64   `db:"time_created" mapstructure:"time_created"`
	TimeModified    int64   `db:"time_modified" mapstructure:"time_modified"`
	TimeUploaded    int64   `db:"time_uploaded" mapstructure:"time_uploaded"`
	TimeDownloaded  int64   `db:"time_downloaded" mapstructure:"time_downloaded"`
	TimeDeleted     int64   `db:"time_deleted" mapstructure:"-"`
	TimePlayed      int64   `db:"time_played" mapstructure:"-"`
	PlayCount       int64   `db:"play_count" mapstructure:"-"`
	Playhead        int64   `db:"playhead" mapstructure:"-"`
	Year            int64   `db:"year" mapstructure:"year"`
	FPS             float64 `db:"fps" mapstructure:"fps"`
	Score           float64 `db:"score" mapstructure:"score"`
	UpvoteRatio     float64 `db:"upvote_ratio" mapstructure:"upvote_ratio"`
	Sparseness      float64 `db:"sparseness" mapstructure:"sparseness"`
	Latitude        float64 `db:"latitude" mapstructure:"latitude"`
	Longitude       float64 `db:"longitude" mapstructure:"longitude"`
	BPM             float64 `db:"bpm" mapstructure:"bpm"`
	IsDir           bool    `db:"is_dir" mapstructure:"is_dir"`

	// Captions are written alongside the row and replace any stored ones.
	Captions []Caption `db:"-" mapstructure:"-"`
}

// IsRemote reports whether the row points at a URL that has not been
// fetched locally.
func (m *Media) IsRemote() bool {
	return m.TimeDownloaded == 0 && IsURL(m.Path)
}

// IsURL reports whether path starts with a URL scheme the catalog treats
// as remote.
func IsURL(path string) bool {
	lower := strings.ToLower(path)
	for _, scheme := range []string{"http://", "https://", "ftp://"} {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

type Caption struct {
	Text    string  `db:"text" json:"text"`
	MediaID int64   `db:"media_id" json:"mediaId"`
	Time    float64 `db:"time" json:"time"`
}

type HistoryEntry struct {
	Path       string `db:"path" json:"path,omitempty"`
	ID         int64  `db:"id" json:"id"`
	MediaID    int64  `db:"media_id" json:"mediaId"`
	TimePlayed int64  `db:"time_played" json:"timePlayed"`
	Playhead   int64  `db:"playhead" json:"playhead"`
	Done       bool   `db:"done" json:"done"`
}

type BlocklistEntry struct {
	Key   string `db:"key" json:"key"`
	Value string `db:"value" json:"value"`
}

type RedditPost struct {
	Path        string `db:"path" json:"path"`
	Title       string `db:"title" json:"title"`
	Selftext    string `db:"selftext" json:"selftext"`
	Author      string `db:"author" json:"author"`
	Subreddit   string `db:"subreddit" json:"subreddit"`
	ID          int64  `db:"id" json:"id"`
	PlaylistID  int64  `db:"playlist_id" json:"playlistId"`
	Score       int64  `db:"score" json:"score"`
	NumComments int64  `db:"num_comments" json:"numComments"`
	TimeCreated int64  `db:"time_created" json:"timeCreated"`
}

// PlaybackResult is the outcome of a single play of a media row.
type PlaybackResult struct {
	MediaID  int64
	Playhead int64
	Done     bool
}

// ScanCounts summarizes one incremental scan of a root.
type ScanCounts struct {
	Added       int
	Deleted     int
	Resurrected int
	Updated     int
	Errors      int
}

// StoredFile is the stat-level view of a media row used by reconciliation.
type StoredFile struct {
	Path         string
	ID           int64
	Size         int64
	TimeModified int64
	TimeDeleted  int64
}

// Row is a single result row from a compiled query, keyed by column name.
type Row map[string]any

// CatalogDBI is the store surface used outside mediadb.
type CatalogDBI interface {
	Close() error
	Path() string

	UpsertPlaylist(ctx context.Context, pl *Playlist) (int64, error)
	FindPlaylist(ctx context.Context, path string) (Playlist, error)
	SoftDeletePlaylist(ctx context.Context, path string) error

	UpsertMedia(ctx context.Context, m *Media) (int64, error)
	UpsertMediaBatch(ctx context.Context, batch []Media) error
	FindMedia(ctx context.Context, path string) (Media, error)
	MediaExists(ctx context.Context, path string) (bool, error)
	KnownPaths(ctx context.Context, paths []string) (map[string]bool, error)
	StoredFiles(ctx context.Context, root string) ([]StoredFile, error)
	SoftDeleteMedia(ctx context.Context, paths []string) (int64, error)
	ResurrectMedia(ctx context.Context, paths []string) (int64, error)
	HardDeleteMedia(ctx context.Context, paths []string) (int64, error)
	PurgeTombstones(ctx context.Context, olderThan int64) (int64, error)
	MoveMedia(ctx context.Context, oldPath, newPath string) error
	MarkDownloaded(ctx context.Context, webpath, localPath string) error

	RecordPlayback(ctx context.Context, res PlaybackResult) error
	History(ctx context.Context, limit int, onlyDone bool) ([]HistoryEntry, error)

	Blocklist(ctx context.Context) ([]BlocklistEntry, error)
	AddBlocklist(ctx context.Context, entries ...BlocklistEntry) error

	UpsertRedditPost(ctx context.Context, post *RedditPost) error
	RedditPostExists(ctx context.Context, path string) (bool, error)
	SearchCaptions(ctx context.Context, match string, limit int) ([]CaptionHit, error)

	Query(ctx context.Context, query string, params map[string]any) ([]Row, error)
	RebuildFTS(ctx context.Context) error
	Vacuum(ctx context.Context) error
}

// CaptionHit is a caption full-text match joined to its media path.
type CaptionHit struct {
	Path string  `db:"path"`
	Text string  `db:"text"`
	Time float64 `db:"time"`
}
