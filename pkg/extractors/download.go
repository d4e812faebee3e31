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

package extractors

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"slices"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/config"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/shared/httpclient"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// FileDownloader saves a URL to disk. *httpclient.Client satisfies it.
type FileDownloader interface {
	DownloadFile(ctx context.Context, args httpclient.DownloadFileArgs) error
}

// DownloadCounts summarizes one download run.
type DownloadCounts struct {
	Downloaded int
	Failed     int
}

// Downloader fetches remote rows into a local directory and points their
// rows at the local copies.
type Downloader struct {
	db     database.CatalogDBI
	fs     afero.Fs
	http   FileDownloader
	ytdlp  *YtDlp
	prefix string
	direct []string
}

func NewDownloader(
	db database.CatalogDBI,
	afs afero.Fs,
	hc FileDownloader,
	ytdlp *YtDlp,
	prefix string,
) *Downloader {
	direct := slices.Concat(config.DefaultVideoExtensions, config.DefaultAudioExtensions,
		config.DefaultImageExtensions, config.DefaultTextExtensions)
	return &Downloader{db: db, fs: afs, http: hc, ytdlp: ytdlp, prefix: prefix, direct: direct}
}

// isDirect reports whether rawURL names a media file that can be fetched
// as is, without a site extractor.
func (d *Downloader) isDirect(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return helpers.HasExtension(u.Path, d.direct)
}

func (d *Downloader) fetchDirect(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", rawURL, err)
	}
	dir := filepath.Join(d.prefix, u.Hostname())
	if err := d.fs.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}
	out := filepath.Join(dir, path.Base(u.Path))
	err = d.http.DownloadFile(ctx, httpclient.DownloadFileArgs{
		Fs:         d.fs,
		URL:        rawURL,
		OutputPath: out,
		TempPath:   out + "." + uuid.NewString() + ".part",
	})
	if err != nil {
		return "", classifyHTTP(err)
	}
	return out, nil
}

// Download fetches every remote row in rows. Failures are logged and
// counted; only store errors and cancellation stop the run.
func (d *Downloader) Download(ctx context.Context, rows []database.Row) (DownloadCounts, error) {
	var counts DownloadCounts
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return counts, fmt.Errorf("download cancelled: %w", err)
		}
		remote := r.Path()
		if !database.IsURL(remote) {
			continue
		}

		var local string
		var err error
		if d.isDirect(remote) {
			local, err = d.fetchDirect(ctx, remote)
		} else {
			local, err = d.ytdlp.Download(ctx, remote, d.prefix)
		}
		if err != nil {
			if ctx.Err() != nil {
				return counts, fmt.Errorf("download cancelled: %w", ctx.Err())
			}
			log.Warn().Err(err).Str("url", remote).Msg("download failed")
			counts.Failed++
			continue
		}

		if err := d.db.MarkDownloaded(ctx, remote, local); err != nil {
			return counts, err
		}
		log.Info().Str("url", remote).Str("path", local).Msg("downloaded")
		counts.Downloaded++
	}
	return counts, nil
}
