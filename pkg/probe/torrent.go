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

package probe

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/anacrolix/torrent/metainfo"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/net/publicsuffix"
)

// TorrentFile is one entry of a torrent's file list.
type TorrentFile struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

func probeTorrent(afs afero.Fs, path string, m *database.Media) ([]TorrentFile, error) {
	f, err := afs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open torrent: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Debug().Err(err).Str("path", path).Msg("failed to close torrent")
		}
	}()

	mi, err := metainfo.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid torrent: %w", ErrProbeFailed, err)
	}
	info, err := mi.UnmarshalInfo()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid torrent info: %w", ErrProbeFailed, err)
	}

	m.InfoHash = mi.HashInfoBytes().HexString()
	m.Title = info.Name
	m.Description = mi.Comment
	if mi.CreationDate > 0 {
		m.TimeUploaded = mi.CreationDate
	}

	var files []TorrentFile
	for _, fi := range info.UpvertedFiles() {
		p := strings.Join(fi.Path, "/")
		if p == "" {
			p = info.Name
		}
		files = append(files, TorrentFile{Path: p, Size: fi.Length})
	}

	var announces []string
	for _, tier := range mi.UpvertedAnnounceList() {
		announces = append(announces, tier...)
	}
	m.Tracker = trackerDomain(announces, info.Source)
	if len(mi.UrlList) > 0 {
		m.Webpath = mi.UrlList[0]
	}
	return files, nil
}

// trackerDomain is the registrable domain of the first announce URL that
// has one, else the info source tag.
func trackerDomain(announces []string, source string) string {
	for _, a := range announces {
		u, err := url.Parse(a)
		if err != nil || u.Hostname() == "" || net.ParseIP(u.Hostname()) != nil {
			continue
		}
		domain, err := publicsuffix.EffectiveTLDPlusOne(u.Hostname())
		if err != nil {
			continue
		}
		return domain
	}
	return source
}
