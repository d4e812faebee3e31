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

package fixtures

import (
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
)

func NewLocalPlaylist() database.Playlist {
	return database.Playlist{
		Path:         "/videos",
		ExtractorKey: database.ExtractorLocal,
	}
}

func NewChannelPlaylist() database.Playlist {
	return database.Playlist{
		Path:         "https://www.youtube.com/@RickAstleyYT/videos",
		ExtractorKey: database.ExtractorYtDlp,
		Title:        "Rick Astley",
		Uploader:     "Rick Astley",
		Category:     "Music",
		ExtractorConfig: map[string]any{
			"playlistend": 50,
		},
	}
}

func NewLinksPlaylist() database.Playlist {
	return database.Playlist{
		Path:         "https://example.com/list?page=1",
		ExtractorKey: database.ExtractorLinksDB,
	}
}

// SamplePlaylists returns one playlist per extractor kind.
func SamplePlaylists() []database.Playlist {
	return []database.Playlist{
		NewLocalPlaylist(),
		NewChannelPlaylist(),
		NewLinksPlaylist(),
	}
}
