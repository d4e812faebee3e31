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
	"fmt"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
)

// Sample catalog rows. Each constructor returns a fresh value so tests can
// mutate it.

func NewMovie() database.Media {
	return database.Media{
		Path:          "/videos/Movies/Heat (1995).mkv",
		Title:         "Heat",
		Size:          4_500_000_000,
		Duration:      10_200,
		Width:         1920,
		Height:        1080,
		FPS:           23.976,
		VideoCount:    1,
		AudioCount:    2,
		SubtitleCount: 1,
		TimeCreated:   1_600_000_000,
		TimeModified:  1_600_000_000,
	}
}

func NewEpisode(n int) database.Media {
	return database.Media{
		Path:         fmt.Sprintf("/videos/Shows/Show/S01E%02d.mkv", n),
		Size:         int64(300_000_000 + n),
		Duration:     1_500,
		VideoCount:   1,
		AudioCount:   1,
		TimeModified: int64(1_600_000_000 + n),
	}
}

func NewSong() database.Media {
	return database.Media{
		Path:         "/music/Album/02 Song.mp3",
		Title:        "Song",
		Artist:       "Artist",
		Album:        "Album",
		Genre:        "Rock",
		Size:         6_000_000,
		Duration:     240,
		AudioCount:   1,
		Year:         2001,
		TimeModified: 1_600_000_000,
	}
}

func NewRemoteVideo() database.Media {
	return database.Media{
		Path:         "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Title:        "Never Gonna Give You Up",
		Uploader:     "Rick Astley",
		ExtractorID:  "dQw4w9WgXcQ",
		Duration:     213,
		ViewCount:    1_000_000_000,
		TimeUploaded: 1_256_000_000,
	}
}

// SampleMedia returns a mixed set of local and remote rows.
func SampleMedia() []database.Media {
	return []database.Media{
		NewMovie(),
		NewEpisode(1),
		NewEpisode(2),
		NewEpisode(3),
		NewSong(),
		NewRemoteVideo(),
	}
}
