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
	"errors"
	"fmt"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/dhowden/tag"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cast"
)

// id3v1Size is the length of the trailer tag readers seek back over.
const id3v1Size = 128

var errNoAudioTags = errors.New("file too short for embedded tags")

func readAudioTags(afs afero.Fs, path string) (tag.Metadata, error) {
	f, err := afs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Debug().Err(err).Str("path", path).Msg("failed to close audio file")
		}
	}()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat audio file: %w", err)
	}
	if info.Size() < id3v1Size {
		return nil, errNoAudioTags
	}
	md, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio tags: %w", err)
	}
	return md, nil
}

// mergeAudioTags fills m from embedded tags. Values already taken from
// ffprobe win; embedded tags only fill gaps or replace "unknown".
func mergeAudioTags(m *database.Media, md tag.Metadata) {
	m.Title = helpers.FirstKnown(m.Title, md.Title())
	m.Artist = helpers.FirstKnown(m.Artist, md.Artist(), md.AlbumArtist(), md.Composer())
	m.Album = helpers.FirstKnown(m.Album, md.Album())
	m.Genre = helpers.FirstKnown(m.Genre, md.Genre())
	m.Description = helpers.FirstKnown(m.Description, md.Comment())
	if m.Year == 0 && md.Year() > 0 {
		m.Year = int64(md.Year())
	}

	raw := md.Raw()
	if m.BPM == 0 {
		for _, k := range []string{"TBPM", "BPM", "bpm", "tmpo"} {
			if bpm, ok := rawFloat(raw[k]); ok {
				m.BPM = bpm
				break
			}
		}
	}
	if m.Key == "" {
		for _, k := range []string{"TKEY", "INITIALKEY", "initialkey", "KEY"} {
			if s, ok := raw[k].(string); ok && !helpers.IsUnknown(s) {
				m.Key = s
				break
			}
		}
	}
	if m.Mood == "" {
		for _, k := range []string{"MOOD", "mood", "TMOO"} {
			if s, ok := raw[k].(string); ok && !helpers.IsUnknown(s) {
				m.Mood = s
				break
			}
		}
	}
}

func rawFloat(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	return f, err == nil && f > 0
}
