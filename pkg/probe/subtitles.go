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
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	srtTiming = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})[,.](\d{1,3})\s*-->`)
	markupTag = regexp.MustCompile(`<[^>]*>|\{\\[^}]*\}`)
)

// extractCaptions converts each text subtitle stream to srt in a temp file
// and parses the cues. Tracks that fail to convert are skipped.
func (p *Prober) extractCaptions(ctx context.Context, path string, streams []ffprobeStream) []database.Caption {
	var captions []database.Caption
	for _, s := range streams {
		tmp := filepath.Join(p.tempDir, uuid.NewString()+".srt")
		err := p.exec.Run(ctx, p.ffmpeg,
			"-nostdin", "-v", "error",
			"-i", path,
			"-map", "0:"+strconv.Itoa(s.Index),
			"-f", "srt",
			"-y", tmp,
		)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Int("stream", s.Index).
				Msg("failed to extract subtitle track")
			_ = p.fs.Remove(tmp)
			continue
		}

		cues, err := readSRTFile(p.fs, tmp)
		if rmErr := p.fs.Remove(tmp); rmErr != nil {
			log.Debug().Err(rmErr).Str("path", tmp).Msg("failed to remove temp subtitle")
		}
		if err != nil {
			log.Warn().Err(err).Str("path", path).Int("stream", s.Index).
				Msg("failed to parse subtitle track")
			continue
		}
		captions = append(captions, cues...)
	}
	return captions
}

func readSRTFile(afs afero.Fs, path string) ([]database.Caption, error) {
	f, err := afs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Debug().Err(err).Msg("failed to close subtitle")
		}
	}()
	return ParseSRT(f)
}

// ParseSRT reads SubRip cues. Markup is stripped and multi-line cues are
// joined with spaces. Cues without text are dropped.
func ParseSRT(r io.Reader) ([]database.Caption, error) {
	var (
		captions []database.Caption
		current  *database.Caption
		lines    []string
	)
	flush := func() {
		if current != nil {
			text := strings.Join(strings.Fields(strings.Join(lines, " ")), " ")
			if text != "" {
				current.Text = text
				captions = append(captions, *current)
			}
		}
		current = nil
		lines = lines[:0]
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if line == "" {
			flush()
			continue
		}
		if m := srtTiming.FindStringSubmatch(line); m != nil {
			flush()
			current = &database.Caption{Time: cueSeconds(m[1:])}
			continue
		}
		// sequence numbers and stray text outside a cue
		if current == nil {
			continue
		}
		lines = append(lines, markupTag.ReplaceAllString(line, ""))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read subtitle: %w", err)
	}
	flush()
	return captions, nil
}

func cueSeconds(parts []string) float64 {
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	s, _ := strconv.Atoi(parts[2])
	ms := parts[3]
	for len(ms) < 3 {
		ms += "0"
	}
	frac, _ := strconv.Atoi(ms)
	return float64(h*3600+m*60+s) + float64(frac)/1000
}

// captionText joins cue text for the searchable tags column.
func captionText(captions []database.Caption) string {
	var sb strings.Builder
	for i, c := range captions {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(c.Text)
	}
	return sb.String()
}
