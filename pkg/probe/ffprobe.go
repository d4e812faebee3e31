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
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
)

type ffprobeResult struct {
	Format   ffprobeFormat    `json:"format"`
	Streams  []ffprobeStream  `json:"streams"`
	Chapters []ffprobeChapter `json:"chapters"`
}

type ffprobeFormat struct {
	Tags       map[string]string `json:"tags"`
	Filename   string            `json:"filename"`
	FormatName string            `json:"format_name"`
	Duration   string            `json:"duration"`
	Size       string            `json:"size"`
	BitRate    string            `json:"bit_rate"`
}

type ffprobeStream struct {
	Tags         map[string]string `json:"tags"`
	CodecType    string            `json:"codec_type"`
	CodecName    string            `json:"codec_name"`
	AvgFrameRate string            `json:"avg_frame_rate"`
	RFrameRate   string            `json:"r_frame_rate"`
	Duration     string            `json:"duration"`
	Index        int               `json:"index"`
	Width        int64             `json:"width"`
	Height       int64             `json:"height"`
}

type ffprobeChapter struct {
	Tags map[string]string `json:"tags"`
	ID   int64             `json:"id"`
}

// imageSubtitleCodecs are bitmap subtitle formats that can't become text.
var imageSubtitleCodecs = []string{
	"dvbsub", "dvdsub", "pgssub", "xsub", "dvb_subtitle", "dvd_subtitle", "hdmv_pgs_subtitle",
}

func (p *Prober) runFFProbe(ctx context.Context, path string) (*ffprobeResult, error) {
	out, err := p.exec.Output(ctx, p.ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"-show_chapters",
		path,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: ffprobe: %w", ErrProbeFailed, err)
	}
	var result ffprobeResult
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to parse ffprobe output: %w", ErrProbeFailed, err)
	}
	if result.Format.FormatName == "" && len(result.Streams) == 0 {
		return nil, fmt.Errorf("%w: no streams", ErrProbeFailed)
	}
	return &result, nil
}

// parseRate turns "30000/1001" into a float. Ratios over zero are invalid.
func parseRate(s string) (float64, bool) {
	num, den, hasDen := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	if !hasDen {
		return n, n > 0
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, false
	}
	r := n / d
	return r, r > 0 && !math.IsInf(r, 0)
}

func parseSeconds(s string) int64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return int64(math.Round(f))
}

// tagValue looks a key up case-insensitively.
func tagValue(tags map[string]string, key string) string {
	if v, ok := tags[key]; ok {
		return v
	}
	for k, v := range tags {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// apply collapses the probe output onto m.
func (r *ffprobeResult) apply(m *database.Media) {
	if d := parseSeconds(r.Format.Duration); d > 0 {
		m.Duration = d
	}

	var langs []string
	for i := range r.Streams {
		s := &r.Streams[i]
		switch s.CodecType {
		case "video":
			// cover art shows up as a single-frame video stream
			if s.CodecName == "mjpeg" || s.CodecName == "png" {
				if r.Format.FormatName != "image2" && !strings.Contains(r.Format.FormatName, "_pipe") {
					m.AttachmentCount++
					continue
				}
			}
			m.VideoCount++
			if m.Width == 0 {
				m.Width = s.Width
				m.Height = s.Height
			}
		case "audio":
			m.AudioCount++
		case "subtitle":
			m.SubtitleCount++
		case "attachment":
			m.AttachmentCount++
		}

		if m.FPS == 0 && s.CodecType == "video" {
			if fps, ok := parseRate(s.AvgFrameRate); ok {
				m.FPS = fps
			} else if fps, ok := parseRate(s.RFrameRate); ok {
				m.FPS = fps
			}
		}

		lang := strings.TrimSpace(tagValue(s.Tags, "language"))
		if lang != "" && !helpers.IsUnknown(lang) && !slices.Contains(langs, lang) {
			langs = append(langs, lang)
		}
	}
	m.ChapterCount = int64(len(r.Chapters))
	m.Language = strings.Join(langs, ";")

	if m.Duration == 0 {
		for i := range r.Streams {
			if d := parseSeconds(r.Streams[i].Duration); d > m.Duration {
				m.Duration = d
			}
		}
	}

	tags := r.Format.Tags
	m.Title = helpers.FirstKnown(tagValue(tags, "title"), m.Title)
	m.Artist = helpers.FirstKnown(tagValue(tags, "artist"), tagValue(tags, "album_artist"))
	m.Album = helpers.FirstKnown(tagValue(tags, "album"))
	m.Genre = helpers.FirstKnown(tagValue(tags, "genre"))
	m.Mood = helpers.FirstKnown(tagValue(tags, "mood"))
	m.Key = helpers.FirstKnown(tagValue(tags, "initialkey"), tagValue(tags, "key"))
	m.Description = helpers.FirstKnown(
		tagValue(tags, "description"), tagValue(tags, "comment"), tagValue(tags, "synopsis"),
	)
	if bpm, err := strconv.ParseFloat(tagValue(tags, "bpm"), 64); err == nil {
		m.BPM = bpm
	} else if bpm, err := strconv.ParseFloat(tagValue(tags, "tbpm"), 64); err == nil {
		m.BPM = bpm
	}
	if year := parseYear(helpers.FirstKnown(tagValue(tags, "date"), tagValue(tags, "year"))); year > 0 {
		m.Year = year
	}
}

// textSubtitles lists subtitle streams that can be converted to text.
func (r *ffprobeResult) textSubtitles() []ffprobeStream {
	var out []ffprobeStream
	for _, s := range r.Streams {
		if s.CodecType != "subtitle" {
			continue
		}
		if slices.Contains(imageSubtitleCodecs, s.CodecName) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func parseYear(s string) int64 {
	if len(s) < 4 {
		return 0
	}
	y, err := strconv.ParseInt(s[:4], 10, 64)
	if err != nil || y < 1000 {
		return 0
	}
	return y
}
