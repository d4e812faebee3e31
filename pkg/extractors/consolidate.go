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
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
)

// fieldAliases lists, per catalog column, the extractor keys it may come
// from in order of preference. The first non-empty value wins.
var fieldAliases = map[string][]string{
	"path":           {"webpage_url", "original_url", "url", "path"},
	"extractor_id":   {"id", "display_id"},
	"title":          {"title", "fulltitle", "track", "alt_title"},
	"uploader":       {"uploader", "channel", "uploader_id", "creator", "author", "playlist_uploader"},
	"size":           {"filesize", "filesize_approx", "size"},
	"duration":       {"duration", "length_seconds"},
	"time_uploaded":  {"timestamp", "release_timestamp", "upload_date", "release_date", "created_utc"},
	"view_count":     {"view_count"},
	"favorite_count": {"like_count", "favorite_count"},
	"score":          {"average_rating", "score"},
	"upvote_ratio":   {"upvote_ratio"},
	"age_limit":      {"age_limit"},
	"live_status":    {"live_status"},
	"width":          {"width"},
	"height":         {"height"},
	"fps":            {"fps"},
	"language":       {"language"},
	"description":    {"description", "selftext"},
	"artist":         {"artist"},
	"album":          {"album"},
	"genre":          {"genre"},
	"tags":           {"tags", "categories"},
	"latitude":       {"latitude", "location_latitude"},
	"longitude":      {"longitude", "location_longitude"},
}

// droppedFields are bulky extractor internals never worth keeping.
var droppedFields = []string{
	"_type", "_version", "automatic_captions", "formats", "fragments", "heatmap", "http_headers",
	"ie_key", "requested_downloads", "requested_formats", "subtitles", "thumbnails",
}

var compactDate = regexp.MustCompile(`^\d{8}$`)

// Consolidate maps an extractor's native record onto the catalog shape.
// Aliased fields are unpacked from the first non-empty candidate and
// coerced to column types. Unrecognized scalar fields are kept as JSON in
// Extra.
func Consolidate(raw map[string]any) (database.Media, error) {
	used := make(map[string]bool, len(raw))
	for _, keys := range fieldAliases {
		for _, k := range keys {
			used[k] = true
		}
	}

	norm := make(map[string]any, len(fieldAliases))
	for col, keys := range fieldAliases {
		for _, k := range keys {
			v, ok := raw[k]
			if !ok || isEmpty(v) {
				continue
			}
			coerced, err := coerce(col, v)
			if err != nil {
				log.Debug().Err(err).Str("field", k).Msg("skipping unparseable extractor field")
				continue
			}
			norm[col] = coerced
			break
		}
	}

	var m database.Media
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &m,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return m, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(norm); err != nil {
		return m, fmt.Errorf("failed to decode extractor record: %w", err)
	}
	if m.Path == "" {
		return m, errors.New("extractor record has no url")
	}

	extra := make(map[string]any)
	var unknown []string
	for k, v := range raw {
		if used[k] || slices.Contains(droppedFields, k) || isEmpty(v) {
			continue
		}
		switch v.(type) {
		case string, bool, float64, float32, int, int64, json.Number:
			extra[k] = v
			unknown = append(unknown, k)
		}
	}
	if len(extra) > 0 {
		b, err := json.Marshal(extra)
		if err != nil {
			return m, fmt.Errorf("failed to encode extra fields: %w", err)
		}
		m.Extra = string(b)
		slices.Sort(unknown)
		log.Debug().Strs("fields", unknown).Str("path", m.Path).Msg("unrecognized extractor fields")
	}
	return m, nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return helpers.IsUnknown(t)
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

func coerce(col string, v any) (any, error) {
	switch col {
	case "time_uploaded":
		return ParseTimestamp(v)
	case "size", "duration", "view_count", "favorite_count", "age_limit", "width", "height":
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", col, err)
		}
		return int64(math.Round(f)), nil
	case "score", "upvote_ratio", "fps", "latitude", "longitude":
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", col, err)
		}
		return f, nil
	case "tags":
		if s, ok := v.(string); ok {
			return s, nil
		}
		parts, err := cast.ToStringSliceE(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse tags: %w", err)
		}
		return strings.Join(parts, ";"), nil
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", col, err)
		}
		return strings.TrimSpace(s), nil
	}
}

// ParseTimestamp turns extractor dates into unix seconds. It accepts unix
// seconds or milliseconds, YYYYMMDD dates and RFC 3339 strings.
func ParseTimestamp(v any) (int64, error) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if compactDate.MatchString(s) {
			t, err := time.Parse("20060102", s)
			if err != nil {
				return 0, fmt.Errorf("failed to parse date %q: %w", s, err)
			}
			return t.Unix(), nil
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.Unix(), nil
		}
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t.Unix(), nil
		}
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse timestamp %v: %w", v, err)
	}
	if f > 1e12 {
		f /= 1000
	}
	return int64(f), nil
}
