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

package helpers

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

var ErrBadDuration = errors.New("invalid duration")

// ParseSize parses "6MB", "1.5 GiB" or a bare byte count.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty size")
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse size %q: %w", s, err)
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("size %q out of range", s)
	}
	return int64(n), nil
}

// FormatSize renders bytes for tables, "6.0 MB" style.
func FormatSize(n int64) string {
	if n <= 0 {
		return ""
	}
	return humanize.Bytes(uint64(n))
}

var durationUnits = map[string]float64{
	"s": 1, "sec": 1, "secs": 1, "second": 1, "seconds": 1,
	"m": 60, "min": 60, "mins": 60, "minute": 60, "minutes": 60,
	"h": 3600, "hr": 3600, "hrs": 3600, "hour": 3600, "hours": 3600,
	"d": 86400, "day": 86400, "days": 86400,
	"w": 604800, "week": 604800, "weeks": 604800,
}

// ParseDurationSeconds accepts "90" (minutes), "45s", "1.5h", "2 days",
// Go durations like "1h30m" and clock forms "1:02:03".
func ParseDurationSeconds(s string) (int64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, ErrBadDuration
	}

	if strings.Contains(s, ":") {
		return parseClock(s)
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(math.Round(f * 60)), nil
	}

	if d, err := time.ParseDuration(s); err == nil {
		return int64(d.Seconds()), nil
	}

	i := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if i <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadDuration, s)
	}
	n, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadDuration, s)
	}
	mult, ok := durationUnits[strings.TrimSpace(s[i:])]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit in %q", ErrBadDuration, s)
	}
	return int64(math.Round(n * mult)), nil
}

func parseClock(s string) (int64, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrBadDuration, s)
	}
	var total float64
	for _, p := range parts {
		n, err := strconv.ParseFloat(p, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrBadDuration, s)
		}
		total = total*60 + n
	}
	return int64(math.Round(total)), nil
}

// FormatDuration renders seconds as "1:02:03" or "2:03".
func FormatDuration(secs int64) string {
	if secs <= 0 {
		return ""
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	sec := secs % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// FormatRelative renders a unix timestamp relative to now, "3 days ago".
func FormatRelative(ts int64, now time.Time) string {
	if ts <= 0 {
		return ""
	}
	return humanize.RelTime(time.Unix(ts, 0), now, "ago", "from now")
}

// FormatCount renders integers with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}
