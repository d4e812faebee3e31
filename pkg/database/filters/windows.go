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

package filters

import (
	"errors"
	"fmt"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
)

var ErrBadWindow = errors.New("invalid time window")

// TimeField is a media timestamp column a window can apply to.
type TimeField string

const (
	TimeCreated    TimeField = "created"
	TimeModified   TimeField = "modified"
	TimePlayed     TimeField = "played"
	TimeDeleted    TimeField = "deleted"
	TimeDownloaded TimeField = "downloaded"
)

var TimeFields = []TimeField{TimeCreated, TimeModified, TimePlayed, TimeDeleted, TimeDownloaded}

func (f TimeField) Column() string {
	return "time_" + string(f)
}

// TimeWindow restricts a timestamp to the last Seconds (Within) or to
// before that point.
type TimeWindow struct {
	Field   TimeField
	Seconds int64
	Within  bool
}

// ParseTimeWindow parses a human duration such as "3 days" or "2w".
func ParseTimeWindow(field TimeField, within bool, s string) (TimeWindow, error) {
	valid := false
	for _, f := range TimeFields {
		if f == field {
			valid = true
			break
		}
	}
	if !valid {
		return TimeWindow{}, fmt.Errorf("%w: unknown field %q", ErrBadWindow, field)
	}
	secs, err := helpers.ParseDurationSeconds(s)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("%w: %w", ErrBadWindow, err)
	}
	if secs <= 0 {
		return TimeWindow{}, fmt.Errorf("%w: %q must be positive", ErrBadWindow, s)
	}
	return TimeWindow{Field: field, Seconds: secs, Within: within}, nil
}

func (w TimeWindow) paramName() string {
	dir := "before"
	if w.Within {
		dir = "within"
	}
	return string(w.Field) + "_" + dir
}

// Predicate renders the window against alias.col relative to now. Zero
// timestamps mean "never" and never satisfy a before window.
func (w TimeWindow) Predicate(alias string, now int64) Predicate {
	col := w.Field.Column()
	if alias != "" {
		col = alias + "." + col
	}
	name := w.paramName()
	cutoff := now - w.Seconds
	if w.Within {
		return Predicate{
			SQL:    fmt.Sprintf("%s >= :%s", col, name),
			Params: map[string]any{name: cutoff},
		}
	}
	return Predicate{
		SQL:    fmt.Sprintf("(%s > 0 AND %s < :%s)", col, col, name),
		Params: map[string]any{name: cutoff},
	}
}

// Matches applies the window to a timestamp in Go, for in-memory filters.
func (w TimeWindow) Matches(ts, now int64) bool {
	cutoff := now - w.Seconds
	if w.Within {
		return ts >= cutoff
	}
	return ts > 0 && ts < cutoff
}
