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

package query

import (
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database/filters"
)

// Action selects the default projection and ordering.
type Action string

const (
	ActionWatch      Action = "watch"
	ActionListen     Action = "listen"
	ActionRead       Action = "read"
	ActionFilesystem Action = "fs"
	ActionCable      Action = "cable"
	ActionPrint      Action = "print"
	ActionDownload   Action = "download"
	ActionDedupe     Action = "dedupe"
)

// BlocklistPlaylistPath is the blocklist key matched against the path of a
// row's playlist.
const BlocklistPlaylistPath = "playlist_path"

// SelectionSpec is the user-facing filter grammar shared by every selecting
// action. The zero value selects every live row.
type SelectionSpec struct {
	Action   Action         `validate:"omitempty,oneof=watch listen read fs cable print download dedupe"`
	Include  []string       `validate:"omitempty,dive,required"`
	Exclude  []string       `validate:"omitempty,dive,required"`
	Where    []string       `validate:"omitempty,dive,required"`
	Sort     []string       `validate:"omitempty,dive,required"`
	Cols     []string       `validate:"omitempty,dive,required"`
	Windows  []filters.TimeWindow
	Size     filters.Range
	Duration filters.Range

	// KeepDir excludes rows already under the keep directory, used when
	// the post action moves kept files there.
	KeepDir string

	// Blocklist lists the keys whose blocklist entries apply.
	Blocklist []string

	// Now is the reference unix time for time windows.
	Now int64

	Lower  int `validate:"min=0"`
	Upper  int `validate:"omitempty,min=0,gtefield=Lower"`
	Limit  int `validate:"min=0"`
	Offset int `validate:"min=0"`

	// RandomRowidLimit bounds the candidate set under the default play
	// order; 0 disables it.
	RandomRowidLimit int `validate:"min=0"`

	Portrait       bool
	OnlineOnly     bool `validate:"excluded_with=LocalOnly"`
	LocalOnly      bool
	IncludeDeleted bool
	FTS            bool
}

// HasSiblingFilter reports whether the lower/upper bounds are in effect.
func (s *SelectionSpec) HasSiblingFilter() bool {
	return s.Lower > 0 || s.Upper > 0
}
