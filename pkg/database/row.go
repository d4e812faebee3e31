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

package database

import (
	"path/filepath"

	"github.com/spf13/cast"
)

func (r Row) String(col string) string {
	return cast.ToString(r[col])
}

func (r Row) Int(col string) int64 {
	return cast.ToInt64(r[col])
}

func (r Row) Float(col string) float64 {
	return cast.ToFloat64(r[col])
}

// Path is the row's media path; every compiled query projects it.
func (r Row) Path() string {
	return r.String("path")
}

// Parent is the directory containing the row's path.
func (r Row) Parent() string {
	return filepath.Dir(r.Path())
}

// Has reports whether the column was projected and is not NULL.
func (r Row) Has(col string) bool {
	v, ok := r[col]
	return ok && v != nil
}
