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

import "strings"

var ftsOperators = []string{" AND ", " OR ", " NOT ", "NEAR(", "NEAR/"}

// QuoteFTSTerm wraps a user term as an FTS5 phrase, doubling embedded
// quotes. Terms that use query operators pass through unchanged.
func QuoteFTSTerm(term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return ""
	}
	for _, op := range ftsOperators {
		if strings.Contains(term, op) {
			return term
		}
	}
	return `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
}
