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
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics strips combining marks: "Beyoncé" becomes "Beyonce".
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		return out
	}
	return s
}

// NormalizeText folds case, strips diacritics and collapses whitespace. Used
// for comparisons that should ignore presentation.
func NormalizeText(s string) string {
	s = RemoveDiacritics(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// IsUnknown reports tag values that carry no information.
func IsUnknown(s string) bool {
	switch NormalizeText(s) {
	case "", "unknown", "und", "unk", "none", "n/a", "<unknown>":
		return true
	default:
		return false
	}
}

// FirstKnown returns the first value that is not empty or "unknown".
func FirstKnown(values ...string) string {
	for _, v := range values {
		if !IsUnknown(v) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// StringWidth is the terminal cell width of s.
func StringWidth(s string) int {
	return uniseg.StringWidth(s)
}

// Truncate shortens s to at most width cells without splitting grapheme
// clusters, appending an ellipsis when anything was cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}
	const ellipsis = "…"
	limit := width - 1
	var sb strings.Builder
	used := 0
	state := -1
	rest := s
	for rest != "" {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if used+w > limit {
			break
		}
		sb.WriteString(cluster)
		used += w
	}
	sb.WriteString(ellipsis)
	return sb.String()
}

// CollapseSpaces replaces runs of whitespace with a single space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
