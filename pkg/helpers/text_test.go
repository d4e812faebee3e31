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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "beyonce halo", NormalizeText("  Beyoncé   HALO "))
	assert.Equal(t, "strasse", NormalizeText("STRASSE"))
}

func TestFirstKnown(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Artist", FirstKnown("", "Unknown", " Artist ", "Other"))
	assert.Empty(t, FirstKnown("", "und"))
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Empty(t, Truncate("abc", 0))

	// family emoji is one grapheme and must not be split
	family := "👨‍👩‍👧"
	out := Truncate("ab"+family+"cdef", 5)
	assert.Equal(t, "ab"+family+"…", out)
	assert.LessOrEqual(t, StringWidth(out), 5)
}
