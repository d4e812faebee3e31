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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		expected int64
	}{
		{in: "6MB", expected: 6_000_000},
		{in: "6 MiB", expected: 6 * 1024 * 1024},
		{in: "100", expected: 100},
		{in: "1.5GB", expected: 1_500_000_000},
	}
	for _, tt := range tests {
		got, err := ParseSize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.expected, got, tt.in)
	}

	_, err := ParseSize("lots")
	require.Error(t, err)
}

func TestParseDurationSeconds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		expected int64
	}{
		{in: "90", expected: 5400},
		{in: "45s", expected: 45},
		{in: "1h30m", expected: 5400},
		{in: "2 days", expected: 172800},
		{in: "1.5h", expected: 5400},
		{in: "1:02:03", expected: 3723},
		{in: "2:03", expected: 123},
	}
	for _, tt := range tests {
		got, err := ParseDurationSeconds(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.expected, got, tt.in)
	}

	for _, bad := range []string{"", "soon", "3 fortnights", "1:2:3:4"} {
		_, err := ParseDurationSeconds(bad)
		require.ErrorIs(t, err, ErrBadDuration, bad)
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1:02:03", FormatDuration(3723))
	assert.Equal(t, "2:03", FormatDuration(123))
	assert.Empty(t, FormatDuration(0))
}

func TestFormatRelative(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "3 days ago", FormatRelative(now.Add(-72*time.Hour).Unix(), now))
	assert.Empty(t, FormatRelative(0, now))
	assert.Equal(t, "1,234,567", FormatCount(1234567))
}
