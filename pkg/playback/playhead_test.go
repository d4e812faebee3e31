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

package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputePlayhead(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		existing int64
		elapsed  int64
		duration int64
		want     int64
		done     bool
	}{
		{name: "fresh partial", elapsed: 30, duration: 100, want: 30},
		{name: "resumed", existing: 50, elapsed: 20, duration: 100, want: 70},
		{name: "capped at duration", existing: 90, elapsed: 60, duration: 100, want: 100, done: true},
		{name: "done threshold", elapsed: 95, duration: 100, want: 95, done: true},
		{name: "just under threshold", elapsed: 94, duration: 100, want: 94},
		{name: "unknown duration", existing: 10, elapsed: 42, want: 42, done: true},
		{name: "negative inputs", existing: -5, elapsed: -1, duration: 100, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, done := ComputePlayhead(tt.existing, tt.elapsed, tt.duration)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.done, done)
		})
	}
}
