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

// doneRatio is how much of an item has to be played for it to count.
const doneRatio = 0.95

// ComputePlayhead advances the resume position existing by elapsed
// seconds, capped at duration. Items of unknown duration record elapsed
// and always count as done.
func ComputePlayhead(existing, elapsed, duration int64) (playhead int64, done bool) {
	existing = max(existing, 0)
	elapsed = max(elapsed, 0)
	if duration <= 0 {
		return elapsed, true
	}
	playhead = min(existing+elapsed, duration)
	return playhead, float64(playhead) >= doneRatio*float64(duration)
}
