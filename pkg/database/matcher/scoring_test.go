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

package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetWordWeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		word string
		want float64
	}{
		{word: "episode", want: 20},
		{word: "pilot", want: 10},
		{word: "the", want: 5},
		{word: "of", want: 5},
		{word: "s01e01", want: 20},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, getWordWeight(tt.word), 0.001)
		})
	}
}

func TestTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"the", "office", "s01e01", "pilot", "mkv"},
		Tokens("The Office S01E01 - Pilot.mkv"))
	assert.Equal(t, []string{"beyonce"}, Tokens("a b  Beyoncé beyonce"))
	assert.Empty(t, Tokens(" - . "))
}

func TestScoreTokenMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		query     string
		candidate string
		min       float64
		max       float64
	}{
		{name: "exact", query: "the office pilot", candidate: "The Office - Pilot", min: 0.999, max: 1.001},
		{name: "word order", query: "pilot office", candidate: "office pilot", min: 0.999, max: 1.001},
		{name: "extra candidate words", query: "pilot", candidate: "the office pilot", min: 0.5, max: 0.6},
		{name: "disjoint", query: "sonic", candidate: "mario bros", min: 0, max: 0},
		{name: "common words only", query: "the of", candidate: "the office pilot", min: 0.1, max: 0.3},
		{name: "empty query", query: "", candidate: "pilot", min: 0, max: 0},
		{name: "empty candidate", query: "pilot", candidate: "", min: 0, max: 0},
		{name: "single letters", query: "a", candidate: "a b c", min: 0, max: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			score := ScoreTokenMatch(tt.query, tt.candidate)
			assert.GreaterOrEqual(t, score, tt.min)
			assert.LessOrEqual(t, score, tt.max)
		})
	}
}

func TestScoreTokenMatchUniqueOutweighsCommon(t *testing.T) {
	t.Parallel()

	candidate := "the return of the pilgrims"
	assert.Greater(t, ScoreTokenMatch("pilgrims", candidate), ScoreTokenMatch("the of", candidate))
	assert.Greater(t, ScoreTokenMatch("return pilgrims", candidate), ScoreTokenMatch("pilgrims", candidate))
}

func TestMatchExpression(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"office" OR "s01e01"`,
		MatchExpression([]string{"the", "office", "s01e01", "pilot"}, 2))
	assert.Equal(t, `"office" OR "s01e01" OR "pilot"`,
		MatchExpression([]string{"the", "office", "s01e01", "pilot"}, 0))
	assert.Equal(t, `"the" OR "of"`, MatchExpression([]string{"the", "of"}, 5))
	assert.Empty(t, MatchExpression(nil, 5))
}
