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
	"sort"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/hbollon/go-edlib"
	"github.com/rs/zerolog/log"
)

// FuzzyMatch is a candidate name with its similarity to the query.
type FuzzyMatch struct {
	Name       string
	Similarity float32
}

// Similarity is the Jaro-Winkler similarity of two names after text
// normalization, in [0, 1].
func Similarity(a, b string) float32 {
	return edlib.JaroWinklerSimilarity(helpers.NormalizeText(a), helpers.NormalizeText(b))
}

// FindFuzzyMatches returns candidates similar to query using Jaro-Winkler,
// which weights shared prefixes heavily; media with the same show or
// artist prefix score high. Candidates equal to the query are skipped, as
// are those whose length differs by more than maxDistance. Results are
// sorted best first.
func FindFuzzyMatches(query string, candidates []string, maxDistance int, minSimilarity float32) []FuzzyMatch {
	q := helpers.NormalizeText(query)
	var matches []FuzzyMatch

	for _, candidate := range candidates {
		c := helpers.NormalizeText(candidate)
		if c == q {
			continue
		}

		lenDiff := len(q) - len(c)
		if lenDiff < 0 {
			lenDiff = -lenDiff
		}
		if lenDiff > maxDistance {
			continue
		}

		similarity := edlib.JaroWinklerSimilarity(q, c)
		if similarity > 0.7 {
			log.Debug().
				Str("query", query).
				Str("candidate", candidate).
				Float32("similarity", similarity).
				Msg("fuzzy match candidate")
		}
		if similarity >= minSimilarity {
			matches = append(matches, FuzzyMatch{Name: candidate, Similarity: similarity})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches
}

// ApplyDamerauLevenshteinTieBreaker re-ranks the top N fuzzy matches by
// edit distance, which handles transposed characters that Jaro-Winkler
// under-penalizes. Matches past topN are dropped.
func ApplyDamerauLevenshteinTieBreaker(query string, matches []FuzzyMatch, topN int) []FuzzyMatch {
	if len(matches) <= 1 {
		return matches
	}

	candidates := matches
	if topN > 0 && len(matches) > topN {
		candidates = matches[:topN]
	}

	type dlScore struct {
		match    FuzzyMatch
		distance int
	}

	q := helpers.NormalizeText(query)
	scored := make([]dlScore, len(candidates))
	for i, candidate := range candidates {
		scored[i] = dlScore{
			match:    candidate,
			distance: edlib.DamerauLevenshteinDistance(q, helpers.NormalizeText(candidate.Name)),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].distance < scored[j].distance
	})

	result := make([]FuzzyMatch, len(scored))
	for i, s := range scored {
		result[i] = s.match
	}
	return result
}
