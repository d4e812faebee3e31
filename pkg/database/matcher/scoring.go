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
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
)

var commonWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "at": {}, "by": {}, "for": {}, "from": {}, "in": {},
	"is": {}, "it": {}, "of": {}, "on": {}, "or": {}, "the": {}, "to": {}, "with": {},
}

func isCommonWord(word string) bool {
	_, ok := commonWords[word]
	return ok
}

// getWordWeight favors long, rare-looking words: an episode's distinctive
// title word counts more than "the" or "of".
func getWordWeight(word string) float64 {
	weight := 10.0
	if isCommonWord(word) {
		weight -= 5
	} else if len([]rune(word)) >= 6 {
		weight += 10
	}
	return weight
}

// Tokens splits s into normalized words of two or more characters.
// Duplicates are kept once, in order of first appearance.
func Tokens(s string) []string {
	fields := strings.FieldsFunc(helpers.NormalizeText(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < 2 || slices.Contains(tokens, f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// ScoreTokenMatch scores word overlap between two names in [0, 1]. The
// share of the query's weight found in the candidate is scaled by the
// square root of the candidate's matched share, so extra candidate words
// cost less than missing query words.
func ScoreTokenMatch(query, candidate string) float64 {
	q := Tokens(query)
	c := Tokens(candidate)
	if len(q) == 0 || len(c) == 0 {
		return 0
	}

	var qTotal, qMatched float64
	for _, w := range q {
		weight := getWordWeight(w)
		qTotal += weight
		if slices.Contains(c, w) {
			qMatched += weight
		}
	}
	var cTotal, cMatched float64
	for _, w := range c {
		weight := getWordWeight(w)
		cTotal += weight
		if slices.Contains(q, w) {
			cMatched += weight
		}
	}
	if qMatched == 0 {
		return 0
	}
	return (qMatched / qTotal) * math.Sqrt(cMatched/cTotal)
}

// MatchExpression builds a full-text MATCH expression from the heaviest
// limit tokens, OR-ed together. Common words are left out unless nothing
// else remains. It returns "" when there are no tokens.
func MatchExpression(tokens []string, limit int) string {
	picked := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !isCommonWord(t) {
			picked = append(picked, t)
		}
	}
	if len(picked) == 0 {
		picked = append(picked, tokens...)
	}
	sort.SliceStable(picked, func(i, j int) bool {
		return getWordWeight(picked[i]) > getWordWeight(picked[j])
	})
	if limit > 0 && len(picked) > limit {
		picked = picked[:limit]
	}

	quoted := make([]string, len(picked))
	for i, t := range picked {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return strings.Join(quoted, " OR ")
}
