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

package filters

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
)

var ErrBadRange = errors.New("invalid range")

// defaultTolerance is the ± fraction applied to a bare value.
const defaultTolerance = 0.10

// Range is an inclusive numeric interval; a nil bound is open.
type Range struct {
	Min *int64
	Max *int64
}

func (r Range) IsZero() bool {
	return r.Min == nil && r.Max == nil
}

func (r Range) Contains(v int64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// Predicate is a SQL fragment with its named parameters.
type Predicate struct {
	Params map[string]any
	SQL    string
}

// Predicate renders the range against col. Parameter names are prefixed
// with name so several ranges can share one statement.
func (r Range) Predicate(col, name string) Predicate {
	p := Predicate{Params: map[string]any{}}
	var parts []string
	if r.Min != nil {
		parts = append(parts, fmt.Sprintf("%s >= :%s_min", col, name))
		p.Params[name+"_min"] = *r.Min
	}
	if r.Max != nil {
		parts = append(parts, fmt.Sprintf("%s <= :%s_max", col, name))
		p.Params[name+"_max"] = *r.Max
	}
	p.SQL = strings.Join(parts, " AND ")
	return p
}

// Intersect narrows r by other.
func (r Range) Intersect(other Range) Range {
	out := r
	if other.Min != nil && (out.Min == nil || *other.Min > *out.Min) {
		out.Min = other.Min
	}
	if other.Max != nil && (out.Max == nil || *other.Max < *out.Max) {
		out.Max = other.Max
	}
	return out
}

// UnitParser converts one human value to machine units.
type UnitParser func(string) (int64, error)

// ParseSizeRange parses a size range; bare numbers are bytes.
func ParseSizeRange(s string) (Range, error) {
	return ParseRange(s, helpers.ParseSize)
}

// ParseDurationRange parses a duration range in seconds; bare numbers are
// minutes.
func ParseDurationRange(s string) (Range, error) {
	return ParseRange(s, helpers.ParseDurationSeconds)
}

// ParseRange understands:
//
//	+N     at least N
//	-N     at most N
//	N      within 10% of N
//	N%T    within T of N, T in N's unit, or a percentage when T ends in %
//	A-B    between A and B, also A..B
func ParseRange(s string, parse UnitParser) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, fmt.Errorf("%w: empty", ErrBadRange)
	}

	switch s[0] {
	case '+':
		n, err := parse(s[1:])
		if err != nil {
			return Range{}, fmt.Errorf("%w: %w", ErrBadRange, err)
		}
		return Range{Min: &n}, nil
	case '-':
		n, err := parse(s[1:])
		if err != nil {
			return Range{}, fmt.Errorf("%w: %w", ErrBadRange, err)
		}
		return Range{Max: &n}, nil
	}

	if lo, hi, ok := splitBetween(s); ok {
		a, err := parse(lo)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %w", ErrBadRange, err)
		}
		b, err := parse(hi)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %w", ErrBadRange, err)
		}
		if a > b {
			a, b = b, a
		}
		return Range{Min: &a, Max: &b}, nil
	}

	value, tolerance, hasTolerance := strings.Cut(s, "%")
	n, err := parse(value)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %w", ErrBadRange, err)
	}

	var delta int64
	switch {
	case !hasTolerance:
		delta = int64(math.Round(float64(n) * defaultTolerance))
	case strings.HasSuffix(tolerance, "%"):
		pct, err := strconv.ParseFloat(strings.TrimSuffix(tolerance, "%"), 64)
		if err != nil || pct < 0 {
			return Range{}, fmt.Errorf("%w: bad percentage in %q", ErrBadRange, s)
		}
		delta = int64(math.Round(float64(n) * pct / 100))
	default:
		t := tolerance
		if !hasUnit(t) {
			t += unitOf(value)
		}
		delta, err = parse(t)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %w", ErrBadRange, err)
		}
	}

	lo, hi := max(n-delta, 0), n+delta
	return Range{Min: &lo, Max: &hi}, nil
}

func splitBetween(s string) (lo, hi string, ok bool) {
	if lo, hi, ok = strings.Cut(s, ".."); ok && lo != "" && hi != "" {
		return lo, hi, true
	}
	// a leading '-' was handled by the caller, so any '-' here separates
	i := strings.Index(s, "-")
	if i <= 0 || i == len(s)-1 || strings.Contains(s, "%") {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

func hasUnit(s string) bool {
	return unitOf(s) != ""
}

// unitOf returns the trailing non-numeric suffix of s.
func unitOf(s string) string {
	s = strings.TrimSpace(s)
	i := strings.LastIndexFunc(s, func(r rune) bool {
		return (r >= '0' && r <= '9') || r == '.'
	})
	return strings.TrimSpace(s[i+1:])
}
