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

package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database/filters"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database/query"
)

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// csvList is a repeatable flag whose values may also be comma separated.
type csvList []string

func (s *csvList) String() string {
	return strings.Join(*s, ",")
}

func (s *csvList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}

// windowFlag collects one time window per use.
type windowFlag struct {
	out    *[]filters.TimeWindow
	field  filters.TimeField
	within bool
}

func (w windowFlag) String() string {
	return ""
}

func (w windowFlag) Set(v string) error {
	tw, err := filters.ParseTimeWindow(w.field, w.within, v)
	if err != nil {
		return err //nolint:wrapcheck // flag package adds the flag name
	}
	*w.out = append(*w.out, tw)
	return nil
}

// rangeFlag intersects every use into one range.
type rangeFlag struct {
	out   *filters.Range
	parse func(string) (filters.Range, error)
}

func (r rangeFlag) String() string {
	return ""
}

func (r rangeFlag) Set(v string) error {
	parsed, err := r.parse(v)
	if err != nil {
		return err
	}
	*r.out = r.out.Intersect(parsed)
	return nil
}

// newFlagSet returns a flag set for action that reports errors instead of
// exiting.
func newFlagSet(action string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(action, flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(out, "Usage: medialib %s [flags] <db> [args...]\n", action)
		fs.PrintDefaults()
	}
	return fs
}

// alias registers the same flag value under several names.
func alias(fs *flag.FlagSet, v flag.Value, usage string, names ...string) {
	for _, n := range names {
		fs.Var(v, n, usage)
	}
}

// selectionFlags are shared by every action that selects media.
type selectionFlags struct {
	spec query.SelectionSpec
}

func addSelectionFlags(fs *flag.FlagSet) *selectionFlags {
	s := &selectionFlags{}
	sp := &s.spec

	alias(fs, (*stringList)(&sp.Include), "include rows matching this text (repeatable)", "s", "include")
	alias(fs, (*stringList)(&sp.Exclude), "exclude rows matching this text (repeatable)", "E", "exclude")
	alias(fs, (*stringList)(&sp.Where), "raw SQL condition (repeatable)", "w", "where")
	alias(fs, (*csvList)(&sp.Sort), "sort expressions", "u", "sort")
	alias(fs, rangeFlag{out: &sp.Size, parse: filters.ParseSizeRange},
		"size range such as +6MB, -6MB or 6MB%10", "S", "size")
	alias(fs, rangeFlag{out: &sp.Duration, parse: filters.ParseDurationRange},
		"duration range in minutes such as +20 or 30%5", "d", "duration")
	fs.Var((*csvList)(&sp.Cols), "cols", "extra columns to project")

	for _, f := range filters.TimeFields {
		fs.Var(windowFlag{out: &sp.Windows, field: f, within: true}, string(f)+"-within",
			fmt.Sprintf("only rows %s within this long ago", f))
		fs.Var(windowFlag{out: &sp.Windows, field: f, within: false}, string(f)+"-before",
			fmt.Sprintf("only rows %s before this long ago", f))
	}

	fs.IntVar(&sp.Lower, "lower", 0, "minimum number of siblings in the same folder")
	fs.IntVar(&sp.Upper, "upper", 0, "maximum number of siblings in the same folder")
	fs.IntVar(&sp.Limit, "L", 0, "maximum number of rows")
	fs.IntVar(&sp.Limit, "limit", 0, "maximum number of rows")
	fs.IntVar(&sp.Offset, "offset", 0, "skip this many rows")
	fs.BoolVar(&sp.Portrait, "portrait", false, "only portrait videos")
	fs.BoolVar(&sp.OnlineOnly, "online-only", false, "only remote rows")
	fs.BoolVar(&sp.LocalOnly, "local-only", false, "only local rows")
	fs.BoolVar(&sp.IncludeDeleted, "deleted", false, "include soft-deleted rows")
	fs.BoolVar(&sp.FTS, "fts", false, "match include terms through the full-text index")
	return s
}

// build fills in the parts of the selection that come from config and the clock.
func (s *selectionFlags) build(env *Env, action query.Action) *query.SelectionSpec {
	spec := s.spec
	spec.Action = action
	spec.Now = env.Clock.Now().Unix()
	spec.Blocklist = env.Cfg.BlocklistKeys()
	spec.RandomRowidLimit = env.Cfg.RandomRowidLimit()
	if len(spec.Cols) == 0 && action == query.ActionPrint {
		spec.Cols = env.Cfg.PrintColumns()
	}
	return &spec
}
