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
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database/query"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/dedupe"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/printer"
)

type outputFlags struct {
	format string
	raw    bool
}

func addOutputFlags(fs *flag.FlagSet) *outputFlags {
	f := &outputFlags{}
	fs.StringVar(&f.format, "format", "", "output format: table, csv, json, yaml or lines")
	fs.StringVar(&f.format, "p", "", "alias of -format")
	fs.BoolVar(&f.raw, "raw", false, "print stored values without humanizing")
	return f
}

// write prints t, humanizing table output for a terminal.
func (f *outputFlags) write(env *Env, t *printer.Table) error {
	format, err := printer.ParseFormat(f.format)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if format == printer.FormatTable && !f.raw {
		t.Humanize()
		t.Naturalize(env.Clock.Now())
		if env.Width > 0 {
			t.Resize(env.Width)
		}
	}
	if err := printer.Print(env.Stdout, t, format); err != nil {
		return fmt.Errorf("failed to print: %w", err)
	}
	return nil
}

func runPrint(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("print", env.Stderr)
	sel := addSelectionFlags(fs)
	out := addOutputFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	dbPath, rest := splitDB(env, "video", fs.Args())
	sel.spec.Include = append(sel.spec.Include, rest...)

	db, err := openDB(ctx, env, dbPath)
	if err != nil {
		return err
	}
	defer closeDB(db)

	rows, err := query.Select(ctx, db, sel.build(env, query.ActionPrint))
	if err != nil {
		return err
	}
	return out.write(env, printer.FromRows(rows, nil))
}

func runStats(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("stats", env.Stderr)
	sel := addSelectionFlags(fs)
	out := addOutputFlags(fs)
	by := fs.String("by", printer.ByMonthCreated, "group by month_created, month_modified, playlist or parent")
	if err := parse(fs, args); err != nil {
		return err
	}
	cols, err := printer.StatsColumns(*by)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	dbPath, rest := splitDB(env, "video", fs.Args())
	sel.spec.Include = append(sel.spec.Include, rest...)
	sel.spec.Cols = append(sel.spec.Cols, cols...)
	sel.spec.Cols = append(sel.spec.Cols, "size", "duration")

	db, err := openDB(ctx, env, dbPath)
	if err != nil {
		return err
	}
	defer closeDB(db)

	rows, err := query.Select(ctx, db, sel.build(env, query.ActionPrint))
	if err != nil {
		return err
	}
	return out.write(env, printer.Stats(rows, *by))
}

func runHistory(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("history", env.Stderr)
	out := addOutputFlags(fs)
	limit := fs.Int("limit", 20, "number of plays to list")
	fs.IntVar(limit, "L", 20, "alias of -limit")
	done := fs.Bool("done", false, "only plays that finished")
	if err := parse(fs, args); err != nil {
		return err
	}
	dbPath, _ := splitDB(env, "video", fs.Args())

	db, err := openDB(ctx, env, dbPath)
	if err != nil {
		return err
	}
	defer closeDB(db)

	entries, err := db.History(ctx, *limit, *done)
	if err != nil {
		return err
	}
	return out.write(env, printer.HistoryTable(entries))
}

func runSearchCaptions(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("search-captions", env.Stderr)
	out := addOutputFlags(fs)
	limit := fs.Int("limit", 50, "maximum number of captions")
	fs.IntVar(limit, "L", 50, "alias of -limit")
	if err := parse(fs, args); err != nil {
		return err
	}
	dbPath, terms := splitDB(env, "video", fs.Args())
	if len(terms) == 0 {
		return fmt.Errorf("%w: search-captions needs search terms", ErrUsage)
	}

	db, err := openDB(ctx, env, dbPath)
	if err != nil {
		return err
	}
	defer closeDB(db)

	hits, err := db.SearchCaptions(ctx, strings.Join(terms, " "), *limit)
	if err != nil {
		return err
	}
	return out.write(env, printer.CaptionTable(hits))
}

func pairsTable(pairs []dedupe.Pair) *printer.Table {
	t := &printer.Table{Names: []string{"keep", "duplicate", "distance", "size"}, Values: make([][]any, 4)}
	for i := range pairs {
		p := &pairs[i]
		t.Values[0] = append(t.Values[0], p.Keep.Path)
		t.Values[1] = append(t.Values[1], p.Duplicate.Path)
		t.Values[2] = append(t.Values[2], p.Distance)
		t.Values[3] = append(t.Values[3], p.Savings())
	}
	return t
}

func runDedupe(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("dedupe", env.Stderr)
	sel := addSelectionFlags(fs)
	out := addOutputFlags(fs)
	strategyName := fs.String("strategy", string(dedupe.StrategyTitle),
		"how copies are matched: audio, extractor_id, title, duration or fts")
	dryRun := fs.Bool("dry-run", false, "only print the pairs")
	yes := fs.Bool("yes", false, "remove every duplicate without asking")
	fs.BoolVar(yes, "y", false, "alias of -yes")
	if err := parse(fs, args); err != nil {
		return err
	}
	strategy, err := dedupe.ParseStrategy(*strategyName)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	dbPath, rest := splitDB(env, "video", fs.Args())
	sel.spec.Include = append(sel.spec.Include, rest...)

	db, err := openDB(ctx, env, dbPath)
	if err != nil {
		return err
	}
	defer closeDB(db)

	pairs, err := dedupe.Find(ctx, db, sel.build(env, query.ActionDedupe), strategy)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		_, _ = fmt.Fprintln(env.Stderr, "no duplicates found")
		return nil
	}
	if err := out.write(env, pairsTable(pairs)); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(env.Stderr, "%d duplicates, %s reclaimable\n",
		len(pairs), helpers.FormatSize(dedupe.TotalSavings(pairs)))
	if *dryRun {
		return nil
	}

	prompt := env.Prompt
	if *yes {
		prompt = nil
	}
	trasher := helpers.NewTrasher(env.Fs, env.Exec, env.Cfg.TrashCommand())
	res, err := dedupe.Remove(ctx, db, trasher, prompt, pairs)
	_, _ = fmt.Fprintf(env.Stderr, "removed %d, skipped %d, freed %s\n",
		res.Removed, res.Skipped, helpers.FormatSize(res.Saved))
	return err
}
