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
	"fmt"
	"slices"
	"strings"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/config"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database/query"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/extractors"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/printer"
)

const secondsPerDay = 24 * 60 * 60

func runBlock(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("block", env.Stderr)
	out := addOutputFlags(fs)
	key := fs.String("key", "path", "column the values are matched against")
	list := fs.Bool("list", false, "print the blocklist instead of adding to it")
	if err := parse(fs, args); err != nil {
		return err
	}
	dbPath, values := splitDB(env, "video", fs.Args())
	if !*list {
		if len(values) == 0 {
			return fmt.Errorf("%w: block needs at least one value", ErrUsage)
		}
		if !slices.Contains(config.BlocklistKeyChoices, *key) {
			return fmt.Errorf("%w: blocklist key %q must be one of %s",
				ErrUsage, *key, strings.Join(config.BlocklistKeyChoices, ", "))
		}
	}

	db, err := openDB(ctx, env, dbPath)
	if err != nil {
		return err
	}
	defer closeDB(db)

	if *list {
		entries, err := db.Blocklist(ctx)
		if err != nil {
			return err
		}
		t := &printer.Table{Names: []string{"key", "value"}, Values: make([][]any, 2)}
		for _, e := range entries {
			t.Values[0] = append(t.Values[0], e.Key)
			t.Values[1] = append(t.Values[1], e.Value)
		}
		return out.write(env, t)
	}

	entries := make([]database.BlocklistEntry, 0, len(values))
	for _, v := range values {
		entries = append(entries, database.BlocklistEntry{Key: *key, Value: v})
	}
	if err := db.AddBlocklist(ctx, entries...); err != nil {
		return err
	}
	if !slices.Contains(env.Cfg.BlocklistKeys(), *key) {
		_, _ = fmt.Fprintf(env.Stderr, "note: %q is not in blocklist.keys, selections will ignore it\n", *key)
	}
	return nil
}

func runPurge(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("purge", env.Stderr)
	days := fs.Int("days", 30, "purge rows deleted more than this many days ago")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *days < 0 {
		return fmt.Errorf("%w: -days must not be negative", ErrUsage)
	}
	dbPath, _ := splitDB(env, "video", fs.Args())

	db, err := openDB(ctx, env, dbPath)
	if err != nil {
		return err
	}
	defer closeDB(db)

	cutoff := env.Clock.Now().Unix() - int64(*days)*secondsPerDay
	n, err := db.PurgeTombstones(ctx, cutoff)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(env.Stderr, "purged %d rows\n", n)
	return nil
}

func runDownload(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("download", env.Stderr)
	sel := addSelectionFlags(fs)
	prefix := fs.String("prefix", ".", "folder downloads are saved under")
	if err := parse(fs, args); err != nil {
		return err
	}
	dbPath, rest := splitDB(env, "tube", fs.Args())
	sel.spec.Include = append(sel.spec.Include, rest...)
	sel.spec.OnlineOnly = true
	sel.spec.LocalOnly = false

	db, err := openDB(ctx, env, dbPath)
	if err != nil {
		return err
	}
	defer closeDB(db)

	rows, err := query.Select(ctx, db, sel.build(env, query.ActionDownload))
	if err != nil {
		return err
	}

	d := extractors.NewDownloader(db, env.Fs, env.HTTP, extractors.NewYtDlp(env.Exec, env.Cfg.YtDlpBinary()), *prefix)
	counts, err := d.Download(ctx, rows)
	_, _ = fmt.Fprintf(env.Stderr, "downloaded %d, failed %d\n", counts.Downloaded, counts.Failed)
	return err
}

func runOptimize(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("optimize", env.Stderr)
	if err := parse(fs, args); err != nil {
		return err
	}
	dbPath, _ := splitDB(env, "video", fs.Args())

	db, err := openDB(ctx, env, dbPath)
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := db.RebuildFTS(ctx); err != nil {
		return err
	}
	return db.Vacuum(ctx)
}
