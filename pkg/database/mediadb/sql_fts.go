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

package mediadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/rs/zerolog/log"
)

// ftsSpec describes an FTS4 external-content index over a base table.
type ftsSpec struct {
	base    string
	columns []string
}

func (s ftsSpec) table() string {
	return s.base + "_fts"
}

func (s ftsSpec) configKey() string {
	return "FTSColumns." + s.table()
}

var (
	mediaFTS    = ftsSpec{base: "media", columns: database.MediaFTSColumns}
	captionsFTS = ftsSpec{base: "captions", columns: database.CaptionFTSColumns}
	redditFTS   = ftsSpec{base: "reddit_posts", columns: database.RedditFTSColumns}
	ftsTables   = []ftsSpec{mediaFTS, captionsFTS, redditFTS}
)

// FTSColumns returns the indexed text columns of a base table, nil if the
// table has no full-text index.
func FTSColumns(base string) []string {
	for _, spec := range ftsTables {
		if spec.base == base {
			return spec.columns
		}
	}
	return nil
}

func ftsStatements(spec ftsSpec) []string {
	fts := spec.table()
	cols := strings.Join(spec.columns, ", ")
	newCols := "new." + strings.Join(spec.columns, ", new.")

	return []string{
		fmt.Sprintf(
			`CREATE VIRTUAL TABLE %s USING fts4(content="%s", %s, tokenize=unicode61)`,
			fts, spec.base, cols,
		),
		fmt.Sprintf(
			`CREATE TRIGGER %s_bu BEFORE UPDATE ON %s BEGIN DELETE FROM %s WHERE docid = old.rowid; END`,
			fts, spec.base, fts,
		),
		fmt.Sprintf(
			`CREATE TRIGGER %s_bd BEFORE DELETE ON %s BEGIN DELETE FROM %s WHERE docid = old.rowid; END`,
			fts, spec.base, fts,
		),
		fmt.Sprintf(
			`CREATE TRIGGER %s_au AFTER UPDATE ON %s BEGIN INSERT INTO %s (docid, %s) VALUES (new.rowid, %s); END`,
			fts, spec.base, fts, cols, newCols,
		),
		fmt.Sprintf(
			`CREATE TRIGGER %s_ai AFTER INSERT ON %s BEGIN INSERT INTO %s (docid, %s) VALUES (new.rowid, %s); END`,
			fts, spec.base, fts, cols, newCols,
		),
		fmt.Sprintf(`INSERT INTO %s (%s) VALUES ('rebuild')`, fts, fts),
	}
}

func dropFTSStatements(spec ftsSpec) []string {
	fts := spec.table()
	return []string{
		fmt.Sprintf("DROP TRIGGER IF EXISTS %s_bu", fts),
		fmt.Sprintf("DROP TRIGGER IF EXISTS %s_bd", fts),
		fmt.Sprintf("DROP TRIGGER IF EXISTS %s_au", fts),
		fmt.Sprintf("DROP TRIGGER IF EXISTS %s_ai", fts),
		fmt.Sprintf("DROP TABLE IF EXISTS %s", fts),
	}
}

func sqlTableExists(ctx context.Context, db querier, name string) (bool, error) {
	var found string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE name = ? AND type IN ('table', 'view')", name,
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", name, err)
	}
	return true, nil
}

// sqlEnsureFTS creates the index for spec, or drops and recreates it when
// the stored column list differs. Reports whether anything was rebuilt.
func sqlEnsureFTS(ctx context.Context, db *sql.DB, spec ftsSpec) (bool, error) {
	want := strings.Join(spec.columns, ",")

	have, err := sqlGetConfig(ctx, db, spec.configKey())
	if err != nil {
		return false, err
	}
	exists, err := sqlTableExists(ctx, db, spec.table())
	if err != nil {
		return false, err
	}
	if exists && have == want {
		return false, nil
	}

	if exists {
		log.Info().
			Str("table", spec.table()).
			Str("old", have).
			Str("new", want).
			Msg("full-text columns changed, rebuilding index")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin fts transaction: %w", err)
	}
	stmts := append(dropFTSStatements(spec), ftsStatements(spec)...)
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return false, fmt.Errorf("failed to build full-text index %s: %w", spec.table(), err)
		}
	}
	if err := sqlSetConfig(ctx, tx, spec.configKey(), want); err != nil {
		_ = tx.Rollback()
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit full-text index: %w", err)
	}
	return true, nil
}

// RebuildFTS repopulates every full-text index from its base table.
func (db *MediaDB) RebuildFTS(ctx context.Context) error {
	return db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, spec := range ftsTables {
			stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES ('rebuild')", spec.table(), spec.table())
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to rebuild %s: %w", spec.table(), err)
			}
		}
		return nil
	})
}
