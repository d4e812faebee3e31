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
)

// sqlite's default host parameter limit
const maxSQLVariables = 32766

// BatchInserter buffers rows for one table and writes them as chunked
// multi-row inserts.
type BatchInserter struct {
	tx          querier
	tableName   string
	columns     []string
	buffer      []any
	columnCount int
	rowCount    int
	orIgnore    bool
}

func NewBatchInserter(tx querier, tableName string, columns []string, orIgnore bool) (*BatchInserter, error) {
	if tx == nil {
		return nil, errors.New("transaction is nil")
	}
	if tableName == "" {
		return nil, errors.New("table name is empty")
	}
	if len(columns) == 0 {
		return nil, errors.New("columns list is empty")
	}
	return &BatchInserter{
		tx:          tx,
		tableName:   tableName,
		columns:     columns,
		columnCount: len(columns),
		orIgnore:    orIgnore,
	}, nil
}

func (b *BatchInserter) Add(values ...any) error {
	if len(values) != b.columnCount {
		return fmt.Errorf(
			"expected %d values for columns %v, got %d",
			b.columnCount, b.columns, len(values),
		)
	}
	b.buffer = append(b.buffer, values...)
	b.rowCount++
	return nil
}

// Flush writes all buffered rows and resets the buffer.
func (b *BatchInserter) Flush(ctx context.Context) error {
	if b.rowCount == 0 {
		return nil
	}
	perChunk := maxSQLVariables / b.columnCount
	for start := 0; start < b.rowCount; start += perChunk {
		end := min(start+perChunk, b.rowCount)
		args := b.buffer[start*b.columnCount : end*b.columnCount]
		if _, err := b.tx.ExecContext(ctx, b.insertSQL(end-start), args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", b.tableName, err)
		}
	}
	b.buffer = b.buffer[:0]
	b.rowCount = 0
	return nil
}

func (b *BatchInserter) insertSQL(rows int) string {
	verb := "INSERT"
	if b.orIgnore {
		verb = "INSERT OR IGNORE"
	}
	row := "(" + prepareVariadic("?", ", ", b.columnCount) + ")"
	values := make([]string, rows)
	for i := range values {
		values[i] = row
	}
	return fmt.Sprintf("%s INTO %s (%s) VALUES %s",
		verb, b.tableName, strings.Join(b.columns, ", "), strings.Join(values, ", "))
}

func sqlReplaceCaptions(ctx context.Context, db querier, mediaID int64, captions []database.Caption) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM captions WHERE media_id = ?", mediaID); err != nil {
		return fmt.Errorf("failed to clear captions: %w", err)
	}
	if len(captions) == 0 {
		return nil
	}
	bi, err := NewBatchInserter(db, "captions", []string{"media_id", "time", "text"}, false)
	if err != nil {
		return err
	}
	for _, c := range captions {
		if err := bi.Add(mediaID, c.Time, c.Text); err != nil {
			return err
		}
	}
	return bi.Flush(ctx)
}

// UpsertMediaBatch writes a batch of rows in one transaction. Rows sharing
// the same set of known columns reuse one prepared statement.
func (db *MediaDB) UpsertMediaBatch(ctx context.Context, batch []database.Media) error {
	if len(batch) == 0 {
		return nil
	}
	return db.WithTx(ctx, func(tx *sql.Tx) error {
		stmts := newStmtCache(tx)
		defer stmts.close()

		for i := range batch {
			m := &batch[i]
			if m.Path == "" {
				return errors.New("media path is empty")
			}
			cols, args := splitColumns(m)
			stmt, err := stmts.get(ctx, upsertMediaStatement(cols))
			if err != nil {
				return err
			}
			var id int64
			if err := stmt.QueryRowContext(ctx, args...).Scan(&id); err != nil {
				return fmt.Errorf("failed to upsert media %s: %w", m.Path, err)
			}
			m.ID = id
			if m.Captions != nil {
				if err := sqlReplaceCaptions(ctx, tx, id, m.Captions); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
