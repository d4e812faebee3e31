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
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/config"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/cenkalti/backoff/v5"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	driverName        = "sqlite3"
	maxLockRetryDelay = 30 * time.Second
	firstRetryDelay   = 100 * time.Millisecond
)

// getSqliteConnParams returns the DSN suffix used for every catalog.
func getSqliteConnParams() string {
	return "?_journal_mode=WAL" +
		"&_synchronous=NORMAL" +
		"&_busy_timeout=5000" +
		"&_foreign_keys=ON" +
		"&_cache_size=8000"
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type MediaDB struct {
	sql         *sql.DB
	sqlx        *sqlx.DB
	clock       clockwork.Clock
	path        string
	lockRetries int
	retryDelay  time.Duration
}

var _ database.CatalogDBI = (*MediaDB)(nil)

type Option func(*MediaDB)

func WithClock(clock clockwork.Clock) Option {
	return func(db *MediaDB) {
		db.clock = clock
	}
}

func WithLockRetries(n int) Option {
	return func(db *MediaDB) {
		if n > 0 {
			db.lockRetries = n
		}
	}
}

func newMediaDB(opts ...Option) *MediaDB {
	db := &MediaDB{
		clock:       clockwork.NewRealClock(),
		lockRetries: config.DefaultLockRetries,
		retryDelay:  firstRetryDelay,
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// OpenMediaDB opens or creates the catalog at path, applying migrations and
// repairing full-text indexes whose column set changed.
func OpenMediaDB(ctx context.Context, path string, opts ...Option) (*MediaDB, error) {
	db := newMediaDB(opts...)
	db.path = path

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory for database: %w", err)
	}

	sqlInstance, err := sql.Open(driverName, path+getSqliteConnParams())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// single writer; WAL still lets other processes read
	sqlInstance.SetMaxOpenConns(1)

	if err := db.setSQL(ctx, sqlInstance); err != nil {
		if closeErr := sqlInstance.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close database after setup error")
		}
		return nil, err
	}
	return db, nil
}

// SetSQLForTesting injects an existing connection and prepares the schema.
func (db *MediaDB) SetSQLForTesting(ctx context.Context, sqlDB *sql.DB, opts ...Option) error {
	fresh := newMediaDB(opts...)
	db.clock = fresh.clock
	db.lockRetries = fresh.lockRetries
	db.retryDelay = fresh.retryDelay
	sqlDB.SetMaxOpenConns(1)
	return db.setSQL(ctx, sqlDB)
}

// SetDBPathForTesting sets the path reported by Path.
func (db *MediaDB) SetDBPathForTesting(path string) {
	db.path = path
}

func (db *MediaDB) setSQL(ctx context.Context, sqlDB *sql.DB) error {
	db.sql = sqlDB
	db.sqlx = sqlx.NewDb(sqlDB, driverName)

	if err := database.MigrateUp(sqlDB, migrationFiles, "migrations"); err != nil {
		return fmt.Errorf("failed to migrate catalog: %w", err)
	}
	for _, spec := range ftsTables {
		if _, err := sqlEnsureFTS(ctx, sqlDB, spec); err != nil {
			return err
		}
	}
	return nil
}

func (db *MediaDB) Path() string {
	return db.path
}

// Now is the catalog clock in unix seconds.
func (db *MediaDB) Now() int64 {
	return db.clock.Now().Unix()
}

func (db *MediaDB) Close() error {
	if db.sql == nil {
		return nil
	}
	if err := db.sql.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// UnsafeGetSQLDb exposes the raw connection for tests and reports.
func (db *MediaDB) UnsafeGetSQLDb() *sql.DB {
	return db.sql
}

func isLocked(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// retry runs op, backing off while sqlite reports the database busy or
// locked. Other errors return immediately.
func (db *MediaDB) retry(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = db.retryDelay
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		opErr := op()
		switch {
		case opErr == nil:
			return struct{}{}, nil
		case isLocked(opErr):
			log.Debug().Err(opErr).Msg("catalog locked, retrying")
			return struct{}{}, opErr
		default:
			return struct{}{}, backoff.Permanent(opErr)
		}
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(db.lockRetries)), //nolint:gosec // bounded by config validation
		backoff.WithMaxElapsedTime(maxLockRetryDelay),
	)
	if err != nil && isLocked(err) {
		return fmt.Errorf("%w: %w", database.ErrDatabaseLocked, err)
	}
	return err
}

// WithTx runs fn inside one transaction, committing if it returns nil. The
// whole transaction is retried when the database is locked, so fn must only
// touch the catalog.
func (db *MediaDB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if db.sql == nil {
		return database.ErrNullSQL
	}
	return db.retry(ctx, func() error {
		tx, err := db.sql.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		if err := fn(tx); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Warn().Err(rbErr).Msg("failed to rollback transaction")
			}
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}

func (db *MediaDB) Vacuum(ctx context.Context) error {
	if db.sql == nil {
		return database.ErrNullSQL
	}
	if _, err := db.sql.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close sql rows")
	}
}

func closeStmt(stmt *sql.Stmt) {
	if err := stmt.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close sql statement")
	}
}
