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

package helpers

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database/mediadb"
	"github.com/jonboulle/clockwork"
	_ "github.com/mattn/go-sqlite3"
)

// NewInMemoryMediaDB opens a migrated catalog in a temp file. Foreign keys
// are enabled so cascades behave as in production.
func NewInMemoryMediaDB(t *testing.T, opts ...mediadb.Option) (db *mediadb.MediaDB, cleanup func()) {
	t.Helper()

	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "medialib_test.db")

	sqlDB, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=ON&_busy_timeout=5000")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	db = &mediadb.MediaDB{}
	err = db.SetSQLForTesting(context.Background(), sqlDB, opts...)
	if err != nil {
		if closeErr := sqlDB.Close(); closeErr != nil {
			t.Errorf("Failed to close SQL database after setup error: %v", closeErr)
		}
		t.Fatalf("Failed to set up MediaDB for testing: %v", err)
	}
	db.SetDBPathForTesting(dbPath)

	cleanup = func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close MediaDB: %v", err)
		}
	}

	return db, cleanup
}

// NewClockedMediaDB is NewInMemoryMediaDB with a fake clock starting at
// unix second start.
func NewClockedMediaDB(t *testing.T, start int64) (*mediadb.MediaDB, *clockwork.FakeClock, func()) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Unix(start, 0))
	db, cleanup := NewInMemoryMediaDB(t, mediadb.WithClock(clock))
	return db, clock, cleanup
}
