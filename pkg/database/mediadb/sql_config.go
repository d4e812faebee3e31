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
)

// sqlGetConfig returns the DBConfig value for name, "" when unset.
func sqlGetConfig(ctx context.Context, db querier, name string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, "SELECT Value FROM DBConfig WHERE Name = ?", name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get db config %s: %w", name, err)
	}
	return value, nil
}

func sqlSetConfig(ctx context.Context, db querier, name, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO DBConfig (Name, Value) VALUES (?, ?)
		ON CONFLICT (Name) DO UPDATE SET Value = excluded.Value`,
		name, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set db config %s: %w", name, err)
	}
	return nil
}

func (db *MediaDB) GetConfig(ctx context.Context, name string) (string, error) {
	return sqlGetConfig(ctx, db.sql, name)
}

func (db *MediaDB) SetConfig(ctx context.Context, name, value string) error {
	return db.retry(ctx, func() error {
		return sqlSetConfig(ctx, db.sql, name, value)
	})
}
