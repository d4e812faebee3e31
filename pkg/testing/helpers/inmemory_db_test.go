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
	"testing"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:paralleltest // goose keeps global state
func TestNewInMemoryMediaDB(t *testing.T) {
	mediaDB, cleanup := NewInMemoryMediaDB(t)
	defer cleanup()

	ctx := context.Background()
	id, err := mediaDB.UpsertMedia(ctx, &database.Media{Path: "/videos/a.mkv", Size: 100})
	require.NoError(t, err)
	assert.NotZero(t, id)

	m, err := mediaDB.FindMedia(ctx, "/videos/a.mkv")
	require.NoError(t, err)
	assert.Equal(t, int64(100), m.Size)
}

//nolint:paralleltest // goose keeps global state
func TestNewClockedMediaDB(t *testing.T) {
	mediaDB, _, cleanup := NewClockedMediaDB(t, 1_700_000_000)
	defer cleanup()

	assert.Equal(t, int64(1_700_000_000), mediaDB.Now())
}
