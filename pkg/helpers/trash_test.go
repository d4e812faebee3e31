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

package helpers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/testing/mocks"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTrashUsesCommand(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/media/a.mkv", []byte("x"), 0o644))
	exec := &mocks.MockCommandExecutor{}
	exec.On("Run", mock.Anything, "trash-put", []string{"/media/a.mkv"}).Return(nil)

	tr := helpers.NewTrasher(fs, exec, "trash-put")
	require.NoError(t, tr.Trash(context.Background(), "/media/a.mkv"))

	exec.AssertExpectations(t)
	// the command owns removal, the in-memory file is untouched
	exists, err := afero.Exists(fs, "/media/a.mkv")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestTrashFallsBackToUnlink(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/media/a.mkv", []byte("x"), 0o644))
	exec := &mocks.MockCommandExecutor{}
	exec.On("Run", mock.Anything, "trash-put", mock.Anything).Return(errors.New("not installed"))

	tr := helpers.NewTrasher(fs, exec, "trash-put")
	require.NoError(t, tr.Trash(context.Background(), "/media/a.mkv"))

	exists, err := afero.Exists(fs, "/media/a.mkv")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTrashNetworkPathsAreUnlinked(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/net/nas/a.mkv", []byte("x"), 0o644))
	exec := &mocks.MockCommandExecutor{}

	tr := helpers.NewTrasher(fs, exec, "trash-put")
	require.NoError(t, tr.Trash(context.Background(), "/net/nas/a.mkv"))

	exec.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
	exists, err := afero.Exists(fs, "/net/nas/a.mkv")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTrashMissingFile(t *testing.T) {
	t.Parallel()

	tr := helpers.NewTrasher(afero.NewMemMapFs(), &mocks.MockCommandExecutor{}, "trash-put")
	require.NoError(t, tr.Trash(context.Background(), "/gone.mkv"))
}
