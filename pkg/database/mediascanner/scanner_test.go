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

package mediascanner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/config"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/probe"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/testing/helpers"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/testing/mocks"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const scanStart = 1_700_000_000

func scanConfig() *config.Instance {
	return config.NewInMemory(config.Values{
		Scan: config.Scan{
			VideoExtensions: []string{".mp4", ".opus"},
			Threads:         3,
		},
	})
}

// statProbe builds records from the file's stat. Paths containing
// "corrupt" fail like an unparseable container.
func statProbe(afs afero.Fs) mocks.ProbeFunc {
	return func(_ context.Context, path string, _ probe.Profile) (database.Media, error) {
		if strings.Contains(path, "corrupt") {
			return database.Media{}, fmt.Errorf("%w: invalid data found", probe.ErrProbeFailed)
		}
		info, err := afs.Stat(path)
		if err != nil {
			return database.Media{}, database.ErrPathMissing
		}
		m := database.Media{
			Path:         path,
			Size:         info.Size(),
			TimeModified: info.ModTime().Unix(),
		}
		if filepath.Ext(path) == ".mp4" {
			m.Duration = 12
			m.SubtitleCount = 4
			m.VideoCount = 1
		}
		return m, nil
	}
}

func newStatProber(afs afero.Fs) *mocks.MockProber {
	p := &mocks.MockProber{}
	p.On("Probe", mock.Anything, mock.Anything, probe.ProfileVideo).Return(statProbe(afs))
	return p
}

func probedPaths(p *mocks.MockProber) []string {
	var out []string
	for _, c := range p.Calls {
		out = append(out, c.Arguments.String(1))
	}
	return out
}

func writeSample(t *testing.T, h *helpers.FSHelper, mtime time.Time) {
	t.Helper()
	require.NoError(t, h.CreateSizedFile("/data/test.mp4", 136057, mtime))
	require.NoError(t, h.CreateSizedFile("/data/test.opus", 4000, mtime))
	require.NoError(t, h.CreateSizedFile("/data/corrupt.mp4", 10, mtime))
}

//nolint:paralleltest // goose keeps global state
func TestScanFreshReconcileResurrect(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	db, clock, cleanup := helpers.NewClockedMediaDB(t, scanStart)
	defer cleanup()
	ctx := context.Background()

	h := helpers.NewMemoryFS()
	writeSample(t, h, time.Unix(scanStart-100, 0))
	prober := newStatProber(h.Fs)
	scanner := NewScanner(db, h.Fs, prober, scanConfig(), WithClock(clock))

	// fresh scan
	counts, err := scanner.Scan(ctx, "/data", probe.ProfileVideo)
	require.NoError(t, err)
	assert.Equal(t, database.ScanCounts{Added: 2, Errors: 1}, counts)

	mp4, err := db.FindMedia(ctx, "/data/test.mp4")
	require.NoError(t, err)
	assert.Equal(t, int64(12), mp4.Duration)
	assert.Equal(t, int64(136057), mp4.Size)
	assert.Equal(t, int64(4), mp4.SubtitleCount)
	assert.NotZero(t, mp4.PlaylistID)

	_, err = db.FindMedia(ctx, "/data/test.opus")
	require.NoError(t, err)
	_, err = db.FindMedia(ctx, "/data/corrupt.mp4")
	require.ErrorIs(t, err, database.ErrNoMediaFound)

	pl, err := db.FindPlaylist(ctx, "/data")
	require.NoError(t, err)
	assert.Equal(t, database.ExtractorLocal, pl.ExtractorKey)

	// reconciliation
	require.NoError(t, h.Fs.Remove("/data/test.opus"))
	clock.Advance(time.Hour)
	prober.Calls = nil

	counts, err = scanner.Scan(ctx, "/data", probe.ProfileVideo)
	require.NoError(t, err)
	assert.Equal(t, database.ScanCounts{Deleted: 1, Errors: 1}, counts)
	assert.NotContains(t, probedPaths(prober), "/data/test.mp4")

	opus, err := db.FindMedia(ctx, "/data/test.opus")
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Unix(), opus.TimeDeleted)

	unchanged, err := db.FindMedia(ctx, "/data/test.mp4")
	require.NoError(t, err)
	assert.Equal(t, mp4, unchanged)

	// resurrection
	restored := time.Unix(scanStart+7200, 0)
	require.NoError(t, h.CreateSizedFile("/data/test.opus", 5000, restored))
	clock.Advance(time.Hour)

	counts, err = scanner.Scan(ctx, "/data", probe.ProfileVideo)
	require.NoError(t, err)
	assert.Equal(t, database.ScanCounts{Resurrected: 1, Errors: 1}, counts)

	opus, err = db.FindMedia(ctx, "/data/test.opus")
	require.NoError(t, err)
	assert.Zero(t, opus.TimeDeleted)
	assert.Equal(t, restored.Unix(), opus.TimeModified)
	assert.Equal(t, int64(5000), opus.Size)
}

//nolint:paralleltest // goose keeps global state
func TestScanLeavesUnmountedRowsAlone(t *testing.T) {
	db, clock, cleanup := helpers.NewClockedMediaDB(t, scanStart)
	defer cleanup()
	ctx := context.Background()

	h := helpers.NewMemoryFS()
	require.NoError(t, h.CreateSizedFile("/data/usb/a.mp4", 10, time.Time{}))
	require.NoError(t, h.CreateSizedFile("/data/b.mp4", 10, time.Time{}))
	scanner := NewScanner(db, h.Fs, newStatProber(h.Fs), scanConfig(), WithClock(clock))

	_, err := scanner.Scan(ctx, "/data", probe.ProfileVideo)
	require.NoError(t, err)

	require.NoError(t, h.Fs.RemoveAll("/data/usb"))
	counts, err := scanner.Scan(ctx, "/data", probe.ProfileVideo)
	require.NoError(t, err)
	assert.Zero(t, counts.Deleted)

	a, err := db.FindMedia(ctx, "/data/usb/a.mp4")
	require.NoError(t, err)
	assert.Zero(t, a.TimeDeleted)
}

//nolint:paralleltest // goose keeps global state
func TestScanRootPrefixDoesNotLeak(t *testing.T) {
	db, clock, cleanup := helpers.NewClockedMediaDB(t, scanStart)
	defer cleanup()
	ctx := context.Background()

	h := helpers.NewMemoryFS()
	require.NoError(t, h.CreateSizedFile("/data/a.mp4", 10, time.Time{}))
	require.NoError(t, h.CreateSizedFile("/data2/b.mp4", 10, time.Time{}))
	scanner := NewScanner(db, h.Fs, newStatProber(h.Fs), scanConfig(), WithClock(clock))

	_, err := scanner.Scan(ctx, "/data2", probe.ProfileVideo)
	require.NoError(t, err)
	counts, err := scanner.Scan(ctx, "/data", probe.ProfileVideo)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Added)
	assert.Zero(t, counts.Deleted)
}

//nolint:paralleltest // goose keeps global state
func TestScanRootIsCaseSensitive(t *testing.T) {
	db, clock, cleanup := helpers.NewClockedMediaDB(t, scanStart)
	defer cleanup()
	ctx := context.Background()

	h := helpers.NewMemoryFS()
	require.NoError(t, h.CreateSizedFile("/data/movies/b.mp4", 10, time.Time{}))
	require.NoError(t, h.CreateSizedFile("/data/Movies/c.mp4", 10, time.Time{}))
	scanner := NewScanner(db, h.Fs, newStatProber(h.Fs), scanConfig(), WithClock(clock))

	_, err := scanner.Scan(ctx, "/data/movies", probe.ProfileVideo)
	require.NoError(t, err)
	counts, err := scanner.Scan(ctx, "/data/Movies", probe.ProfileVideo)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Added)
	assert.Zero(t, counts.Deleted)

	b, err := db.FindMedia(ctx, "/data/movies/b.mp4")
	require.NoError(t, err)
	assert.Zero(t, b.TimeDeleted)
}

//nolint:paralleltest // goose keeps global state
func TestScanCommitsInBatches(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	db, clock, cleanup := helpers.NewClockedMediaDB(t, scanStart)
	defer cleanup()
	ctx := context.Background()

	h := helpers.NewMemoryFS()
	for i := range 7 {
		require.NoError(t, h.CreateSizedFile(fmt.Sprintf("/data/%02d.mp4", i), 10+i, time.Time{}))
	}
	scanner := NewScanner(db, h.Fs, newStatProber(h.Fs), scanConfig(),
		WithClock(clock), WithBatchSize(2), WithThreads(4))

	counts, err := scanner.Scan(ctx, "/data", probe.ProfileVideo)
	require.NoError(t, err)
	assert.Equal(t, 7, counts.Added)

	stored, err := db.StoredFiles(ctx, "/data/")
	require.NoError(t, err)
	assert.Len(t, stored, 7)
}

//nolint:paralleltest // goose keeps global state
func TestScanCancelledSkipsDeletes(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	db, clock, cleanup := helpers.NewClockedMediaDB(t, scanStart)
	defer cleanup()

	h := helpers.NewMemoryFS()
	require.NoError(t, h.CreateSizedFile("/data/keep.mp4", 10, time.Time{}))
	require.NoError(t, h.CreateSizedFile("/data/gone.mp4", 10, time.Time{}))
	scanner := NewScanner(db, h.Fs, newStatProber(h.Fs), scanConfig(), WithClock(clock))
	_, err := scanner.Scan(context.Background(), "/data", probe.ProfileVideo)
	require.NoError(t, err)

	require.NoError(t, h.Fs.Remove("/data/gone.mp4"))
	require.NoError(t, h.CreateSizedFile("/data/new.mp4", 10, time.Time{}))

	// the probe of the new file is interrupted
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelling := &mocks.MockProber{}
	cancelling.On("Probe", mock.Anything, mock.Anything, probe.ProfileVideo).Return(
		mocks.ProbeFunc(func(pctx context.Context, _ string, _ probe.Profile) (database.Media, error) {
			cancel()
			<-pctx.Done()
			return database.Media{}, pctx.Err()
		}))
	interrupted := NewScanner(db, h.Fs, cancelling, scanConfig(), WithClock(clock))

	_, err = interrupted.Scan(ctx, "/data", probe.ProfileVideo)
	require.ErrorIs(t, err, context.Canceled)

	gone, err := db.FindMedia(context.Background(), "/data/gone.mp4")
	require.NoError(t, err)
	assert.Zero(t, gone.TimeDeleted)
	_, err = db.FindMedia(context.Background(), "/data/new.mp4")
	require.ErrorIs(t, err, database.ErrNoMediaFound)
}

//nolint:paralleltest // goose keeps global state
func TestScanAllSkipsMissingRoots(t *testing.T) {
	db, clock, cleanup := helpers.NewClockedMediaDB(t, scanStart)
	defer cleanup()

	h := helpers.NewMemoryFS()
	require.NoError(t, h.CreateSizedFile("/data/a.mp4", 10, time.Time{}))
	scanner := NewScanner(db, h.Fs, newStatProber(h.Fs), scanConfig(), WithClock(clock))

	counts, err := scanner.ScanAll(context.Background(), []string{"/missing", "/data"}, probe.ProfileVideo)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Added)
	assert.Equal(t, 1, counts.Errors)
}

func TestNewScannerUsesConfig(t *testing.T) {
	t.Parallel()

	s := NewScanner(nil, afero.NewMemMapFs(), &mocks.MockProber{}, scanConfig(),
		WithClock(clockwork.NewFakeClock()))
	assert.Equal(t, 3, s.threads)
	assert.Equal(t, DefaultBatchSize, s.batchSize)
	assert.Equal(t, []string{".mp4", ".opus"}, s.exts[probe.ProfileVideo])
	assert.Equal(t, []string{".torrent"}, s.exts[probe.ProfileTorrent])
	assert.Nil(t, s.exts[probe.ProfileFilesystem])
}
