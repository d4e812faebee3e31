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

package extractors

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/shared/httpclient"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/testing/helpers"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/testing/mocks"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

//nolint:paralleltest // goose keeps global state
func TestDownloaderDirectAndExtractor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.mp4" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("video bytes"))
	}))
	defer srv.Close()

	db, cleanup := helpers.NewInMemoryMediaDB(t)
	defer cleanup()
	ctx := context.Background()

	direct := srv.URL + "/files/clip.mp4"
	missing := srv.URL + "/missing.mp4"
	page := "https://video.example/watch?v=1"
	for _, p := range []string{direct, missing, page, "/local/already.mkv"} {
		_, err := db.UpsertMedia(ctx, &database.Media{Path: p, Title: "t"})
		require.NoError(t, err)
	}

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Output", mock.Anything, "yt-dlp", hasArg(page)).Return([]byte("[info] x\n/dl/video/One.mkv\n"), nil)

	afs := afero.NewMemMapFs()
	hc := httpclient.NewClient(5*time.Second, httpclient.WithRetryMax(0))
	d := NewDownloader(db, afs, hc, NewYtDlp(cmd, ""), "/dl")

	rows := []database.Row{{"path": direct}, {"path": missing}, {"path": page}, {"path": "/local/already.mkv"}}
	counts, err := d.Download(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, DownloadCounts{Downloaded: 2, Failed: 1}, counts)

	data, err := afero.ReadFile(afs, "/dl/127.0.0.1/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "video bytes", string(data))

	got, err := db.FindMedia(ctx, "/dl/127.0.0.1/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, direct, got.Webpath)
	got, err = db.FindMedia(ctx, "/dl/video/One.mkv")
	require.NoError(t, err)
	assert.Equal(t, page, got.Webpath)

	_, err = db.FindMedia(ctx, missing)
	require.NoError(t, err, "failed downloads stay remote")
	cmd.AssertExpectations(t)
}

//nolint:paralleltest // goose keeps global state
func TestDownloaderCancelled(t *testing.T) {
	db, cleanup := helpers.NewInMemoryMediaDB(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewDownloader(db, afero.NewMemMapFs(), nil, NewYtDlp(&mocks.MockCommandExecutor{}, ""), "/dl")
	_, err := d.Download(ctx, []database.Row{{"path": "https://video.example/watch?v=1"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestIsDirect(t *testing.T) {
	t.Parallel()

	d := NewDownloader(nil, nil, nil, nil, "/dl")
	assert.True(t, d.isDirect("https://cdn.example/a/b.MP4?sig=1"))
	assert.True(t, d.isDirect("https://cdn.example/song.flac"))
	assert.False(t, d.isDirect("https://video.example/watch?v=1"))
	assert.False(t, d.isDirect("://bad"))
}
