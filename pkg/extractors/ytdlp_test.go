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
	"slices"
	"testing"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const flatPlaylist = `{
	"_type": "playlist",
	"id": "PL1",
	"title": "My List",
	"uploader": "Up",
	"entries": [
		{"_type": "url", "url": "https://video.example/watch?v=1", "id": "1", "title": "One", "duration": 10},
		{"_type": "url", "id": "2", "title": "No URL"},
		{"_type": "url", "url": "https://video.example/watch?v=3", "id": "3", "title": "Three", "uploader": "Guest"}
	]
}`

func hasArg(arg string) any {
	return mock.MatchedBy(func(args []string) bool {
		return slices.Contains(args, arg)
	})
}

func TestYtDlpFetchPlaylist(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Output", mock.Anything, "yt-dlp", hasArg("--flat-playlist")).Return([]byte(flatPlaylist), nil)

	var got []Entry
	pl, err := NewYtDlp(cmd, "").Fetch(context.Background(), "https://video.example/list?id=PL1", Options{}, collect(&got))
	require.NoError(t, err)

	assert.Equal(t, "My List", pl.Title)
	assert.Equal(t, "Up", pl.Uploader)
	assert.Equal(t, "PL1", pl.ExtractorPlaylistID)
	assert.Equal(t, database.ExtractorYtDlp, pl.ExtractorKey)

	require.Len(t, got, 2)
	assert.Equal(t, "https://video.example/watch?v=1", got[0].Media.Path)
	assert.Equal(t, "Up", got[0].Media.Uploader)
	assert.Equal(t, int64(10), got[0].Media.Duration)
	assert.Equal(t, "Guest", got[1].Media.Uploader)
	cmd.AssertExpectations(t)
}

func TestYtDlpStopsAtKnownItem(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Output", mock.Anything, "yt-dlp", mock.Anything).Return([]byte(flatPlaylist), nil)

	opts := Options{IsKnown: func(_ context.Context, path string) (bool, error) {
		return path == "https://video.example/watch?v=3", nil
	}}
	var got []Entry
	_, err := NewYtDlp(cmd, "").Fetch(context.Background(), "https://video.example/list", opts, collect(&got))
	require.ErrorIs(t, err, ErrKnownItemReached)
	assert.Len(t, got, 1)
}

func TestYtDlpJSONLines(t *testing.T) {
	t.Parallel()

	out := `{"webpage_url": "https://video.example/a", "id": "a"}
{"webpage_url": "https://video.example/b", "id": "b"}
`
	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Output", mock.Anything, "/opt/yt-dlp", mock.Anything).Return([]byte(out), nil)

	var got []Entry
	_, err := NewYtDlp(cmd, "/opt/yt-dlp").Fetch(context.Background(), "https://video.example/a", Options{}, collect(&got))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://video.example/a", "https://video.example/b"}, paths(got))
}

func TestYtDlpEncodingRetry(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	noEncoding := mock.MatchedBy(func(args []string) bool { return !slices.Contains(args, "--encoding") })
	cmd.On("Output", mock.Anything, "yt-dlp", noEncoding).
		Return(nil, errors.New("UnicodeEncodeError: 'charmap' codec can't encode character")).Once()
	cmd.On("Output", mock.Anything, "yt-dlp", hasArg("--encoding")).Return([]byte(flatPlaylist), nil).Once()

	y := NewYtDlp(cmd, "")
	var got []Entry
	_, err := WithEncodingRetry(y.Fetch)(context.Background(), "https://video.example/list", Options{}, collect(&got))
	require.NoError(t, err)
	assert.Len(t, got, 2)
	cmd.AssertExpectations(t)
}

func TestYtDlpErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want error
		name string
	}{
		{name: "blocked", err: errors.New("ERROR: HTTP Error 403: Forbidden"), want: ErrExtractorBlocked},
		{name: "encoding", err: errors.New("UnicodeDecodeError"), want: ErrEncoding},
		{name: "other", err: errors.New("exit status 1"), want: ErrHTTP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cmd := &mocks.MockCommandExecutor{}
			cmd.On("Output", mock.Anything, "yt-dlp", mock.Anything).Return(nil, tt.err)
			_, err := NewYtDlp(cmd, "").Fetch(context.Background(), "https://video.example/x", Options{}, collect(new([]Entry)))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestYtDlpEmptyOutput(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Output", mock.Anything, "yt-dlp", mock.Anything).Return([]byte("\n"), nil)
	_, err := NewYtDlp(cmd, "").Fetch(context.Background(), "https://video.example/x", Options{}, collect(new([]Entry)))
	require.Error(t, err)
}

func TestYtDlpDownload(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Output", mock.Anything, "yt-dlp", hasArg("after_move:filepath")).
		Return([]byte("/dl/YouTube/Up/One_[1].mp4\n\n"), nil)

	path, err := NewYtDlp(cmd, "").Download(context.Background(), "https://video.example/watch?v=1", "/dl")
	require.NoError(t, err)
	assert.Equal(t, "/dl/YouTube/Up/One_[1].mp4", path)

	args, ok := cmd.Calls[0].Arguments.Get(2).([]string)
	require.True(t, ok)
	assert.Equal(t, "https://video.example/watch?v=1", args[len(args)-1])
}

func TestYtDlpDownloadNoPath(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Output", mock.Anything, "yt-dlp", mock.Anything).Return([]byte(""), nil)
	_, err := NewYtDlp(cmd, "").Download(context.Background(), "https://video.example/watch?v=1", "/dl")
	require.Error(t, err)
}
