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

package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return NewClient(5*time.Second, WithRetryWait(time.Millisecond, 5*time.Millisecond))
}

func TestGetBodyRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, final, err := newTestClient().GetBody(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, srv.URL, final)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetBodyStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, _, err := newTestClient().GetBody(context.Background(), srv.URL+"/missing")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestGetBodyGivesUpAfterRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, WithRetryMax(1), WithRetryWait(time.Millisecond, time.Millisecond))
	_, _, err := c.GetBody(context.Background(), srv.URL)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestResolveFollowsRedirects(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/long/path", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/long/path", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	final, err := newTestClient().Resolve(context.Background(), srv.URL+"/short")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/long/path", final)
}

func TestDownloadFile(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("video bytes"))
	}))
	defer srv.Close()

	afs := afero.NewMemMapFs()
	err := newTestClient().DownloadFile(context.Background(), DownloadFileArgs{
		Fs:         afs,
		URL:        srv.URL + "/v.mp4",
		OutputPath: "/dl/v.mp4",
		TempPath:   "/dl/v.mp4.part",
	})
	require.NoError(t, err)

	b, err := afero.ReadFile(afs, "/dl/v.mp4")
	require.NoError(t, err)
	assert.Equal(t, "video bytes", string(b))
	exists, err := afero.Exists(afs, "/dl/v.mp4.part")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDownloadFileBadStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	afs := afero.NewMemMapFs()
	err := newTestClient().DownloadFile(context.Background(), DownloadFileArgs{
		Fs: afs, URL: srv.URL, OutputPath: "/dl/x",
	})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	exists, err := afero.Exists(afs, "/dl/x")
	require.NoError(t, err)
	assert.False(t, exists)
}
