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
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers/command"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
)

// downloadTemplate names downloaded files after their extractor and id so
// reruns land on the same path.
const downloadTemplate = "%(extractor_key)s/%(uploader,uploader_id|Unknown)s/%(title).120B_[%(id)s].%(ext)s"

// YtDlp runs the yt-dlp binary for every site it supports.
type YtDlp struct {
	exec   command.Executor
	binary string
}

var _ Extractor = (*YtDlp)(nil)

func NewYtDlp(executor command.Executor, binary string) *YtDlp {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &YtDlp{exec: executor, binary: binary}
}

func (*YtDlp) Key() string {
	return database.ExtractorYtDlp
}

func (*YtDlp) Match(rawURL string) bool {
	return database.IsURL(rawURL)
}

type ytdlpPlaylist struct {
	ID       string
	Title    string
	Uploader string
	Channel  string
}

// Fetch lists the playlist with --flat-playlist and emits its entries in
// playlist order. A URL that is a single video yields one entry.
func (y *YtDlp) Fetch(
	ctx context.Context,
	rawURL string,
	opts Options,
	emit EmitFunc,
) (database.Playlist, error) {
	pl := database.Playlist{Path: rawURL, ExtractorKey: y.Key()}

	args := []string{"--flat-playlist", "--dump-single-json", "--no-warnings", "--ignore-errors"}
	if opts.ForceUTF8 {
		args = append(args, "--encoding", "utf-8")
	}
	args = append(args, "--", rawURL)
	out, err := y.exec.Output(ctx, y.binary, args...)
	if err != nil {
		return pl, y.wrapError(err)
	}

	entries, info, err := parseYtDlpOutput(out)
	if err != nil {
		return pl, err
	}
	pl.Title = info.Title
	pl.Uploader = info.Uploader
	if pl.Uploader == "" {
		pl.Uploader = info.Channel
	}
	pl.ExtractorPlaylistID = info.ID

	for i, raw := range entries {
		if _, ok := raw["uploader"]; !ok && pl.Uploader != "" {
			raw["playlist_uploader"] = pl.Uploader
		}
		m, err := Consolidate(raw)
		if err != nil {
			log.Warn().Err(err).Str("playlist", rawURL).Int("entry", i).Msg("skipping extractor entry")
			continue
		}
		if err := checkKnown(ctx, opts, m.Path); err != nil {
			return pl, err
		}
		if err := emit(ctx, Entry{Media: m}); err != nil {
			return pl, err
		}
	}
	return pl, nil
}

// parseYtDlpOutput accepts a single playlist object or one JSON object per
// line, as --dump-json prints.
func parseYtDlpOutput(out []byte) ([]map[string]any, ytdlpPlaylist, error) {
	var info ytdlpPlaylist
	trimmed := bytes.TrimSpace(out)
	if len(trimmed) == 0 {
		return nil, info, fmt.Errorf("%w: empty extractor output", ErrHTTP)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var first map[string]any
	if err := dec.Decode(&first); err != nil {
		return nil, info, fmt.Errorf("failed to parse extractor output: %w", err)
	}

	if typ, _ := first["_type"].(string); typ == "playlist" {
		info.ID = cast.ToString(first["id"])
		info.Title = cast.ToString(first["title"])
		info.Uploader = cast.ToString(first["uploader"])
		info.Channel = cast.ToString(first["channel"])
		raw, _ := first["entries"].([]any)
		entries := make([]map[string]any, 0, len(raw))
		for _, e := range raw {
			if em, ok := e.(map[string]any); ok {
				entries = append(entries, em)
			}
		}
		return entries, info, nil
	}

	entries := []map[string]any{first}
	for dec.More() {
		var next map[string]any
		if err := dec.Decode(&next); err != nil {
			return entries, info, fmt.Errorf("failed to parse extractor output: %w", err)
		}
		entries = append(entries, next)
	}
	return entries, info, nil
}

func (y *YtDlp) wrapError(err error) error {
	lower := strings.ToLower(exitStderr(err) + " " + err.Error())
	switch {
	case strings.Contains(lower, "unicode") || strings.Contains(lower, "codec can't"):
		return fmt.Errorf("%w: %w", ErrEncoding, err)
	case strings.Contains(lower, "http error 403") || strings.Contains(lower, "http error 429"):
		return fmt.Errorf("%w: %w", ErrExtractorBlocked, err)
	case command.IsNotFound(err):
		return fmt.Errorf("%s not installed: %w", y.binary, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrHTTP, y.binary, err)
	}
}

// exitStderr returns the stderr Output captured from a failed command.
func exitStderr(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return string(exitErr.Stderr)
	}
	return ""
}

// Download fetches rawURL into dir and returns the path yt-dlp wrote.
func (y *YtDlp) Download(ctx context.Context, rawURL, dir string) (string, error) {
	out, err := y.exec.Output(ctx, y.binary,
		"--no-simulate",
		"--no-progress",
		"--no-warnings",
		"--print", "after_move:filepath",
		"-o", filepath.Join(dir, downloadTemplate),
		"--", rawURL,
	)
	if err != nil {
		return "", y.wrapError(err)
	}
	var path string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			path = line
		}
	}
	if path == "" {
		return "", fmt.Errorf("%s printed no file path for %s", y.binary, rawURL)
	}
	return path, nil
}
