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

package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/config"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers/command"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ErrProbeFailed means the probe exited non-zero, timed out or produced
// output that could not be parsed.
var ErrProbeFailed = errors.New("probe failed")

// Prober turns a path into a catalog record. It is safe for concurrent use.
type Prober struct {
	exec             command.Executor
	fs               afero.Fs
	trasher          *helpers.Trasher
	ffprobe          string
	ffmpeg           string
	tempDir          string
	fastTimeout      time.Duration
	slowTimeout      time.Duration
	slow             bool
	deleteUnplayable bool
}

type Option func(*Prober)

// WithSlow uses the long probe timeout, for network mounts and huge files.
func WithSlow(slow bool) Option {
	return func(p *Prober) {
		p.slow = slow
	}
}

// WithTimeouts overrides the configured probe timeouts.
func WithTimeouts(fast, slow time.Duration) Option {
	return func(p *Prober) {
		p.fastTimeout = fast
		p.slowTimeout = slow
	}
}

func WithTempDir(dir string) Option {
	return func(p *Prober) {
		p.tempDir = dir
	}
}

func NewProber(
	cfg *config.Instance,
	exec command.Executor,
	afs afero.Fs,
	trasher *helpers.Trasher,
	opts ...Option,
) *Prober {
	p := &Prober{
		exec:             exec,
		fs:               afs,
		trasher:          trasher,
		ffprobe:          cfg.FFProbeBinary(),
		ffmpeg:           cfg.FFmpegBinary(),
		tempDir:          os.TempDir(),
		fastTimeout:      cfg.ProbeTimeout(false),
		slowTimeout:      cfg.ProbeTimeout(true),
		deleteUnplayable: cfg.DeleteUnplayable(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Prober) timeout() time.Duration {
	if p.slow {
		return p.slowTimeout
	}
	return p.fastTimeout
}

// Probe stats path and fills in the metadata its profile can provide. A
// path that no longer exists returns database.ErrPathMissing. Unparseable
// files return ErrProbeFailed and, with delete_unplayable set, are trashed.
func (p *Prober) Probe(ctx context.Context, path string, profile Profile) (database.Media, error) {
	info, err := p.fs.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return database.Media{}, fmt.Errorf("%w: %s", database.ErrPathMissing, path)
	} else if err != nil {
		return database.Media{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	m := database.Media{
		Path:         path,
		Size:         info.Size(),
		TimeCreated:  info.ModTime().Unix(),
		TimeModified: info.ModTime().Unix(),
		IsDir:        info.IsDir(),
	}
	p.applyStat(path, &m)

	switch profile {
	case ProfileFilesystem:
		return m, nil
	case ProfileTorrent:
		err = p.probeTorrentFile(path, &m)
	case ProfileText:
		err = p.probeText(path, &m)
	case ProfileAudio, ProfileVideo, ProfileImage:
		err = p.probeStreams(ctx, path, profile, &m)
	default:
		return database.Media{}, fmt.Errorf("unknown profile: %s", profile)
	}
	if err != nil {
		if errors.Is(err, ErrProbeFailed) {
			p.unplayable(ctx, path, err)
		}
		return database.Media{}, err
	}
	return m, nil
}

// applyStat reads ctime and allocated blocks, which afero does not expose.
func (p *Prober) applyStat(path string, m *database.Media) {
	if _, ok := p.fs.(*afero.OsFs); !ok {
		return
	}
	ctime, blocks, ok := statBlocks(path)
	if !ok {
		return
	}
	if ctime > 0 {
		m.TimeCreated = ctime
	}
	if m.Size > 0 && !m.IsDir {
		m.Sparseness = float64(blocks*512) / float64(m.Size)
	}
}

func (p *Prober) probeStreams(ctx context.Context, path string, profile Profile, m *database.Media) error {
	pctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	result, err := p.runFFProbe(pctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("probe cancelled: %w", ctx.Err())
		}
		if errors.Is(pctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: timed out after %s", ErrProbeFailed, p.timeout())
		}
		return err
	}
	result.apply(m)

	switch profile {
	case ProfileVideo:
		if subs := result.textSubtitles(); len(subs) > 0 {
			m.Captions = p.extractCaptions(pctx, path, subs)
			m.Tags = captionText(m.Captions)
		}
	case ProfileAudio:
		md, err := readAudioTags(p.fs, path)
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("no embedded audio tags")
		} else {
			mergeAudioTags(m, md)
		}
	case ProfileImage, ProfileText, ProfileFilesystem, ProfileTorrent:
	}
	return nil
}

func (p *Prober) probeTorrentFile(path string, m *database.Media) error {
	files, err := probeTorrent(p.fs, path, m)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}
	extra, err := json.Marshal(map[string]any{"files": files})
	if err != nil {
		return fmt.Errorf("failed to encode torrent files: %w", err)
	}
	m.Extra = string(extra)
	return nil
}

func (p *Prober) unplayable(ctx context.Context, path string, cause error) {
	if !p.deleteUnplayable || p.trasher == nil {
		return
	}
	if err := p.trasher.Trash(ctx, path); err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to trash unplayable file")
		return
	}
	log.Warn().Err(cause).Str("path", path).Msg("trashed unplayable file")
}
