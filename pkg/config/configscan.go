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

package config

import (
	"runtime"
	"slices"
	"time"
)

const (
	DefaultProbeTimeout     = 70 * time.Second
	DefaultSlowProbeTimeout = 350 * time.Second
	maxProbeThreads         = 8
)

var (
	DefaultVideoExtensions = []string{
		".mp4", ".mkv", ".webm", ".avi", ".mov", ".m4v", ".wmv", ".flv", ".mpg", ".mpeg", ".ts", ".ogv", ".3gp",
	}
	DefaultAudioExtensions = []string{
		".mp3", ".opus", ".ogg", ".flac", ".m4a", ".aac", ".wav", ".wma", ".alac", ".aiff", ".ape", ".mka",
	}
	DefaultImageExtensions = []string{
		".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tiff", ".avif", ".heic",
	}
	DefaultTextExtensions = []string{
		".txt", ".md", ".epub", ".pdf", ".html", ".htm", ".mobi", ".azw3",
	}
)

type Scan struct {
	DeleteUnplayable bool     `toml:"delete_unplayable"`
	Include          []string `toml:"include,omitempty,multiline"`
	Exclude          []string `toml:"exclude,omitempty,multiline"`
	VideoExtensions  []string `toml:"video_extensions,omitempty,multiline"`
	AudioExtensions  []string `toml:"audio_extensions,omitempty,multiline"`
	ImageExtensions  []string `toml:"image_extensions,omitempty,multiline"`
	TextExtensions   []string `toml:"text_extensions,omitempty,multiline"`
	Threads          int      `toml:"threads,omitempty" validate:"omitempty,min=1,max=256"`
	ProbeTimeout     int      `toml:"probe_timeout,omitempty" validate:"omitempty,min=1"`
	SlowProbeTimeout int      `toml:"slow_probe_timeout,omitempty" validate:"omitempty,min=1"`
	WatchQuiet       int      `toml:"watch_quiet,omitempty" validate:"omitempty,min=1"`
	FFProbe          string   `toml:"ffprobe,omitempty"`
	FFmpeg           string   `toml:"ffmpeg,omitempty"`
}

// ProbeThreads is the probe pool size, min(CPU, 8) unless configured.
func (c *Instance) ProbeThreads() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Scan.Threads > 0 {
		return c.vals.Scan.Threads
	}
	return min(runtime.NumCPU(), maxProbeThreads)
}

func (c *Instance) ProbeTimeout(slow bool) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if slow {
		if c.vals.Scan.SlowProbeTimeout > 0 {
			return time.Duration(c.vals.Scan.SlowProbeTimeout) * time.Second
		}
		return DefaultSlowProbeTimeout
	}
	if c.vals.Scan.ProbeTimeout > 0 {
		return time.Duration(c.vals.Scan.ProbeTimeout) * time.Second
	}
	return DefaultProbeTimeout
}

func (c *Instance) DeleteUnplayable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Scan.DeleteUnplayable
}

func (c *Instance) SetDeleteUnplayable(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Scan.DeleteUnplayable = enabled
}

func (c *Instance) ScanInclude() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.vals.Scan.Include)
}

func (c *Instance) ScanExclude() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.vals.Scan.Exclude)
}

// Extensions returns the file extensions scanned for a profile. The
// filesystem profile has no extension filter and returns nil.
func (c *Instance) Extensions(profile string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pick := func(configured, fallback []string) []string {
		if len(configured) > 0 {
			return slices.Clone(configured)
		}
		return slices.Clone(fallback)
	}
	switch profile {
	case "video":
		return pick(c.vals.Scan.VideoExtensions, DefaultVideoExtensions)
	case "audio":
		return pick(c.vals.Scan.AudioExtensions, DefaultAudioExtensions)
	case "image":
		return pick(c.vals.Scan.ImageExtensions, DefaultImageExtensions)
	case "text":
		return pick(c.vals.Scan.TextExtensions, DefaultTextExtensions)
	case "torrent":
		return []string{".torrent"}
	default:
		return nil
	}
}

// WatchQuiet is how long a watched root must be quiet before it is rescanned.
func (c *Instance) WatchQuiet() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Scan.WatchQuiet > 0 {
		return time.Duration(c.vals.Scan.WatchQuiet) * time.Second
	}
	return 2 * time.Second
}

func (c *Instance) FFProbeBinary() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Scan.FFProbe == "" {
		return "ffprobe"
	}
	return c.vals.Scan.FFProbe
}

func (c *Instance) FFmpegBinary() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Scan.FFmpeg == "" {
		return "ffmpeg"
	}
	return c.vals.Scan.FFmpeg
}
