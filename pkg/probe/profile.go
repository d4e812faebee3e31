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
	"fmt"
	"strings"
)

// Profile selects which extractors run for a file.
type Profile string

const (
	ProfileAudio      Profile = "audio"
	ProfileVideo      Profile = "video"
	ProfileImage      Profile = "image"
	ProfileText       Profile = "text"
	ProfileFilesystem Profile = "filesystem"
	ProfileTorrent    Profile = "torrent"
)

var Profiles = []Profile{
	ProfileAudio, ProfileVideo, ProfileImage, ProfileText, ProfileFilesystem, ProfileTorrent,
}

func ParseProfile(s string) (Profile, error) {
	p := Profile(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Profiles {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown scan profile: %q", s)
}

// usesFFProbe reports whether the profile runs the external probe.
func (p Profile) usesFFProbe() bool {
	return p == ProfileAudio || p == ProfileVideo || p == ProfileImage
}

