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
	"strings"
	"testing"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLText(t *testing.T) {
	t.Parallel()

	doc := `<!doctype html><html><head><title> My Page </title>
<style>body { color: red }</style><script>var x = "<p>no</p>";</script></head>
<body><h1>Heading</h1><p>First   para<br/>line</p><!-- hidden --></body></html>`

	title, text, err := htmlText(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "My Page", title)
	assert.Equal(t, "Heading First para line", text)
}

func TestProbeText(t *testing.T) {
	t.Parallel()

	afs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(afs, "/docs/a.txt", []byte("  some\n\nnotes\there "), 0o644))
	require.NoError(t, afero.WriteFile(afs, "/docs/b.HTML", []byte("<title>B</title><p>body</p>"), 0o644))
	require.NoError(t, afero.WriteFile(afs, "/docs/c.pdf", []byte("%PDF-1.4"), 0o644))
	p := &Prober{fs: afs}

	var a database.Media
	require.NoError(t, p.probeText("/docs/a.txt", &a))
	assert.Equal(t, "some notes here", a.Tags)

	var b database.Media
	require.NoError(t, p.probeText("/docs/b.HTML", &b))
	assert.Equal(t, "B", b.Title)
	assert.Equal(t, "body", b.Tags)

	var c database.Media
	require.NoError(t, p.probeText("/docs/c.pdf", &c))
	assert.Empty(t, c.Tags)
}
