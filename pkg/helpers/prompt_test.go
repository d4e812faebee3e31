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

package helpers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinePrompter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		def      bool
		expected bool
	}{
		{name: "yes", input: "y\n", def: false, expected: true},
		{name: "no", input: "no\n", def: true, expected: false},
		{name: "empty takes default", input: "\n", def: true, expected: true},
		{name: "eof takes default", input: "", def: false, expected: false},
		{name: "retries on garbage", input: "maybe\nyes\n", def: false, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			p := NewLinePrompter(strings.NewReader(tt.input), &out)
			got, err := p.Confirm("Delete?", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Contains(t, out.String(), "Delete?")
		})
	}
}
