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
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// maxTextBytes caps how much of a document is indexed.
const maxTextBytes = 4 << 20

// probeText stores readable document text in the tags column. Binary
// formats (pdf, epub, ebooks) keep only their stat fields.
func (p *Prober) probeText(path string, m *database.Media) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md", ".html", ".htm":
	default:
		return nil
	}

	f, err := p.fs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open text file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Debug().Err(err).Str("path", path).Msg("failed to close text file")
		}
	}()
	r := io.LimitReader(f, maxTextBytes)

	if ext == ".html" || ext == ".htm" {
		title, text, err := htmlText(r)
		if err != nil {
			return fmt.Errorf("%w: invalid html: %w", ErrProbeFailed, err)
		}
		m.Title = helpers.FirstKnown(title, m.Title)
		m.Tags = text
		return nil
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read text file: %w", err)
	}
	m.Tags = helpers.CollapseSpaces(string(b))
	return nil
}

// htmlText returns the document title and its visible text with whitespace
// collapsed. Script and style bodies are skipped.
func htmlText(r io.Reader) (title, text string, err error) {
	z := html.NewTokenizer(r)
	var (
		sb      strings.Builder
		skip    int
		inTitle bool
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return strings.TrimSpace(title), helpers.CollapseSpaces(sb.String()), nil
			}
			return "", "", z.Err()
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "noscript":
				skip++
			case "title":
				inTitle = true
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "noscript":
				if skip > 0 {
					skip--
				}
			case "title":
				inTitle = false
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			t := string(z.Text())
			if inTitle {
				title += t
				continue
			}
			sb.WriteString(t)
			sb.WriteByte(' ')
		case html.SelfClosingTagToken, html.CommentToken, html.DoctypeToken:
		}
	}
}
