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

package printer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	// FormatLines prints only the path of each row, one per line.
	FormatLines Format = "lines"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatCSV, FormatJSON, FormatYAML, FormatLines:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// TerminalWidth is the width to resize tables to when f is a terminal:
// $COLUMNS when set, otherwise 80. Pipes and files get 0, meaning no limit.
func TerminalWidth(f *os.File) int {
	fd := f.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return 0
	}
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 0 {
		return n
	}
	return 80
}

// Print writes t to w in format.
func Print(w io.Writer, t *Table, format Format) error {
	switch format {
	case FormatCSV:
		return printCSV(w, t)
	case FormatJSON:
		return writeJSON(w, records(t))
	case FormatYAML:
		return writeYAML(w, records(t))
	case FormatLines:
		return printLines(w, t)
	case FormatTable, "":
		return printTable(w, t)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func printTable(w io.Writer, t *Table) error {
	ws := t.widths()
	line := func(cells []string) string {
		var sb strings.Builder
		for c, cell := range cells {
			if c > 0 {
				sb.WriteString(columnGap)
			}
			if c == len(cells)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, ws[c]))
		}
		return strings.TrimRight(sb.String(), " ") + "\n"
	}

	if _, err := io.WriteString(w, line(t.Names)); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	for i := range t.Len() {
		if _, err := io.WriteString(w, line(t.Cells(i))); err != nil {
			return fmt.Errorf("failed to write table: %w", err)
		}
	}
	return nil
}

func printCSV(w io.Writer, t *Table) error {
	cw := gocsv.DefaultCSVWriter(w)
	if err := cw.Write(t.Names); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	for i := range t.Len() {
		if err := cw.Write(t.Cells(i)); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func records(t *Table) []map[string]any {
	out := make([]map[string]any, t.Len())
	for i := range out {
		out[i] = t.Record(i)
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to write yaml: %w", err)
	}
	return nil
}

func printLines(w io.Writer, t *Table) error {
	paths := t.Column("path")
	if paths == nil {
		return errors.New("no path column to print")
	}
	for _, p := range paths {
		if _, err := fmt.Fprintln(w, cellString(p)); err != nil {
			return fmt.Errorf("failed to write paths: %w", err)
		}
	}
	return nil
}
