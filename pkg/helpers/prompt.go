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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompter asks the user yes/no questions.
type Prompter interface {
	Confirm(label string, def bool) (bool, error)
}

// LinePrompter reads answers line by line from In and writes prompts to Out.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// NewStdinPrompter prompts on stderr so stdout stays clean for piping.
func NewStdinPrompter() *LinePrompter {
	return NewLinePrompter(os.Stdin, os.Stderr)
}

func (p *LinePrompter) Confirm(label string, def bool) (bool, error) {
	choices := "Y/n"
	if !def {
		choices = "y/N"
	}

	for {
		_, _ = fmt.Fprintf(p.out, "%s [%s] ", label, choices)
		s, err := p.in.ReadString('\n')
		s = strings.ToLower(strings.TrimSpace(s))
		switch {
		case s == "y" || s == "yes":
			return true, nil
		case s == "n" || s == "no":
			return false, nil
		case s == "" && err != nil:
			if errors.Is(err, io.EOF) {
				return def, nil
			}
			return def, fmt.Errorf("failed to read answer: %w", err)
		case s == "":
			return def, nil
		}
		if err != nil {
			return def, nil
		}
	}
}
