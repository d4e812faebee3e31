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

package mediascanner

import (
	"context"
	"fmt"
	"slices"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/spf13/afero"
)

// FoundFile is a walker hit with the stat fields used to detect changes.
type FoundFile struct {
	Path         string
	Size         int64
	TimeModified int64
}

// Plan is the difference between one scan and the stored rows under its
// root.
type Plan struct {
	// Add are paths never seen before.
	Add []string
	// Update are live rows whose size or mtime changed.
	Update []string
	// Resurrect are tombstoned rows whose path is back on disk.
	Resurrect []string
	// Delete are live rows missing from the scan whose parent still exists.
	Delete []string
	// Unmounted are missing rows left alone because their parent is gone.
	Unmounted int
}

// Probe lists every path that has to go through the prober, in a stable
// order.
func (p *Plan) Probe() []string {
	out := make([]string, 0, len(p.Add)+len(p.Update)+len(p.Resurrect))
	out = append(out, p.Add...)
	out = append(out, p.Update...)
	out = append(out, p.Resurrect...)
	return out
}

// Reconcile compares found against the rows stored under root.
func Reconcile(
	ctx context.Context,
	db database.CatalogDBI,
	afs afero.Fs,
	root string,
	found []FoundFile,
) (Plan, error) {
	stored, err := db.StoredFiles(ctx, root)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to load stored files: %w", err)
	}
	return diff(afs, stored, found), nil
}

func diff(afs afero.Fs, stored []database.StoredFile, found []FoundFile) Plan {
	var plan Plan

	old := make(map[string]database.StoredFile, len(stored))
	for _, s := range stored {
		old[s.Path] = s
	}
	seen := make(map[string]struct{}, len(found))

	for _, f := range found {
		seen[f.Path] = struct{}{}
		s, ok := old[f.Path]
		switch {
		case !ok:
			plan.Add = append(plan.Add, f.Path)
		case s.TimeDeleted != 0:
			plan.Resurrect = append(plan.Resurrect, f.Path)
		case s.Size != f.Size || s.TimeModified != f.TimeModified:
			plan.Update = append(plan.Update, f.Path)
		}
	}

	for _, s := range stored {
		if s.TimeDeleted != 0 {
			continue
		}
		if _, ok := seen[s.Path]; ok {
			continue
		}
		if !helpers.ParentExists(afs, s.Path) {
			plan.Unmounted++
			continue
		}
		plan.Delete = append(plan.Delete, s.Path)
	}

	slices.Sort(plan.Add)
	slices.Sort(plan.Update)
	slices.Sort(plan.Resurrect)
	slices.Sort(plan.Delete)
	return plan
}
