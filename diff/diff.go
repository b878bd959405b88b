// Package diff computes minimal row-major change runs between two
// buffers, the input the presenter turns into terminal bytes.
package diff

import (
	"errors"
	"slices"

	"github.com/frankentui/frankentui/buffer"
	"github.com/frankentui/frankentui/cell"
)

// ErrDimensionMismatch is returned by Compute when old and new have
// different dimensions. Callers must rebuild from scratch in that case
// (treat every cell as changed) rather than diffing.
var ErrDimensionMismatch = errors.New("diff: buffer dimensions do not match")

// Run is a half-open horizontal range [X0, X1) on row Y where new differs
// from old. Runs on one row are ordered by X0; rows are visited top to
// bottom.
type Run struct {
	Y, X0, X1 int
}

// Compute scans old and new row-major and returns the ordered list of
// change runs. Requires equal dimensions; use ErrDimensionMismatch to
// detect a resize race and rebuild instead of diffing.
func Compute(old, new *buffer.Buffer) ([]Run, error) {
	if old.Width() != new.Width() || old.Height() != new.Height() {
		return nil, ErrDimensionMismatch
	}

	var runs []Run
	for y := 0; y < new.Height(); y++ {
		oldRow := old.Row(y)
		newRow := new.Row(y)
		if slices.Equal(oldRow, newRow) {
			continue
		}
		runs = append(runs, scanRow(y, oldRow, newRow)...)
	}
	return runs, nil
}

// scanRow finds contiguous unequal-cell runs on one row, left to right.
// Cells are compared with the branchless bit-equal predicate; a gap of at
// least one equal cell terminates the current run. Wide-glyph
// continuation cells participate like any other cell, so changing a wide
// glyph always yields a run spanning both its columns because the
// continuation marker differs alongside the lead cell.
func scanRow(y int, oldRow, newRow []cell.Cell) []Run {
	var runs []Run
	inRun := false
	start := 0
	for x := range newRow {
		if cell.BitEqual(oldRow[x], newRow[x]) {
			if inRun {
				runs = append(runs, Run{Y: y, X0: start, X1: x})
				inRun = false
			}
			continue
		}
		if !inRun {
			inRun = true
			start = x
		}
	}
	if inRun {
		runs = append(runs, Run{Y: y, X0: start, X1: len(newRow)})
	}
	return runs
}
