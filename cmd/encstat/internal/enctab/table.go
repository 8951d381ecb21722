// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enctab

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/vcodec-lab/encperf/encmath"
	"github.com/vcodec-lab/encperf/encproc"
	"github.com/vcodec-lab/encperf/encunit"
)

// A Table summarizes and compares encoding measurements in a 2D
// grid. Each cell summarizes the values with identical row and column
// Configs. Comparisons are done within each row between the first
// column and any remaining columns.
type Table struct {
	// Opts is the configuration options for this table.
	Opts TableOpts

	// Unit is the unit of all values in this Table.
	Unit string

	// Rows and Cols give the sequence of row and column Configs
	// in this table. All row Configs have the same schema and all
	// col Configs have the same schema.
	Rows, Cols []encproc.Config

	// Cells is the cells in the body of this table. Not every
	// (row, col) pair need be present.
	Cells map[TableKey]*TableCell

	// Summary is the final row of this table, keyed by Cols.
	Summary map[encproc.Config]*TableSummary

	// SummaryLabel is the label for the summary row.
	SummaryLabel string
}

// TableKey is a map key used to index a single cell in a Table.
type TableKey struct {
	Row, Col encproc.Config
}

// TableCell is a single cell in a Table.
type TableCell struct {
	// Values is the set of measurements in this cell.
	Values []float64

	// Warnings is a list of warnings about the values in this
	// cell, such as runs that differ in residue keys.
	Warnings []error

	// Summary is the summary of Values.
	Summary encmath.Summary

	// Baseline is the cell in the first column of this cell's
	// row, or nil if there is no comparison.
	Baseline *TableCell

	// Comparison is the comparison with the Baseline cell. If
	// Baseline is nil, this value is meaningless.
	Comparison encmath.Comparison
}

// TableSummary summarizes a column of a Table.
type TableSummary struct {
	// HasSummary indicates that Summary is valid.
	HasSummary bool
	// Summary is the geomean of the cell summaries in this
	// column.
	Summary float64

	// HasRatio indicates that Ratio is valid.
	HasRatio bool
	// Ratio is the geomean of the ratios of this column's cells
	// to their baselines.
	Ratio float64

	// Warnings is a list of warnings for this summary cell.
	Warnings []error
}

// footnotes collects warnings into numbered footnotes.
type footnotes struct {
	list []string
	set  map[string]int
}

// mark returns the footnote markers for msgs, allocating new
// footnotes as needed.
func (f *footnotes) mark(msgs ...[]error) string {
	if f.set == nil {
		f.set = make(map[string]int)
	}
	var marks []string
	for _, msgs1 := range msgs {
		for _, msg := range msgs1 {
			s := msg.Error()
			i, ok := f.set[s]
			if !ok {
				i = len(f.list)
				f.set[s] = i
				f.list = append(f.list, s)
			}
			marks = append(marks, superscript(i+1))
		}
	}
	return strings.Join(marks, " ")
}

// A grid assembles the rows of a rendered table. After the label
// column, each column Config occupies center cells, followed by delta
// cells for the comparison against the first column.
type grid struct {
	center, delta int
	row           []string
}

// start returns the index of the first cell of column config col.
func (g *grid) start(col int) int {
	if col == 0 {
		return 1
	}
	return 1 + g.center + (col-1)*(g.center+g.delta)
}

// pad fills the row with empty cells up to index i.
func (g *grid) pad(i int) {
	for len(g.row) < i {
		g.row = append(g.row, "")
	}
}

// at moves to the first cell of column config col.
func (g *grid) at(col int) *grid {
	g.pad(g.start(col))
	return g
}

func (g *grid) add(cells ...string) {
	g.row = append(g.row, cells...)
}

// next returns the finished row and starts a new one. The returned
// slice is only valid until the next call to add.
func (g *grid) next() []string {
	row := g.row
	g.row = g.row[:0]
	return row
}

func withNote(s, note string) string {
	if note == "" {
		return s
	}
	return s + " " + note
}

func formatRatio(s *TableSummary) string {
	if !s.HasRatio {
		return "?"
	}
	return fmt.Sprintf("%+.2f%%", (s.Ratio-1)*100)
}

// ToText renders t to a textual representation, assuming a
// fixed-width font.
func (t *Table) ToText(w io.Writer) error {
	// center: <center ± CI notes>; delta: <P%> <(p=0.PPP n=N) notes>
	g := &grid{center: 1, delta: 2}
	width := g.start(len(t.Cols))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	emit := func() {
		g.pad(width)
		fmt.Fprintln(tw, strings.Join(g.next(), "\t"))
	}
	var notes footnotes

	// Spanning header values sit over the first column of their
	// span.
	for _, level := range encproc.NewConfigHeader(t.Cols) {
		for _, h := range level {
			g.at(h.Start).add(h.Value)
		}
		emit()
	}
	for col := range t.Cols {
		g.at(col).add(t.Unit)
		if col > 0 {
			g.add("vs base")
		}
	}
	emit()

	for _, rowCfg := range t.Rows {
		g.add(rowCfg.StringValues())
		for col, colCfg := range t.Cols {
			c, ok := t.Cells[TableKey{rowCfg, colCfg}]
			if !ok {
				continue
			}
			center := encunit.Format(c.Summary.Center)
			if c.Summary.N >= 2 {
				center += " ± " + c.Summary.PctRangeString()
			}
			g.at(col).add(withNote(center, notes.mark(c.Warnings, c.Summary.Warnings)))
			if col > 0 && c.Baseline != nil {
				g.add(c.Comparison.FormatDelta(c.Baseline.Summary.Center, c.Summary.Center),
					withNote("("+c.Comparison.String()+")", notes.mark(c.Comparison.Warnings)))
			}
		}
		emit()
	}

	// A single row needs no summary.
	if len(t.Rows) > 1 {
		g.add(t.SummaryLabel)
		for col, colCfg := range t.Cols {
			s, ok := t.Summary[colCfg]
			if !ok {
				continue
			}
			var center string
			if s.HasSummary {
				center = encunit.Format(s.Summary)
			}
			if col == 0 {
				g.at(col).add(withNote(center, notes.mark(s.Warnings)))
			} else {
				g.at(col).add(center, formatRatio(s), notes.mark(s.Warnings))
			}
		}
		emit()
	}

	if err := tw.Flush(); err != nil {
		return err
	}
	for i, msg := range notes.list {
		if _, err := fmt.Fprintf(w, "%s %s\n", superscript(i+1), msg); err != nil {
			return err
		}
	}
	return nil
}

var superDigits = []rune("⁰¹²³⁴⁵⁶⁷⁸⁹")

// superscript returns i, which must not be negative, in superscript
// digits.
func superscript(i int) string {
	return strings.Map(func(r rune) rune {
		return superDigits[r-'0']
	}, strconv.Itoa(i))
}

// ToCSV renders t to CSV format. Warnings are written in text format
// to the "warnings" Writer, and prefixed with spreadsheet-style cell
// references. These references assume the table begins on row
// "startRow".
func (t *Table) ToCSV(o *csv.Writer, startRow int, warnings io.Writer) (rowCount int) {
	// center: <center> <CI>; delta: <P%> <(p=0.PPP n=N)>
	g := &grid{center: 2, delta: 2}
	emit := func() {
		o.Write(g.next())
		rowCount++
	}
	warn := func(msgs []error) {
		for _, msg := range msgs {
			fmt.Fprintf(warnings, "%s%d: %s\n", colName(len(g.row)), startRow+rowCount, msg)
		}
	}

	for _, f := range t.Cols[0].Schema().Fields() {
		for col, cfg := range t.Cols {
			g.at(col).add(cfg.Get(f))
		}
		emit()
	}
	for col := range t.Cols {
		g.at(col).add(t.Unit, "CI")
		if col > 0 {
			g.add("vs base", "P")
		}
	}
	emit()

	for _, rowCfg := range t.Rows {
		g.add(rowCfg.StringValues())
		for col, colCfg := range t.Cols {
			c, ok := t.Cells[TableKey{rowCfg, colCfg}]
			if !ok {
				continue
			}
			g.at(col)
			warn(c.Warnings)
			warn(c.Summary.Warnings)
			g.add(fmt.Sprint(c.Summary.Center), c.Summary.PctRangeString())
			if col > 0 && c.Baseline != nil {
				warn(c.Comparison.Warnings)
				g.add(c.Comparison.FormatDelta(c.Baseline.Summary.Center, c.Summary.Center),
					c.Comparison.String())
			}
		}
		emit()
	}

	g.add(t.SummaryLabel)
	for col, colCfg := range t.Cols {
		s, ok := t.Summary[colCfg]
		if !ok {
			continue
		}
		g.at(col)
		warn(s.Warnings)
		if s.HasSummary {
			g.add(fmt.Sprint(s.Summary))
		}
		if col > 0 {
			g.pad(g.start(col) + g.center)
			g.add(formatRatio(s))
		}
	}
	emit()
	return rowCount
}

// colName returns the spreadsheet-style name of the 0-based column x:
// A, B, ..., Z, AA, AB, ...
func colName(x int) string {
	var buf []byte
	for x++; x > 0; x = (x - 1) / 26 {
		buf = append([]byte{'A' + byte((x-1)%26)}, buf...)
	}
	return string(buf)
}
