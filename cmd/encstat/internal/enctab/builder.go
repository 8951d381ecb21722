// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package enctab presents encoding measurements as comparison tables.
package enctab

import (
	"encoding/csv"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/vcodec-lab/encperf/encfmt"
	"github.com/vcodec-lab/encperf/encmath"
	"github.com/vcodec-lab/encperf/encproc"
	"golang.org/x/sync/errgroup"
)

// A Builder collects encoding runs into a Tables set.
type Builder struct {
	tableBy, rowBy, colBy *encproc.Schema
	residue               *encproc.Schema

	unitField encproc.Field

	// tables maps from tableBy to table.
	tables map[encproc.Config]*table
}

type table struct {
	// Observed row and col configs within this table. They are
	// sorted according to the global observation order so all
	// tables list them consistently.
	rows map[encproc.Config]struct{}
	cols map[encproc.Config]struct{}

	// cells maps from (row, col) to each cell.
	cells map[TableKey]*cell
}

type cell struct {
	// values is the observed values in this cell.
	values []float64
	// configs is the set of residue configs mapped to this cell.
	// It is used to check for non-unique keys.
	configs map[encproc.Config]struct{}
}

// NewBuilder creates a new Builder for collecting runs into tables.
// Each value of a run will be mapped to a Table by tableBy plus the
// value's unit. Within each table, the values are mapped to cells by
// rowBy and colBy. Any values within a single cell that vary by
// residue will be reported as warnings.
func NewBuilder(tableBy, rowBy, colBy, residue *encproc.Schema) *Builder {
	unitField := tableBy.AddValues()
	return &Builder{
		tableBy: tableBy, rowBy: rowBy, colBy: colBy, residue: residue,
		unitField: unitField,
		tables:    make(map[encproc.Config]*table),
	}
}

// Add adds the values of r to the tables in the Builder. If m is
// non-nil, only the values it matches are added.
func (b *Builder) Add(r encfmt.Run, m *encproc.Match) {
	tableCfgs := b.tableBy.ProjectValues(r)
	rowCfg := b.rowBy.Project(r)
	colCfg := b.colBy.Project(r)
	residueCfg := b.residue.Project(r)
	cellCfg := TableKey{rowCfg, colCfg}
	values := r.Values()

	for unitI, tableCfg := range tableCfgs {
		if m != nil && !m.Test(unitI) {
			continue
		}
		t := b.tables[tableCfg]
		if t == nil {
			t = &table{
				rows:  make(map[encproc.Config]struct{}),
				cols:  make(map[encproc.Config]struct{}),
				cells: make(map[TableKey]*cell),
			}
			b.tables[tableCfg] = t
		}

		c := t.cells[cellCfg]
		if c == nil {
			c = &cell{configs: make(map[encproc.Config]struct{})}
			t.cells[cellCfg] = c
			t.rows[rowCfg] = struct{}{}
			t.cols[colCfg] = struct{}{}
		}
		c.values = append(c.values, values[unitI].Value)
		c.configs[residueCfg] = struct{}{}
	}
}

// TableOpts provides options for constructing the final analysis
// tables from a Builder.
type TableOpts struct {
	// Confidence is the desired confidence level in summary
	// intervals; e.g., 0.95 for 95%.
	Confidence float64

	// Alpha is the significance level of comparisons against the
	// first column.
	Alpha float64
}

// Tables is a sequence of statistic tables.
type Tables struct {
	// Tables is a slice of statistic tables. Within a table, all
	// values have the same table config (including unit).
	Tables []*Table
	// Configs is a slice of table configs, corresponding 1:1 to
	// the Tables slice. These configs always end with a ".unit"
	// config giving the unit.
	Configs []encproc.Config
}

// ToTables finalizes a Builder into a sequence of statistic tables.
func (b *Builder) ToTables(opts TableOpts) *Tables {
	var configs []encproc.Config
	for k := range b.tables {
		configs = append(configs, k)
	}
	encproc.SortConfigs(configs)

	// Cells are summarized concurrently. This is CPU-bound, so
	// the group is limited to a small multiple of GOMAXPROCS.
	var g errgroup.Group
	g.SetLimit(2 * runtime.GOMAXPROCS(-1))

	var tables []*Table
	for _, k := range configs {
		cTable := b.tables[k]

		rowCfgs, colCfgs := mapConfigs(cTable.rows), mapConfigs(cTable.cols)
		t := &Table{
			Unit:  k.Get(b.unitField),
			Opts:  opts,
			Rows:  rowCfgs,
			Cols:  colCfgs,
			Cells: make(map[TableKey]*TableCell),
		}
		tables = append(tables, t)

		// Create all TableCells first so the second pass can
		// look up baselines.
		for k, cCell := range cTable.cells {
			t.Cells[k] = &TableCell{Values: cCell.values}
		}

		baselineCfg := colCfgs[0]
		for k, cCell := range cTable.cells {
			c := t.Cells[k]
			if k.Col != baselineCfg {
				if base, ok := t.Cells[TableKey{k.Row, baselineCfg}]; ok {
					c.Baseline = base
				}
			}
			cCell := cCell
			g.Go(func() error {
				summarizeCell(cCell, c, opts)
				return nil
			})
		}
	}
	g.Wait()

	// Add summary rows to each table.
	for _, t := range tables {
		t.SummaryLabel = "geomean"
		t.Summary = make(map[encproc.Config]*TableSummary)

		// Count the baseline rows so we can tell if later
		// columns cover a different set.
		nBase := 0
		baseCol := t.Cols[0]
		for _, row := range t.Rows {
			if _, ok := t.Cells[TableKey{row, baseCol}]; ok {
				nBase++
			}
		}

		for i, col := range t.Cols {
			s := new(TableSummary)
			t.Summary[col] = s
			t, col, isBase := t, col, i == 0
			g.Go(func() error {
				summarizeCol(t, col, s, nBase, isBase)
				return nil
			})
		}
	}
	g.Wait()

	return &Tables{tables, configs}
}

func mapConfigs(m map[encproc.Config]struct{}) []encproc.Config {
	var cs []encproc.Config
	for k := range m {
		cs = append(cs, k)
	}
	encproc.SortConfigs(cs)
	return cs
}

func summarizeCell(cCell *cell, c *TableCell, opts TableOpts) {
	c.Summary = encmath.Summarize(c.Values, opts.Confidence)
	if len(c.Values) < 2 {
		// Single runs are the norm in consumption logs. They
		// have no interval and get no warning for it.
		c.Summary.Warnings = nil
	}

	if c.Baseline != nil {
		c.Comparison = encmath.Compare(c.Baseline.Values, c.Values, opts.Alpha)
	}

	// Warn for non-singular configuration values in this cell.
	nsk := encproc.NonSingularFields(mapConfigs(cCell.configs))
	if len(nsk) > 0 {
		var warn strings.Builder
		warn.WriteString("runs vary in ")
		for i, field := range nsk {
			if i > 0 {
				warn.WriteString(", ")
			}
			warn.WriteString(field.Name)
		}
		c.Warnings = append(c.Warnings, fmt.Errorf("%s", warn.String()))
	}
}

func summarizeCol(t *Table, col encproc.Config, s *TableSummary, nBase int, isBase bool) {
	// This is the geomean of the per-row ratios, not the ratio of
	// the column geomeans, so that it stays meaningful when the
	// row sets differ.
	var summaries, ratios []float64
	badRatio := false
	for _, row := range t.Rows {
		c, ok := t.Cells[TableKey{row, col}]
		if !ok {
			continue
		}
		summaries = append(summaries, c.Summary.Center)
		if c.Baseline != nil {
			a, b := c.Summary.Center, c.Baseline.Summary.Center
			switch {
			case a == b:
				// Treat 0/0 as 1.
				ratios = append(ratios, 1)
			case b == 0:
				badRatio = true
				// Keep the nBase check working.
				ratios = append(ratios, 0)
			default:
				ratios = append(ratios, a/b)
			}
		}
	}

	if !isBase && nBase != len(ratios) {
		s.Warnings = append(s.Warnings, fmt.Errorf("video set differs from baseline; geomeans may not be comparable"))
	}

	if gm, err := encmath.GeoMean(summaries); err != nil {
		s.Warnings = append(s.Warnings, fmt.Errorf("summaries: %w", err))
	} else {
		s.HasSummary = true
		s.Summary = gm
	}

	if !isBase && !badRatio {
		if gm, err := encmath.GeoMean(ratios); err != nil {
			s.Warnings = append(s.Warnings, fmt.Errorf("ratios: %w", err))
		} else {
			s.HasRatio = true
			s.Ratio = gm
		}
	}
}

// ToText renders t to a textual representation, assuming a
// fixed-width font.
func (t *Tables) ToText(w io.Writer) error {
	return t.printTables(func(hdr string) error {
		_, err := fmt.Fprintf(w, "%s\n", hdr)
		return err
	}, func(table *Table) error {
		return table.ToText(w)
	})
}

// ToCSV renders t to CSV (comma-separated values) format.
//
// Warnings are written to a separate stream so as not to interrupt
// the regular format of the CSV table.
func (t *Tables) ToCSV(w, warnings io.Writer) error {
	o := csv.NewWriter(w)
	row := 1

	err := t.printTables(func(hdr string) error {
		o.Write([]string{hdr})
		row++
		return nil
	}, func(table *Table) error {
		row += table.ToCSV(o, row, warnings)
		return nil
	})
	if err != nil {
		return err
	}
	o.Flush()
	return o.Error()
}

func (t *Tables) printTables(hdr func(string) error, cb func(*Table) error) error {
	if len(t.Tables) == 0 {
		return nil
	}

	var prevConfig encproc.Config
	fields := t.Configs[0].Schema().Fields()

	for i, table := range t.Tables {
		if i > 0 {
			// Blank line between tables.
			if err := hdr(""); err != nil {
				return err
			}
		}

		// Print table config changes, except .unit, which is
		// printed in the table itself.
		config := t.Configs[i]
		for _, f := range fields {
			if f.Name == ".unit" {
				continue
			}
			val := config.Get(f)
			if prevConfig.IsZero() || val != prevConfig.Get(f) {
				if err := hdr(fmt.Sprintf("%s: %s", f.Name, val)); err != nil {
					return err
				}
			}
		}
		prevConfig = config

		if err := cb(table); err != nil {
			return err
		}
	}
	return nil
}
