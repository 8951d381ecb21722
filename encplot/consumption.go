// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encplot

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/vcodec-lab/encperf/encfmt"
	"github.com/vcodec-lab/encperf/encmath"
	"github.com/vcodec-lab/encperf/encunit"
)

// Consumption is the resource usage of a set of encoding runs,
// summarized per video and codec.
type Consumption struct {
	// Videos and Codecs list the videos and codecs in the order
	// they first appear in the runs.
	Videos []string
	Codecs []string

	// Units lists the measured units, in Record.Values order.
	Units []string

	// Cells[u][c][v] summarizes unit u of codec c on video v. A
	// cell with N == 0 had no runs.
	Cells [][][]encmath.Summary
}

// NewConsumption groups recs by video and codec and summarizes each
// group at the given confidence level.
func NewConsumption(recs []encfmt.Record, confidence float64) *Consumption {
	c := new(Consumption)
	videoIdx := make(map[string]int)
	codecIdx := make(map[string]int)
	for i := range recs {
		r := &recs[i]
		if _, ok := videoIdx[r.Video]; !ok {
			videoIdx[r.Video] = len(c.Videos)
			c.Videos = append(c.Videos, r.Video)
		}
		if _, ok := codecIdx[r.Codec]; !ok {
			codecIdx[r.Codec] = len(c.Codecs)
			c.Codecs = append(c.Codecs, r.Codec)
		}
	}
	if len(recs) == 0 {
		return c
	}
	for _, v := range recs[0].Values() {
		c.Units = append(c.Units, v.Unit)
	}

	// samples[u][codec][video]
	samples := make([][][][]float64, len(c.Units))
	for u := range samples {
		samples[u] = make([][][]float64, len(c.Codecs))
		for k := range samples[u] {
			samples[u][k] = make([][]float64, len(c.Videos))
		}
	}
	for i := range recs {
		r := &recs[i]
		k, v := codecIdx[r.Codec], videoIdx[r.Video]
		for u, val := range r.Values() {
			samples[u][k][v] = append(samples[u][k][v], val.Value)
		}
	}

	c.Cells = make([][][]encmath.Summary, len(c.Units))
	for u := range c.Cells {
		c.Cells[u] = make([][]encmath.Summary, len(c.Codecs))
		for k := range c.Cells[u] {
			c.Cells[u][k] = make([]encmath.Summary, len(c.Videos))
			for v, xs := range samples[u][k] {
				if len(xs) == 0 {
					continue
				}
				c.Cells[u][k][v] = encmath.Summarize(xs, confidence)
			}
		}
	}
	return c
}

// bars returns the grouped bars of unit u: one group per video, one
// series per codec.
func (c *Consumption) bars(u int) *barGroup {
	g := &barGroup{
		Categories: c.Videos,
		Series:     c.Codecs,
		Values:     make([][]float64, len(c.Codecs)),
		Errors:     make([][]float64, len(c.Codecs)),
	}
	for k := range c.Codecs {
		g.Values[k] = make([]float64, len(c.Videos))
		g.Errors[k] = make([]float64, len(c.Videos))
		for v := range c.Videos {
			s := c.Cells[u][k][v]
			if s.N == 0 {
				g.Values[k][v] = math.NaN()
				continue
			}
			g.Values[k][v] = s.Center
			g.Errors[k][v] = s.HalfWidth()
		}
	}
	return g
}

// ConsumptionFigure draws c as a PNG image with one panel per unit,
// stacked vertically. Each panel is a grouped bar chart with a group
// of bars per video and a bar per codec, labeled with its mean.
func ConsumptionFigure(w io.Writer, c *Consumption, st Style) error {
	if len(c.Units) == 0 {
		return fmt.Errorf("no records to plot")
	}
	colors := st.colors(len(c.Codecs))
	plots := make([][]*plot.Plot, len(c.Units))
	for u, unit := range c.Units {
		p := plot.New()
		p.Title.Text = "Comparison: " + encunit.Label(unit)
		p.Title.TextStyle.Font.Size = vg.Points(14)
		p.Y.Label.Text = encunit.Label(unit)
		p.Y.Min = 0
		if err := c.bars(u).add(p, st.Width, colors, "codec"); err != nil {
			return fmt.Errorf("%s: %w", unit, err)
		}
		// Room for the value labels.
		p.Y.Max *= 1.15
		plots[u] = []*plot.Plot{p}
	}

	return st.writePNG(w, func(dc draw.Canvas) {
		t := draw.Tiles{
			Rows:      len(plots),
			Cols:      1,
			PadY:      vg.Points(18),
			PadTop:    vg.Points(6),
			PadBottom: vg.Points(6),
			PadLeft:   vg.Points(6),
			PadRight:  vg.Points(6),
		}
		canvases := plot.Align(plots, t, dc)
		for i := range plots {
			plots[i][0].Draw(canvases[i][0])
		}
	})
}
