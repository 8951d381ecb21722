// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encplot

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// A barGroup is a grouped bar chart: at each category there is one
// bar per series, side by side.
type barGroup struct {
	Categories []string
	Series     []string

	// Values[s][c] is the height of the bar of series s at
	// category c. NaN marks a missing bar.
	Values [][]float64

	// Errors[s][c] is the half width of the error bar of series s
	// at category c. If Errors is nil, no error bars are drawn.
	Errors [][]float64
}

// groupFraction is the fraction of the distance between categories
// taken up by one group of bars.
const groupFraction = 0.8

// add adds g to p. plotWidth is the approximate width of the data
// area, used to size the bars.
func (g *barGroup) add(p *plot.Plot, plotWidth vg.Length, colors []color.Color, legendTitle string) error {
	if len(g.Categories) == 0 || len(g.Series) == 0 {
		return fmt.Errorf("no data to plot")
	}
	p.NominalX(g.Categories...)
	if legendTitle != "" {
		p.Legend.Add(legendTitle)
	}
	p.Legend.Top = true

	n := len(g.Series)
	groupWidth := plotWidth * groupFraction / vg.Length(len(g.Categories))
	barWidth := groupWidth / vg.Length(n)

	for s, name := range g.Series {
		heights := make(plotter.Values, len(g.Categories))
		var labels plotter.XYLabels
		for c, v := range g.Values[s] {
			if math.IsNaN(v) {
				continue
			}
			heights[c] = v
			top := v
			if g.Errors != nil && !math.IsNaN(g.Errors[s][c]) {
				top += g.Errors[s][c]
			}
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(c), Y: top})
			labels.Labels = append(labels.Labels, fmt.Sprintf("%.2f", v))
		}

		bc, err := plotter.NewBarChart(heights, barWidth)
		if err != nil {
			return fmt.Errorf("series %s: %w", name, err)
		}
		offset := barWidth*vg.Length(s) - barWidth*vg.Length(n-1)/2
		bc.Offset = offset
		bc.Color = colors[s]
		bc.LineStyle.Width = 0
		p.Add(bc)
		p.Legend.Add(name, bc)

		if g.Errors != nil {
			eb, err := g.errorBars(s)
			if err != nil {
				return fmt.Errorf("series %s: %w", name, err)
			}
			if eb != nil {
				p.Add(shifted{eb, offset})
			}
		}

		if len(labels.XYs) > 0 {
			l, err := plotter.NewLabels(labels)
			if err != nil {
				return fmt.Errorf("series %s: %w", name, err)
			}
			for i := range l.TextStyle {
				l.TextStyle[i].XAlign = draw.XCenter
				l.TextStyle[i].Font.Size = vg.Points(8)
			}
			l.Offset = vg.Point{X: offset, Y: vg.Points(3)}
			p.Add(l)
		}
	}
	return nil
}

// errorBars returns the error bars of series s, or nil if it has none.
func (g *barGroup) errorBars(s int) (*plotter.YErrorBars, error) {
	var xys plotter.XYs
	var errs plotter.YErrors
	for c, v := range g.Values[s] {
		e := g.Errors[s][c]
		if math.IsNaN(v) || math.IsNaN(e) || e == 0 {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(c), Y: v})
		errs = append(errs, struct{ Low, High float64 }{e, e})
	}
	if len(xys) == 0 {
		return nil, nil
	}
	eb, err := plotter.NewYErrorBars(errPoints{xys, errs})
	if err != nil {
		return nil, err
	}
	eb.LineStyle.Color = color.Gray{64}
	eb.CapWidth = vg.Points(6)
	return eb, nil
}

type errPoints struct {
	plotter.XYs
	plotter.YErrors
}

// shifted draws error bars displaced horizontally so they sit on a
// bar with the same offset.
type shifted struct {
	*plotter.YErrorBars
	dx vg.Length
}

func (s shifted) Plot(c draw.Canvas, p *plot.Plot) {
	c.Push()
	defer c.Pop()
	c.Translate(vg.Point{X: s.dx})
	s.YErrorBars.Plot(c, p)
}
