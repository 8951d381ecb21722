// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package encplot renders encoding measurements as charts.
//
// ConsumptionFigure draws the resource usage of each codec as three
// stacked grouped-bar panels. QualityChart draws the PSNR of each
// codec on one video with confidence intervals. Both produce PNG
// images using gonum.org/v1/plot. RDCurves draws rate-distortion
// curves as SVG using github.com/aclements/go-gg.
package encplot

import (
	"image/color"
	"io"

	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// A Style gives the geometry and colors of a chart.
type Style struct {
	// Width and Height are the size of the image.
	Width, Height vg.Length

	// DPI is the resolution of raster images.
	DPI int

	// Palette names a qualitative ColorBrewer palette used to
	// color series. If the palette is unknown or does not have
	// enough colors, the plotutil default colors are used.
	Palette string
}

// ConsumptionStyle is the default style of ConsumptionFigure.
var ConsumptionStyle = Style{
	Width:   10 * vg.Inch,
	Height:  15 * vg.Inch,
	DPI:     300,
	Palette: "Set2",
}

// QualityStyle is the default style of QualityChart and RDCurves.
var QualityStyle = Style{
	Width:   12 * vg.Inch,
	Height:  7 * vg.Inch,
	DPI:     300,
	Palette: "Set2",
}

// colors returns n series colors.
func (s Style) colors(n int) []color.Color {
	out := make([]color.Color, n)
	// ColorBrewer palettes start at 3 colors.
	want := n
	if want < 3 {
		want = 3
	}
	if p, err := brewer.GetPalette(brewer.TypeQualitative, s.Palette, want); err == nil {
		copy(out, p.Colors())
		return out
	}
	for i := range out {
		out[i] = plotutil.Color(i)
	}
	return out
}

// writePNG renders onto a fresh raster canvas of s's geometry and
// writes it to w as PNG.
func (s Style) writePNG(w io.Writer, render func(dc draw.Canvas)) error {
	img := vgimg.NewWith(vgimg.UseWH(s.Width, s.Height), vgimg.UseDPI(s.DPI))
	render(draw.New(img))
	_, err := vgimg.PngCanvas{Canvas: img}.WriteTo(w)
	return err
}
