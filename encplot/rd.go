// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encplot

import (
	"fmt"
	"io"
	"sort"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"

	"github.com/vcodec-lab/encperf/encfmt"
	"github.com/vcodec-lab/encperf/encproc"
)

// An RDPoint is one point of a rate-distortion curve.
type RDPoint struct {
	Codec string
	// Rate is the numeric rate-control parameter.
	Rate float64
	// PSNR is the mean average PSNR of the runs at Rate.
	PSNR float64
}

// RDPoints returns the rate-distortion points of video, ordered by
// codec and then rate. Runs whose parameter is not numeric are
// skipped.
func RDPoints(video string, recs []encfmt.QualityRecord) []RDPoint {
	type key struct {
		codec string
		rate  float64
	}
	samples := make(map[key][]float64)
	for i := range recs {
		r := &recs[i]
		if r.Video != video {
			continue
		}
		rate, err := encproc.ParseNum(r.Param)
		if err != nil {
			continue
		}
		k := key{r.Codec, rate}
		samples[k] = append(samples[k], r.PSNRAvg)
	}

	pts := make([]RDPoint, 0, len(samples))
	for k, xs := range samples {
		pts = append(pts, RDPoint{k.codec, k.rate, stats.Mean(xs)})
	}
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].Codec != pts[j].Codec {
			return pts[i].Codec < pts[j].Codec
		}
		return pts[i].Rate < pts[j].Rate
	})
	return pts
}

// RDCurves draws the rate-distortion curves of video as SVG, one
// line per codec.
func RDCurves(w io.Writer, video string, recs []encfmt.QualityRecord, st Style) error {
	pts := RDPoints(video, recs)
	if len(pts) == 0 {
		return fmt.Errorf("video %s: no numeric rate-control parameters", video)
	}
	var (
		rates, psnrs []float64
		codecs       []string
	)
	for _, pt := range pts {
		rates = append(rates, pt.Rate)
		psnrs = append(psnrs, pt.PSNR)
		codecs = append(codecs, pt.Codec)
	}
	tab := table.NewBuilder(nil).
		Add("rate", rates).
		Add("PSNR avg (dB)", psnrs).
		Add("codec", codecs).
		Done()

	p := gg.NewPlot(table.GroupBy(tab, "codec"))
	p.Add(gg.LayerLines{X: "rate", Y: "PSNR avg (dB)", Color: "codec"})
	p.Add(gg.LayerPoints{X: "rate", Y: "PSNR avg (dB)", Color: "codec"})
	// go-gg sizes SVGs in pixels; vg lengths are points.
	return p.WriteSVG(w, int(st.Width), int(st.Height))
}
