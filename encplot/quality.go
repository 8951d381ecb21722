// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encplot

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/vcodec-lab/encperf/encfmt"
	"github.com/vcodec-lab/encperf/encmath"
	"github.com/vcodec-lab/encperf/encunit"
)

// PSNR charts share a fixed Y range so charts of different videos
// are comparable.
const (
	qualityYMin = 0
	qualityYMax = 60
)

// A Scenario is the rate-control setting of a quality experiment.
type Scenario struct {
	Mode encfmt.Mode

	// Param is the rate-control parameter of the first row of
	// the table, such as "50k".
	Param string
}

func (s Scenario) String() string {
	if s.Mode == encfmt.ModeQP {
		return "fixed QP"
	}
	return s.Mode.String() + " " + s.Param
}

// A CodecQuality summarizes the PSNR of one codec on one video.
type CodecQuality struct {
	Codec string

	// Param is the rate-control parameter of the codec's first
	// run in the whole table, whichever video it encoded.
	Param string

	Y, Avg encmath.Summary
}

// Label returns the axis label of q: the upper-case codec name,
// followed in QP mode by the codec's QP.
func (q *CodecQuality) Label(mode encfmt.Mode) string {
	name := strings.ToUpper(q.Codec)
	if mode != encfmt.ModeQP {
		return name
	}
	return fmt.Sprintf("%s\n(QP %s)", name, qpNumber(q.Param))
}

// qpNumber returns the digits of a QP parameter such as "QP49", or
// "?" if it has none.
func qpNumber(param string) string {
	var b strings.Builder
	for _, r := range param {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}

// SummarizeQuality summarizes the quality records of video per codec,
// sorted by codec name. Every chart labels a codec with the same
// parameter, taken from the codec's first row in recs.
func SummarizeQuality(video string, recs []encfmt.QualityRecord, confidence float64) []CodecQuality {
	params := make(map[string]string)
	for i := range recs {
		if _, ok := params[recs[i].Codec]; !ok {
			params[recs[i].Codec] = recs[i].Param
		}
	}

	type samples struct {
		y, avg []float64
	}
	byCodec := make(map[string]*samples)
	for i := range recs {
		r := &recs[i]
		if r.Video != video {
			continue
		}
		s := byCodec[r.Codec]
		if s == nil {
			s = new(samples)
			byCodec[r.Codec] = s
		}
		s.y = append(s.y, r.PSNRY)
		s.avg = append(s.avg, r.PSNRAvg)
	}

	out := make([]CodecQuality, 0, len(byCodec))
	for codec, s := range byCodec {
		out = append(out, CodecQuality{
			Codec: codec,
			Param: params[codec],
			Y:     encmath.Summarize(s.y, confidence),
			Avg:   encmath.Summarize(s.avg, confidence),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Codec < out[j].Codec })
	return out
}

// QualityChart draws the PSNR summaries of one video as a PNG image.
// Each codec gets a pair of bars, luma and average PSNR, with error
// bars spanning the confidence interval.
func QualityChart(w io.Writer, video string, sc Scenario, qs []CodecQuality, st Style) error {
	if len(qs) == 0 {
		return fmt.Errorf("video %s: no records to plot", video)
	}
	g := &barGroup{
		Series: []string{encunit.Label(encunit.PSNRY), encunit.Label(encunit.PSNRAvg)},
		Values: [][]float64{make([]float64, len(qs)), make([]float64, len(qs))},
		Errors: [][]float64{make([]float64, len(qs)), make([]float64, len(qs))},
	}
	for i := range qs {
		q := &qs[i]
		g.Categories = append(g.Categories, q.Label(sc.Mode))
		for s, sum := range []encmath.Summary{q.Y, q.Avg} {
			g.Values[s][i] = sum.Center
			g.Errors[s][i] = sum.HalfWidth()
			if math.IsInf(g.Errors[s][i], 0) {
				g.Errors[s][i] = math.NaN()
			}
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Video: %s\nScenario: %s", video, sc)
	p.Title.TextStyle.Font.Size = vg.Points(15)
	p.X.Label.Text = "Encoder"
	p.Y.Label.Text = "PSNR (dB)"
	if err := g.add(p, st.Width, st.colors(len(g.Series)), "metric"); err != nil {
		return fmt.Errorf("video %s: %w", video, err)
	}
	p.Legend.Left = false
	p.Y.Min, p.Y.Max = qualityYMin, qualityYMax

	return st.writePNG(w, func(dc draw.Canvas) {
		p.Draw(dc)
	})
}
