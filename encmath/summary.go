// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package encmath provides statistical summaries and comparisons of
// repeated encoding measurements.
package encmath

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
)

// A Summary summarizes a sample of measurements.
type Summary struct {
	// Center is the mean of the sample.
	Center float64

	// Lo and Hi give the bounds of the Student-t confidence
	// interval around Center. With fewer than two values, Lo and
	// Hi equal Center.
	Lo, Hi float64

	// Confidence is the confidence level of the interval.
	Confidence float64

	// N is the number of finite values summarized.
	N int

	// Warnings is a list of warnings about this summary.
	Warnings []error
}

// Summarize returns the mean of xs and its confidence interval at the
// given confidence level, using a Student t-distribution with
// len(xs)-1 degrees of freedom.
//
// Non-finite values are not summarized; each one dropped adds a
// warning. With fewer than two remaining values, the interval
// degenerates to the point Center and a warning is attached.
func Summarize(xs []float64, confidence float64) Summary {
	finite, warnings := finiteValues(xs)
	s := Summary{Confidence: confidence, N: len(finite), Warnings: warnings}
	switch len(finite) {
	case 0:
		s.Center, s.Lo, s.Hi = math.NaN(), math.NaN(), math.NaN()
		s.Warnings = append(s.Warnings, fmt.Errorf("no values to summarize"))
		return s
	case 1:
		s.Center, s.Lo, s.Hi = finite[0], finite[0], finite[0]
		s.Warnings = append(s.Warnings, fmt.Errorf("need >= 2 samples for confidence interval at level %v", confidence))
		return s
	}
	s.Center, s.Lo, s.Hi = stats.MeanCI(finite, confidence)
	return s
}

// finiteValues returns the finite values of xs and a warning if any
// were dropped.
func finiteValues(xs []float64) ([]float64, []error) {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if math.IsInf(x, 0) || math.IsNaN(x) {
			continue
		}
		out = append(out, x)
	}
	if n := len(xs) - len(out); n > 0 {
		return out, []error{fmt.Errorf("dropped %d non-finite values", n)}
	}
	return out, nil
}

// HalfWidth returns the half-width of the confidence interval, which
// is the size of an error bar drawn around Center. It is 0 for a
// degenerate interval.
func (s Summary) HalfWidth() float64 {
	if s.N < 2 {
		return 0
	}
	return (s.Hi - s.Lo) / 2
}

// PctRangeString returns a string representation of the range of
// this Summary's confidence interval as a percentage of Center.
func (s Summary) PctRangeString() string {
	if s.N < 2 {
		return "?"
	}
	if math.IsInf(s.Lo, 0) || math.IsInf(s.Hi, 0) {
		return "∞"
	}
	if s.Center == 0 {
		if s.Lo == s.Hi {
			return "0%"
		}
		return "?"
	}

	pctLo := math.Abs((s.Center - s.Lo) / s.Center * 100)
	pctHi := math.Abs((s.Hi - s.Center) / s.Center * 100)
	return fmt.Sprintf("%.0f%%", math.Max(pctLo, pctHi))
}

// GeoMean returns the geometric mean of xs. It returns an error if xs
// is empty or any value is not positive, because the geometric mean
// is then undefined.
func GeoMean(xs []float64) (float64, error) {
	gm := stats.GeoMean(xs)
	if math.IsNaN(gm) {
		if len(xs) == 0 {
			return gm, fmt.Errorf("no values to compute geomean")
		}
		return gm, fmt.Errorf("values must be >0 to compute geomean")
	}
	return gm, nil
}
