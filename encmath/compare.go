// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encmath

import (
	"errors"
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
	"github.com/vcodec-lab/encperf/encunit"
)

// DefaultAlpha is the default significance level of Compare.
const DefaultAlpha = 0.05

// A Comparison is the result of comparing two samples of the same
// measurement to see whether they differ.
type Comparison struct {
	// P is the p-value of the null hypothesis that the two
	// samples come from the same distribution. If P is less than
	// Alpha, the samples are considered significantly different.
	//
	// P is NaN if either sample has fewer than two values. Such
	// comparisons are not tested, and their delta is reported
	// as is.
	P float64

	// N1 and N2 are the sizes of the two samples.
	N1, N2 int

	// Alpha is the significance level of this comparison.
	Alpha float64

	// Warnings is a list of warnings about this comparison.
	Warnings []error
}

// Compare compares samples old and new with a two-sided Mann-Whitney
// U-test at significance level alpha. The samples need not be the
// same size, and no distributional assumption is made.
func Compare(old, new []float64, alpha float64) Comparison {
	old, _ = finiteValues(old)
	new, _ = finiteValues(new)
	c := Comparison{P: math.NaN(), N1: len(old), N2: len(new), Alpha: alpha}

	if c.N1 == 0 || c.N2 == 0 {
		c.Warnings = append(c.Warnings, fmt.Errorf("cannot compare with an empty sample"))
		return c
	}
	if c.N1 < 2 || c.N2 < 2 {
		return c
	}

	res, err := stats.MannWhitneyUTest(old, new, stats.LocationDiffers)
	switch {
	case errors.Is(err, stats.ErrSamplesEqual):
		c.P = 1
	case err != nil:
		c.Warnings = append(c.Warnings, fmt.Errorf("cannot compare samples of size %d and %d: %w", c.N1, c.N2, err))
	default:
		c.P = res.P
	}
	return c
}

// Tested reports whether a significance test was performed.
func (c Comparison) Tested() bool {
	return !math.IsNaN(c.P)
}

// String summarizes the comparison as "p=0.008 n=5" or, if the sample
// sizes differ, "p=0.008 n=5+6". Untested comparisons omit p.
func (c Comparison) String() string {
	n := fmt.Sprintf("n=%d", c.N1)
	if c.N1 != c.N2 {
		n = fmt.Sprintf("n=%d+%d", c.N1, c.N2)
	}
	if !c.Tested() {
		return n
	}
	return fmt.Sprintf("p=%0.3f %s", c.P, n)
}

// FormatDelta formats the difference between the centers of the two
// samples as a percentage. A tested comparison that is not
// statistically significant is shown as "~".
func (c Comparison) FormatDelta(old, new float64) string {
	if c.N1 == 0 || c.N2 == 0 {
		return "?"
	}
	if c.Tested() && c.P > c.Alpha {
		return "~"
	}
	return encunit.FormatPct(old, new)
}
