// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encunit

import (
	"fmt"
	"math"
)

// Units of the values produced by encfmt.
const (
	CPUTime    = "cpu-sec"
	PeakRAM    = "peak-RAM-MB"
	OutputSize = "size-KB"
	PSNRY      = "psnr-y-dB"
	PSNRAvg    = "psnr-avg-dB"
)

var labels = map[string]string{
	CPUTime:    "CPU time (s)",
	PeakRAM:    "Peak RAM (MB)",
	OutputSize: "Output size (KB)",
	PSNRY:      "PSNR Y (luma)",
	PSNRAvg:    "PSNR average",
}

// Label returns a human-readable name for unit, suitable for chart
// titles and axes. Unknown units are returned unchanged.
func Label(unit string) string {
	if l, ok := labels[unit]; ok {
		return l
	}
	return unit
}

// Format formats a measurement with the fixed two-decimal precision
// used in tables and on bar labels.
func Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	return fmt.Sprintf("%.2f", v)
}

// FormatPct formats a relative change between a baseline and a value
// as a signed percentage. It returns "?" if the baseline is zero.
func FormatPct(base, v float64) string {
	if base == v {
		return "~"
	}
	if base == 0 {
		return "?"
	}
	return fmt.Sprintf("%+.2f%%", (v/base-1)*100)
}
