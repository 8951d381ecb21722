// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encmath

import (
	"math"
	"strings"
	"testing"
)

func TestSummarizeConstant(t *testing.T) {
	s := Summarize([]float64{38.5, 38.5, 38.5}, 0.95)
	if s.Center != 38.5 || s.Lo != 38.5 || s.Hi != 38.5 {
		t.Errorf("constant sample: got %v [%v, %v], want degenerate interval at 38.5", s.Center, s.Lo, s.Hi)
	}
	if s.N != 3 || len(s.Warnings) != 0 {
		t.Errorf("got N=%d warnings=%v", s.N, s.Warnings)
	}
	if got := s.PctRangeString(); got != "0%" {
		t.Errorf("PctRangeString = %s, want 0%%", got)
	}
}

func TestSummarizeWidens(t *testing.T) {
	narrow := Summarize([]float64{9, 10, 11}, 0.95)
	wide := Summarize([]float64{5, 10, 15}, 0.95)
	if narrow.Center != 10 || wide.Center != 10 {
		t.Fatalf("centers %v %v, want 10", narrow.Center, wide.Center)
	}
	if !(wide.HalfWidth() > narrow.HalfWidth()) {
		t.Errorf("interval did not widen with variance: %v <= %v", wide.HalfWidth(), narrow.HalfWidth())
	}
	// t(0.975, 2) = 4.3027; stddev of {9,10,11} is 1.
	want := 4.302653 / math.Sqrt(3)
	if math.Abs(narrow.HalfWidth()-want) > 1e-4 {
		t.Errorf("half width = %v, want %v", narrow.HalfWidth(), want)
	}
	// A higher confidence level gives a wider interval.
	if Summarize([]float64{9, 10, 11}, 0.99).HalfWidth() <= narrow.HalfWidth() {
		t.Errorf("99%% interval is not wider than 95%% interval")
	}
}

func TestSummarizeSmall(t *testing.T) {
	s := Summarize([]float64{42}, 0.95)
	if s.Center != 42 || s.Lo != 42 || s.Hi != 42 || s.HalfWidth() != 0 {
		t.Errorf("single value: got %+v", s)
	}
	if len(s.Warnings) != 1 {
		t.Errorf("want 1 warning, got %v", s.Warnings)
	}
	if s.PctRangeString() != "?" {
		t.Errorf("PctRangeString = %s, want ?", s.PctRangeString())
	}

	s = Summarize(nil, 0.95)
	if !math.IsNaN(s.Center) || s.N != 0 || len(s.Warnings) != 1 {
		t.Errorf("empty sample: got %+v", s)
	}
}

func TestSummarizeNonFinite(t *testing.T) {
	s := Summarize([]float64{1, math.Inf(1), 3, math.NaN()}, 0.95)
	if s.N != 2 || s.Center != 2 {
		t.Errorf("got N=%d center=%v, want N=2 center=2", s.N, s.Center)
	}
	if len(s.Warnings) != 1 || !strings.Contains(s.Warnings[0].Error(), "dropped 2") {
		t.Errorf("want dropped warning, got %v", s.Warnings)
	}
}

func TestGeoMean(t *testing.T) {
	gm, err := GeoMean([]float64{1, 4})
	if err != nil || gm != 2 {
		t.Errorf("GeoMean(1, 4) = %v, %v; want 2", gm, err)
	}
	for _, xs := range [][]float64{nil, {1, 0}, {-1, 2}} {
		gm, err := GeoMean(xs)
		if err == nil || !math.IsNaN(gm) {
			t.Errorf("GeoMean(%v) = %v, %v; want NaN and error", xs, gm, err)
		}
	}
}
