// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encproc

import (
	"reflect"
	"testing"

	"github.com/vcodec-lab/encperf/encfmt"
	"github.com/vcodec-lab/encperf/encproc/internal/parse"
)

// testRun is an encfmt.Run with arbitrary keys.
type testRun struct {
	keys   []string
	vals   map[string]string
	values []encfmt.Value
}

func (r *testRun) Keys() []string        { return r.keys }
func (r *testRun) Key(key string) string { return r.vals[key] }
func (r *testRun) Values() []encfmt.Value {
	return r.values
}

// mustParse parses a single projection to a Schema.
func mustParse(t *testing.T, proj string) (*Schema, *Filter) {
	f, err := NewFilter("*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, err := (&ProjectionParser{}).Parse(proj, f)
	if err != nil {
		t.Fatalf("unexpected error parsing %q: %v", proj, err)
	}
	return s, f
}

// r constructs a run with the given keys, which are specified as
// alternating key/value pairs. The run has no values.
func r(t *testing.T, keyVals ...string) *testRun {
	if len(keyVals)%2 != 0 {
		t.Fatal("keyVals must be alternating key/value pairs")
	}
	res := &testRun{vals: make(map[string]string)}
	for i := 0; i < len(keyVals); i += 2 {
		res.keys = append(res.keys, keyVals[i])
		res.vals[keyVals[i]] = keyVals[i+1]
	}
	return res
}

// p constructs a run like r, then projects it using s.
func p(t *testing.T, s *Schema, keyVals ...string) Config {
	return s.Project(r(t, keyVals...))
}

func fieldNames(s *Schema) []string {
	var names []string
	for _, f := range s.Fields() {
		names = append(names, f.Name)
	}
	return names
}

func TestProjectionBasic(t *testing.T) {
	check := func(cfg Config, want string) {
		t.Helper()
		got := cfg.String()
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	}

	var s *Schema

	// Specific keys.
	s, _ = mustParse(t, "video")
	check(p(t, s, "video", "akiyo", "codec", "h264"), "video:akiyo")
	check(p(t, s, "codec", "h264"), "") // Missing values are omitted
	check(p(t, s, "video", "", "codec", "h264"), "")

	// Variable keys.
	s, _ = mustParse(t, ".config")
	check(p(t, s, "video", "akiyo", "codec", "h264"), "video:akiyo codec:h264")
	check(p(t, s, "bitrate", "50k"), "bitrate:50k")
	check(p(t, s, "bitrate", "50k", "video", "news"), "video:news bitrate:50k")
}

func TestProjectionRecord(t *testing.T) {
	s, _ := mustParse(t, "codec,.label")
	rec := &encfmt.Record{Video: "akiyo", Codec: "vp8", Label: "run1"}
	if got, want := s.Project(rec).String(), "codec:vp8 .label:run1"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	s, _ = mustParse(t, "config_qp")
	q := &encfmt.QualityRecord{Video: "akiyo", Codec: "vp8", ParamKey: "config_qp", Param: "QP30"}
	if got, want := s.Project(q).String(), "config_qp:QP30"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestProjectionIntern(t *testing.T) {
	s, _ := mustParse(t, "video,codec")

	c12 := p(t, s, "video", "1", "codec", "2")

	if c12 != p(t, s, "video", "1", "codec", "2") {
		t.Errorf("Configs should be equal")
	}
	if c12 == p(t, s, "video", "1", "codec", "3") {
		t.Errorf("Configs should not be equal")
	}
	if c12 != p(t, s, "video", "1", "codec", "2", ".label", "x") {
		t.Errorf("Configs should be equal")
	}
	// Values must not run together.
	if p(t, s, "video", "ab", "codec", "c") == p(t, s, "video", "a", "codec", "bc") {
		t.Errorf("Configs should not be equal")
	}
}

func TestProjectionParsing(t *testing.T) {
	// Basic parsing is tested by the parse package. Here we test
	// additional processing done by this package.

	check := func(proj string, want ...string) {
		t.Helper()
		s, _ := mustParse(t, proj)
		got := fieldNames(s)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s: got fields %v, want %v", proj, got, want)
		}
	}
	checkErr := func(proj, error string, pos int) {
		t.Helper()
		f, _ := NewFilter("*")
		_, err := (&ProjectionParser{}).Parse(proj, f)
		if se, _ := err.(*parse.SyntaxError); se == nil || se.Msg != error || se.Off != pos {
			t.Errorf("%s: want error %s at %d; got %s", proj, error, pos, err)
		}
	}

	check("video,codec,.label", "video", "codec", ".label")
	check("video,.config,codec", "video", "codec") // Group won't appear in fields list.

	checkErr("a@foo", "unknown order \"foo\"", 2)
	checkErr(".config@(1 2)", "fixed order not allowed for .config", 8)
	checkErr("video,.unit", ".unit is only allowed in filters", 6)
}

func TestProjectionFiltering(t *testing.T) {
	_, f := mustParse(t, "codec@(h264 vp8 av1)")
	check := func(val string, want bool) {
		t.Helper()
		got := f.Apply(r(t, "codec", val))
		if want != got {
			t.Errorf("%s: want %v, got %v", val, want, got)
		}
	}
	check("h264", true)
	check("av1", true)
	check("h265", false)
	check("", false)
}

func TestProjectionExclusion(t *testing.T) {
	check := func(cfg Config, want string) {
		t.Helper()
		got := cfg.String()
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	}

	var pp ProjectionParser
	f, _ := NewFilter("*")
	s, err := pp.Parse(".config", f)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	// Keys projected later are still excluded from .config.
	if _, err = pp.Parse("video,codec", f); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	check(p(t, s, "video", "akiyo", "codec", "h264"), "")
	check(p(t, s, "video", "akiyo", "codec", "h264", ".label", "a"), ".label:a")
}

func TestProjectionResidue(t *testing.T) {
	check := func(mainProj string, want string) {
		t.Helper()

		var pp ProjectionParser
		f, _ := NewFilter("*")
		if _, err := pp.Parse(mainProj, f); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		s := pp.Residue()

		cfg := p(t, s, "video", "akiyo", "codec", "h264", ".label", "a")
		if got := cfg.String(); got != want {
			t.Errorf("%s: got %s, want %s", mainProj, got, want)
		}
	}

	// Full residue.
	check("", "video:akiyo codec:h264 .label:a")
	// Empty residue.
	check(".config", "")
	// Partial residues.
	check("video", "codec:h264 .label:a")
	check("video,codec", ".label:a")
}

func TestProjectionValues(t *testing.T) {
	s, _ := mustParse(t, "codec")
	unit := s.AddValues()

	check := func(cfg Config, want, wantUnit string) {
		t.Helper()
		if got := cfg.String(); got != want {
			t.Errorf("got %s, want %s", got, want)
		}
		if gotUnit := cfg.Get(unit); gotUnit != wantUnit {
			t.Errorf("got unit %s, want %s", gotUnit, wantUnit)
		}
	}

	rec := &encfmt.Record{Video: "akiyo", Codec: "h264", CPUTime: 1, PeakRAM: 2, OutputSize: 3}
	cfgs := s.ProjectValues(rec)
	if len(cfgs) != 3 {
		t.Fatalf("got %d configs, want 3", len(cfgs))
	}

	check(cfgs[0], "codec:h264 .unit:cpu-sec", "cpu-sec")
	check(cfgs[1], "codec:h264 .unit:peak-RAM-MB", "peak-RAM-MB")
	check(cfgs[2], "codec:h264 .unit:size-KB", "size-KB")
}
