// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encproc

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vcodec-lab/encperf/encfmt"
)

func TestFilter(t *testing.T) {
	rec := &encfmt.Record{Video: "akiyo_cif", Codec: "h264", Label: "run1", CPUTime: 1, PeakRAM: 2, OutputSize: 3}

	check := func(query string, want string) {
		t.Helper()
		f, err := NewFilter(query)
		if err != nil {
			t.Fatalf("%s: unexpected error %s", query, err)
		}
		m := f.Match(rec)
		var got []string
		for i := range rec.Values() {
			got = append(got, fmt.Sprint(m.Test(i)))
		}
		if strings.Join(got, " ") != want {
			t.Errorf("%s: got %v, want %s", query, got, want)
		}
	}

	all, none := "true true true", "false false false"

	check("*", all)
	check("-*", none)
	check("codec:h264", all)
	check("codec:vp8", none)
	check("codec:(vp8 h264)", all)
	check("video:/cif$/", all)
	check("video:/qcif$/", none)
	check(".label:run1", all)
	check("codec:h264 video:akiyo_cif", all)
	check("codec:h264 video:news", none)
	check("codec:vp8 OR video:akiyo_cif", all)
	check("-codec:h264", none)

	// Per-value filtering.
	check(".unit:cpu-sec", "true false false")
	check("-.unit:cpu-sec", "false true true")
	check(".unit:(cpu-sec size-KB)", "true false true")
	check(".unit:/RAM/", "false true false")
	check("codec:h264 .unit:size-KB", "false false true")
	check("codec:vp8 .unit:size-KB", none)
	check("codec:vp8 OR .unit:size-KB", "false false true")
	check("codec:h264 OR .unit:size-KB", all)
}

func TestFilterMatch(t *testing.T) {
	rec := &encfmt.Record{Video: "akiyo", Codec: "h264"}

	f, _ := NewFilter(".unit:cpu-sec")
	m := f.Match(rec)
	if m.All() || !m.Any() {
		t.Errorf("want partial match, got All=%v Any=%v", m.All(), m.Any())
	}
	if m.Test(-1) || m.Test(3) {
		t.Errorf("out of range values should not match")
	}
	if !f.Apply(rec) {
		t.Errorf("Apply: want true")
	}

	f, _ = NewFilter("codec:h264")
	m = f.Match(rec)
	if !m.All() || !m.Any() {
		t.Errorf("want full match, got All=%v Any=%v", m.All(), m.Any())
	}

	f, _ = NewFilter("codec:vp8")
	if f.Apply(rec) {
		t.Errorf("Apply: want false")
	}
}

func TestFilterErrors(t *testing.T) {
	for _, query := range []string{"", "codec", "codec:(", ".config:x"} {
		if _, err := NewFilter(query); err == nil {
			t.Errorf("%q: want error", query)
		}
	}
}
