// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encunit

import "testing"

func TestParseSize(t *testing.T) {
	check := func(tok string, want float64) {
		t.Helper()
		got := ParseSize(tok)
		if got != want {
			t.Errorf("ParseSize(%q) = %v, want %v", tok, got, want)
		}
	}

	check("450K", 450)
	check("1.2M", 1228.8)
	check("2G", 2097152)
	check("2048", 2)
	check("abc", 0)
	check("", 0)
	check("K", 0)
	check("  512k\t", 512)
	check("1m", 1024)
	check("0.5g", 524288)

	if ParseSize("1k") != ParseSize("1K") {
		t.Errorf("size suffixes must be case-insensitive")
	}
}

func TestParseSizeErr(t *testing.T) {
	if _, err := ParseSizeErr("12X"); err == nil {
		t.Errorf("want error for 12X")
	}
	v, err := ParseSizeErr("abcM")
	if err == nil || v != 0 {
		t.Errorf("got %v, %v; want 0 and an error", v, err)
	}
	v, err = ParseSizeErr("3K")
	if err != nil || v != 3 {
		t.Errorf("got %v, %v; want 3, nil", v, err)
	}
}

func TestFormat(t *testing.T) {
	check := func(got, want string) {
		t.Helper()
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	}
	check(Format(1228.8), "1228.80")
	check(Format(0), "0.00")
	check(FormatPct(100, 150), "+50.00%")
	check(FormatPct(100, 100), "~")
	check(FormatPct(0, 1), "?")
	check(Label(PeakRAM), "Peak RAM (MB)")
	check(Label("furlongs"), "furlongs")
}
