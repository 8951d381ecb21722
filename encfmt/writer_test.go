// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encfmt

import (
	"strings"
	"testing"
)

func TestWriter(t *testing.T) {
	recs := parseAll(t, `>>> VIDEO: akiyo | CODEC: h264 |
User time (seconds): 1.5
Maximum resident set size (kbytes): 2048
TAMAÑO_ARCHIVO: 1.2M
>>> VIDEO: akiyo | CODEC: vp8 |
`)
	var buf strings.Builder
	w := NewWriter(&buf)
	for i := range recs {
		if err := w.Write(&recs[i]); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	want := `video,codec,cpu_time_seconds,peak_ram_megabytes,output_size_kilobytes
akiyo,h264,1.5,2,1228.8
akiyo,vp8,0,0,0
`
	if buf.String() != want {
		t.Errorf("got:\n%swant:\n%s", buf.String(), want)
	}
}

func TestWriterEmpty(t *testing.T) {
	var buf strings.Builder
	if err := NewWriter(&buf).Flush(); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), strings.Join(Header, ",")+"\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
