// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encfmt

import (
	"errors"
	"strings"
	"testing"
)

func readQuality(t *testing.T, data string) ([]QualityRecord, *QualityReader) {
	t.Helper()
	q := NewQualityReader(strings.NewReader(data), "q.csv")
	var out []QualityRecord
	for q.Scan() {
		out = append(out, q.Record())
	}
	if err := q.Err(); err != nil {
		t.Fatal(err)
	}
	return out, q
}

func TestQualityBitrate(t *testing.T) {
	recs, q := readQuality(t, `video,codec,bitrate,frame,psnr_y,psnr_avg
akiyo,h264,50k,1,38.5,40.1
akiyo,vp8,50k,1,inf,40.0
akiyo,vp8,50k,2,37.0,nan
akiyo,vp8,50k,3,36.5,39.5
akiyo,h264,50k,2,,39.0
`)
	if q.Mode() != ModeBitrate {
		t.Errorf("got mode %v, want Bitrate", q.Mode())
	}
	if q.Dropped() != 3 {
		t.Errorf("dropped %d rows, want 3", q.Dropped())
	}
	want := []QualityRecord{
		{"akiyo", "h264", "bitrate", "50k", 38.5, 40.1, "q.csv"},
		{"akiyo", "vp8", "bitrate", "50k", 36.5, 39.5, "q.csv"},
	}
	if len(recs) != len(want) {
		t.Fatalf("got %d records, want %d: %+v", len(recs), len(want), recs)
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Errorf("[%d] got %+v, want %+v", i, recs[i], want[i])
		}
	}
}

func TestQualityQP(t *testing.T) {
	recs, q := readQuality(t, `video, codec, config_qp, psnr_y, psnr_avg
foreman, h264, QP30, 35, 36
foreman, vp8, QP49, -Inf, 30
`)
	if q.Mode() != ModeQP {
		t.Errorf("got mode %v, want QP", q.Mode())
	}
	if len(recs) != 1 || recs[0].Param != "QP30" || recs[0].ParamKey != "config_qp" {
		t.Errorf("unexpected records %+v", recs)
	}
	if got := recs[0].Key("config_qp"); got != "QP30" {
		t.Errorf("Key(config_qp) = %q", got)
	}
}

func TestQualityErrors(t *testing.T) {
	q := NewQualityReader(strings.NewReader("video,codec,psnr_y,psnr_avg\na,b,1,2\n"), "q.csv")
	if q.Scan() {
		t.Fatal("unexpected record")
	}
	if !errors.Is(q.Err(), ErrNoParamColumn) {
		t.Errorf("got %v, want ErrNoParamColumn", q.Err())
	}

	q = NewQualityReader(strings.NewReader("video,bitrate,psnr_y,psnr_avg\n"), "q.csv")
	if q.Scan() || q.Err() == nil || !strings.Contains(q.Err().Error(), `"codec"`) {
		t.Errorf("want missing codec error, got %v", q.Err())
	}

	q = NewQualityReader(strings.NewReader(""), "q.csv")
	if q.Scan() || q.Err() == nil {
		t.Errorf("want error for empty table")
	}
}
