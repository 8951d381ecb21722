// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/vcodec-lab/encperf/encstore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func run(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	var got, gotErr bytes.Buffer
	t.Logf("psnrstat %s", strings.Join(args, " "))
	if err := psnrstat(&got, &gotErr, args); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	return got.String(), gotErr.String()
}

func isPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Errorf("%s is not a PNG image", path)
	}
}

func TestBitrate(t *testing.T) {
	dir := t.TempDir()
	out, errOut := run(t, "-config", "testdata/small.yaml", "-out", dir, "testdata/bitrate.csv")

	for _, want := range []string{
		"scenario: Bitrate 50k",
		"95% CI",
		// Two runs of h264 on akiyo_cif: 40 and 42 dB.
		"41.00 dB",
		"[28.29, 53.71]",
		"42.50 dB",
		"[29.79, 55.21]",
		// vp8 on akiyo_cif has one finite run left.
		"38.00 dB",
		"n/a (n=1)",
		"foreman_cif",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "akiyo_cif") > strings.Index(out, "foreman_cif") {
		t.Errorf("videos out of input order:\n%s", out)
	}
	if !strings.Contains(errOut, "dropped rows") || !strings.Contains(errOut, `"rows": 2`) {
		t.Errorf("dropped rows not reported:\n%s", errOut)
	}

	isPNG(t, filepath.Join(dir, "grafico_akiyo_cif_Bitrate_50k.png"))
	isPNG(t, filepath.Join(dir, "grafico_foreman_cif_Bitrate_50k.png"))
	if _, err := os.Stat(filepath.Join(dir, "rd_akiyo_cif.svg")); !os.IsNotExist(err) {
		t.Errorf("rate-distortion curves drawn without -svg: %v", err)
	}
}

func TestQP(t *testing.T) {
	dir := t.TempDir()
	out, _ := run(t, "-config", "testdata/small.yaml", "-out", dir, "-svg", "testdata/qp.csv")

	for _, want := range []string{"scenario: fixed QP", "H264 (QP 28)", "VP8 (QP 30)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// Codecs are listed in name order.
	if strings.Index(out, "H264") > strings.Index(out, "VP8") {
		t.Errorf("codecs out of order:\n%s", out)
	}

	isPNG(t, filepath.Join(dir, "grafico_news_cif_QP.png"))
	svg, err := os.ReadFile(filepath.Join(dir, "rd_news_cif.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("rd_news_cif.svg is not an SVG image")
	}
}

// failWriter fails every write.
type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("write failed") }

func TestSummaryError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	var errOut bytes.Buffer
	err := psnrstat(failWriter{}, &errOut, []string{"-config", "testdata/small.yaml", "-out", dir, "-svg", "testdata/qp.csv"})
	if err == nil || !strings.Contains(err.Error(), "write failed") {
		t.Fatalf("got error %v, want write failure", err)
	}
	// Nothing is drawn once the summary fails; goleak checks that no
	// drawing is left running.
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("output directory created after failed summary: %v", err)
	}
}

func TestConfidence(t *testing.T) {
	out, _ := run(t, "-config", "testdata/small.yaml", "-out", t.TempDir(), "-confidence", "0.9", "testdata/bitrate.csv")
	if !strings.Contains(out, "90% CI") {
		t.Errorf("output missing confidence level:\n%s", out)
	}
	if strings.Contains(out, "[28.29, 53.71]") {
		t.Errorf("interval did not change with -confidence:\n%s", out)
	}
}

func TestAllDropped(t *testing.T) {
	dir := t.TempDir()
	out, errOut := run(t, "-out", dir, "testdata/dropped.csv")
	if out != "" {
		t.Errorf("unexpected stdout:\n%s", out)
	}
	if !strings.HasSuffix(errOut, "no records\n") {
		t.Errorf("stderr does not end in %q:\n%s", "no records\n", errOut)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(ents) != 0 {
		t.Errorf("files written without records: %v", ents)
	}
}

func TestDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enc.db")
	run(t, "-config", "testdata/small.yaml", "-out", t.TempDir(), "-db", "sqlite3:"+path, "testdata/bitrate.csv")

	s, err := encstore.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	recs, err := s.Quality(context.Background(), "foreman_cif")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[1].Codec != "vp8" || recs[1].PSNRY != 31.25 {
		t.Errorf("unexpected stored rows %+v", recs)
	}
}

func TestErrors(t *testing.T) {
	noParam := filepath.Join(t.TempDir(), "noparam.csv")
	if err := os.WriteFile(noParam, []byte("video,codec,psnr_y,psnr_avg\nv,c,1,2\n"), 0o666); err != nil {
		t.Fatal(err)
	}

	for _, test := range []struct {
		args []string
		want string
	}{
		{[]string{"testdata/missing.csv"}, "missing.csv"},
		{[]string{noParam}, "no bitrate or config_qp column"},
		{[]string{"-confidence", "1", "testdata/qp.csv"}, "-confidence"},
		{[]string{"-db", "postgres:db", "testdata/qp.csv"}, "-db"},
		{[]string{"-config", "testdata/missing.yaml", "testdata/qp.csv"}, "-config"},
		{[]string{"testdata/qp.csv", "testdata/bitrate.csv"}, "exactly one input"},
		{nil, "exactly one input"},
	} {
		var out, errOut bytes.Buffer
		err := psnrstat(&out, &errOut, test.args)
		if err == nil {
			t.Errorf("psnrstat %v: want error", test.args)
			continue
		}
		if !strings.Contains(err.Error(), test.want) {
			t.Errorf("psnrstat %v: got error %q, want it to mention %q", test.args, err, test.want)
		}
	}
}
