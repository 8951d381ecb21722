// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encfmt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func parseAll(t *testing.T, data string, setup ...func(r *Reader)) []Record {
	t.Helper()
	r := NewReader(strings.NewReader(data), "test")
	for _, f := range setup {
		f(r)
	}
	var out []Record
	for r.Scan() {
		out = append(out, r.Record())
	}
	if err := r.Err(); err != nil {
		t.Fatal("parsing failed: ", err)
	}
	return out
}

func printRecord(w io.Writer, r Record) {
	fmt.Fprintf(w, "%s/%s cpu=%v ram=%v size=%v seen=%03b label=%s\n",
		r.Video, r.Codec, r.CPUTime, r.PeakRAM, r.OutputSize, r.Seen, r.Label)
}

type recordBuilder struct {
	rec Record
}

func rec(video, codec string) *recordBuilder {
	return &recordBuilder{Record{Video: video, Codec: codec, Label: "test"}}
}

func (b *recordBuilder) cpu(v float64) *recordBuilder {
	b.rec.CPUTime = v
	b.rec.Seen |= FieldCPUTime
	return b
}

func (b *recordBuilder) ram(v float64) *recordBuilder {
	b.rec.PeakRAM = v
	b.rec.Seen |= FieldPeakRAM
	return b
}

func (b *recordBuilder) size(v float64) *recordBuilder {
	b.rec.OutputSize = v
	b.rec.Seen |= FieldOutputSize
	return b
}

func (b *recordBuilder) seen(f Fields) *recordBuilder {
	b.rec.Seen |= f
	return b
}

func TestReader(t *testing.T) {
	type testCase struct {
		name, input string
		want        []Record
	}
	for _, test := range []testCase{
		{
			"empty",
			"",
			nil,
		},
		{
			"no headers",
			`User time (seconds): 1.5
Maximum resident set size (kbytes): 2048
TAMAÑO_ARCHIVO: 450K
`,
			nil,
		},
		{
			"headers only",
			`>>> VIDEO: akiyo | CODEC: h264 |
>>> VIDEO: foreman | CODEC: vp8 |
`,
			[]Record{
				rec("akiyo", "h264").rec,
				rec("foreman", "vp8").rec,
			},
		},
		{
			"full block",
			`>>> VIDEO: akiyo_cif | CODEC: h264 | PRESET: medium
	Command being timed: "ffmpeg -i akiyo_cif.y4m out.mp4"
	User time (seconds): 12.34
	System time (seconds): 0.50
	Maximum resident set size (kbytes): 102400
TAMAÑO_ARCHIVO: 1.2M
`,
			[]Record{
				rec("akiyo_cif", "h264").cpu(12.34).ram(100).size(1228.8).rec,
			},
		},
		{
			"last size wins",
			`>>> VIDEO: akiyo | CODEC: h264 |
TAMAÑO_ARCHIVO: 100K
TAMAÑO_ARCHIVO_FINAL: 50K
`,
			[]Record{
				rec("akiyo", "h264").size(50).rec,
			},
		},
		{
			"last time wins",
			`>>> VIDEO: akiyo | CODEC: h264 |
User time (seconds): 1.0
User time (seconds): 2.5
`,
			[]Record{
				rec("akiyo", "h264").cpu(2.5).rec,
			},
		},
		{
			"measurements reset between blocks",
			`>>> VIDEO: a | CODEC: x |
User time (seconds): 3
Maximum resident set size (kbytes): 1024
TAMAÑO_ARCHIVO: 2048
>>> VIDEO: b | CODEC: x |
>>> VIDEO: c | CODEC: y |
User time (seconds): 4
`,
			[]Record{
				rec("a", "x").cpu(3).ram(1).size(2).rec,
				rec("b", "x").rec,
				rec("c", "y").cpu(4).rec,
			},
		},
		{
			"order of appearance",
			`>>> VIDEO: z | CODEC: vp8 |
>>> VIDEO: a | CODEC: h264 |
>>> VIDEO: z | CODEC: vp8 |
`,
			[]Record{
				rec("z", "vp8").rec,
				rec("a", "h264").rec,
				rec("z", "vp8").rec,
			},
		},
		{
			"trimmed names",
			`   >>> VIDEO:   news qcif  | CODEC:  libvpx  |   `,
			[]Record{
				rec("news qcif", "libvpx").rec,
			},
		},
		{
			"malformed measurements",
			`>>> VIDEO: a | CODEC: x |
User time (seconds): 1.2.3
TAMAÑO_ARCHIVO: abc
`,
			[]Record{
				rec("a", "x").seen(FieldCPUTime | FieldOutputSize).rec,
			},
		},
		{
			"no trailing newline",
			">>> VIDEO: a | CODEC: x |\nUser time (seconds): 7",
			[]Record{
				rec("a", "x").cpu(7).rec,
			},
		},
		{
			"measurements before first header",
			`User time (seconds): 9
>>> VIDEO: a | CODEC: x |
`,
			[]Record{
				rec("a", "x").cpu(9).rec,
			},
		},
		{
			"header without video",
			`>>> VIDEO:  | CODEC: x |
User time (seconds): 1
>>> VIDEO: a | CODEC: x |
`,
			[]Record{
				rec("a", "x").cpu(1).rec,
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			got := parseAll(t, test.input)
			want := test.want
			var diff bytes.Buffer
			for i := 0; i < len(got) || i < len(want); i++ {
				if i >= len(got) {
					fmt.Fprintf(&diff, "[%d] got: none, want:\n", i)
					printRecord(&diff, want[i])
				} else if i >= len(want) {
					fmt.Fprintf(&diff, "[%d] want: none, got:\n", i)
					printRecord(&diff, got[i])
				} else if got[i] != want[i] {
					fmt.Fprintf(&diff, "[%d] got:\n", i)
					printRecord(&diff, got[i])
					fmt.Fprintf(&diff, "[%d] want:\n", i)
					printRecord(&diff, want[i])
				}
			}
			if diff.Len() != 0 {
				t.Error(diff.String())
			}
		})
	}
}

func TestReaderFieldErrors(t *testing.T) {
	var errs []string
	hook := func(r *Reader) {
		r.OnFieldError(func(err *FieldError) {
			errs = append(errs, fmt.Sprintf("%d %s %s", err.Line, err.Field, err.Text))
		})
	}
	got := parseAll(t, `>>> VIDEO: a | CODEC: x |
User time (seconds): ..
TAMAÑO_ARCHIVO: 12Q
Maximum resident set size (kbytes): 2048
`, hook)

	if len(got) != 1 || got[0].CPUTime != 0 || got[0].OutputSize != 0 || got[0].PeakRAM != 2 {
		t.Errorf("unexpected records %+v", got)
	}
	want := []string{"2 cpu_time_seconds ..", "3 output_size_kilobytes 12Q"}
	if strings.Join(errs, ";") != strings.Join(want, ";") {
		t.Errorf("got field errors %q, want %q", errs, want)
	}
}

func TestReaderIOError(t *testing.T) {
	boom := errors.New("boom")
	r := NewReader(io.MultiReader(
		strings.NewReader(">>> VIDEO: a | CODEC: x |\n"),
		iotest.ErrReader(boom),
	), "broken")
	for r.Scan() {
		t.Errorf("unexpected record %+v", r.Record())
	}
	if !errors.Is(r.Err(), boom) {
		t.Fatalf("got error %v, want %v", r.Err(), boom)
	}
	if !strings.HasPrefix(r.Err().Error(), "broken:1: ") {
		t.Errorf("error %q lacks position", r.Err())
	}
}

func TestReaderReset(t *testing.T) {
	r := NewReader(strings.NewReader(">>> VIDEO: a | CODEC: x |\n"), "one")
	for r.Scan() {
	}
	r.Reset(strings.NewReader(">>> VIDEO: b | CODEC: y |\n"), "two")
	if !r.Scan() {
		t.Fatal("no record after Reset")
	}
	if got := r.Record(); got.Video != "b" || got.Label != "two" {
		t.Errorf("got %+v", got)
	}
	if r.Scan() {
		t.Errorf("unexpected second record")
	}
}

func BenchmarkReader(b *testing.B) {
	var log strings.Builder
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&log, ">>> VIDEO: v%d | CODEC: h264 |\n", i)
		log.WriteString("\tUser time (seconds): 12.34\n")
		log.WriteString("\tMaximum resident set size (kbytes): 102400\n")
		log.WriteString("TAMAÑO_ARCHIVO_FINAL: 1.2M\n")
	}
	data := log.String()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	r := new(Reader)
	for i := 0; i < b.N; i++ {
		r.Reset(strings.NewReader(data), "bench")
		n := 0
		for r.Scan() {
			n++
		}
		if n != 1000 {
			b.Fatalf("read %d records, want 1000", n)
		}
	}
}
