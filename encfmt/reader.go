// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encfmt

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/vcodec-lab/encperf/encunit"
)

// A Reader reads Records from a consumption log.
//
// Its API is modeled on bufio.Scanner. Each block of the log, from
// one header line up to the next header line or the end of the input,
// becomes one Record. Records are returned in the order their header
// lines appear.
//
// The zero value of the Reader is a valid Reader, but the user must
// call Reset before using it.
type Reader struct {
	s        *bufio.Scanner
	fileName string
	label    string
	lineNum  int
	err      error // current I/O error
	done     bool  // the final block has been flushed

	pending block
	record  Record

	onFieldError FieldErrorFunc
}

// A block accumulates the lines of the current run until it is
// finalized into a Record.
type block struct {
	video, codec string

	// Raw captures of the measurement lines, and the line numbers
	// they were captured from for error reporting.
	cpuTime, ramKB, size       string
	cpuLine, ramLine, sizeLine int
}

func (b *block) resetMeasurements() {
	video, codec := b.video, b.codec
	*b = block{video: video, codec: codec}
}

// A FieldError reports a measurement in a consumption log that could
// not be parsed. The affected field of the Record is left at 0.
type FieldError struct {
	FileName string
	Line     int
	// Field is the CSV column name of the affected field, such as
	// "cpu_time_seconds".
	Field string
	// Text is the captured text that failed to parse.
	Text string
	Err  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s:%d: parsing %s %q: %v", e.FileName, e.Line, e.Field, e.Text, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// A FieldErrorFunc is called by a Reader for each measurement that
// fails to parse.
type FieldErrorFunc func(err *FieldError)

var (
	headerRe  = regexp.MustCompile(`>>> VIDEO: (.*?) \| CODEC: (.*?) \|`)
	cpuTimeRe = regexp.MustCompile(`User time \(seconds\): ([\d.]+)`)
	peakRAMRe = regexp.MustCompile(`Maximum resident set size \(kbytes\): (\d+)`)
	sizeRe    = regexp.MustCompile(`TAMAÑO_ARCHIVO(?:_FINAL)?: ([\w.]+)`)
)

const maxLineSize = 1 << 20

// NewReader constructs a reader to parse a consumption log from r.
// fileName is used in error messages and as the label of the
// resulting Records.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName)
	return reader
}

// Reset resets the reader to begin reading from a new input. It does
// not reset the field error hook.
func (r *Reader) Reset(ior io.Reader, fileName string) {
	r.s = bufio.NewScanner(ior)
	r.s.Buffer(nil, maxLineSize)
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.fileName = fileName
	r.label = fileName
	r.lineNum = 0
	r.err = nil
	r.done = false
	r.pending = block{}
	r.record = Record{}
}

// OnFieldError installs f to be called for every measurement that
// fails to parse. Parse failures never change the Records produced;
// the hook only makes them observable.
func (r *Reader) OnFieldError(f FieldErrorFunc) {
	r.onFieldError = f
}

// Scan advances the reader to the next Record and reports whether a
// Record was read. The caller should use the Record method to get it.
// If Scan reaches EOF or an I/O error occurs, it returns false, in
// which case the caller should use the Err method to check for
// errors.
func (r *Reader) Scan() bool {
	if r.err != nil || r.done {
		return false
	}

	for r.s.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.s.Text())

		if m := headerRe.FindStringSubmatch(line); m != nil {
			ok := r.finalize()
			r.pending.video = strings.TrimSpace(m[1])
			r.pending.codec = strings.TrimSpace(m[2])
			if ok {
				return true
			}
			continue
		}

		// A line may carry more than one measurement.
		if m := cpuTimeRe.FindStringSubmatch(line); m != nil {
			r.pending.cpuTime, r.pending.cpuLine = m[1], r.lineNum
		}
		if m := peakRAMRe.FindStringSubmatch(line); m != nil {
			r.pending.ramKB, r.pending.ramLine = m[1], r.lineNum
		}
		if m := sizeRe.FindStringSubmatch(line); m != nil {
			r.pending.size, r.pending.sizeLine = m[1], r.lineNum
		}
	}

	if err := r.s.Err(); err != nil {
		r.err = fmt.Errorf("%s:%d: %w", r.fileName, r.lineNum, err)
		return false
	}
	r.done = true
	return r.finalize()
}

// finalize converts the pending block into r.record and reports
// whether it did so. Blocks without both a video and a codec are not
// finalized, and their measurements carry over to the next block.
func (r *Reader) finalize() bool {
	b := &r.pending
	if b.video == "" || b.codec == "" {
		return false
	}

	rec := Record{Video: b.video, Codec: b.codec, Label: r.label}
	if b.cpuTime != "" {
		rec.Seen |= FieldCPUTime
		if v, err := strconv.ParseFloat(b.cpuTime, 64); err != nil {
			r.fieldError(b.cpuLine, "cpu_time_seconds", b.cpuTime, err)
		} else {
			rec.CPUTime = v
		}
	}
	if b.ramKB != "" {
		rec.Seen |= FieldPeakRAM
		if v, err := strconv.ParseFloat(b.ramKB, 64); err != nil {
			r.fieldError(b.ramLine, "peak_ram_megabytes", b.ramKB, err)
		} else {
			rec.PeakRAM = encunit.KBToMB(v)
		}
	}
	if b.size != "" {
		rec.Seen |= FieldOutputSize
		if v, err := encunit.ParseSizeErr(b.size); err != nil {
			r.fieldError(b.sizeLine, "output_size_kilobytes", b.size, err)
		} else {
			rec.OutputSize = v
		}
	}

	r.record = rec
	b.resetMeasurements()
	return true
}

func (r *Reader) fieldError(line int, field, text string, err error) {
	if r.onFieldError == nil {
		return
	}
	r.onFieldError(&FieldError{r.fileName, line, field, text, err})
}

// Record returns the last Record read. Records are values, so the
// caller may retain the result.
func (r *Reader) Record() Record {
	return r.record
}

// Err returns the first non-EOF I/O error that was encountered by the
// Reader.
func (r *Reader) Err() error {
	return r.err
}

// ReadAll reads all Records from r.
func ReadAll(r io.Reader, fileName string) ([]Record, error) {
	var out []Record
	rd := NewReader(r, fileName)
	for rd.Scan() {
		out = append(out, rd.Record())
	}
	return out, rd.Err()
}
