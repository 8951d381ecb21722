// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encfmt

import (
	"encoding/csv"
	"io"
	"strconv"
)

// Header is the header row written by Writer.
var Header = []string{"video", "codec", "cpu_time_seconds", "peak_ram_megabytes", "output_size_kilobytes"}

// A Writer writes Records as a CSV table with one row per Record,
// preceded by Header.
type Writer struct {
	w     *csv.Writer
	first bool
}

// NewWriter returns a writer that writes Records to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w), first: true}
}

// Write writes rec. The first call also writes the header row.
func (w *Writer) Write(rec *Record) error {
	if w.first {
		if err := w.w.Write(Header); err != nil {
			return err
		}
		w.first = false
	}
	return w.w.Write([]string{
		rec.Video,
		rec.Codec,
		formatFloat(rec.CPUTime),
		formatFloat(rec.PeakRAM),
		formatFloat(rec.OutputSize),
	})
}

// Flush writes any buffered data to the underlying io.Writer. An
// empty table still gets its header row.
func (w *Writer) Flush() error {
	if w.first {
		if err := w.w.Write(Header); err != nil {
			return err
		}
		w.first = false
	}
	w.w.Flush()
	return w.w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
