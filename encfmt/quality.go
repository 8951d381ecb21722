// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encfmt

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrNoParamColumn is returned by a QualityReader whose table has
// neither a "bitrate" nor a "config_qp" column.
var ErrNoParamColumn = errors.New("no bitrate or config_qp column")

// A Mode is the rate-control mode of a quality experiment.
type Mode int

const (
	// ModeBitrate means each run targeted a bitrate.
	ModeBitrate Mode = iota
	// ModeQP means each run used a fixed quantization parameter.
	ModeQP
)

func (m Mode) String() string {
	switch m {
	case ModeBitrate:
		return "Bitrate"
	case ModeQP:
		return "QP"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParamKey returns the name of the table column that holds the rate
// control parameter in mode m.
func (m Mode) ParamKey() string {
	if m == ModeQP {
		return "config_qp"
	}
	return "bitrate"
}

// A QualityReader reads QualityRecords from a CSV quality table.
//
// The table must have a header row naming at least the columns
// "video", "codec", "psnr_y" and "psnr_avg", and one of "bitrate" or
// "config_qp". If both are present, the table is in bitrate mode.
// Other columns are ignored.
//
// Rows whose PSNR values are missing, unparsable, infinite or NaN
// are skipped and counted in Dropped.
type QualityReader struct {
	r        *csv.Reader
	fileName string
	label    string
	err      error

	header  bool
	mode    Mode
	cols    qualityCols
	record  QualityRecord
	dropped int
}

type qualityCols struct {
	video, codec, param, psnrY, psnrAvg int
}

// NewQualityReader returns a reader of the quality table in r.
// fileName is used in error messages and as the label of the
// resulting records.
func NewQualityReader(r io.Reader, fileName string) *QualityReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	if fileName == "" {
		fileName = "<unknown>"
	}
	return &QualityReader{r: cr, fileName: fileName, label: fileName}
}

// readHeader reads the header row and locates the columns.
func (q *QualityReader) readHeader() error {
	row, err := q.r.Read()
	if err == io.EOF {
		return fmt.Errorf("%s: empty quality table", q.fileName)
	} else if err != nil {
		return fmt.Errorf("%s: %w", q.fileName, err)
	}

	idx := make(map[string]int)
	for i, name := range row {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	col := func(name string) (int, error) {
		i, ok := idx[name]
		if !ok {
			return 0, fmt.Errorf("%s: missing column %q", q.fileName, name)
		}
		return i, nil
	}

	if q.cols.video, err = col("video"); err != nil {
		return err
	}
	if q.cols.codec, err = col("codec"); err != nil {
		return err
	}
	if q.cols.psnrY, err = col("psnr_y"); err != nil {
		return err
	}
	if q.cols.psnrAvg, err = col("psnr_avg"); err != nil {
		return err
	}
	if i, ok := idx["bitrate"]; ok {
		q.mode, q.cols.param = ModeBitrate, i
	} else if i, ok := idx["config_qp"]; ok {
		q.mode, q.cols.param = ModeQP, i
	} else {
		return fmt.Errorf("%s: %w", q.fileName, ErrNoParamColumn)
	}
	return nil
}

// Scan advances to the next valid row and reports whether one was
// read. The caller should use Record to get it, and Err once Scan
// returns false.
func (q *QualityReader) Scan() bool {
	if q.err != nil {
		return false
	}
	if !q.header {
		q.header = true
		if q.err = q.readHeader(); q.err != nil {
			return false
		}
	}

	for {
		row, err := q.r.Read()
		if err == io.EOF {
			return false
		} else if err != nil {
			q.err = fmt.Errorf("%s: %w", q.fileName, err)
			return false
		}

		y, okY := parseFinite(field(row, q.cols.psnrY))
		avg, okAvg := parseFinite(field(row, q.cols.psnrAvg))
		if !okY || !okAvg {
			q.dropped++
			continue
		}
		q.record = QualityRecord{
			Video:    field(row, q.cols.video),
			Codec:    field(row, q.cols.codec),
			ParamKey: q.mode.ParamKey(),
			Param:    field(row, q.cols.param),
			PSNRY:    y,
			PSNRAvg:  avg,
			Label:    q.label,
		}
		return true
	}
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Mode returns the rate-control mode of the table. It is valid once
// Scan has been called.
func (q *QualityReader) Mode() Mode {
	return q.mode
}

// Record returns the last record read.
func (q *QualityReader) Record() QualityRecord {
	return q.record
}

// Dropped returns the number of rows skipped so far because of
// missing or non-finite PSNR values.
func (q *QualityReader) Dropped() int {
	return q.dropped
}

// Err returns the error that stopped Scan, if any.
func (q *QualityReader) Err() error {
	return q.err
}
