// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package encfmt reads and writes the logs and tables produced by
// video-encoding experiments.
//
// The main input is the consumption log: a line-oriented report in
// which each encoding run begins with a header line
//
//	>>> VIDEO: akiyo_cif | CODEC: h264 |
//
// and is followed by the output of GNU time ("User time (seconds):",
// "Maximum resident set size (kbytes):") and the size of the encoded
// file ("TAMAÑO_ARCHIVO:" or "TAMAÑO_ARCHIVO_FINAL:"). Reader turns
// such a log into a sequence of Records, one per run.
//
// The package also reads quality tables (CSV files of PSNR
// measurements) with QualityReader and writes Records back out as CSV
// with Writer.
//
// Like bufio.Scanner, the readers in this package are streaming: the
// caller calls Scan until it returns false and then checks Err.
package encfmt

import "github.com/vcodec-lab/encperf/encunit"

// A Value is a single measurement and its unit.
type Value struct {
	Value float64
	Unit  string
}

// A Run is a single measured encoding run, viewed generically as a
// set of identifying keys and a set of measurements. Record and
// QualityRecord implement Run so that the processing packages need
// not know which kind of input they are handling.
type Run interface {
	// Keys returns the names of the keys of this run in a stable
	// order.
	Keys() []string
	// Key returns the value of key, or "" if the run has no such
	// key.
	Key(key string) string
	// Values returns the measurements of this run.
	Values() []Value
}

// Fields is a set of measurement fields of a Record.
type Fields uint8

const (
	FieldCPUTime Fields = 1 << iota
	FieldPeakRAM
	FieldOutputSize
)

// Has reports whether all fields in x are in f.
func (f Fields) Has(x Fields) bool {
	return f&x == x
}

// A Record is the result of one encoding run read from a consumption
// log.
//
// Measurements that were missing from the run's block, or that could
// not be parsed, are 0. Seen records which measurement lines were
// present in the block, which lets a consumer tell a measured zero
// from a missing measurement.
type Record struct {
	Video string
	Codec string

	// CPUTime is the user CPU time in seconds.
	CPUTime float64
	// PeakRAM is the maximum resident set size in megabytes.
	PeakRAM float64
	// OutputSize is the size of the encoded output in kilobytes.
	OutputSize float64

	// Label identifies the input this record was read from.
	Label string

	// Seen is the set of measurement lines present in this
	// record's block.
	Seen Fields
}

var recordKeys = []string{"video", "codec", ".label"}

// Keys implements Run.
func (r *Record) Keys() []string {
	return recordKeys
}

// Key implements Run.
func (r *Record) Key(key string) string {
	switch key {
	case "video":
		return r.Video
	case "codec":
		return r.Codec
	case ".label":
		return r.Label
	}
	return ""
}

// Values implements Run. The values are, in order, the CPU time, the
// peak RAM and the output size.
func (r *Record) Values() []Value {
	return []Value{
		{r.CPUTime, encunit.CPUTime},
		{r.PeakRAM, encunit.PeakRAM},
		{r.OutputSize, encunit.OutputSize},
	}
}

// A QualityRecord is one row of a quality table: the PSNR of one
// encoding of a video.
type QualityRecord struct {
	Video string
	Codec string

	// ParamKey is the name of the rate-control column of the
	// table, "bitrate" or "config_qp", and Param is this row's
	// value for it, such as "50k" or "QP49".
	ParamKey string
	Param    string

	// PSNRY and PSNRAvg are the luma and average PSNR in dB.
	PSNRY   float64
	PSNRAvg float64

	Label string
}

// Keys implements Run.
func (q *QualityRecord) Keys() []string {
	return []string{"video", "codec", q.ParamKey, ".label"}
}

// Key implements Run.
func (q *QualityRecord) Key(key string) string {
	switch key {
	case "video":
		return q.Video
	case "codec":
		return q.Codec
	case ".label":
		return q.Label
	case q.ParamKey:
		return q.Param
	}
	return ""
}

// Values implements Run.
func (q *QualityRecord) Values() []Value {
	return []Value{
		{q.PSNRY, encunit.PSNRY},
		{q.PSNRAvg, encunit.PSNRAvg},
	}
}
