// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package syntax documents the syntax used by filter and projection
// expressions over encoding runs.
//
// Each run read from a consumption log or a quality table is
// identified by a few keys, and carries one or more measurements.
// Filters and projections refer to these keys by name:
//
// - "video" is the name of the source video.
//
// - "codec" is the encoder under test.
//
// - "bitrate" or "config_qp" is the rate-control parameter of a
// quality table row, such as "50k" or "QP49".
//
// - ".label" is the input file the run was read from, or the label
// given to it on the command line with "label=path".
//
// - ".unit" (only in filters) refers to individual measurements of a
// run, such as "cpu-sec" or "psnr-avg-dB". The filter ".unit:cpu-sec"
// keeps just the CPU time of each run.
//
// - ".config" (only in projections) refers to all of the keys of a
// run that are not projected by some other projection. This isn't a
// string like the other keys, but rather a tuple.
//
// # Filters
//
// Filters are boolean expressions that match or exclude runs or
// individual measurements.
//
// A basic "key:value" filter matches runs for which the value of
// "key" is "value". Keys and values can be bare words if they don't
// contain any special characters, or double-quoted strings using Go
// syntax. Values can also be regular expressions surrounded by "/"s,
// such as "video:/_cif$/". Basic filters can be extended to
// "key:(value1 value2 ...)", which will match if any of the values
// match. Finally, the basic filter "*" matches everything.
//
// Filters can be prefixed with "-" to negate them, or combined with
// "AND" and "OR" operators and parentheses. The "AND" operator can be
// omitted, so "a:b AND c:d" is equivalent to "a:b c:d".
//
// Detailed syntax:
//
//	expr     = andExpr {"OR" andExpr}
//	andExpr  = match {"AND"? match}
//	match    = "(" expr ")"
//	         | "-" match
//	         | "*"
//	         | key ":" value
//	         | key ":" "(" value {value} ")"
//	key      = word
//	value    = word
//	         | "/" regexp "/"
//
// # Projections
//
// A projection expresses how to extract a tuple of keys from a run,
// as well as a sort order for projected tuples.
//
// A projection is a comma- or space-separated list of components.
// Each component specifies a key and optionally a sort order and a
// filter as follows:
//
// - "key" extracts the named key and orders it by the order in which
// values of this key are first observed in the data.
//
// - "key@order" specifies one of the built-in named sort orders. This
// can be "alpha" or "num" for alphabetic or numeric sorting. "num"
// understands metric and IEC prefixes like "50k" and "1Mi", and
// ignores non-numeric prefixes, so "QP49" sorts as 49.
//
// - "key@(value value ...)" specifies a fixed value order for key.
// It also specifies a filter: if key has a value that isn't any of
// the specified values, the run is filtered out.
//
// Syntax:
//
//	expr     = part {","? part}
//	part     = key
//	         | key "@" order
//	         | key "@" "(" word {word} ")"
//	key      = word
//	order    = word
//
// # Common syntax
//
// Filters and projections share the following common base syntax:
//
//	word     = bareWord
//	         | double-quoted Go string
//	bareWord = [^-*"():@,][^ ():@,]*
package syntax
