// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encunit

import (
	"strconv"
	"strings"
)

// Multiplicative factors from a size suffix to kilobytes.
const (
	kbPerK = 1
	kbPerM = 1024
	kbPerG = 1024 * 1024
	kbPerB = 1.0 / 1024
)

// ParseSize converts a size token such as "450K", "1.2M", "2G" or
// "2048" to kilobytes. Suffixes are case-insensitive and surrounding
// whitespace is ignored. A token without a suffix is a count of bytes.
//
// If the numeric part of tok does not parse, ParseSize returns 0.
// Callers that need to know about the failure should use
// ParseSizeErr.
func ParseSize(tok string) float64 {
	kb, _ := ParseSizeErr(tok)
	return kb
}

// ParseSizeErr is like ParseSize, but also returns the error from
// parsing the numeric part of tok. The returned value is 0 whenever
// the error is non-nil.
func ParseSizeErr(tok string) (float64, error) {
	tok = strings.ToUpper(strings.TrimSpace(tok))
	num, factor := tok, kbPerB
	if n := len(tok); n > 0 {
		switch tok[n-1] {
		case 'K':
			num, factor = tok[:n-1], kbPerK
		case 'M':
			num, factor = tok[:n-1], kbPerM
		case 'G':
			num, factor = tok[:n-1], kbPerG
		}
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, err
	}
	return v * factor, nil
}

// KBToMB converts kilobytes to megabytes.
func KBToMB(kb float64) float64 {
	return kb / 1024
}
