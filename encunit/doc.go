// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package encunit manipulates the units of video-encoding
// measurements.
//
// Encoders and the tools that wrap them report sizes and memory in a
// mix of units: GNU time reports resident set size in kilobytes, and
// "du -h" style size tokens carry K, M or G suffixes or no suffix at
// all. This package normalizes those into the fixed units used by the
// rest of this module: seconds of CPU time, megabytes of peak RAM and
// kilobytes of output.
package encunit
