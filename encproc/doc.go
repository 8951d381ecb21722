// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package encproc provides tools for filtering, grouping, and
// sorting encoding runs.
//
// This package supports a pipeline processing model based around
// small languages for filtering and projecting runs. These languages
// are described in "go doc github.com/vcodec-lab/encperf/encproc/syntax".
//
// The typical steps for processing a stream of runs are:
//
// 1. Filter each encfmt.Run according to a user predicate parsed by
// NewFilter. Filters can keep entire runs, or just particular
// measurements of a run.
//
// 2. Project each run according to one or more user projection
// expressions parsed by ProjectionParser. Projecting a run extracts a
// subset of its keys into a Config, which is an immutable tuple of
// strings whose structure is described by a Schema. Identical Configs
// compare == and hence can be used as map keys. Generally, tools will
// group runs by Config using one or more maps and then process each
// of these groups at the end of the stream.
//
// 3. Sort the observed Configs at the end of the stream. A projection
// expression also describes a sort order for Configs produced by that
// projection.
package encproc
