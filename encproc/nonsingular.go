// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encproc

// NonSingularFields returns the subset of Schema fields for which at
// least two of configs have different values.
//
// This is useful for warning the user if aggregating a set of runs
// has hidden configuration differences, for example runs of the same
// video and codec read from two different logs. Typically these are
// residue configurations produced by ProjectionParser.Residue.
func NonSingularFields(configs []Config) []Field {
	if len(configs) < 2 {
		return nil
	}
	var out []Field
	for _, f := range commonSchema(configs).Fields() {
		if varies(configs, f) {
			out = append(out, f)
		}
	}
	return out
}

func varies(configs []Config, f Field) bool {
	first := configs[0].Get(f)
	for _, c := range configs[1:] {
		if c.Get(f) != first {
			return true
		}
	}
	return false
}
