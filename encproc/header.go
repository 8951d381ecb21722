// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encproc

// A ConfigHeader is a node in a Config header tree. It represents a
// subslice of a slice of Configs that are all equal up to some
// prefix.
//
// Specifically, given a Config slice configs and ConfigHeader node n,
// configs[n.Start:n.Start+n.Len] are equal for all fields from 0 to
// n.Field.
type ConfigHeader struct {
	// Field is the index of the Schema field represented by this
	// node.
	Field int

	// Start is the index of the first Config covered by this
	// node.
	Start int
	// Len is the number of Configs in the sequence represented by
	// this node. Visually, this is also the cell span of this
	// node.
	Len int

	// Value is the value that all Configs have in common for
	// Field.
	Value string
}

// NewConfigHeader combines a sequence of Configs by common prefixes.
//
// This is intended to visually present a sequence of Configs in a
// compact form; for example, as a header over a table where each
// column is keyed by a Config. Given the column configs
//
//	codec:h264 preset:fast
//	codec:h264 preset:slow
//	codec:vp8  preset:slow
//
// NewConfigHeader forms the levels
//
//	        +-----------------+------+
//	Level 0 |      h264       | vp8  |
//	        +--------+--------+------+
//	Level 1 |  fast  |  slow  | slow |
//	        +--------+--------+------+
//
// All Configs must have the same Schema. In the result, levels[i]
// corresponds to field i of this Schema. In each levels[i], the
// ConfigHeader nodes partition the whole configs slice, and each
// level is a stricter partitioning than the previous one.
func NewConfigHeader(configs []Config) (levels [][]*ConfigHeader) {
	if len(configs) == 0 {
		return nil
	}
	fields := commonSchema(configs).Fields()
	levels = make([][]*ConfigHeader, len(fields))
	parents := []*ConfigHeader{{Field: -1, Len: len(configs)}}
	for i, f := range fields {
		for _, parent := range parents {
			levels[i] = append(levels[i], split(configs, parent, i, f)...)
		}
		parents = levels[i]
	}
	return levels
}

// split divides the configs covered by parent into runs of equal
// values of f, the field at index i.
func split(configs []Config, parent *ConfigHeader, i int, f Field) []*ConfigHeader {
	var nodes []*ConfigHeader
	end := parent.Start + parent.Len
	for j := parent.Start; j < end; j++ {
		v := configs[j].Get(f)
		if n := len(nodes); n > 0 && nodes[n-1].Value == v {
			nodes[n-1].Len++
			continue
		}
		nodes = append(nodes, &ConfigHeader{Field: i, Start: j, Len: 1, Value: v})
	}
	return nodes
}
