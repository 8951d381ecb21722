// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encproc

import (
	"fmt"
	"hash/maphash"
	"strings"

	"github.com/vcodec-lab/encperf/encfmt"
	"github.com/vcodec-lab/encperf/encproc/internal/parse"
)

// A ProjectionParser parses projection expressions, which describe
// how to extract keys of an encfmt.Run into a Config and how to order
// the resulting Configs.
//
// Projections parsed by the same ProjectionParser are mutually
// exclusive: a key named in one of them is left out of the ".config"
// group of every other. With "-row video -col .config", the column
// configs hold codec and .label but never video.
type ProjectionParser struct {
	named      map[string]bool // keys projected by name
	haveConfig bool            // some projection used .config
}

// Parse parses a single projection expression, such as "video,codec".
// See "go doc github.com/vcodec-lab/encperf/encproc/syntax" for a
// description of projection syntax.
//
// Fixed orders such as "codec@(h264 vp8)" also select runs: Parse
// narrows filter to the runs whose value is in each fixed list.
func (p *ProjectionParser) Parse(proj string, filter *Filter) (*Schema, error) {
	parts, err := parse.ParseProjection(proj)
	if err != nil {
		return nil, err
	}
	if p.named == nil {
		p.named = make(map[string]bool)
	}

	s := newSchema()
	var fixed []filterFn
	for _, part := range parts {
		f, err := p.add(s, proj, part)
		if err != nil {
			return nil, err
		}
		if f != nil {
			fixed = append(fixed, f)
		}
	}
	if len(fixed) > 0 {
		filter.match = filterOp(parse.OpAnd, append(fixed, filter.match))
	}
	return s, nil
}

// Residue returns a projection of the keys that no parsed projection
// names. The order of the resulting Schema is not meaningful.
func (p *ProjectionParser) Residue() *Schema {
	s := newSchema()
	if !p.haveConfig {
		p.add(s, "", parse.Projection{Key: ".config", Order: "first"})
	}
	return s
}

// newOrder returns a function that sets up the comparison of a new
// field for the order of proj. For fixed orders it also returns the
// position of each listed value.
func newOrder(q string, proj parse.Projection) (init func(Field), fixed map[string]int, err error) {
	switch proj.Order {
	case "first":
		return func(f Field) {
			f.order = make(map[string]int)
			f.cmp = f.firstSeen
		}, nil, nil
	case "fixed":
		fixed = make(map[string]int, len(proj.Fixed))
		for i, v := range proj.Fixed {
			fixed[v] = i
		}
		return func(f Field) {
			f.cmp = func(a, b string) int { return fixed[a] - fixed[b] }
		}, fixed, nil
	}
	cmp, ok := builtinOrders[proj.Order]
	if !ok {
		return nil, nil, &parse.SyntaxError{Query: q, Off: proj.OrderOff, Msg: fmt.Sprintf("unknown order %q", proj.Order)}
	}
	return func(f Field) { f.cmp = cmp }, nil, nil
}

// add adds the field or group of proj to s. If proj has a fixed
// order, add returns the filter it implies.
func (p *ProjectionParser) add(s *Schema, q string, proj parse.Projection) (filterFn, error) {
	init, fixed, err := newOrder(q, proj)
	if err != nil {
		return nil, err
	}

	if proj.Key == ".config" {
		if fixed != nil {
			return nil, &parse.SyntaxError{Query: q, Off: proj.OrderOff, Msg: "fixed order not allowed for .config"}
		}
		p.haveConfig = true
		p.addConfig(s, init)
		return nil, nil
	}

	ext, err := newExtractor(proj.Key)
	if err != nil {
		return nil, &parse.SyntaxError{Query: q, Off: proj.KeyOff, Msg: err.Error()}
	}
	p.named[proj.Key] = true
	field := s.addField(s.root, proj.Key)
	init(field)
	s.project = append(s.project, func(r encfmt.Run, row *[]string) {
		(*row)[field.idx] = ext(r)
	})

	if fixed == nil {
		return nil, nil
	}
	return func(r encfmt.Run) (mask, bool) {
		_, ok := fixed[ext(r)]
		return nil, ok
	}, nil
}

// addConfig adds a ".config" group to s. The group gains a field for
// each key when a run with that key is first projected, unless a
// projection names the key. Projections parsed later may still name
// it, so the check happens then rather than now.
func (p *ProjectionParser) addConfig(s *Schema, init func(Field)) {
	group := s.addGroup(s.root, ".config")
	fields := make(map[string]Field)
	s.project = append(s.project, func(r encfmt.Run, row *[]string) {
		for _, key := range r.Keys() {
			f, ok := fields[key]
			if !ok {
				if p.named[key] {
					continue
				}
				f = s.addField(group, key)
				init(f)
				fields[key] = f
			}
			(*row)[f.idx] = r.Key(key)
		}
	})
}

// A Schema projects some subset of the keys of an encfmt.Run into a
// Config. All Configs of a Schema share its structure, and two of
// them are == exactly when their values are equal, so Configs work
// as map keys. A Schema also orders its Configs lexicographically by
// field, each field using the order of its projection.
type Schema struct {
	root    Field
	nFields int

	// unitField is the ".unit" field added by AddValues, if any.
	unitField Field

	// fields caches the flattened fields; nil when stale.
	fields []Field

	// project fills a row from a run. A projection may add fields
	// to the schema, growing the row, hence the pointer.
	project []func(r encfmt.Run, row *[]string)

	row []string

	// interned holds every Config made so far, by hash of its row.
	interned map[uint64][]*tuple
}

func newSchema() *Schema {
	s := &Schema{interned: make(map[uint64][]*tuple)}
	s.root.fieldState = &fieldState{idx: -1}
	return s
}

// addField adds a value field to group. Fields are numbered in the
// order they are created, so adding one never invalidates existing
// Configs.
func (s *Schema) addField(group Field, name string) Field {
	if group.idx != -1 {
		panic("field's parent is not a group")
	}
	f := Field{name, &fieldState{schema: s, idx: s.nFields}}
	s.nFields++
	group.sub = append(group.sub, f)
	s.row = append(s.row, "")
	s.fields = nil
	return f
}

func (s *Schema) addGroup(group Field, name string) Field {
	f := Field{name, &fieldState{schema: s, idx: -1}}
	group.sub = append(group.sub, f)
	return f
}

// AddValues adds a ".unit" field to s, ordered by first appearance,
// that tells apart the Values of a run. Callers of a Schema with a
// .unit field should use ProjectValues instead of Project.
func (s *Schema) AddValues() Field {
	if s.unitField.fieldState != nil {
		panic("Schema already has a .unit field")
	}
	f := s.addField(s.root, ".unit")
	f.order = make(map[string]int)
	f.cmp = f.firstSeen
	s.unitField = f
	return f
}

// Fields returns the fields of s in the order of its projection
// expression. A .config group contributes one field per key seen so
// far, so projecting a run can add fields.
//
// The caller must not modify the returned slice.
func (s *Schema) Fields() []Field {
	if s.fields == nil {
		s.fields = make([]Field, 0, s.nFields)
		s.root.flatten(&s.fields)
	}
	return s.fields
}

// A Field is a single dimension of a Schema.
type Field struct {
	Name string
	*fieldState
}

type fieldState struct {
	schema *Schema

	// idx is the position of this field's value in a tuple, or -1
	// for a group.
	idx int
	sub []Field // members of a group

	// cmp compares two values of this field. It returns 0 for
	// equal or unordered values.
	cmp func(a, b string) int

	// order, if non-nil, numbers values in order of first
	// appearance.
	order map[string]int
}

func (f Field) flatten(out *[]Field) {
	if f.idx != -1 {
		*out = append(*out, f)
		return
	}
	for _, sub := range f.sub {
		sub.flatten(out)
	}
}

func (f Field) firstSeen(a, b string) int {
	return f.order[a] - f.order[b]
}

// String returns the name of Field f.
func (f Field) String() string {
	return f.Name
}

var tupleSeed = maphash.MakeSeed()

// Project extracts the keys of r selected by s as an immutable
// Config. A .unit field is left empty; see ProjectValues.
func (s *Schema) Project(r encfmt.Run) Config {
	s.fill(r)
	return s.intern()
}

// ProjectValues projects r once for each of r.Values(), in the same
// order. The Configs differ only in their .unit field, and are all
// the same if s has none.
func (s *Schema) ProjectValues(r encfmt.Run) []Config {
	s.fill(r)
	values := r.Values()
	out := make([]Config, len(values))
	for i, val := range values {
		if s.unitField.fieldState != nil {
			s.row[s.unitField.idx] = val.Unit
		} else if i > 0 {
			out[i] = out[0]
			continue
		}
		out[i] = s.intern()
	}
	return out
}

func (s *Schema) fill(r encfmt.Run) {
	for i := range s.row {
		s.row[i] = ""
	}
	for _, project := range s.project {
		project(r, &s.row)
	}
}

// intern returns the Config for the current row, creating it if
// needed. Trailing empty values are trimmed first, so a Config made
// before the schema grew equals one made after with the new fields
// empty.
func (s *Schema) intern() Config {
	row := s.row
	for len(row) > 0 && row[len(row)-1] == "" {
		row = row[:len(row)-1]
	}
	var h maphash.Hash
	h.SetSeed(tupleSeed)
	for _, v := range row {
		h.WriteString(v)
		h.WriteByte(0)
	}
	sum := h.Sum64()
	for _, t := range s.interned[sum] {
		if t.equal(row) {
			return Config{t}
		}
	}

	for _, f := range s.Fields() {
		if f.order == nil {
			continue
		}
		v := valueAt(row, f.idx)
		if _, ok := f.order[v]; !ok {
			f.order[v] = len(f.order)
		}
	}
	t := &tuple{s, append([]string(nil), row...)}
	s.interned[sum] = append(s.interned[sum], t)
	return Config{t}
}

// A Config is an immutable tuple of values, one per Field of its
// Schema. Two Configs are == if they come from the same Schema and
// have identical values.
type Config struct {
	c *tuple
}

// IsZero reports whether c is the zero Config, which has no schema.
func (c Config) IsZero() bool {
	return c.c == nil
}

// Get returns the value of f in c. It panics if f belongs to another
// Schema.
func (c Config) Get(f Field) string {
	if c.IsZero() {
		panic("zero Config has no fields")
	}
	if c.c.schema != f.schema {
		panic("Config and Field have different Schemas")
	}
	return valueAt(c.c.vals, f.idx)
}

// Schema returns the Schema describing Config c.
func (c Config) Schema() *Schema {
	if c.IsZero() {
		return nil
	}
	return c.c.schema
}

// String returns c as space-separated key:value pairs in schema
// order, omitting empty values.
func (c Config) String() string {
	return c.format(true)
}

// StringValues is like String but omits the keys.
func (c Config) StringValues() string {
	return c.format(false)
}

func (c Config) format(keys bool) string {
	if c.IsZero() {
		return "<zero>"
	}
	var parts []string
	for _, f := range c.c.schema.Fields() {
		v := valueAt(c.c.vals, f.idx)
		switch {
		case v == "":
		case keys:
			parts = append(parts, f.Name+":"+v)
		default:
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// commonSchema returns the Schema of configs, or nil if there are
// none. It panics if the Schemas differ.
func commonSchema(configs []Config) *Schema {
	if len(configs) == 0 {
		return nil
	}
	s := configs[0].Schema()
	for _, c := range configs[1:] {
		if c.Schema() != s {
			panic("Configs must all have the same Schema")
		}
	}
	return s
}

// A tuple backs a Config, whose identity is the tuple's address.
type tuple struct {
	schema *Schema
	vals   []string // indexed by Field.idx, trailing "" trimmed
}

func (t *tuple) equal(row []string) bool {
	if len(t.vals) != len(row) {
		return false
	}
	for i := range row {
		if t.vals[i] != row[i] {
			return false
		}
	}
	return true
}
