// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encproc

import (
	"github.com/vcodec-lab/encperf/encfmt"
	"github.com/vcodec-lab/encperf/encproc/internal/parse"
)

// A Filter filters encoding runs and individual measurements.
type Filter struct {
	// match is the filter function that implements this filter.
	match filterFn
}

// filterFn is a filter function. If it returns a nil mask, the bool
// applies to every value of the run. Otherwise the mask gives the
// result for each value.
type filterFn func(encfmt.Run) (mask, bool)

// NewFilter constructs a result filter from a boolean filter
// expression, such as "codec:h264 .unit:cpu-sec". See "go doc
// github.com/vcodec-lab/encperf/encproc/syntax" for a description of
// filter syntax.
//
// To create a filter that matches everything, pass "*" for query.
func NewFilter(query string) (*Filter, error) {
	q, err := parse.ParseFilter(query)
	if err != nil {
		return nil, err
	}

	m, err := newFilterFn(query, q)
	if err != nil {
		return nil, err
	}
	return &Filter{m}, nil
}

func newFilterFn(query string, q parse.Filter) (filterFn, error) {
	switch q := q.(type) {
	case *parse.FilterOp:
		subs := make([]filterFn, 0, len(q.Exprs))
		for _, sub := range q.Exprs {
			subM, err := newFilterFn(query, sub)
			if err != nil {
				return nil, err
			}
			subs = append(subs, subM)
		}
		return filterOp(q.Op, subs), nil

	case *parse.FilterMatch:
		if q.Key == ".unit" {
			return func(r encfmt.Run) (mask, bool) {
				values := r.Values()
				m := newMask(len(values))
				for i, val := range values {
					if q.Match(val.Unit) {
						m.set(i)
					}
				}
				return m, false
			}, nil
		}

		ext, err := newExtractor(q.Key)
		if err != nil {
			return nil, &parse.SyntaxError{Query: query, Off: q.Off, Msg: err.Error()}
		}
		return func(r encfmt.Run) (mask, bool) {
			return nil, q.Match(ext(r))
		}, nil
	}
	panic("unknown filter node type")
}

func filterOp(op parse.Op, subs []filterFn) filterFn {
	switch op {
	case parse.OpNot:
		sub := subs[0]
		return func(r encfmt.Run) (mask, bool) {
			m, x := sub(r)
			if m == nil {
				return nil, !x
			}
			m.not()
			return m, false
		}

	case parse.OpAnd:
		return func(r encfmt.Run) (mask, bool) {
			var out mask
			for _, sub := range subs {
				m, x := sub(r)
				if m == nil {
					if !x {
						return nil, false
					}
					continue
				}
				if out == nil {
					out = m
				} else {
					out.and(m)
				}
			}
			if out == nil {
				return nil, true
			}
			return out, false
		}

	case parse.OpOr:
		return func(r encfmt.Run) (mask, bool) {
			var out mask
			for _, sub := range subs {
				m, x := sub(r)
				if m == nil {
					if x {
						return nil, true
					}
					continue
				}
				if out == nil {
					out = m
				} else {
					out.or(m)
				}
			}
			if out == nil {
				return nil, false
			}
			return out, false
		}
	}
	panic("unknown filter operator")
}

// Match returns the set of values of r that f matches.
func (f *Filter) Match(r encfmt.Run) Match {
	m, x := f.match(r)
	return Match{len(r.Values()), m, x}
}

// Apply reports whether f matches any value of r.
func (f *Filter) Apply(r encfmt.Run) bool {
	m := f.Match(r)
	return m.Any()
}

// A Match records the set of values of a run matched by a Filter.
type Match struct {
	n int
	m mask
	x bool
}

// All reports whether all values of the run matched.
func (m *Match) All() bool {
	if m.m == nil {
		return m.x
	}
	for i := 0; i < m.n; i++ {
		if !m.m.test(i) {
			return false
		}
	}
	return true
}

// Any reports whether any value of the run matched.
func (m *Match) Any() bool {
	if m.m == nil {
		return m.x
	}
	for i := 0; i < m.n; i++ {
		if m.m.test(i) {
			return true
		}
	}
	return false
}

// Test reports whether value i of the run matched.
func (m *Match) Test(i int) bool {
	if i < 0 || i >= m.n {
		return false
	}
	if m.m == nil {
		return m.x
	}
	return m.m.test(i)
}

// A mask is a bitset of value indexes.
type mask []uint32

func newMask(n int) mask {
	return make(mask, (n+31)/32)
}

func (m mask) set(i int) {
	m[i/32] |= 1 << (i % 32)
}

func (m mask) test(i int) bool {
	return m[i/32]&(1<<(i%32)) != 0
}

// not inverts m, including the unused bits past the last value.
func (m mask) not() {
	for i := range m {
		m[i] = ^m[i]
	}
}

func (m mask) and(o mask) {
	for i := range m {
		m[i] &= o[i]
	}
}

func (m mask) or(o mask) {
	for i := range m {
		m[i] |= o[i]
	}
}
