// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"fmt"
	"strings"
)

// A Projection is one component in a projection expression. It
// represents extracting a single key of a run and applying an order
// to it.
type Projection struct {
	Key string

	// Order is the sort order for this field. This can be
	// "first", meaning to sort by order of first appearance;
	// "fixed", meaning to use the explicit value order in Fixed;
	// or a named sort order.
	Order string

	// Fixed gives the explicit value order for "fixed" ordering.
	// Runs whose value is not in this list are filtered out.
	Fixed []string

	// KeyOff and OrderOff give the byte offsets of the key and
	// order, for error reporting.
	KeyOff, OrderOff int
}

// String returns p as a valid projection expression.
func (p Projection) String() string {
	switch p.Order {
	case "first":
		return quoteWord(p.Key)
	case "fixed":
		words := make([]string, 0, len(p.Fixed))
		for _, word := range p.Fixed {
			words = append(words, quoteWord(word))
		}
		return fmt.Sprintf("%s@(%s)", quoteWord(p.Key), strings.Join(words, " "))
	}
	return fmt.Sprintf("%s@%s", quoteWord(p.Key), quoteWord(p.Order))
}

// ParseProjection parses a projection expression into a tuple of
// Projections. Components are separated by spaces or commas.
func ParseProjection(q string) ([]Projection, error) {
	p := newParser(q)
	var projs []Projection
	for {
		tk := p.peekKey()
		if tk.Kind == 0 {
			break
		}
		if tk.Kind == ',' && len(projs) > 0 {
			p.nextKey()
		}
		projs = append(projs, p.projection())
	}
	if err := p.finish(); err != nil {
		return nil, err
	}
	return projs, nil
}

// projection = key ["@" order | "@" "(" word {word} ")"]
func (p *parser) projection() Projection {
	key := p.peekKey()
	if key.Kind != 'w' && key.Kind != 'q' {
		p.fail("expected key")
		return Projection{}
	}
	p.nextKey()
	proj := Projection{
		Key:      key.Tok,
		Order:    "first",
		KeyOff:   key.Off,
		OrderOff: key.Off + len(key.Tok),
	}
	if p.peekKey().Kind != '@' {
		return proj
	}
	p.nextKey()

	order := p.peekKey()
	proj.OrderOff = order.Off
	switch order.Kind {
	case 'w', 'q':
		p.nextKey()
		proj.Order = order.Tok
	case '(':
		p.nextKey()
		proj.Order = "fixed"
		proj.Fixed = p.words()
	default:
		p.fail("expected named sort order or parenthesized list")
	}
	return proj
}

// words parses the rest of a parenthesized word list.
func (p *parser) words() []string {
	var words []string
	for {
		switch tk := p.peekKey(); tk.Kind {
		case 'w', 'q':
			p.nextKey()
			words = append(words, tk.Tok)
		case ')':
			if len(words) == 0 {
				p.fail("nothing to match")
				return nil
			}
			p.nextKey()
			return words
		default:
			p.fail("missing )")
			return words
		}
	}
}
