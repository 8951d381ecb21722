// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import "strconv"

// A parser consumes a query one token at a time. After the first
// error the tokenizer is at the end of the input, so every later
// token reads as the end and the parse unwinds.
type parser struct {
	t tokenizer
}

func newParser(q string) *parser {
	return &parser{t: newTokenizer(q)}
}

func (p *parser) peekKey() tok {
	tk, _ := p.t.key()
	return tk
}

func (p *parser) nextKey() tok {
	tk, t := p.t.key()
	p.t = t
	return tk
}

func (p *parser) nextValue() tok {
	tk, t := p.t.value()
	p.t = t
	return tk
}

// fail records msg at the current position.
func (p *parser) fail(msg string) {
	p.failAt(p.t, msg)
}

// failAt records msg at the position of t.
func (p *parser) failAt(t tokenizer, msg string) {
	_, p.t = t.error(msg)
}

// finish checks that the whole query was consumed and returns the
// first error.
func (p *parser) finish() error {
	p.t = p.t.end()
	if err := p.t.errt.err; err != nil {
		return err
	}
	return nil
}

// ParseFilter parses a filter expression into a Filter tree.
func ParseFilter(q string) (Filter, error) {
	p := newParser(q)
	f := p.or()
	if err := p.finish(); err != nil {
		return nil, err
	}
	return f, nil
}

func combine(op Op, terms []Filter) Filter {
	if len(terms) == 1 {
		return terms[0]
	}
	return &FilterOp{op, terms}
}

// or = and {"OR" and}
func (p *parser) or() Filter {
	terms := []Filter{p.and()}
	for p.peekKey().Kind == 'O' {
		p.nextKey()
		terms = append(terms, p.and())
	}
	return combine(OpOr, terms)
}

// and = term {["AND"] term}
func (p *parser) and() Filter {
	terms := []Filter{p.term()}
	for {
		switch tk := p.peekKey(); tk.Kind {
		case 'A':
			p.nextKey()
		case '(', '-', '*', 'w', 'q':
			terms = append(terms, p.term())
		case ')', 'O', 0:
			return combine(OpAnd, terms)
		default:
			p.fail("unexpected " + strconv.Quote(tk.Tok))
			return nil
		}
	}
}

// term = "(" or ")" | "-" term | "*" | match
func (p *parser) term() Filter {
	start := p.t
	switch tk := p.nextKey(); tk.Kind {
	case '(':
		f := p.or()
		if p.peekKey().Kind != ')' {
			p.fail(`missing ")"`)
			return nil
		}
		p.nextKey()
		return f
	case '-':
		return &FilterOp{OpNot, []Filter{p.term()}}
	case '*':
		return &FilterOp{OpAnd, nil}
	case 'w', 'q':
		return p.match(start, tk)
	}
	p.failAt(start, "expected key:value or subexpression")
	return nil
}

// match = key ":" value | key ":" "(" value {value} ")"
//
// A parenthesized list matches any of its values.
func (p *parser) match(start tokenizer, key tok) Filter {
	if p.nextKey().Kind != ':' {
		p.failAt(start, "expected key:value")
		return nil
	}
	switch val := p.nextValue(); val.Kind {
	case 'w', 'q', 'r':
		return newMatch(key, val)
	case '(':
		var terms []Filter
		for {
			before := p.t
			switch val := p.nextValue(); val.Kind {
			case 'w', 'q', 'r':
				terms = append(terms, newMatch(key, val))
			case ')':
				if len(terms) == 0 {
					p.failAt(before, "nothing to match")
					return nil
				}
				return &FilterOp{OpOr, terms}
			default:
				p.failAt(before, "expected value")
				return nil
			}
		}
	}
	p.failAt(start, "expected key:value")
	return nil
}

func newMatch(key, val tok) *FilterMatch {
	m := &FilterMatch{Key: key.Tok, Off: key.Off}
	if val.Kind == 'r' {
		m.Regexp = val.Regexp
	} else {
		m.Lit = val.Tok
	}
	return m
}
