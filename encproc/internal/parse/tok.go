// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// A SyntaxError is an error produced by parsing a malformed filter or
// projection expression.
type SyntaxError struct {
	Query string // The original query
	Off   int    // Byte offset of the error in Query
	Msg   string // Error message
}

func (e *SyntaxError) Error() string {
	// Show the original query and point to the offset of the
	// error.
	return fmt.Sprintf("syntax error: %s\n\t%s\n\t%*s^", e.Msg, e.Query, e.Off, "")
}

// An errorTracker records the first error found while tokenizing a
// query. It is shared by all tokenizers derived from the same query.
type errorTracker struct {
	qOrig string
	err   *SyntaxError
}

func (t *errorTracker) error(q string, msg string) {
	off := len(t.qOrig) - len(q)
	if t.err == nil {
		t.err = &SyntaxError{t.qOrig, off, msg}
	}
}

// A tok is a single token in the filter/projection lexical syntax.
type tok struct {
	// Kind specifies the category of this token. It is either 'w'
	// or 'q' for an unquoted or quoted word, respectively, 'r'
	// for a regexp, an operator character, 'A' or 'O' for the
	// keywords AND and OR, 0 for the end of the input, or 'x' for
	// an error.
	Kind byte
	// Off is the byte offset of the beginning of this token.
	Off int
	// Tok is the unquoted text of this token.
	Tok string
	// Regexp is the compiled regexp of an 'r' token.
	Regexp *regexp.Regexp
}

// A tokenizer is an immutable position in a query. Methods that
// consume a token return the token and a new tokenizer positioned
// after it, so callers can cheaply look ahead and backtrack.
type tokenizer struct {
	q    string
	errt *errorTracker
}

func newTokenizer(q string) tokenizer {
	return tokenizer{q, &errorTracker{q, nil}}
}

func isOp(ch rune) bool {
	return ch == '(' || ch == ')' || ch == ':' || ch == '@' || ch == ','
}

// At the beginning of a word, we accept "-" and "*" as operators,
// but in the middle of words we treat them as part of the word.
func isStartOp(ch rune) bool {
	return isOp(ch) || ch == '-' || ch == '*'
}

func (t tokenizer) off() int {
	return len(t.errt.qOrig) - len(t.q)
}

func (t tokenizer) skipSpace() tokenizer {
	t.q = strings.TrimLeftFunc(t.q, unicode.IsSpace)
	return t
}

// error records msg at the current position and returns an error
// token and a tokenizer positioned at the end of the input, so that
// parsing stops.
func (t tokenizer) error(msg string) (tok, tokenizer) {
	t.errt.error(t.q, msg)
	off := t.off()
	t.q = ""
	return tok{'x', off, msg, nil}, t
}

// key consumes a key or operator token.
func (t tokenizer) key() (tok, tokenizer) {
	t = t.skipSpace()
	off := t.off()
	if len(t.q) == 0 {
		return tok{0, off, "", nil}, t
	}
	ch, size := utf8.DecodeRuneInString(t.q)
	if isStartOp(ch) {
		tk := tok{byte(ch), off, t.q[:size], nil}
		t.q = t.q[size:]
		return tk, t
	}
	if ch == '"' {
		return t.quotedWord()
	}
	// Bare word.
	end := strings.IndexFunc(t.q, func(ch rune) bool {
		return unicode.IsSpace(ch) || isOp(ch)
	})
	if end < 0 {
		end = len(t.q)
	}
	word := t.q[:end]
	t.q = t.q[end:]
	switch word {
	case "AND":
		return tok{'A', off, word, nil}, t
	case "OR":
		return tok{'O', off, word, nil}, t
	}
	return tok{'w', off, word, nil}, t
}

// value consumes a value token. This differs from key in that
// operator characters other than parentheses are part of a bare
// value, AND and OR are not keywords, and a value may be a
// /regexp/.
func (t tokenizer) value() (tok, tokenizer) {
	t = t.skipSpace()
	off := t.off()
	if len(t.q) == 0 {
		return tok{0, off, "", nil}, t
	}
	switch t.q[0] {
	case '(', ')':
		tk := tok{t.q[0], off, t.q[:1], nil}
		t.q = t.q[1:]
		return tk, t
	case '"':
		return t.quotedWord()
	case '/':
		return t.regexp()
	}
	end := strings.IndexFunc(t.q, func(ch rune) bool {
		return unicode.IsSpace(ch) || ch == '(' || ch == ')'
	})
	if end < 0 {
		end = len(t.q)
	}
	word := t.q[:end]
	t.q = t.q[end:]
	return tok{'w', off, word, nil}, t
}

func (t tokenizer) quotedWord() (tok, tokenizer) {
	off := t.off()
	prefix, err := strconv.QuotedPrefix(t.q)
	if err != nil {
		return t.error("bad quoted string")
	}
	word, err := strconv.Unquote(prefix)
	if err != nil {
		return t.error("bad quoted string")
	}
	t.q = t.q[len(prefix):]
	return tok{'q', off, word, nil}, t
}

func (t tokenizer) regexp() (tok, tokenizer) {
	off := t.off()
	// Find the closing unescaped "/".
	var expr strings.Builder
	i := 1
	for ; i < len(t.q); i++ {
		if t.q[i] == '\\' && i+1 < len(t.q) && t.q[i+1] == '/' {
			expr.WriteByte('/')
			i++
			continue
		}
		if t.q[i] == '/' {
			break
		}
		expr.WriteByte(t.q[i])
	}
	if i >= len(t.q) {
		return t.error("missing close \"/\"")
	}
	re, err := regexp.Compile(expr.String())
	if err != nil {
		return t.error(err.Error())
	}
	t.q = t.q[i+1:]
	return tok{'r', off, expr.String(), re}, t
}

// end asserts that t has reached the end of the query and records an
// error otherwise.
func (t tokenizer) end() tokenizer {
	t = t.skipSpace()
	if len(t.q) > 0 {
		_, t = t.error("unexpected " + strconv.Quote(t.q))
	}
	return t
}

// isBareWord reports whether s can be written as a bare word.
func isBareWord(s string) bool {
	if s == "" || s == "AND" || s == "OR" {
		return false
	}
	for i, ch := range s {
		if unicode.IsSpace(ch) || isOp(ch) || ch == '"' || (i == 0 && isStartOp(ch)) {
			return false
		}
	}
	return true
}

// quoteWord returns s as a bare word if possible, or a quoted string
// otherwise.
func quoteWord(s string) string {
	if isBareWord(s) {
		return s
	}
	return strconv.Quote(s)
}
