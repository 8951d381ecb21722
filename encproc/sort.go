// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encproc

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Less reports whether c comes before o in the sort order implied by
// their schema. It panics if c and o have different schemas.
func (c Config) Less(o Config) bool {
	if c.c.schema != o.c.schema {
		panic("cannot compare Configs from different Schemas")
	}
	return compare(c.c.schema.Fields(), c.c.vals, o.c.vals) < 0
}

// compare orders the value tuples a and b field by field. Values that
// the field's order considers equal fall back to byte order, so the
// result is a total order consistent with ==.
func compare(fields []Field, a, b []string) int {
	for _, f := range fields {
		x, y := valueAt(a, f.idx), valueAt(b, f.idx)
		if x == y {
			continue
		}
		if c := f.cmp(x, y); c != 0 {
			return c
		}
		return strings.Compare(x, y)
	}
	return 0
}

func valueAt(vals []string, i int) string {
	if i < len(vals) {
		return vals[i]
	}
	return ""
}

// SortConfigs sorts configs, which must share a Schema, into the
// order given by Config.Less. The sort is stable.
func SortConfigs(configs []Config) {
	if len(configs) == 0 {
		return
	}
	fields := commonSchema(configs).Fields()
	sort.SliceStable(configs, func(i, j int) bool {
		return compare(fields, configs[i].c.vals, configs[j].c.vals) < 0
	})
}

// builtinOrders maps the names of the built-in sort orders to their
// comparison functions.
var builtinOrders = map[string]func(a, b string) int{
	"alpha": strings.Compare,
	"num":   numCompare,
}

// numCompare orders values by ParseNum. Numbers sort before
// non-numbers and NaN sorts after every other number.
func numCompare(a, b string) int {
	x, errx := ParseNum(a)
	y, erry := ParseNum(b)
	switch {
	case errx != nil && erry != nil:
		return 0
	case errx != nil:
		return 1
	case erry != nil:
		return -1
	}
	switch nx, ny := math.IsNaN(x), math.IsNaN(y); {
	case nx && ny:
		return 0
	case nx:
		return 1
	case ny:
		return -1
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// numPrefixes are the metric prefixes understood by ParseNum, in
// increasing order of magnitude starting at 10³.
const numPrefixes = "KMGTPEZY"

// ParseNum is a fuzzy number parser for rate-control parameters and
// similar labels. It accepts plain floats, metric ("50k") and IEC
// ("1Mi") prefixes optionally followed by a byte unit, and skips a
// non-numeric prefix, so "QP49" parses as 49.
func ParseNum(x string) (float64, error) {
	if v, err := strconv.ParseFloat(x, 64); err == nil {
		return v, nil
	}

	start := strings.IndexFunc(x, unicode.IsDigit)
	if start < 0 {
		return 0, strconv.ErrSyntax
	}
	end := start
	for end < len(x) && (x[end] == '.' || '0' <= x[end] && x[end] <= '9') {
		end++
	}
	v, err := strconv.ParseFloat(x[start:end], 64)
	if err != nil {
		return 0, strconv.ErrSyntax
	}

	suffix := x[end:]
	if suffix == "" {
		return v, nil
	}
	pre := suffix[0]
	if pre == 'k' {
		pre = 'K'
	}
	exp := strings.IndexByte(numPrefixes, pre) + 1
	if exp == 0 {
		return v, nil
	}
	base := 1000.0
	if strings.HasPrefix(suffix[1:], "i") {
		base = 1024
	}
	return v * math.Pow(base, float64(exp)), nil
}
