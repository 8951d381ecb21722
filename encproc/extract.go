// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encproc

import (
	"fmt"

	"github.com/vcodec-lab/encperf/encfmt"
)

// An extractor returns the value of one key of a run.
type extractor func(encfmt.Run) string

// newExtractor returns a function that extracts key from a run.
//
// The key may be any key of a run, such as "video", "codec" or
// ".label". The pseudo-keys ".config" and ".unit" are not values of
// a run and cannot be extracted.
func newExtractor(key string) (extractor, error) {
	switch key {
	case "":
		return nil, fmt.Errorf("key must not be empty")
	case ".unit":
		return nil, fmt.Errorf(".unit is only allowed in filters")
	case ".config":
		return nil, fmt.Errorf(".config is only allowed in projections")
	}
	return func(r encfmt.Run) string {
		return r.Key(key)
	}, nil
}
