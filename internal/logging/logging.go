// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logging builds the loggers of the encperf commands.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vcodec-lab/encperf/encfmt"
)

// New returns a console logger writing to w. It logs warnings and
// errors, and also debug and info messages if verbose is set.
func New(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	// Command output is compared in tests.
	cfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), level)
	return zap.New(core)
}

// FieldErrors returns a hook for encfmt readers that logs each
// unparsable measurement at debug level.
func FieldErrors(log *zap.Logger) encfmt.FieldErrorFunc {
	return func(err *encfmt.FieldError) {
		log.Debug("unparsable measurement, using 0",
			zap.String("file", err.FileName),
			zap.Int("line", err.Line),
			zap.String("field", err.Field),
			zap.String("text", err.Text),
			zap.Error(err.Err))
	}
}
