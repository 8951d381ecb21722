// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encfmt

import (
	"errors"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
)

// A Files reads Records from a sequence of consumption logs.
//
// This is a layer on top of Reader that provides a convenient way to
// read from a list of files given on a command line. Before reading
// anything, it checks that every file can be opened: an unreadable
// input is a fatal error for the whole run, reported by Err before
// any Record is produced.
type Files struct {
	// Paths is the list of file names to read from.
	//
	// If AllowLabels is set, these strings may be of the form
	// label=path, and the label will be used as the Label of the
	// Records read from path.
	Paths []string

	// AllowStdin indicates that the path "-" should be treated as
	// stdin and if the file list is empty, it should be treated as
	// consisting of just stdin.
	//
	// This is generally the desired behavior when the file list
	// comes from command-line flags.
	AllowStdin bool

	// AllowLabels indicates that custom labels are allowed in
	// Paths.
	//
	// This is generally the desired behavior when the file list
	// comes from command-line flags, as it allows users to
	// override .label.
	AllowLabels bool

	// OnFieldError, if non-nil, is installed on the Reader of
	// every file.
	OnFieldError FieldErrorFunc

	inputs  []input
	checked bool
	pos     int

	reader Reader
	file   io.ReadCloser
	err    error
}

type input struct {
	label, path string
}

// Scan advances to the next Record in the sequence of files and
// reports whether a Record was read. The caller should use the Record
// method to get it.
//
// If Scan reaches the end of the file sequence, or if an I/O error
// occurs, it returns false. In this case, the caller should use the
// Err method to check for errors.
func (f *Files) Scan() bool {
	if f.err != nil {
		return false
	}
	if !f.checked {
		f.checked = true
		f.err = f.check()
		if f.err != nil {
			return false
		}
	}

	for {
		if f.file == nil {
			if f.pos >= len(f.inputs) {
				return false
			}
			in := f.inputs[f.pos]
			f.pos++
			if err := f.open(in); err != nil {
				f.err = err
				return false
			}
		}

		if f.reader.Scan() {
			return true
		}
		f.err = multierr.Append(f.reader.Err(), f.close())
		if f.err != nil {
			return false
		}
	}
}

// check resolves labels and verifies that every input can be opened.
// It reports all unreadable inputs at once.
func (f *Files) check() error {
	paths := f.Paths
	if len(paths) == 0 && f.AllowStdin {
		paths = []string{"-"}
	}
	var err error
	for _, path := range paths {
		label := path
		if f.AllowLabels {
			if i := strings.Index(path, "="); i >= 0 {
				label, path = path[:i], path[i+1:]
			}
		}
		if !(f.AllowStdin && path == "-") {
			if openErr := readable(path); openErr != nil {
				err = multierr.Append(err, openErr)
				continue
			}
		}
		f.inputs = append(f.inputs, input{label, path})
	}
	return err
}

// readable opens path to check that it is a regular, readable file.
func readable(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return &os.PathError{Op: "open", Path: path, Err: errIsDir}
	}
	return nil
}

var errIsDir = errors.New("is a directory")

func (f *Files) open(in input) error {
	if f.AllowStdin && in.path == "-" {
		f.file = io.NopCloser(os.Stdin)
	} else {
		file, err := os.Open(in.path)
		if err != nil {
			return err
		}
		f.file = file
	}
	f.reader.Reset(f.file, in.path)
	f.reader.label = in.label
	f.reader.OnFieldError(f.OnFieldError)
	return nil
}

func (f *Files) close() error {
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

// Record returns the last Record read.
func (f *Files) Record() Record {
	return f.reader.Record()
}

// Err returns the I/O error that stopped Scan, if any.
// If Scan stopped because it read each file to completion,
// or if Scan has not yet returned false, Err returns nil.
func (f *Files) Err() error {
	return f.err
}
