// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vcodec-lab/encperf/encfmt"
)

// Every test must close the stores it opens.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite3", filepath.Join(t.TempDir(), "enc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, s.Close()) })
	require.NoError(t, s.Init(context.Background()))
	return s
}

func TestParseSource(t *testing.T) {
	driver, dsn, err := ParseSource("sqlite3:results.db")
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", driver)
	assert.Equal(t, "results.db", dsn)

	driver, dsn, err = ParseSource("mysql:user:pw@tcp(localhost:3306)/enc")
	require.NoError(t, err)
	assert.Equal(t, "mysql", driver)
	assert.Equal(t, "user:pw@tcp(localhost:3306)/enc", dsn)

	for _, bad := range []string{"results.db", "sqlite3:", "postgres:db"} {
		_, _, err := ParseSource(bad)
		assert.Error(t, err, bad)
	}
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open("postgres", "db")
	assert.Error(t, err)
}

func TestRecords(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	recs := []encfmt.Record{
		{Video: "foreman", Codec: "vp8", CPUTime: 3.5, PeakRAM: 10, OutputSize: 120, Label: "a", Seen: encfmt.FieldCPUTime | encfmt.FieldPeakRAM | encfmt.FieldOutputSize},
		{Video: "akiyo", Codec: "h264", Label: "a"},
		{Video: "foreman", Codec: "h264", CPUTime: 2, Label: "b", Seen: encfmt.FieldCPUTime},
	}
	require.NoError(t, s.InsertRecords(ctx, recs))

	all, err := s.Records(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, recs, all)

	foreman, err := s.Records(ctx, "foreman")
	require.NoError(t, err)
	assert.Equal(t, []encfmt.Record{recs[0], recs[2]}, foreman)

	_, err = s.Records(ctx, "mobile")
	assert.True(t, errors.Is(err, ErrUnknownVideo), "got %v", err)
}

func TestQuality(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	recs := []encfmt.QualityRecord{
		{Video: "akiyo", Codec: "h264", ParamKey: "bitrate", Param: "50k", PSNRY: 38.25, PSNRAvg: 39.5, Label: "q.csv"},
		{Video: "akiyo", Codec: "vp8", ParamKey: "bitrate", Param: "50k", PSNRY: 36, PSNRAvg: 37, Label: "q.csv"},
	}
	require.NoError(t, s.InsertQuality(ctx, recs))
	require.NoError(t, s.InsertQuality(ctx, nil))

	got, err := s.Quality(ctx, "akiyo")
	require.NoError(t, err)
	assert.Equal(t, recs, got)

	// Records and quality rows are kept apart.
	_, err = s.Records(ctx, "akiyo")
	assert.ErrorIs(t, err, ErrUnknownVideo)
}

func TestInitIdempotent(t *testing.T) {
	s := openTest(t)
	assert.NoError(t, s.Init(context.Background()))
}

func TestInsertCanceled(t *testing.T) {
	s := openTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.InsertRecords(ctx, []encfmt.Record{{Video: "v", Codec: "c"}})
	assert.Error(t, err)

	all, err := s.Records(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, all)
}
