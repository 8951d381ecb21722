// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package encstore stores encoding measurements in a SQL database.
//
// Both SQLite (driver "sqlite3") and MySQL (driver "mysql") are
// supported. Records are returned in the order they were inserted.
package encstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/multierr"

	"github.com/vcodec-lab/encperf/encfmt"
)

// A Store is a database of encoding measurements.
type Store struct {
	db     *sql.DB
	driver string
}

// ParseSource splits a data source of the form "driver:dsn", such as
// "sqlite3:results.db" or "mysql:user:pw@tcp(host)/db".
func ParseSource(src string) (driver, dsn string, err error) {
	driver, dsn, ok := strings.Cut(src, ":")
	if !ok || dsn == "" {
		return "", "", fmt.Errorf("database %q: want driver:dsn", src)
	}
	switch driver {
	case "sqlite3", "mysql":
		return driver, dsn, nil
	}
	return "", "", fmt.Errorf("database %q: unsupported driver %q", src, driver)
}

// Open opens the database dsn with the given driver.
func Open(driver, dsn string) (*Store, error) {
	if _, ok := schemas[driver]; !ok {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite3" {
		// An in-memory SQLite database exists per connection.
		db.SetMaxOpenConns(1)
	}
	return &Store{db: db, driver: driver}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

var schemas = map[string][]string{
	"sqlite3": {
		`CREATE TABLE IF NOT EXISTS consumption (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			video TEXT NOT NULL,
			codec TEXT NOT NULL,
			label TEXT NOT NULL,
			cpu_time_seconds REAL NOT NULL,
			peak_ram_megabytes REAL NOT NULL,
			output_size_kilobytes REAL NOT NULL,
			seen INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS quality (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			video TEXT NOT NULL,
			codec TEXT NOT NULL,
			label TEXT NOT NULL,
			param_key TEXT NOT NULL,
			param TEXT NOT NULL,
			psnr_y REAL NOT NULL,
			psnr_avg REAL NOT NULL
		)`,
	},
	"mysql": {
		`CREATE TABLE IF NOT EXISTS consumption (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			video VARCHAR(255) NOT NULL,
			codec VARCHAR(255) NOT NULL,
			label VARCHAR(255) NOT NULL,
			cpu_time_seconds DOUBLE NOT NULL,
			peak_ram_megabytes DOUBLE NOT NULL,
			output_size_kilobytes DOUBLE NOT NULL,
			seen TINYINT UNSIGNED NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS quality (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			video VARCHAR(255) NOT NULL,
			codec VARCHAR(255) NOT NULL,
			label VARCHAR(255) NOT NULL,
			param_key VARCHAR(32) NOT NULL,
			param VARCHAR(255) NOT NULL,
			psnr_y DOUBLE NOT NULL,
			psnr_avg DOUBLE NOT NULL
		)`,
	},
}

// Init creates the tables of the store if they do not exist.
func (s *Store) Init(ctx context.Context) error {
	for _, q := range schemas[s.driver] {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// withTx runs f in a transaction, committing if f succeeds.
func (s *Store) withTx(ctx context.Context, f func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		return multierr.Append(err, tx.Rollback())
	}
	return tx.Commit()
}

// InsertRecords inserts recs in a single transaction. If any insert
// fails, none of recs are stored.
func (s *Store) InsertRecords(ctx context.Context, recs []encfmt.Record) error {
	return s.withTx(ctx, func(tx *sql.Tx) (err error) {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO consumption
			(video, codec, label, cpu_time_seconds, peak_ram_megabytes, output_size_kilobytes, seen)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, stmt.Close()) }()
		for i := range recs {
			r := &recs[i]
			if _, err := stmt.ExecContext(ctx, r.Video, r.Codec, r.Label, r.CPUTime, r.PeakRAM, r.OutputSize, int(r.Seen)); err != nil {
				return fmt.Errorf("inserting %s/%s: %w", r.Video, r.Codec, err)
			}
		}
		return nil
	})
}

// InsertQuality inserts recs in a single transaction.
func (s *Store) InsertQuality(ctx context.Context, recs []encfmt.QualityRecord) error {
	return s.withTx(ctx, func(tx *sql.Tx) (err error) {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO quality
			(video, codec, label, param_key, param, psnr_y, psnr_avg)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, stmt.Close()) }()
		for i := range recs {
			q := &recs[i]
			if _, err := stmt.ExecContext(ctx, q.Video, q.Codec, q.Label, q.ParamKey, q.Param, q.PSNRY, q.PSNRAvg); err != nil {
				return fmt.Errorf("inserting %s/%s: %w", q.Video, q.Codec, err)
			}
		}
		return nil
	})
}

// ErrUnknownVideo is returned by Records and Quality when a video is
// requested that the store has no rows for.
var ErrUnknownVideo = errors.New("unknown video")

// Records returns the stored records of video, or of all videos if
// video is "", in insertion order.
func (s *Store) Records(ctx context.Context, video string) (recs []encfmt.Record, err error) {
	q := `SELECT video, codec, label, cpu_time_seconds, peak_ram_megabytes, output_size_kilobytes, seen FROM consumption`
	rows, err := s.query(ctx, q, video)
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, rows.Close()) }()
	for rows.Next() {
		var r encfmt.Record
		var seen int
		if err := rows.Scan(&r.Video, &r.Codec, &r.Label, &r.CPUTime, &r.PeakRAM, &r.OutputSize, &seen); err != nil {
			return nil, err
		}
		r.Seen = encfmt.Fields(seen)
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if video != "" && len(recs) == 0 {
		return nil, fmt.Errorf("%w %q", ErrUnknownVideo, video)
	}
	return recs, nil
}

// Quality returns the stored quality records of video, or of all
// videos if video is "", in insertion order.
func (s *Store) Quality(ctx context.Context, video string) (recs []encfmt.QualityRecord, err error) {
	q := `SELECT video, codec, label, param_key, param, psnr_y, psnr_avg FROM quality`
	rows, err := s.query(ctx, q, video)
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, rows.Close()) }()
	for rows.Next() {
		var r encfmt.QualityRecord
		if err := rows.Scan(&r.Video, &r.Codec, &r.Label, &r.ParamKey, &r.Param, &r.PSNRY, &r.PSNRAvg); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if video != "" && len(recs) == 0 {
		return nil, fmt.Errorf("%w %q", ErrUnknownVideo, video)
	}
	return recs, nil
}

// query runs the SELECT q, restricted to video if it is not "".
func (s *Store) query(ctx context.Context, q, video string) (*sql.Rows, error) {
	if video == "" {
		return s.db.QueryContext(ctx, q+` ORDER BY id`)
	}
	return s.db.QueryContext(ctx, q+` WHERE video = ? ORDER BY id`, video)
}
