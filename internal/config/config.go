// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the optional YAML configuration file shared by
// the encperf commands.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/plot/vg"
	"gopkg.in/yaml.v3"

	"github.com/vcodec-lab/encperf/encplot"
)

// Config is the contents of a configuration file. Command-line flags
// override the corresponding fields.
type Config struct {
	// Confidence is the confidence level of intervals.
	Confidence float64 `yaml:"confidence"`
	// Alpha is the significance level of comparisons.
	Alpha float64 `yaml:"alpha"`

	// Out is the directory charts and tables are written to. If
	// it is empty, encstat renders no charts and psnrstat writes
	// to the current directory.
	Out string `yaml:"out"`

	// Database is a "driver:dsn" data source to store results in.
	Database string `yaml:"database"`

	ConsumptionChart Chart `yaml:"consumption_chart"`
	QualityChart     Chart `yaml:"quality_chart"`
}

// Chart is the geometry and palette of a chart. Lengths are strings
// such as "10in", "25cm" or "720pt".
type Chart struct {
	Width   string `yaml:"width"`
	Height  string `yaml:"height"`
	DPI     int    `yaml:"dpi"`
	Palette string `yaml:"palette"`
}

// Style returns the chart style described by c.
func (c Chart) Style() (encplot.Style, error) {
	w, err := vg.ParseLength(c.Width)
	if err != nil {
		return encplot.Style{}, fmt.Errorf("width %q: %w", c.Width, err)
	}
	h, err := vg.ParseLength(c.Height)
	if err != nil {
		return encplot.Style{}, fmt.Errorf("height %q: %w", c.Height, err)
	}
	if w <= 0 || h <= 0 {
		return encplot.Style{}, fmt.Errorf("size %sx%s must be positive", c.Width, c.Height)
	}
	if c.DPI <= 0 {
		return encplot.Style{}, fmt.Errorf("dpi %d must be positive", c.DPI)
	}
	return encplot.Style{Width: w, Height: h, DPI: c.DPI, Palette: c.Palette}, nil
}

// Default returns the configuration used when there is no
// configuration file.
func Default() *Config {
	return &Config{
		Confidence: 0.95,
		Alpha:      0.05,
		ConsumptionChart: Chart{
			Width: "10in", Height: "15in", DPI: 300, Palette: "Set2",
		},
		QualityChart: Chart{
			Width: "12in", Height: "7in", DPI: 300, Palette: "Set2",
		},
	}
}

// Load reads the configuration file at path on top of the defaults.
// If path is "", Load returns the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate checks that the values of c are in range.
func (c *Config) Validate() error {
	if !(c.Confidence > 0 && c.Confidence < 1) {
		return fmt.Errorf("confidence %v must be in (0, 1)", c.Confidence)
	}
	if !(c.Alpha > 0 && c.Alpha < 1) {
		return fmt.Errorf("alpha %v must be in (0, 1)", c.Alpha)
	}
	if _, err := c.ConsumptionChart.Style(); err != nil {
		return fmt.Errorf("consumption_chart: %w", err)
	}
	if _, err := c.QualityChart.Style(); err != nil {
		return fmt.Errorf("quality_chart: %w", err)
	}
	return nil
}
