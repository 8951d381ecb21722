// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encplot

import (
	"path/filepath"
	"strings"

	"github.com/vcodec-lab/encperf/encfmt"
)

// Base returns the name of the file at path without its directory and
// extension. Output files are named after it.
func Base(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ConsumptionChartName returns the file name of the consumption
// figure of the log with base name base.
func ConsumptionChartName(base string) string {
	return "grafica_consumo_" + base + ".png"
}

// ConsumptionCSVName returns the file name of the record table
// extracted from the log with base name base.
func ConsumptionCSVName(base string) string {
	return "datos_consumo_" + base + ".csv"
}

// QualityChartName returns the file name of the quality chart of
// video. In QP mode the name does not include the parameter, since
// each codec may use a different QP.
func QualityChartName(video string, sc Scenario) string {
	if sc.Mode == encfmt.ModeQP {
		return "grafico_" + video + "_QP.png"
	}
	return "grafico_" + video + "_" + sc.Mode.String() + "_" + sc.Param + ".png"
}

// RDCurveName returns the file name of the rate-distortion curves of
// video.
func RDCurveName(video string) string {
	return "rd_" + video + ".svg"
}
