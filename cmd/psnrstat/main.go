// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Psnrstat summarizes the quality of video encoders and draws a chart
// per video.
//
// Usage:
//
//	psnrstat [flags] file.csv
//
// The input is a quality table: a CSV file with a header row naming
// the columns video, codec, psnr_y, psnr_avg, and either bitrate or
// config_qp. The rate-control column decides the mode of the
// experiment. Rows whose PSNR values are missing, infinite or NaN are
// dropped with a warning.
//
// For each video, psnrstat prints the mean luma and average PSNR of
// each codec with its confidence interval, and writes a bar chart to
// grafico_<video>_QP.png in QP mode or
// grafico_<video>_Bitrate_<bitrate>.png in bitrate mode, where
// <bitrate> is the bitrate of the first row of the table. With -svg it
// also draws rate-distortion curves to rd_<video>.svg.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vcodec-lab/encperf/encfmt"
	"github.com/vcodec-lab/encperf/encmath"
	"github.com/vcodec-lab/encperf/encplot"
	"github.com/vcodec-lab/encperf/encstore"
	"github.com/vcodec-lab/encperf/internal/config"
	"github.com/vcodec-lab/encperf/internal/logging"
)

func usage(flags *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(flags.Output(), `Usage: psnrstat [flags] file.csv

psnrstat summarizes the PSNR of each codec on each video of a quality
table and draws a bar chart per video.

For details, see "go doc github.com/vcodec-lab/encperf/cmd/psnrstat".
`)
		flags.PrintDefaults()
	}
}

var errUsage = errors.New("want exactly one input")

func main() {
	err := psnrstat(os.Stdout, os.Stderr, os.Args[1:])
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "psnrstat: %s\n", err)
		os.Exit(1)
	}
}

func psnrstat(w, wErr io.Writer, args []string) error {
	flags := flag.NewFlagSet("psnrstat", flag.ContinueOnError)
	flags.SetOutput(wErr)
	flags.Usage = usage(flags)
	flagConfig := flags.String("config", "", "read defaults from YAML `file`")
	flagOut := flags.String("out", "", "write charts into `dir` (default current directory)")
	flagConfidence := flags.Float64("confidence", 0.95, "confidence `level` for ranges")
	flagSVG := flags.Bool("svg", false, "also draw rate-distortion curves as SVG")
	flagDB := flags.String("db", "", "store the rows in database `driver:dsn`")
	flagVerbose := flags.Bool("v", false, "log written files")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return errUsage
	}

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		return fmt.Errorf("loading -config: %w", err)
	}
	set := make(map[string]bool)
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["confidence"] {
		*flagConfidence = cfg.Confidence
	}
	if !set["out"] {
		*flagOut = cfg.Out
	}
	if !set["db"] {
		*flagDB = cfg.Database
	}
	if *flagOut == "" {
		*flagOut = "."
	}
	if !(*flagConfidence > 0 && *flagConfidence < 1) {
		return fmt.Errorf("-confidence must be in range (0, 1)")
	}
	style, err := cfg.QualityChart.Style()
	if err != nil {
		return err
	}
	var dbDriver, dbDSN string
	if *flagDB != "" {
		if dbDriver, dbDSN, err = encstore.ParseSource(*flagDB); err != nil {
			return fmt.Errorf("parsing -db: %w", err)
		}
	}

	log := logging.New(wErr, *flagVerbose)
	defer log.Sync()

	path := flags.Arg(0)
	recs, mode, err := readQuality(log, path)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(wErr, "no records")
		return nil
	}
	sc := encplot.Scenario{Mode: mode, Param: recs[0].Param}

	videos := lo.Uniq(lo.Map(recs, func(r encfmt.QualityRecord, _ int) string {
		return r.Video
	}))

	summaries := make([][]encplot.CodecQuality, len(videos))
	for i, video := range videos {
		summaries[i] = encplot.SummarizeQuality(video, recs, *flagConfidence)
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := printSummary(w, video, sc, summaries[i], *flagConfidence); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(*flagOut, 0o777); err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, video := range videos {
		video, qs := video, summaries[i]
		g.Go(func() error {
			path := filepath.Join(*flagOut, encplot.QualityChartName(video, sc))
			return writeFile(log, path, func(f io.Writer) error {
				return encplot.QualityChart(f, video, sc, qs, style)
			})
		})
		if *flagSVG {
			g.Go(func() error {
				path := filepath.Join(*flagOut, encplot.RDCurveName(video))
				return writeFile(log, path, func(f io.Writer) error {
					return encplot.RDCurves(f, video, recs, style)
				})
			})
		}
	}
	if dbDriver != "" {
		g.Go(func() error {
			return storeQuality(ctx, log, dbDriver, dbDSN, recs)
		})
	}
	return g.Wait()
}

// readQuality reads the quality table at path.
func readQuality(log *zap.Logger, path string) (recs []encfmt.QualityRecord, mode encfmt.Mode, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	q := encfmt.NewQualityReader(f, path)
	for q.Scan() {
		recs = append(recs, q.Record())
	}
	if err := q.Err(); err != nil {
		return nil, 0, err
	}
	if n := q.Dropped(); n > 0 {
		log.Warn("dropped rows with missing or non-finite PSNR", zap.String("file", path), zap.Int("rows", n))
	}
	return recs, q.Mode(), nil
}

// printSummary prints the PSNR summaries of one video.
func printSummary(w io.Writer, video string, sc encplot.Scenario, qs []encplot.CodecQuality, confidence float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "video: %s\tscenario: %s\n", video, sc)
	fmt.Fprintf(tw, "codec\tmetric\tmean\t%.0f%% CI\n", confidence*100)
	for i := range qs {
		q := &qs[i]
		label := strings.ReplaceAll(q.Label(sc.Mode), "\n", " ")
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", label, "PSNR Y", formatDB(q.Y.Center), formatCI(q.Y))
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", label, "PSNR avg", formatDB(q.Avg.Center), formatCI(q.Avg))
	}
	return tw.Flush()
}

func formatDB(v float64) string {
	return fmt.Sprintf("%.2f dB", v)
}

func formatCI(s encmath.Summary) string {
	if s.N < 2 {
		return fmt.Sprintf("n/a (n=%d)", s.N)
	}
	return fmt.Sprintf("[%.2f, %.2f]", s.Lo, s.Hi)
}

// writeFile creates path and fills it using write.
func writeFile(log *zap.Logger, path string, write func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
		if err == nil {
			log.Info("wrote file", zap.String("path", path))
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func storeQuality(ctx context.Context, log *zap.Logger, driver, dsn string, recs []encfmt.QualityRecord) (err error) {
	db, err := encstore.Open(driver, dsn)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()
	if err := db.Init(ctx); err != nil {
		return err
	}
	if err := db.InsertQuality(ctx, recs); err != nil {
		return err
	}
	log.Info("stored rows", zap.String("driver", driver), zap.Int("rows", len(recs)))
	return nil
}
