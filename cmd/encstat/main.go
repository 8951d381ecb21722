// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Encstat summarizes and compares the resource usage of video
// encoders.
//
// Usage:
//
//	encstat [flags] inputs...
//
// Each input is a consumption log written while encoding a set of
// videos with a set of codecs. Each run in the log starts with a
// header line naming the video and the codec, followed by the output
// of GNU time -v and the size of the encoded file:
//
//	>>> VIDEO: akiyo_cif | CODEC: h264 |
//	User time (seconds): 12.40
//	Maximum resident set size (kbytes): 51200
//	TAMAÑO_ARCHIVO: 450K
//
// Encstat prints one table per measurement (CPU time, peak RAM and
// output size) with a row for each video and a column for each codec.
// Each cell shows the mean of the runs of that video and codec and,
// if there is more than one run, the confidence interval of the mean.
// Every column after the first is compared against the first. The
// last row gives the geometric mean of each column.
//
// An input may be given as label=path to use label instead of the
// path as the .label of the runs read from it.
//
// # Outputs
//
// With -chart dir, encstat renders the three measurements as stacked
// grouped bar charts in dir/grafica_consumo_<base>.png, where base is
// the name of the first input without its extension, and writes the
// extracted runs to dir/datos_consumo_<base>.csv. The -csv flag names
// a different file for the runs, or disables it with "-".
//
// With -db driver:dsn, encstat also stores the runs in a SQLite
// ("sqlite3:file.db") or MySQL database.
//
// # Projections and filters
//
// The -table, -row and -col flags give projections of the run keys
// video, codec and .label, and the -filter flag selects runs. See
// "go doc github.com/vcodec-lab/encperf/encproc/syntax" for the syntax.
// For example, to compare videos instead of codecs, restricted to
// h264 and vp8:
//
//	encstat -row codec -col video -filter 'codec:(h264 OR vp8)' run.log
//
// # Configuration
//
// The -config flag names a YAML file setting the defaults of
// -confidence, -alpha, -chart and -db, and the geometry of the chart:
//
//	confidence: 0.9
//	out: charts
//	consumption_chart:
//	  width: 10in
//	  height: 15in
//	  dpi: 150
//	  palette: Set2
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

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vcodec-lab/encperf/cmd/encstat/internal/enctab"
	"github.com/vcodec-lab/encperf/encfmt"
	"github.com/vcodec-lab/encperf/encplot"
	"github.com/vcodec-lab/encperf/encproc"
	"github.com/vcodec-lab/encperf/encstore"
	"github.com/vcodec-lab/encperf/internal/config"
	"github.com/vcodec-lab/encperf/internal/logging"
)

func usage(flags *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(flags.Output(), `Usage: encstat [flags] inputs...

encstat summarizes the CPU time, peak RAM and output size of video
encoding runs. It shows the mean of each measurement in a table with
a row for each video and a column for each codec, and compares each
codec against the first one.

For details, see "go doc github.com/vcodec-lab/encperf/cmd/encstat".
`)
		flags.PrintDefaults()
	}
}

var errUsage = errors.New("no inputs")

func main() {
	err := encstat(os.Stdout, os.Stderr, os.Args[1:])
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "encstat: %s\n", err)
		os.Exit(1)
	}
}

func encstat(w, wErr io.Writer, args []string) error {
	flags := flag.NewFlagSet("encstat", flag.ContinueOnError)
	flags.SetOutput(wErr)
	flags.Usage = usage(flags)
	flagConfig := flags.String("config", "", "read defaults from YAML `file`")
	flagTable := flags.String("table", "", "split results into tables by distinct values of `projection`")
	flagRow := flags.String("row", "video", "split results into rows by distinct values of `projection`")
	flagCol := flags.String("col", "codec", "split results into columns by distinct values of `projection`")
	flagIgnore := flags.String("ignore", "", "ignore variations in `keys`")
	flagFilter := flags.String("filter", "*", "use only runs matching `query`")
	flagConfidence := flags.Float64("confidence", 0.95, "confidence `level` for ranges")
	flagAlpha := flags.Float64("alpha", 0.05, "consider change significant if p < `α`")
	flagFormat := flags.String("format", "text", "print results in `format`:\n  text - plain text\n  csv  - comma-separated values (warnings will be written to stderr)\n")
	flagCSV := flags.String("csv", "", "write the extracted runs to `file` (\"-\" disables)")
	flagChart := flags.String("chart", "", "render the consumption chart into `dir`")
	flagDB := flags.String("db", "", "store the runs in database `driver:dsn`")
	flagVerbose := flags.Bool("v", false, "log unparsable measurements and written files")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.NArg() == 0 {
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
	if !set["alpha"] {
		*flagAlpha = cfg.Alpha
	}
	if !set["chart"] {
		*flagChart = cfg.Out
	}
	if !set["db"] {
		*flagDB = cfg.Database
	}

	log := logging.New(wErr, *flagVerbose)
	defer log.Sync()

	filter, err := encproc.NewFilter(*flagFilter)
	if err != nil {
		return fmt.Errorf("parsing -filter: %w", err)
	}

	var parser encproc.ProjectionParser
	var parseErr error
	mustParse := func(name, val string) *encproc.Schema {
		schema, err := parser.Parse(val, filter)
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("parsing %s: %w", name, err)
		}
		return schema
	}
	tableBy := mustParse("-table", *flagTable)
	rowBy := mustParse("-row", *flagRow)
	colBy := mustParse("-col", *flagCol)
	mustParse("-ignore", *flagIgnore)
	residue := parser.Residue()
	if parseErr != nil {
		return parseErr
	}

	if !(*flagAlpha > 0 && *flagAlpha < 1) {
		return fmt.Errorf("-alpha must be in range (0, 1)")
	}
	if !(*flagConfidence > 0 && *flagConfidence < 1) {
		return fmt.Errorf("-confidence must be in range (0, 1)")
	}
	var format func(t *enctab.Tables) error
	switch *flagFormat {
	default:
		return fmt.Errorf("-format must be text or csv")
	case "text":
		format = func(t *enctab.Tables) error { return t.ToText(w) }
	case "csv":
		format = func(t *enctab.Tables) error { return t.ToCSV(w, wErr) }
	}
	var style encplot.Style
	if *flagChart != "" {
		if style, err = cfg.ConsumptionChart.Style(); err != nil {
			return err
		}
	}
	var dbDriver, dbDSN string
	if *flagDB != "" {
		if dbDriver, dbDSN, err = encstore.ParseSource(*flagDB); err != nil {
			return fmt.Errorf("parsing -db: %w", err)
		}
	}

	stat := enctab.NewBuilder(tableBy, rowBy, colBy, residue)
	files := encfmt.Files{
		Paths:        flags.Args(),
		AllowStdin:   true,
		AllowLabels:  true,
		OnFieldError: logging.FieldErrors(log),
	}
	var recs []encfmt.Record
	for files.Scan() {
		rec := files.Record()
		m := filter.Match(&rec)
		if !m.Any() {
			continue
		}
		stat.Add(&rec, &m)
		recs = append(recs, rec)
	}
	if err := files.Err(); err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(wErr, "no records")
		return nil
	}

	tables := stat.ToTables(enctab.TableOpts{
		Confidence: *flagConfidence,
		Alpha:      *flagAlpha,
	})
	if err := format(tables); err != nil {
		return err
	}

	base := inputBase(flags.Arg(0))
	csvPath := *flagCSV
	if csvPath == "" && *flagChart != "" {
		csvPath = filepath.Join(*flagChart, encplot.ConsumptionCSVName(base))
	}
	if csvPath == "-" {
		csvPath = ""
	}
	// The default records file lives in the chart directory, so it
	// must exist before any file is written.
	if *flagChart != "" {
		if err := os.MkdirAll(*flagChart, 0o777); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.GOMAXPROCS(0))
	if csvPath != "" {
		g.Go(func() error {
			return writeFile(log, csvPath, func(f io.Writer) error {
				cw := encfmt.NewWriter(f)
				for i := range recs {
					if err := cw.Write(&recs[i]); err != nil {
						return err
					}
				}
				return cw.Flush()
			})
		})
	}
	if dir := *flagChart; dir != "" {
		cons := encplot.NewConsumption(recs, *flagConfidence)
		g.Go(func() error {
			path := filepath.Join(dir, encplot.ConsumptionChartName(base))
			return writeFile(log, path, func(f io.Writer) error {
				return encplot.ConsumptionFigure(f, cons, style)
			})
		})
	}
	if dbDriver != "" {
		g.Go(func() error {
			return storeRecords(ctx, log, dbDriver, dbDSN, recs)
		})
	}
	return g.Wait()
}

// inputBase returns the base name of an input argument, which may be
// of the form label=path.
func inputBase(arg string) string {
	if i := strings.Index(arg, "="); i >= 0 {
		arg = arg[i+1:]
	}
	if arg == "-" {
		return "stdin"
	}
	return encplot.Base(arg)
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

func storeRecords(ctx context.Context, log *zap.Logger, driver, dsn string, recs []encfmt.Record) (err error) {
	db, err := encstore.Open(driver, dsn)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()
	if err := db.Init(ctx); err != nil {
		return err
	}
	if err := db.InsertRecords(ctx, recs); err != nil {
		return err
	}
	log.Info("stored runs", zap.String("driver", driver), zap.Int("runs", len(recs)))
	return nil
}
