// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/WalterWj/dbgen/eval"
	"github.com/WalterWj/dbgen/internal/rlog"
	"github.com/WalterWj/dbgen/internal/rng"

	dbgen "github.com/WalterWj/dbgen"
)

// args holds every flag spec.md §6 names, one field per flag, bound directly
// by cobra/pflag.
type args struct {
	Qualified  bool
	TableName  string
	SchemaName string
	OutDir     string

	FilesCount           int
	InsertsCount         int
	RowsCount            int
	LastFileInsertsCount int
	LastInsertRowsCount  int

	EscapeBackslash bool
	Template        string
	Seed            string
	Jobs            int
	RngName         string

	Quiet    bool
	TimeZone string
	Now      string

	Format        string
	Compression   string
	CompressLevel int

	NoSchemas  bool
	NoData     bool
	Initialize string

	Manifest              bool
	NoManifestPlaceholder bool
	MetricsAddr           string
}

func newRootCommand() *cobra.Command {
	a := &args{
		FilesCount:   1,
		InsertsCount: 1,
		RowsCount:    1,
		Jobs:         0,
		RngName:      string(rng.ChaCha),
		Format:       "sql",
		Manifest:     true,
	}

	cmd := &cobra.Command{
		Use:   "dbgen",
		Short: "Generate large synthetic relational datasets from a template",
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			return run(cmd.Context(), a)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&a.Qualified, "qualified", false, "qualify table names with their schema in output")
	flags.StringVar(&a.TableName, "table-name", "", "override the template's table name (single-table templates only)")
	flags.StringVar(&a.SchemaName, "schema-name", "", "override the template's schema name")
	flags.StringVar(&a.OutDir, "out-dir", ".", "directory to write output files into")

	flags.IntVarP(&a.FilesCount, "files-count", "k", a.FilesCount, "number of data files per table")
	flags.IntVarP(&a.InsertsCount, "inserts-count", "n", a.InsertsCount, "number of insert statements per file")
	flags.IntVarP(&a.RowsCount, "rows-count", "r", a.RowsCount, "number of rows per insert statement")
	flags.IntVar(&a.LastFileInsertsCount, "last-file-inserts-count", 0, "override inserts-count for the last file (0 = same as inserts-count)")
	flags.IntVar(&a.LastInsertRowsCount, "last-insert-rows-count", 0, "override rows-count for the last insert (0 = same as rows-count)")

	flags.BoolVar(&a.EscapeBackslash, "escape-backslash", false, "escape backslashes in SQL string literals")
	flags.StringVarP(&a.Template, "template", "i", "-", "template file to read, or - for stdin")
	flags.StringVarP(&a.Seed, "seed", "s", "", "RNG seed string (empty = random)")
	flags.IntVarP(&a.Jobs, "jobs", "j", 0, "number of parallel shard workers (0 = GOMAXPROCS)")
	flags.StringVar(&a.RngName, "rng", a.RngName, "rng engine: chacha, hc128, isaac, isaac64, xorshift, pcg32, step")

	flags.BoolVarP(&a.Quiet, "quiet", "q", false, "suppress the progress bars and summary")
	flags.StringVar(&a.TimeZone, "time-zone", "UTC", "IANA time zone name for timestamp expressions")
	flags.StringVar(&a.Now, "now", "", "RFC3339 timestamp to use for 'now' (empty = current time)")

	flags.StringVarP(&a.Format, "format", "f", a.Format, "output format: sql or csv")
	flags.StringVarP(&a.Compression, "compression", "c", "", "compression codec: gzip/gz, xz, zstd/zst, or empty for none")
	flags.IntVar(&a.CompressLevel, "compress-level", -1, "compression level, codec-specific (-1 = codec default)")

	flags.BoolVar(&a.NoSchemas, "no-schemas", false, "don't write schema (.sql) files")
	flags.BoolVar(&a.NoData, "no-data", false, "don't write data files (schemas and manifest only)")
	flags.StringVarP(&a.Initialize, "initialize", "D", "", "extra SQL file written once before any table's schema")

	flags.BoolVar(&a.Manifest, "manifest", a.Manifest, "write a checksum manifest.json after a successful run")
	flags.BoolVar(&a.NoManifestPlaceholder, "no-manifest", false, "disable the checksum manifest")
	flags.StringVar(&a.MetricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (empty = disabled)")

	return cmd
}

func run(ctx context.Context, a *args) error {
	if a.NoManifestPlaceholder {
		a.Manifest = false
	}

	if err := rlog.Init(a.Quiet); err != nil {
		return err
	}

	tz, err := time.LoadLocation(a.TimeZone)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "parsing --time-zone %q", a.TimeZone), dbgen.ErrConfig)
	}

	now := time.Now().In(tz)
	if a.Now != "" {
		parsed, err := time.Parse(time.RFC3339, a.Now)
		if err != nil {
			return errors.Mark(errors.Wrapf(err, "parsing --now %q", a.Now), dbgen.ErrConfig)
		}
		now = parsed.In(tz)
	}

	seed, err := dbgen.SeedFromString(a.Seed)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "deriving seed"), dbgen.ErrConfig)
	}

	format, err := dbgen.NewFormat(a.Format)
	if err != nil {
		return err
	}
	compression, err := dbgen.NewCompression(a.Compression)
	if err != nil {
		return err
	}

	templateSrc, err := readTemplate(a.Template)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "reading template"), dbgen.ErrTemplate)
	}

	compileCtx := eval.CompileContext{
		TimeZone:        tz,
		Now:             now,
		EscapeBackslash: a.EscapeBackslash,
		Seed:            seed,
	}
	tables, err := eval.Compile(templateSrc, compileCtx)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "compiling template"), dbgen.ErrTemplate)
	}

	if a.TableName != "" {
		if len(tables) != 1 {
			return errors.Mark(errors.New("--table-name requires a template with exactly one table"), dbgen.ErrConfig)
		}
		tables[0].Name.Table = a.TableName
	}
	for _, t := range tables {
		if a.SchemaName != "" {
			t.Name.Schema = a.SchemaName
		}
		if !a.Qualified {
			t.Name.Schema = ""
		}
	}

	if a.Initialize != "" {
		if err := copyInitializeFile(a.Initialize, a.OutDir); err != nil {
			return errors.Mark(errors.Wrap(err, "copying --initialize file"), dbgen.ErrIO)
		}
	}

	if !a.NoSchemas {
		for _, t := range tables {
			// Schema files hold CREATE TABLE text whatever --format is, so
			// they are always rendered with the SQL format.
			if err := writeSchemaFile(a.OutDir, t, dbgen.SQLFormat{}); err != nil {
				return err
			}
		}
	}

	if a.MetricsAddr != "" {
		metricsCtx, cancelMetrics := context.WithCancel(ctx)
		defer cancelMetrics()
		go func() {
			if err := dbgen.ServeMetrics(metricsCtx, a.MetricsAddr); err != nil {
				rlog.L().Warn("metrics server exited", zap.Error(err))
			}
		}()
	}

	var report *dbgen.RunReport
	if !a.NoData {
		rngName := rng.Name(a.RngName)
		cfg := dbgen.RunConfig{
			Tables:          tables,
			Format:          format,
			Compression:     compression,
			CompressLevel:   a.CompressLevel,
			RngName:         rngName,
			Seed:            seed,
			Jobs:            a.Jobs,
			OutDir:          a.OutDir,
			EscapeBackslash: a.EscapeBackslash,
			// Each CLI --files-count file is generated by its own shard, so
			// the scheduler's ShardsCount is the file count and each
			// individual shard writes exactly one file.
			ShardsCount:          a.FilesCount,
			FilesCount:           1,
			InsertsCount:         a.InsertsCount,
			RowsCount:            a.RowsCount,
			LastFileInsertsCount: a.LastFileInsertsCount,
			LastInsertRowsCount:  a.LastInsertRowsCount,
			Now:                  now,
			TimeZone:             tz,
		}

		var reporter *dbgen.ProgressReporter
		if !a.Quiet {
			reporter = dbgen.NewProgressReporter(0, 0)
			reporter.Start()
		}
		report, err = dbgen.Run(ctx, cfg)
		if reporter != nil {
			reporter.Stop()
		}
		if err != nil {
			return err
		}
		rlog.L().Info("run complete", zap.String("report", redact.Sprint(report).StripMarkers()))
		if !a.Quiet {
			os.Stdout.WriteString(dbgen.Summary(report) + "\n")
			if reporter != nil {
				os.Stdout.WriteString(reporter.Sparkline() + "\n")
			}
		}
	}

	if a.Manifest {
		if report == nil {
			// --no-data: no data files were written, so the manifest has no
			// entries.
			report = &dbgen.RunReport{}
		}
		m := dbgen.BuildManifest(seed, report)
		if err := dbgen.WriteManifest(a.OutDir+"/manifest.json", m); err != nil {
			return err
		}
	}

	return nil
}

func readTemplate(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// copyInitializeFile copies the --initialize SQL file into outDir under a
// name that sorts before every table's own schema file, so a tool applying
// schema files in lexical order runs it first.
func copyInitializeFile(src, outDir string) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(outDir+"/0-initialize.sql", content, 0o644)
}

func writeSchemaFile(outDir string, table *eval.Table, format dbgen.Format) error {
	path := outDir + "/" + table.Name.Table + "-schema.sql"
	f, err := os.Create(path)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "creating schema file %s", path), dbgen.ErrIO)
	}
	defer f.Close()
	return format.WriteSchema(f, table)
}
