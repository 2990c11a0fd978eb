// Package cli holds the finseries subcommands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"

	"github.com/nholding/finseries/internal/archive"
	"github.com/nholding/finseries/internal/config"
	"github.com/nholding/finseries/internal/logging"
	"github.com/nholding/finseries/internal/pipeline"
	"github.com/nholding/finseries/internal/record/domain"
	"github.com/nholding/finseries/internal/record/service"
	"github.com/nholding/finseries/internal/storage"
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&runCmd{}, "lookup")
	c.Register(&queryCmd{}, "lookup")
}

// common holds the flags shared by every lookup command.
type common struct {
	configFile string
	envFile    string
	id         string
	file       string
	date       string
	isolate    bool
	keep       bool
}

func (c *common) setFlags(f *flag.FlagSet) {
	f.StringVar(&c.configFile, "config", "", "YAML configuration file")
	f.StringVar(&c.envFile, "env", ".env", "Environment file loaded when present")
	f.StringVar(&c.id, "id", "", "Metric id to look up (replaces configured queries)")
	f.StringVar(&c.file, "file", "", "Source file of the metric, e.g. MNZIRS0108.csv")
	f.StringVar(&c.date, "date", "", "Target date, YYYY-MM-DD")
	f.BoolVar(&c.isolate, "isolate", false, "Skip files that fail to extract or parse instead of aborting")
	f.BoolVar(&c.keep, "keep", false, "Keep the staging workspace after the run")
}

// load reads the configuration and applies the flags on top of it.
func (c *common) load(requireStore bool) (*config.Config, error) {
	cfg, err := config.Load(c.configFile, c.envFile)
	if err != nil {
		return nil, err
	}
	if c.isolate {
		cfg.IsolateFiles = true
	}
	if c.keep {
		cfg.KeepWorkspace = true
	}

	if c.id != "" || c.file != "" || c.date != "" {
		d, err := config.ParseQueryDate(c.date)
		if err != nil {
			return nil, err
		}
		cfg.Queries = []service.Query{{ID: c.id, SourceFile: c.file, Date: d}}
	}

	if err := cfg.Validate(requireStore); err != nil {
		return nil, err
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logging.Init(level, cfg.LogJSON)
	return cfg, nil
}

// execute runs the pipeline and prints its report.
func execute(ctx context.Context, store storage.BlobStore, cfg *config.Config) subcommands.ExitStatus {
	p := pipeline.New(store, archive.NewZipExtractor(), cfg.PipelineOptions())

	report, err := p.Run(ctx, cfg.QueriesOrDefault())
	printReport(os.Stdout, report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func printReport(w io.Writer, report *pipeline.Report) {
	if report == nil {
		return
	}

	fmt.Fprintf(w, "run %s: %s", report.Run.ID, report.Stage)
	if report.Failed() {
		fmt.Fprintf(w, " at %s", report.FailedAt)
	}
	fmt.Fprintf(w, " (%d objects, %d records, %d values, %s)\n",
		len(report.Keys), report.Records.Len(), countValues(report.Records.All()), report.Run.Duration().Round(time.Millisecond))
	if files := report.Records.Files(); len(files) > 0 {
		fmt.Fprintf(w, "files: %s\n", strings.Join(files, ", "))
	}

	for _, f := range report.FileErrors() {
		fmt.Fprintf(w, "skipped %s: %v\n", f.Key, f.Err)
	}
	if len(report.Answers) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tDATE\tPERIOD\tVALUE\tSCALE\tSCALED")
	for _, a := range report.Answers {
		q := a.Query
		if !a.Found {
			fmt.Fprintf(tw, "%s\t%s\t%s\t-\tnot found\t-\t-\n", q.ID, q.SourceFile, q.Date.Format("2006-01-02"))
			continue
		}
		value, scaled := "missing", "-"
		if v, ok := a.Result.Scaled(); ok {
			value, scaled = a.Result.Value.Decimal.String(), v.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			q.ID, q.SourceFile, q.Date.Format("2006-01-02"), a.Result.Window.Label(), value, a.Result.Record.Scale.String(), scaled)
	}
	tw.Flush()
}

// countValues counts the entries holding a value across records.
func countValues(records []*domain.FinancialRecord) int {
	n := 0
	for _, r := range records {
		for _, e := range r.Entries {
			if e.Value.Valid {
				n++
			}
		}
	}
	return n
}
